package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList хранит список строк в текстовой колонке как JSON.
// Пустой список сериализуется как [], а не null.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Staff представляет сотрудника и его расширенные метаданные
type Staff struct {
	StaffID                  int64      `json:"StaffID" gorm:"column:StaffID;primaryKey"`
	StaffName                string     `json:"StaffName" gorm:"column:StaffName;type:varchar(200);not null"`
	Email                    string     `json:"Email" gorm:"column:Email;type:varchar(200);not null"`
	LocationName             string     `json:"LocationName" gorm:"column:LocationName;type:varchar(200)"`
	StartDate                time.Time  `json:"StartDate" gorm:"column:StartDate"`
	JobTitle                 string     `json:"JobTitle" gorm:"column:JobTitle;type:varchar(200)"`
	GradeLevel               int        `json:"GradeLevel" gorm:"column:GradeLevel"`
	DisciplineName           string     `json:"DisciplineName" gorm:"column:DisciplineName;type:varchar(200)"`
	ImgURL                   *string    `json:"imgURL" gorm:"column:imgURL"`
	CareerStart              *time.Time `json:"careerStart" gorm:"column:careerStart"`
	Nationality              *string    `json:"nationality" gorm:"column:nationality"`
	HighLevelDescription     *string    `json:"highLevelDescription" gorm:"column:highLevelDescription"`
	ValueStatement           *string    `json:"valueStatement" gorm:"column:valueStatement"`
	Qualifications           StringList `json:"qualifications" gorm:"column:qualifications;type:text"`
	ProfessionalAssociations StringList `json:"professionalAssociations" gorm:"column:professionalAssociations;type:text"`
	Committees               StringList `json:"committees" gorm:"column:committees;type:text"`
	Publications             StringList `json:"publications" gorm:"column:publications;type:text"`
}

// TableName задаёт имя таблицы для GORM
func (Staff) TableName() string {
	return "staff_meta"
}

// Project представляет проект; Keywords - производный набор кодов
// из таблицы связей project_keywords
type Project struct {
	ProjectCode          int64      `json:"ProjectCode" gorm:"column:ProjectCode;primaryKey"`
	JobNameLong          string     `json:"JobNameLong" gorm:"column:JobNameLong;type:varchar(300);not null"`
	StartDate            time.Time  `json:"StartDate" gorm:"column:StartDate"`
	EndDate              time.Time  `json:"EndDate" gorm:"column:EndDate"`
	CentreName           string     `json:"CentreName" gorm:"column:CentreName;type:varchar(200)"`
	AccountingCentreCode int        `json:"AccountingCentreCode" gorm:"column:AccountingCentreCode"`
	PracticeName         string     `json:"PracticeName" gorm:"column:PracticeName;type:varchar(200)"`
	BusinessCode         string     `json:"BusinessCode" gorm:"column:BusinessCode;type:varchar(20)"`
	BusinessName         string     `json:"BusinessName" gorm:"column:BusinessName;type:varchar(200)"`
	ProjectDirectorID    int64      `json:"ProjectDirectorID" gorm:"column:ProjectDirectorID"`
	ProjectDirectorName  string     `json:"ProjectDirectorName" gorm:"column:ProjectDirectorName;type:varchar(200)"`
	ProjectManagerID     int64      `json:"ProjectManagerID" gorm:"column:ProjectManagerID"`
	ProjectManagerName   string     `json:"ProjectManagerName" gorm:"column:ProjectManagerName;type:varchar(200)"`
	CountryName          string     `json:"CountryName" gorm:"column:CountryName;type:varchar(200)"`
	Town                 string     `json:"Town" gorm:"column:Town;type:varchar(200)"`
	ScopeOfService       string     `json:"ScopeOfService" gorm:"column:ScopeOfService;type:text"`
	ScopeOfWorks         StringList `json:"ScopeOfWorks" gorm:"column:ScopeOfWorks;type:text"`
	Latitude             float64    `json:"Latitude" gorm:"column:Latitude"`
	Longitude            float64    `json:"Longitude" gorm:"column:Longitude"`
	State                string     `json:"State" gorm:"column:State;type:varchar(200)"`
	PercentComplete      int        `json:"PercentComplete" gorm:"column:PercentComplete"`
	ClientID             int64      `json:"ClientID" gorm:"column:ClientID"`
	ClientName           string     `json:"ClientName" gorm:"column:ClientName;type:varchar(200)"`
	ProjectURL           string     `json:"ProjectURL" gorm:"column:ProjectURL;type:text"`
	Confidential         bool       `json:"Confidential" gorm:"column:Confidential;not null"`
	ImgURL               StringList `json:"imgURL" gorm:"column:imgURL;type:text"`

	Keywords []string `json:"Keywords" gorm:"-"`
}

// TableName задаёт имя таблицы для GORM
func (Project) TableName() string {
	return "projects"
}

// Keyword - элемент контролируемого словаря; каждый код
// принадлежит ровно одной группе
type Keyword struct {
	KeywordCode      string `json:"KeywordCode" gorm:"column:KeywordCode;primaryKey;type:varchar(20)"`
	Keyword          string `json:"Keyword" gorm:"column:Keyword;type:varchar(200);not null"`
	KeywordGroupCode string `json:"KeywordGroupCode" gorm:"column:KeywordGroupCode;type:varchar(20);not null;index"`
}

// TableName задаёт имя таблицы для GORM
func (Keyword) TableName() string {
	return "keywords"
}

// KeywordGroup представляет группу ключевых слов
type KeywordGroup struct {
	KeywordGroupCode string `json:"KeywordGroupCode" gorm:"column:KeywordGroupCode;primaryKey;type:varchar(20)"`
	KeywordGroupName string `json:"KeywordGroupName" gorm:"column:KeywordGroupName;type:varchar(200);not null"`
}

// TableName задаёт имя таблицы для GORM
func (KeywordGroup) TableName() string {
	return "keyword_groups"
}

// ProjectKeyword - связь многие-ко-многим между проектами и ключевыми словами
type ProjectKeyword struct {
	ProjectCode int64  `gorm:"column:ProjectCode;primaryKey"`
	KeywordCode string `gorm:"column:KeywordCode;primaryKey;type:varchar(20)"`
}

// TableName задаёт имя таблицы для GORM
func (ProjectKeyword) TableName() string {
	return "project_keywords"
}

// StaffExperience - учёт времени и опыта по паре (проект, сотрудник).
// Не более одной строки на пару; experienceID - суррогатный ключ.
type StaffExperience struct {
	ExperienceID int64   `json:"experienceID" gorm:"column:experienceID;primaryKey;autoIncrement"`
	ProjectCode  int64   `json:"ProjectCode" gorm:"column:ProjectCode;not null;uniqueIndex:idx_project_staff"`
	StaffID      int64   `json:"StaffID" gorm:"column:StaffID;not null;uniqueIndex:idx_project_staff"`
	TotalHrs     float64 `json:"TotalHrs" gorm:"column:TotalHrs"`
	Experience   *string `json:"experience" gorm:"column:experience;type:text"`
}

// TableName задаёт имя таблицы для GORM
func (StaffExperience) TableName() string {
	return "staff_experience"
}
