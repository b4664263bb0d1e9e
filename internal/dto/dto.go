package dto

import (
	"github.com/staff-portfolio-api/internal/domain"
)

// Credentials - учётные данные сотрудника после логина
type Credentials struct {
	StaffID           int64   `json:"StaffID"`
	GradeLevel        int     `json:"GradeLevel"`
	ProjectManagerFor []int64 `json:"ProjectManagerFor"`
}

// CredentialsResponse - ответ на логин
type CredentialsResponse struct {
	Credentials Credentials `json:"credentials"`
}

// StaffListResponse - ответ со списком сотрудников
type StaffListResponse struct {
	StaffMeta []domain.Staff `json:"staffMeta"`
}

// StaffResponse - ответ с данными одного сотрудника
type StaffResponse struct {
	StaffMeta *domain.Staff `json:"staffMeta"`
}

// ProjectsResponse - ответ со списком проектов
type ProjectsResponse struct {
	Projects []domain.Project `json:"projects"`
}

// ProjectResponse - ответ с данными одного проекта
type ProjectResponse struct {
	Project *domain.Project `json:"project"`
}

// ProjectWithExperience - проект вместе со строкой учёта времени
// запрошенного сотрудника
type ProjectWithExperience struct {
	domain.Project
	StaffID      int64   `json:"StaffID"`
	TotalHrs     float64 `json:"TotalHrs"`
	Experience   *string `json:"experience"`
	ExperienceID int64   `json:"experienceID"`
}

// ProjectWithExperienceResponse - ответ с проектом и учётом времени
type ProjectWithExperienceResponse struct {
	Project *ProjectWithExperience `json:"project"`
}

// StaffAggregate - сотрудник с агрегатами по отфильтрованным проектам
type StaffAggregate struct {
	domain.Staff
	TotalHrs     float64 `json:"TotalHrs"`
	ProjectCount int64   `json:"ProjectCount"`
}

// StaffPortfolio - список сотрудников с агрегатами плюс коды
// проектов, прошедших фильтр
type StaffPortfolio struct {
	StaffList []StaffAggregate `json:"staffList"`
	Projects  []int64          `json:"projects"`
}

// StaffPortfolioResponse - ответ портфолио сотрудников
type StaffPortfolioResponse struct {
	StaffPortfolio StaffPortfolio `json:"staffPortfolio"`
}

// StaffHours - агрегат часов по явному списку проектов
type StaffHours struct {
	StaffID      int64   `json:"StaffID"`
	TotalHrs     float64 `json:"TotalHrs"`
	ProjectCount int64   `json:"ProjectCount"`
}

// StaffHoursResponse - ответ на запрос с явным списком проектов
type StaffHoursResponse struct {
	StaffList []StaffHours `json:"staffList"`
}

// ProjectListRequest - тело запроса с явным списком проектов
type ProjectListRequest struct {
	Projects []int64 `json:"Projects"`
}

// BookingRow - базовая строка учёта времени сотрудника по проекту
type BookingRow struct {
	ExperienceID int64   `json:"experienceID"`
	ProjectCode  int64   `json:"ProjectCode"`
	StaffID      int64   `json:"StaffID"`
	TotalHrs     float64 `json:"TotalHrs"`
	Experience   *string `json:"experience"`
}

// StaffProjectDetail - строка учёта времени с присоединёнными
// атрибутами проекта (детализированная форма)
type StaffProjectDetail struct {
	ExperienceID int64   `json:"experienceID"`
	StaffID      int64   `json:"StaffID"`
	TotalHrs     float64 `json:"TotalHrs"`
	Experience   *string `json:"experience"`
	domain.Project
}

// BookingRowsResponse - список базовых строк
type BookingRowsResponse struct {
	Projects []BookingRow `json:"projects"`
}

// StaffProjectDetailsResponse - список детализированных строк
type StaffProjectDetailsResponse struct {
	Projects []StaffProjectDetail `json:"projects"`
}

// ExperienceCreateRequest - тело создания строки учёта времени
type ExperienceCreateRequest struct {
	TotalHrs   *float64 `json:"TotalHrs" validate:"required"`
	Experience *string  `json:"experience" validate:"required"`
}

// ExperienceResponse - ответ с созданной строкой учёта времени
type ExperienceResponse struct {
	Experience *domain.StaffExperience `json:"experience"`
}

// KeywordRowsResponse - список ключевых слов
type KeywordRowsResponse struct {
	Keywords []domain.Keyword `json:"keywords"`
}

// KeywordCodesResponse - список кодов ключевых слов
type KeywordCodesResponse struct {
	Keywords []string `json:"keywords"`
}

// KeywordGroupsResponse - список групп ключевых слов
type KeywordGroupsResponse struct {
	KeywordGroups []domain.KeywordGroup `json:"keywordGroups"`
}

// KeywordGroupEntry - ключевые слова одной группы
type KeywordGroupEntry struct {
	KeywordGroupName string   `json:"KeywordGroupName"`
	Keywords         []string `json:"Keywords"`
	KeywordCodes     []string `json:"KeywordCodes"`
}

// GroupedKeywordsResponse - ключевые слова, разложенные по группам
type GroupedKeywordsResponse struct {
	Keywords map[string]*KeywordGroupEntry `json:"keywords"`
}

// DBInfo - справочные значения для построения фильтров на клиенте
type DBInfo struct {
	ProjectCode  []int64  `json:"ProjectCode"`
	ClientName   []string `json:"ClientName"`
	CountryName  []string `json:"CountryName"`
	BusinessName []string `json:"BusinessName"`
	Town         []string `json:"Town"`
	State        []string `json:"State"`
	StaffID      []int64  `json:"StaffID"`
}

// InfoResponse - ответ с метаданными каталога
type InfoResponse struct {
	DBInfo DBInfo `json:"dbInfo"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Msg string `json:"msg"`
}
