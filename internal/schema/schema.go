// Package schema описывает статический реестр атрибутов: какие поля
// каждой сущности допустимы в фильтрах чтения и в патчах записи.
// Реестр только читается после инициализации.
package schema

// Type - тип значения атрибута
type Type int

const (
	Integer Type = iota
	Decimal
	Text
	TextList
	Date
	Boolean
	KeywordList
)

// Entity - семейство сущностей каталога
type Entity string

const (
	Staff      Entity = "staff"
	Project    Entity = "project"
	Experience Entity = "experience"
	Keyword    Entity = "keyword"

	// Portfolio - объединённый вид staff+projects для агрегирующих
	// запросов: атрибут ищется сначала среди проектных, затем среди
	// штатных.
	Portfolio Entity = "portfolio"
)

// Attribute описывает одно допустимое имя атрибута
type Attribute struct {
	Name       string
	Table      string
	Column     string
	Type       Type
	Op         string // оператор сравнения в предикате; по умолчанию "="
	Filterable bool
	Mutable    bool
	Ignored    bool // молча отбрасывается при патче (поля других подсистем)
	Identifier bool // неизменяемый ключ; попытка патча отклоняется целиком
}

var registry = map[Entity]map[string]Attribute{
	Staff:      staffAttributes(),
	Project:    projectAttributes(),
	Experience: experienceAttributes(),
	Keyword:    keywordAttributes(),
}

func attr(table, name string, t Type) Attribute {
	return Attribute{Name: name, Table: table, Column: name, Type: t, Op: "="}
}

func staffAttributes() map[string]Attribute {
	const t = "staff_meta"
	m := map[string]Attribute{}
	add := func(a Attribute) { m[a.Name] = a }

	id := attr(t, "StaffID", Integer)
	id.Filterable = true
	id.Identifier = true
	add(id)

	for _, name := range []string{"StaffName", "Email", "LocationName", "JobTitle", "DisciplineName", "nationality"} {
		a := attr(t, name, Text)
		a.Filterable = true
		if name == "nationality" {
			a.Mutable = true
		}
		add(a)
	}

	grade := attr(t, "GradeLevel", Integer)
	grade.Filterable = true
	add(grade)

	start := attr(t, "StartDate", Date)
	start.Filterable = true
	add(start)
	add(rangeAttr(t, "StartDateAfter", "StartDate", ">="))
	add(rangeAttr(t, "StartDateBefore", "StartDate", "<"))

	for _, name := range []string{"imgURL", "highLevelDescription", "valueStatement"} {
		a := attr(t, name, Text)
		a.Mutable = true
		add(a)
	}
	career := attr(t, "careerStart", Date)
	career.Mutable = true
	add(career)
	for _, name := range []string{"qualifications", "professionalAssociations", "committees", "publications"} {
		a := attr(t, name, TextList)
		a.Mutable = true
		add(a)
	}

	return m
}

func projectAttributes() map[string]Attribute {
	const t = "projects"
	m := map[string]Attribute{}
	add := func(a Attribute) { m[a.Name] = a }

	id := attr(t, "ProjectCode", Integer)
	id.Filterable = true
	id.Identifier = true
	add(id)

	for _, name := range []string{
		"JobNameLong", "CentreName", "PracticeName", "BusinessCode", "BusinessName",
		"ProjectDirectorName", "ProjectManagerName", "CountryName", "Town", "State",
		"ClientName", "ProjectURL", "ScopeOfService",
	} {
		a := attr(t, name, Text)
		a.Filterable = true
		a.Mutable = true
		add(a)
	}

	for _, name := range []string{"AccountingCentreCode", "ProjectDirectorID", "ProjectManagerID", "ClientID"} {
		a := attr(t, name, Integer)
		a.Filterable = true
		a.Mutable = true
		add(a)
	}

	for _, name := range []string{"Latitude", "Longitude"} {
		a := attr(t, name, Decimal)
		a.Mutable = true
		add(a)
	}

	// Процент готовности фильтруется всегда как нижняя граница
	pc := attr(t, "PercentComplete", Integer)
	pc.Filterable = true
	pc.Mutable = true
	pc.Op = ">="
	add(pc)

	for _, name := range []string{"StartDate", "EndDate"} {
		a := attr(t, name, Date)
		a.Filterable = true
		a.Mutable = true
		add(a)
	}
	add(rangeAttr(t, "StartDateAfter", "StartDate", ">="))
	add(rangeAttr(t, "StartDateBefore", "StartDate", "<"))
	add(rangeAttr(t, "EndDateAfter", "EndDate", ">="))
	add(rangeAttr(t, "EndDateBefore", "EndDate", "<"))

	conf := attr(t, "Confidential", Boolean)
	conf.Filterable = true
	conf.Mutable = true
	add(conf)

	scope := attr(t, "ScopeOfWorks", TextList)
	scope.Mutable = true
	add(scope)

	// Поля, принадлежащие другим подсистемам: при патче игнорируются
	img := attr(t, "imgURL", TextList)
	img.Ignored = true
	add(img)
	kw := attr(t, "Keywords", KeywordList)
	kw.Filterable = true
	kw.Ignored = true
	add(kw)

	return m
}

func experienceAttributes() map[string]Attribute {
	const t = "staff_experience"
	m := map[string]Attribute{}
	add := func(a Attribute) { m[a.Name] = a }

	for _, name := range []string{"experienceID", "ProjectCode", "StaffID"} {
		a := attr(t, name, Integer)
		a.Identifier = true
		a.Filterable = name != "experienceID"
		add(a)
	}

	hrs := attr(t, "TotalHrs", Decimal)
	hrs.Mutable = true
	add(hrs)

	exp := attr(t, "experience", Text)
	exp.Mutable = true
	add(exp)

	return m
}

func keywordAttributes() map[string]Attribute {
	const t = "keywords"
	m := map[string]Attribute{}
	for _, name := range []string{"KeywordCode", "Keyword", "KeywordGroupCode"} {
		a := attr(t, name, Text)
		a.Filterable = true
		m[name] = a
	}
	return m
}

func rangeAttr(table, name, column, op string) Attribute {
	return Attribute{Name: name, Table: table, Column: column, Type: Date, Op: op, Filterable: true}
}

// Lookup возвращает описание атрибута сущности.
// Для Portfolio атрибут ищется среди проектных, затем среди штатных.
func Lookup(entity Entity, name string) (Attribute, bool) {
	if entity == Portfolio {
		if a, ok := registry[Project][name]; ok {
			return a, true
		}
		a, ok := registry[Staff][name]
		return a, ok
	}
	a, ok := registry[entity][name]
	return a, ok
}

// Filterable возвращает атрибут, если он допустим в фильтре чтения
func Filterable(entity Entity, name string) (Attribute, bool) {
	a, ok := Lookup(entity, name)
	if !ok || !a.Filterable {
		return Attribute{}, false
	}
	return a, true
}

// TypeOf возвращает тип значения атрибута
func TypeOf(entity Entity, name string) (Type, bool) {
	a, ok := Lookup(entity, name)
	if !ok {
		return 0, false
	}
	return a.Type, true
}
