// Package query - компилятор динамических фильтров и валидатор мутаций.
// Произвольная карта "атрибут → сырое значение" превращается в проверенный
// список предикатов по статическому реестру схемы; компиляция тотальна:
// либо полный список предикатов, либо одна классифицированная ошибка.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/schema"
	"gorm.io/gorm"
)

// Зарезервированные управляющие параметры: вырезаются из карты
// до валидации атрибутов
const (
	ParamIncludeConfidential = "includeConfidential"
	ParamKeywordQueryType    = "KeywordQueryType"
	ParamShowDetails         = "showDetails"
)

// Predicate - один проверенный предикат фильтра
type Predicate struct {
	Table  string
	Column string
	Op     string
	Value  any
}

// Filter - результат компиляции карты параметров
type Filter struct {
	Predicates          []Predicate
	Keywords            *KeywordPredicate
	IncludeConfidential bool
	ShowDetails         bool
}

// Active сообщает, сужает ли фильтр результат (для эскалации детализации)
func (f *Filter) Active() bool {
	return len(f.Predicates) > 0 || (f.Keywords != nil && len(f.Keywords.Codes) > 0)
}

// Apply накладывает предикаты на запрос
func (f *Filter) Apply(db *gorm.DB) *gorm.DB {
	for _, p := range f.Predicates {
		db = db.Where(fmt.Sprintf("%q.%q %s ?", p.Table, p.Column, p.Op), p.Value)
	}
	if f.Keywords != nil {
		db = f.Keywords.Apply(db)
	}
	return db
}

// Compile проверяет карту параметров по реестру схемы и собирает фильтр.
// Неизвестный атрибут и значение неверного типа неразличимы для вызывающей
// стороны: и то и другое - ErrUnknownAttribute.
func Compile(entity schema.Entity, params url.Values) (*Filter, error) {
	f := &Filter{ShowDetails: true}

	if raw := params.Get(ParamIncludeConfidential); raw != "" {
		v, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		f.IncludeConfidential = v
	}
	if raw := params.Get(ParamShowDetails); raw != "" {
		v, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		f.ShowDetails = v
	}
	queryType, err := ParseQueryType(params.Get(ParamKeywordQueryType))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(params))
	for name := range params {
		switch name {
		case ParamIncludeConfidential, ParamKeywordQueryType, ParamShowDetails:
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		attr, ok := schema.Filterable(entity, name)
		if !ok {
			return nil, fmt.Errorf("attribute %q: %w", name, domain.ErrUnknownAttribute)
		}
		raw := params.Get(name)

		if attr.Type == schema.KeywordList {
			f.Keywords = NewKeywordPredicate(raw, queryType)
			continue
		}

		value, err := coerceFilterValue(attr.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		f.Predicates = append(f.Predicates, Predicate{
			Table:  attr.Table,
			Column: attr.Column,
			Op:     attr.Op,
			Value:  value,
		})
	}

	return f, nil
}

func coerceFilterValue(t schema.Type, raw string) (any, error) {
	switch t {
	case schema.Integer:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.Decimal:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.Date:
		v, err := parseDate(raw)
		if err != nil {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.Boolean:
		return parseBool(raw)
	default:
		return raw, nil
	}
}

func parseBool(raw string) (bool, error) {
	switch {
	case strings.EqualFold(raw, "true"):
		return true, nil
	case strings.EqualFold(raw, "false"):
		return false, nil
	default:
		return false, domain.ErrUnknownAttribute
	}
}

func parseDate(raw string) (time.Time, error) {
	if v, err := time.Parse("2006-01-02", raw); err == nil {
		return v, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// ParseID приводит строковый идентификатор из пути или параметра
// к целому; нечисловое значение - та же ошибка, что неизвестный фильтр
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrUnknownAttribute
	}
	return id, nil
}
