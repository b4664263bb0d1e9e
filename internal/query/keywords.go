package query

import (
	"strings"

	"github.com/staff-portfolio-api/internal/domain"
	"gorm.io/gorm"
)

// KeywordQueryType - семантика сопоставления списка кодов
type KeywordQueryType int

const (
	QueryAnd KeywordQueryType = iota // набор проекта - надмножество списка
	QueryOr                          // пересечение непусто
)

// ParseQueryType разбирает управляющий параметр; пустая строка - AND
func ParseQueryType(raw string) (KeywordQueryType, error) {
	switch {
	case raw == "" || strings.EqualFold(raw, "AND"):
		return QueryAnd, nil
	case strings.EqualFold(raw, "OR"):
		return QueryOr, nil
	default:
		return 0, domain.ErrUnknownAttribute
	}
}

// KeywordPredicate - предикат принадлежности над набором ключевых
// слов проекта
type KeywordPredicate struct {
	Codes     []string
	QueryType KeywordQueryType
}

// NewKeywordPredicate разбирает список кодов, разделённых ";".
// Пустые элементы отбрасываются; пустой список - предикат-пустышка.
func NewKeywordPredicate(list string, queryType KeywordQueryType) *KeywordPredicate {
	var codes []string
	for _, code := range strings.Split(list, ";") {
		code = strings.TrimSpace(code)
		if code != "" {
			codes = append(codes, code)
		}
	}
	return &KeywordPredicate{Codes: codes, QueryType: queryType}
}

// Matches - чистая теоретико-множественная проверка набора кодов
func (p *KeywordPredicate) Matches(set []string) bool {
	if p == nil || len(p.Codes) == 0 {
		return true
	}
	members := make(map[string]struct{}, len(set))
	for _, code := range set {
		members[code] = struct{}{}
	}
	switch p.QueryType {
	case QueryOr:
		for _, code := range p.Codes {
			if _, ok := members[code]; ok {
				return true
			}
		}
		return false
	default:
		for _, code := range p.Codes {
			if _, ok := members[code]; !ok {
				return false
			}
		}
		return true
	}
}

// Apply материализует предикат подзапросом к таблице связей
func (p *KeywordPredicate) Apply(db *gorm.DB) *gorm.DB {
	if p == nil || len(p.Codes) == 0 {
		return db
	}
	if p.QueryType == QueryOr {
		return db.Where(
			`"projects"."ProjectCode" IN (SELECT "ProjectCode" FROM "project_keywords" WHERE "KeywordCode" IN ?)`,
			p.Codes,
		)
	}
	return db.Where(
		`"projects"."ProjectCode" IN (SELECT "ProjectCode" FROM "project_keywords" WHERE "KeywordCode" IN ? GROUP BY "ProjectCode" HAVING COUNT(DISTINCT "KeywordCode") = ?)`,
		p.Codes, len(p.Codes),
	)
}
