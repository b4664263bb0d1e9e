package repository

import (
	"context"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/query"
	"gorm.io/gorm"
)

// KeywordRepository определяет интерфейс для работы с таксономией
// ключевых слов
type KeywordRepository interface {
	List(ctx context.Context, groupCode string) ([]domain.Keyword, error)
	Groups(ctx context.Context) ([]domain.KeywordGroup, error)
	ForStaff(ctx context.Context, staffID int64, f *query.Filter) ([]domain.Keyword, error)
}

type keywordRepository struct {
	db *gorm.DB
}

// NewKeywordRepository создаёт новый экземпляр репозитория
func NewKeywordRepository(db *gorm.DB) KeywordRepository {
	return &keywordRepository{db: db}
}

// List возвращает ключевые слова, при непустом groupCode - только
// заданной группы
func (r *keywordRepository) List(ctx context.Context, groupCode string) ([]domain.Keyword, error) {
	keywords := []domain.Keyword{}
	q := r.db.WithContext(ctx).Model(&domain.Keyword{})
	if groupCode != "" {
		q = q.Where(`"KeywordGroupCode" = ?`, groupCode)
	}
	err := q.Order(`"KeywordCode" ASC`).Find(&keywords).Error
	if err != nil {
		return nil, err
	}
	return keywords, nil
}

func (r *keywordRepository) Groups(ctx context.Context) ([]domain.KeywordGroup, error) {
	groups := []domain.KeywordGroup{}
	err := r.db.WithContext(ctx).
		Order(`"KeywordGroupCode" ASC`).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ForStaff возвращает уникальные ключевые слова проектов сотрудника,
// прошедших фильтр
func (r *keywordRepository) ForStaff(ctx context.Context, staffID int64, f *query.Filter) ([]domain.Keyword, error) {
	keywords := []domain.Keyword{}
	q := r.db.WithContext(ctx).
		Table("keywords").
		Joins(`JOIN "project_keywords" ON "project_keywords"."KeywordCode" = "keywords"."KeywordCode"`).
		Joins(`JOIN "projects" ON "projects"."ProjectCode" = "project_keywords"."ProjectCode"`).
		Joins(`JOIN "staff_experience" ON "staff_experience"."ProjectCode" = "projects"."ProjectCode"`).
		Where(`"staff_experience"."StaffID" = ?`, staffID)
	if f != nil {
		if !f.IncludeConfidential {
			q = q.Where(`"projects"."Confidential" = ?`, false)
		}
		q = f.Apply(q)
	}
	err := q.
		Distinct(`"keywords".*`).
		Order(`"keywords"."KeywordCode" ASC`).
		Find(&keywords).Error
	if err != nil {
		return nil, err
	}
	return keywords, nil
}
