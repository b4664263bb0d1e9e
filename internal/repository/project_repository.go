package repository

import (
	"context"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/query"
	"gorm.io/gorm"
)

// ProjectRepository определяет интерфейс для работы с проектами
type ProjectRepository interface {
	GetByCode(ctx context.Context, code int64) (*domain.Project, error)
	List(ctx context.Context, f *query.Filter) ([]domain.Project, error)
	ListByCodes(ctx context.Context, codes []int64) ([]domain.Project, error)
	Patch(ctx context.Context, code int64, updates map[string]any) (*domain.Project, error)
	CodesManagedBy(ctx context.Context, staffID int64) ([]int64, error)
	LoadKeywords(ctx context.Context, projects []domain.Project) error
	KeywordsFor(ctx context.Context, code int64) ([]string, error)
	DistinctCodes(ctx context.Context) ([]int64, error)
	DistinctStrings(ctx context.Context, column string) ([]string, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository создаёт новый экземпляр репозитория
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByCode(ctx context.Context, code int64) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, `"ProjectCode" = ?`, code).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// List возвращает проекты, прошедшие фильтр. Конфиденциальные проекты
// отсекаются до наложения остальных предикатов, если фильтр их не
// запросил явно.
func (r *projectRepository) List(ctx context.Context, f *query.Filter) ([]domain.Project, error) {
	projects := []domain.Project{}
	q := r.db.WithContext(ctx).Model(&domain.Project{})
	if f != nil {
		if !f.IncludeConfidential {
			q = q.Where(`"projects"."Confidential" = ?`, false)
		}
		q = f.Apply(q)
	}
	err := q.Order(`"projects"."ProjectCode" ASC`).Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListByCodes(ctx context.Context, codes []int64) ([]domain.Project, error) {
	if len(codes) == 0 {
		return []domain.Project{}, nil
	}
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where(`"ProjectCode" IN ?`, codes).
		Order(`"ProjectCode" ASC`).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Patch(ctx context.Context, code int64, updates map[string]any) (*domain.Project, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&domain.Project{}).
			Where(`"ProjectCode" = ?`, code).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrProjectNotFound
		}
	}
	return r.GetByCode(ctx, code)
}

func (r *projectRepository) CodesManagedBy(ctx context.Context, staffID int64) ([]int64, error) {
	var codes []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where(`"ProjectManagerID" = ?`, staffID).
		Order(`"ProjectCode" ASC`).
		Pluck("ProjectCode", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// LoadKeywords подтягивает коды ключевых слов для пачки проектов
// одним запросом к таблице связей
func (r *projectRepository) LoadKeywords(ctx context.Context, projects []domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	codes := make([]int64, 0, len(projects))
	for i := range projects {
		codes = append(codes, projects[i].ProjectCode)
	}

	var links []domain.ProjectKeyword
	err := r.db.WithContext(ctx).
		Where(`"ProjectCode" IN ?`, codes).
		Order(`"KeywordCode" ASC`).
		Find(&links).Error
	if err != nil {
		return err
	}

	byProject := make(map[int64][]string, len(projects))
	for _, link := range links {
		byProject[link.ProjectCode] = append(byProject[link.ProjectCode], link.KeywordCode)
	}
	for i := range projects {
		if kw, ok := byProject[projects[i].ProjectCode]; ok {
			projects[i].Keywords = kw
		} else {
			projects[i].Keywords = []string{}
		}
	}
	return nil
}

func (r *projectRepository) KeywordsFor(ctx context.Context, code int64) ([]string, error) {
	codes := []string{}
	err := r.db.WithContext(ctx).
		Model(&domain.ProjectKeyword{}).
		Where(`"ProjectCode" = ?`, code).
		Order(`"KeywordCode" ASC`).
		Pluck("KeywordCode", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *projectRepository) DistinctCodes(ctx context.Context) ([]int64, error) {
	var codes []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Order(`"ProjectCode" ASC`).
		Pluck("ProjectCode", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// DistinctStrings возвращает отсортированные уникальные значения
// текстовой колонки проектов; column берётся только из внутреннего
// фиксированного набора, не из пользовательского ввода
func (r *projectRepository) DistinctStrings(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Distinct(column).
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
