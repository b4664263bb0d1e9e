package repository

import (
	"context"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/query"
	"gorm.io/gorm"
)

// StaffAggregateRow - агрегат учёта времени одного сотрудника
type StaffAggregateRow struct {
	StaffID      int64   `gorm:"column:staff_id"`
	TotalHrs     float64 `gorm:"column:total_hrs"`
	ProjectCount int64   `gorm:"column:project_count"`
}

// ExperienceRepository определяет интерфейс для работы с учётом
// времени сотрудников по проектам, включая агрегирующие запросы
// портфолио
type ExperienceRepository interface {
	GetByPair(ctx context.Context, projectCode, staffID int64) (*domain.StaffExperience, error)
	Create(ctx context.Context, exp *domain.StaffExperience) error
	Patch(ctx context.Context, experienceID int64, updates map[string]any) (*domain.StaffExperience, error)
	Aggregate(ctx context.Context, f *query.Filter) ([]StaffAggregateRow, []int64, error)
	AggregateForProjects(ctx context.Context, codes []int64) ([]StaffAggregateRow, error)
	RowsForStaff(ctx context.Context, staffID int64, f *query.Filter) ([]domain.StaffExperience, error)
}

type experienceRepository struct {
	db *gorm.DB
}

// NewExperienceRepository создаёт новый экземпляр репозитория
func NewExperienceRepository(db *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) GetByPair(ctx context.Context, projectCode, staffID int64) (*domain.StaffExperience, error) {
	var exp domain.StaffExperience
	err := r.db.WithContext(ctx).
		First(&exp, `"ProjectCode" = ? AND "StaffID" = ?`, projectCode, staffID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoTimeBooked
		}
		return nil, err
	}
	return &exp, nil
}

func (r *experienceRepository) Create(ctx context.Context, exp *domain.StaffExperience) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

func (r *experienceRepository) Patch(ctx context.Context, experienceID int64, updates map[string]any) (*domain.StaffExperience, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&domain.StaffExperience{}).
			Where(`"experienceID" = ?`, experienceID).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrNoTimeBooked
		}
	}
	var exp domain.StaffExperience
	err := r.db.WithContext(ctx).First(&exp, `"experienceID" = ?`, experienceID).Error
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// portfolioJoin собирает базовый запрос портфолио: учёт времени с
// присоединёнными проектами и сотрудниками. Запрос строится заново
// при каждом вызове, потому что gorm-цепочки накапливают состояние.
func (r *experienceRepository) portfolioJoin(ctx context.Context, f *query.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("staff_experience").
		Joins(`JOIN "projects" ON "projects"."ProjectCode" = "staff_experience"."ProjectCode"`).
		Joins(`JOIN "staff_meta" ON "staff_meta"."StaffID" = "staff_experience"."StaffID"`)
	if f != nil {
		if !f.IncludeConfidential {
			q = q.Where(`"projects"."Confidential" = ?`, false)
		}
		q = f.Apply(q)
	} else {
		q = q.Where(`"projects"."Confidential" = ?`, false)
	}
	return q
}

// Aggregate возвращает по каждому сотруднику сумму часов и число
// проектов, прошедших фильтр, плюс сами коды проектов. Конфиденциальность
// применяется до агрегирования. Порядок сотрудников - по первой записи
// учёта времени, порядок кодов - возрастающий.
func (r *experienceRepository) Aggregate(ctx context.Context, f *query.Filter) ([]StaffAggregateRow, []int64, error) {
	rows := []StaffAggregateRow{}
	err := r.portfolioJoin(ctx, f).
		Select(`"staff_experience"."StaffID" AS staff_id, SUM("staff_experience"."TotalHrs") AS total_hrs, COUNT(DISTINCT "staff_experience"."ProjectCode") AS project_count`).
		Group(`"staff_experience"."StaffID"`).
		Order(`MIN("staff_experience"."experienceID") ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	codes := []int64{}
	err = r.portfolioJoin(ctx, f).
		Distinct(`"staff_experience"."ProjectCode"`).
		Order(`"staff_experience"."ProjectCode" ASC`).
		Pluck(`"staff_experience"."ProjectCode"`, &codes).Error
	if err != nil {
		return nil, nil, err
	}
	return rows, codes, nil
}

// AggregateForProjects агрегирует часы по явному списку кодов проектов.
// Порядок сотрудников - по возрастанию StaffID.
func (r *experienceRepository) AggregateForProjects(ctx context.Context, codes []int64) ([]StaffAggregateRow, error) {
	rows := []StaffAggregateRow{}
	if len(codes) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("staff_experience").
		Where(`"staff_experience"."ProjectCode" IN ?`, codes).
		Select(`"staff_experience"."StaffID" AS staff_id, SUM("staff_experience"."TotalHrs") AS total_hrs, COUNT(DISTINCT "staff_experience"."ProjectCode") AS project_count`).
		Group(`"staff_experience"."StaffID"`).
		Order(`"staff_experience"."StaffID" ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RowsForStaff возвращает записи учёта времени сотрудника по проектам,
// прошедшим фильтр, в порядке их появления
func (r *experienceRepository) RowsForStaff(ctx context.Context, staffID int64, f *query.Filter) ([]domain.StaffExperience, error) {
	rows := []domain.StaffExperience{}
	q := r.db.WithContext(ctx).
		Table("staff_experience").
		Joins(`JOIN "projects" ON "projects"."ProjectCode" = "staff_experience"."ProjectCode"`).
		Where(`"staff_experience"."StaffID" = ?`, staffID)
	if f != nil {
		if !f.IncludeConfidential {
			q = q.Where(`"projects"."Confidential" = ?`, false)
		}
		q = f.Apply(q)
	}
	err := q.
		Select(`"staff_experience".*`).
		Order(`"staff_experience"."experienceID" ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
