package repository

import (
	"context"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/query"
	"gorm.io/gorm"
)

// StaffRepository определяет интерфейс для работы с сотрудниками
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
	List(ctx context.Context, f *query.Filter) ([]domain.Staff, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Staff, error)
	Patch(ctx context.Context, id int64, updates map[string]any) (*domain.Staff, error)
	DistinctIDs(ctx context.Context) ([]int64, error)
}

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository создаёт новый экземпляр репозитория
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var staff domain.Staff
	err := r.db.WithContext(ctx).First(&staff, `"StaffID" = ?`, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, f *query.Filter) ([]domain.Staff, error) {
	staff := []domain.Staff{}
	q := r.db.WithContext(ctx).Model(&domain.Staff{})
	if f != nil {
		q = f.Apply(q)
	}
	err := q.Order(`"staff_meta"."StaffID" ASC`).Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Staff, error) {
	if len(ids) == 0 {
		return []domain.Staff{}, nil
	}
	var staff []domain.Staff
	err := r.db.WithContext(ctx).
		Where(`"StaffID" IN ?`, ids).
		Order(`"StaffID" ASC`).
		Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepository) Patch(ctx context.Context, id int64, updates map[string]any) (*domain.Staff, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&domain.Staff{}).
			Where(`"StaffID" = ?`, id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrStaffNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *staffRepository) DistinctIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Staff{}).
		Order(`"StaffID" ASC`).
		Pluck("StaffID", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
