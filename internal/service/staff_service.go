package service

import (
	"context"
	"net/url"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/dto"
	"github.com/staff-portfolio-api/internal/query"
	"github.com/staff-portfolio-api/internal/repository"
	"github.com/staff-portfolio-api/internal/schema"
)

// StaffService определяет интерфейс бизнес-логики для сотрудников
type StaffService interface {
	List(ctx context.Context, params url.Values) ([]domain.Staff, error)
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
	Patch(ctx context.Context, id int64, payload map[string]any) (*domain.Staff, error)
	Login(ctx context.Context, id int64) (*dto.Credentials, error)
	SetImage(ctx context.Context, id int64, imageURL string) (*domain.Staff, error)
}

type staffService struct {
	staffRepo   repository.StaffRepository
	projectRepo repository.ProjectRepository
}

// NewStaffService создаёт новый экземпляр сервиса
func NewStaffService(staffRepo repository.StaffRepository, projectRepo repository.ProjectRepository) StaffService {
	return &staffService{
		staffRepo:   staffRepo,
		projectRepo: projectRepo,
	}
}

func (s *staffService) List(ctx context.Context, params url.Values) ([]domain.Staff, error) {
	f, err := query.Compile(schema.Staff, params)
	if err != nil {
		return nil, err
	}
	return s.staffRepo.List(ctx, f)
}

func (s *staffService) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	return s.staffRepo.GetByID(ctx, id)
}

func (s *staffService) Patch(ctx context.Context, id int64, payload map[string]any) (*domain.Staff, error) {
	// Сначала адресат, затем тело: патч по незнакомому сотруднику -
	// "не найдено", даже если тело тоже некорректно
	if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	updates, err := query.ValidatePatch(schema.Staff, payload)
	if err != nil {
		return nil, err
	}
	return s.staffRepo.Patch(ctx, id, updates)
}

// Login возвращает учётные данные сотрудника: грейд и список проектов,
// которыми он управляет
func (s *staffService) Login(ctx context.Context, id int64) (*dto.Credentials, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	managed, err := s.projectRepo.CodesManagedBy(ctx, id)
	if err != nil {
		return nil, err
	}
	if managed == nil {
		managed = []int64{}
	}
	return &dto.Credentials{
		StaffID:           staff.StaffID,
		GradeLevel:        staff.GradeLevel,
		ProjectManagerFor: managed,
	}, nil
}

func (s *staffService) SetImage(ctx context.Context, id int64, imageURL string) (*domain.Staff, error) {
	if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.staffRepo.Patch(ctx, id, map[string]any{"imgURL": imageURL})
}
