package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/dto"
	"github.com/staff-portfolio-api/internal/query"
	"github.com/staff-portfolio-api/internal/repository"
	"github.com/staff-portfolio-api/internal/schema"
)

// ExperienceFunc - общая сигнатура операций над записью учёта времени
type ExperienceFunc func(ctx context.Context, code int64, staffIDRaw string, hasStaffID bool, payload map[string]any) (*domain.StaffExperience, error)

// ProjectService определяет интерфейс бизнес-логики для проектов,
// портфолио и учёта времени
type ProjectService interface {
	List(ctx context.Context, params url.Values) ([]domain.Project, error)
	GetByCode(ctx context.Context, code int64) (*domain.Project, error)
	GetWithExperience(ctx context.Context, code, staffID int64) (*dto.ProjectWithExperience, error)
	Patch(ctx context.Context, code int64, payload map[string]any) (*domain.Project, error)
	Portfolio(ctx context.Context, params url.Values) (*dto.StaffPortfolio, error)
	HoursForProjects(ctx context.Context, codes []int64) ([]dto.StaffHours, error)
	ProjectsForStaff(ctx context.Context, staffID int64, params url.Values) ([]dto.BookingRow, []dto.StaffProjectDetail, bool, error)
	AddExperience(ctx context.Context, code int64, staffIDRaw string, hasStaffID bool, payload map[string]any) (*domain.StaffExperience, error)
	PatchExperience(ctx context.Context, code int64, staffIDRaw string, hasStaffID bool, payload map[string]any) (*domain.StaffExperience, error)
	AddImage(ctx context.Context, code int64, imageURL string) (*domain.Project, error)
	ClearImages(ctx context.Context, code int64) (*domain.Project, error)
	Info(ctx context.Context) (*dto.DBInfo, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	staffRepo   repository.StaffRepository
	expRepo     repository.ExperienceRepository
	validator   *validator.Validate
}

// NewProjectService создаёт новый экземпляр сервиса
func NewProjectService(
	projectRepo repository.ProjectRepository,
	staffRepo repository.StaffRepository,
	expRepo repository.ExperienceRepository,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		staffRepo:   staffRepo,
		expRepo:     expRepo,
		validator:   validator.New(),
	}
}

func (s *projectService) List(ctx context.Context, params url.Values) ([]domain.Project, error) {
	f, err := query.Compile(schema.Project, params)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.LoadKeywords(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *projectService) GetByCode(ctx context.Context, code int64) (*domain.Project, error) {
	project, err := s.projectRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	keywords, err := s.projectRepo.KeywordsFor(ctx, code)
	if err != nil {
		return nil, err
	}
	project.Keywords = keywords
	return project, nil
}

// GetWithExperience возвращает проект вместе со строкой учёта времени
// заданного сотрудника
func (s *projectService) GetWithExperience(ctx context.Context, code, staffID int64) (*dto.ProjectWithExperience, error) {
	project, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	exp, err := s.expRepo.GetByPair(ctx, code, staffID)
	if err != nil {
		return nil, err
	}
	return &dto.ProjectWithExperience{
		Project:      *project,
		StaffID:      exp.StaffID,
		TotalHrs:     exp.TotalHrs,
		Experience:   exp.Experience,
		ExperienceID: exp.ExperienceID,
	}, nil
}

func (s *projectService) Patch(ctx context.Context, code int64, payload map[string]any) (*domain.Project, error) {
	if _, err := s.projectRepo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	updates, err := query.ValidatePatch(schema.Project, payload)
	if err != nil {
		return nil, err
	}
	// Длинное имя проекта хранится в верхнем регистре
	if name, ok := updates["JobNameLong"].(string); ok {
		updates["JobNameLong"] = strings.ToUpper(name)
	}
	return s.patchAndReload(ctx, code, updates)
}

// Portfolio агрегирует часы и число проектов по каждому сотруднику,
// отработавшему на проектах, прошедших фильтр
func (s *projectService) Portfolio(ctx context.Context, params url.Values) (*dto.StaffPortfolio, error) {
	f, err := query.Compile(schema.Portfolio, params)
	if err != nil {
		return nil, err
	}
	rows, codes, err := s.expRepo.Aggregate(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StaffID)
	}
	staff, err := s.staffRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Staff, len(staff))
	for _, member := range staff {
		byID[member.StaffID] = member
	}

	list := make([]dto.StaffAggregate, 0, len(rows))
	for _, row := range rows {
		member, ok := byID[row.StaffID]
		if !ok {
			continue
		}
		list = append(list, dto.StaffAggregate{
			Staff:        member,
			TotalHrs:     row.TotalHrs,
			ProjectCount: row.ProjectCount,
		})
	}
	return &dto.StaffPortfolio{StaffList: list, Projects: codes}, nil
}

// HoursForProjects агрегирует часы по явному списку кодов проектов
func (s *projectService) HoursForProjects(ctx context.Context, codes []int64) ([]dto.StaffHours, error) {
	if len(codes) == 0 {
		return nil, domain.ErrNoProjects
	}
	rows, err := s.expRepo.AggregateForProjects(ctx, codes)
	if err != nil {
		return nil, err
	}
	list := make([]dto.StaffHours, 0, len(rows))
	for _, row := range rows {
		list = append(list, dto.StaffHours{
			StaffID:      row.StaffID,
			TotalHrs:     row.TotalHrs,
			ProjectCount: row.ProjectCount,
		})
	}
	return list, nil
}

// ProjectsForStaff возвращает проекты сотрудника: либо базовые строки
// учёта времени, либо детализированные с атрибутами проектов.
// Любой действующий фильтр принудительно включает детализацию,
// иначе условия по атрибутам проекта было бы не к чему применять.
func (s *projectService) ProjectsForStaff(ctx context.Context, staffID int64, params url.Values) ([]dto.BookingRow, []dto.StaffProjectDetail, bool, error) {
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, nil, false, err
	}
	f, err := query.Compile(schema.Project, params)
	if err != nil {
		return nil, nil, false, err
	}
	detailed := f.ShowDetails || f.Active()

	rows, err := s.expRepo.RowsForStaff(ctx, staffID, f)
	if err != nil {
		return nil, nil, false, err
	}

	if !detailed {
		basic := make([]dto.BookingRow, 0, len(rows))
		for _, row := range rows {
			basic = append(basic, dto.BookingRow{
				ExperienceID: row.ExperienceID,
				ProjectCode:  row.ProjectCode,
				StaffID:      row.StaffID,
				TotalHrs:     row.TotalHrs,
				Experience:   row.Experience,
			})
		}
		return basic, nil, false, nil
	}

	codes := make([]int64, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.ProjectCode)
	}
	projects, err := s.projectRepo.ListByCodes(ctx, codes)
	if err != nil {
		return nil, nil, false, err
	}
	if err := s.projectRepo.LoadKeywords(ctx, projects); err != nil {
		return nil, nil, false, err
	}
	byCode := make(map[int64]domain.Project, len(projects))
	for _, project := range projects {
		byCode[project.ProjectCode] = project
	}

	details := make([]dto.StaffProjectDetail, 0, len(rows))
	for _, row := range rows {
		project, ok := byCode[row.ProjectCode]
		if !ok {
			continue
		}
		details = append(details, dto.StaffProjectDetail{
			ExperienceID: row.ExperienceID,
			StaffID:      row.StaffID,
			TotalHrs:     row.TotalHrs,
			Experience:   row.Experience,
			Project:      project,
		})
	}
	return nil, details, true, nil
}

// resolveExperienceTarget проверяет адресатов записи учёта времени
// в фиксированном порядке: проект, наличие StaffID, сам сотрудник
func (s *projectService) resolveExperienceTarget(ctx context.Context, code int64, staffIDRaw string, hasStaffID bool) (int64, error) {
	if _, err := s.projectRepo.GetByCode(ctx, code); err != nil {
		return 0, err
	}
	if !hasStaffID {
		return 0, domain.ErrNoStaffID
	}
	staffID, err := query.ParseID(staffIDRaw)
	if err != nil {
		return 0, err
	}
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return 0, err
	}
	return staffID, nil
}

// AddExperience создаёт запись учёта времени сотрудника по проекту.
// Оба атрибута обязательны; по уже существующей паре запись
// дополняется как при патче.
func (s *projectService) AddExperience(ctx context.Context, code int64, staffIDRaw string, hasStaffID bool, payload map[string]any) (*domain.StaffExperience, error) {
	staffID, err := s.resolveExperienceTarget(ctx, code, staffIDRaw, hasStaffID)
	if err != nil {
		return nil, err
	}
	updates, err := query.ValidatePatch(schema.Experience, payload)
	if err != nil {
		return nil, err
	}
	// По уже существующей паре добавление работает как патч
	existing, err := s.expRepo.GetByPair(ctx, code, staffID)
	if err == nil {
		return s.expRepo.Patch(ctx, existing.ExperienceID, updates)
	}
	if err != domain.ErrNoTimeBooked {
		return nil, err
	}

	// Для новой записи обязательны оба атрибута
	var req dto.ExperienceCreateRequest
	if hrs, ok := updates["TotalHrs"].(float64); ok {
		req.TotalHrs = &hrs
	}
	if note, ok := updates["experience"].(string); ok {
		req.Experience = &note
	}
	if err := s.validator.Struct(&req); err != nil {
		return nil, domain.ErrMissingAttributes
	}

	exp := &domain.StaffExperience{
		ProjectCode: code,
		StaffID:     staffID,
		TotalHrs:    *req.TotalHrs,
		Experience:  req.Experience,
	}
	if err := s.expRepo.Create(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// PatchExperience изменяет существующую запись учёта времени
func (s *projectService) PatchExperience(ctx context.Context, code int64, staffIDRaw string, hasStaffID bool, payload map[string]any) (*domain.StaffExperience, error) {
	staffID, err := s.resolveExperienceTarget(ctx, code, staffIDRaw, hasStaffID)
	if err != nil {
		return nil, err
	}
	updates, err := query.ValidatePatch(schema.Experience, payload)
	if err != nil {
		return nil, err
	}
	existing, err := s.expRepo.GetByPair(ctx, code, staffID)
	if err != nil {
		return nil, err
	}
	return s.expRepo.Patch(ctx, existing.ExperienceID, updates)
}

// AddImage дописывает изображение к списку изображений проекта
func (s *projectService) AddImage(ctx context.Context, code int64, imageURL string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	images := append(domain.StringList{}, project.ImgURL...)
	images = append(images, imageURL)
	return s.patchAndReload(ctx, code, map[string]any{"imgURL": images})
}

// ClearImages очищает список изображений проекта
func (s *projectService) ClearImages(ctx context.Context, code int64) (*domain.Project, error) {
	if _, err := s.projectRepo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.patchAndReload(ctx, code, map[string]any{"imgURL": domain.StringList{}})
}

// patchAndReload применяет обновления и возвращает проект с набором
// ключевых слов
func (s *projectService) patchAndReload(ctx context.Context, code int64, updates map[string]any) (*domain.Project, error) {
	project, err := s.projectRepo.Patch(ctx, code, updates)
	if err != nil {
		return nil, err
	}
	keywords, err := s.projectRepo.KeywordsFor(ctx, code)
	if err != nil {
		return nil, err
	}
	project.Keywords = keywords
	return project, nil
}

// Info собирает справочные значения каталога для построения фильтров
func (s *projectService) Info(ctx context.Context) (*dto.DBInfo, error) {
	info := &dto.DBInfo{}
	var err error

	if info.ProjectCode, err = s.projectRepo.DistinctCodes(ctx); err != nil {
		return nil, err
	}
	columns := []struct {
		column string
		target *[]string
	}{
		{`"ClientName"`, &info.ClientName},
		{`"CountryName"`, &info.CountryName},
		{`"BusinessName"`, &info.BusinessName},
		{`"Town"`, &info.Town},
		{`"State"`, &info.State},
	}
	for _, c := range columns {
		if *c.target, err = s.projectRepo.DistinctStrings(ctx, c.column); err != nil {
			return nil, err
		}
	}
	if info.StaffID, err = s.staffRepo.DistinctIDs(ctx); err != nil {
		return nil, err
	}
	return info, nil
}
