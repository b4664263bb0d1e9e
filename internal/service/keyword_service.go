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

// KeywordService определяет интерфейс бизнес-логики для таксономии
// ключевых слов
type KeywordService interface {
	List(ctx context.Context, groupCode string) ([]domain.Keyword, error)
	Groups(ctx context.Context) ([]domain.KeywordGroup, error)
	AllGrouped(ctx context.Context) (map[string]*dto.KeywordGroupEntry, error)
	GroupedForStaff(ctx context.Context, staffID int64, params url.Values) (map[string]*dto.KeywordGroupEntry, error)
	CodesForStaff(ctx context.Context, staffID int64, params url.Values) ([]string, error)
}

type keywordService struct {
	keywordRepo repository.KeywordRepository
	staffRepo   repository.StaffRepository
}

// NewKeywordService создаёт новый экземпляр сервиса
func NewKeywordService(keywordRepo repository.KeywordRepository, staffRepo repository.StaffRepository) KeywordService {
	return &keywordService{
		keywordRepo: keywordRepo,
		staffRepo:   staffRepo,
	}
}

// List возвращает ключевые слова, при непустом groupCode - только
// заданной группы
func (s *keywordService) List(ctx context.Context, groupCode string) ([]domain.Keyword, error) {
	return s.keywordRepo.List(ctx, groupCode)
}

func (s *keywordService) Groups(ctx context.Context) ([]domain.KeywordGroup, error) {
	return s.keywordRepo.Groups(ctx)
}

// AllGrouped возвращает всю таксономию, разложенную по группам
func (s *keywordService) AllGrouped(ctx context.Context) (map[string]*dto.KeywordGroupEntry, error) {
	keywords, err := s.keywordRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return s.grouped(ctx, keywords)
}

// GroupedForStaff возвращает ключевые слова проектов сотрудника,
// прошедших фильтр, разложенные по группам
func (s *keywordService) GroupedForStaff(ctx context.Context, staffID int64, params url.Values) (map[string]*dto.KeywordGroupEntry, error) {
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	f, err := query.Compile(schema.Project, params)
	if err != nil {
		return nil, err
	}
	keywords, err := s.keywordRepo.ForStaff(ctx, staffID, f)
	if err != nil {
		return nil, err
	}
	return s.grouped(ctx, keywords)
}

// CodesForStaff возвращает уникальные коды ключевых слов по проектам
// сотрудника, прошедшим фильтр, в порядке возрастания кода
func (s *keywordService) CodesForStaff(ctx context.Context, staffID int64, params url.Values) ([]string, error) {
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	f, err := query.Compile(schema.Project, params)
	if err != nil {
		return nil, err
	}
	keywords, err := s.keywordRepo.ForStaff(ctx, staffID, f)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		codes = append(codes, keyword.KeywordCode)
	}
	return codes, nil
}

// grouped раскладывает ключевые слова по группам; имя группы берётся
// из справочника групп
func (s *keywordService) grouped(ctx context.Context, keywords []domain.Keyword) (map[string]*dto.KeywordGroupEntry, error) {
	groups, err := s.keywordRepo.Groups(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(groups))
	for _, group := range groups {
		names[group.KeywordGroupCode] = group.KeywordGroupName
	}

	result := make(map[string]*dto.KeywordGroupEntry)
	for _, keyword := range keywords {
		entry, ok := result[keyword.KeywordGroupCode]
		if !ok {
			entry = &dto.KeywordGroupEntry{
				KeywordGroupName: names[keyword.KeywordGroupCode],
				Keywords:         []string{},
				KeywordCodes:     []string{},
			}
			result[keyword.KeywordGroupCode] = entry
		}
		entry.Keywords = append(entry.Keywords, keyword.Keyword)
		entry.KeywordCodes = append(entry.KeywordCodes, keyword.KeywordCode)
	}
	return result, nil
}
