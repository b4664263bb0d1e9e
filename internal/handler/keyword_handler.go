package handler

import (
	"log/slog"
	"net/http"

	"github.com/staff-portfolio-api/internal/dto"
	"github.com/staff-portfolio-api/internal/query"
	"github.com/staff-portfolio-api/internal/service"
)

// KeywordHandler обрабатывает запросы к таксономии ключевых слов
type KeywordHandler struct {
	keywordService service.KeywordService
	logger         *slog.Logger
}

// NewKeywordHandler создаёт новый экземпляр хендлера
func NewKeywordHandler(keywordService service.KeywordService, logger *slog.Logger) *KeywordHandler {
	return &KeywordHandler{
		keywordService: keywordService,
		logger:         logger,
	}
}

// List обрабатывает GET /api/keywords; параметр KeywordGroupCode
// сужает выдачу до одной группы
func (h *KeywordHandler) List(w http.ResponseWriter, r *http.Request) {
	groupCode := queryParams(r).Get("KeywordGroupCode")
	keywords, err := h.keywordService.List(r.Context(), groupCode)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.KeywordRowsResponse{Keywords: keywords})
}

// AllGrouped обрабатывает GET /api/keywords/allgroups
func (h *KeywordHandler) AllGrouped(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.keywordService.AllGrouped(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.GroupedKeywordsResponse{Keywords: grouped})
}

// Groups обрабатывает GET /api/keywords/groups
func (h *KeywordHandler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.keywordService.Groups(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.KeywordGroupsResponse{KeywordGroups: groups})
}

// StaffGrouped обрабатывает GET /api/keywords/groups/{StaffID}:
// ключевые слова проектов сотрудника, разложенные по группам
func (h *KeywordHandler) StaffGrouped(w http.ResponseWriter, r *http.Request) {
	id, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	grouped, err := h.keywordService.GroupedForStaff(r.Context(), id, queryParams(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.GroupedKeywordsResponse{Keywords: grouped})
}
