package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/dto"
	"github.com/staff-portfolio-api/internal/query"
	"github.com/staff-portfolio-api/internal/service"
)

// StaffHandler обрабатывает запросы к сотрудникам
type StaffHandler struct {
	staffService service.StaffService
	uploadDir    string
	logger       *slog.Logger
}

// NewStaffHandler создаёт новый экземпляр хендлера
func NewStaffHandler(staffService service.StaffService, uploadDir string, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
		uploadDir:    uploadDir,
		logger:       logger,
	}
}

// List обрабатывает GET /api/staff/meta
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.staffService.List(r.Context(), queryParams(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	if staff == nil {
		staff = []domain.Staff{}
	}
	respondJSON(h.logger, w, http.StatusOK, dto.StaffListResponse{StaffMeta: staff})
}

// GetByID обрабатывает GET /api/staff/meta/{id}
func (h *StaffHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	staff, err := h.staffService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.StaffResponse{StaffMeta: staff})
}

// Patch обрабатывает PATCH /api/staff/meta/{id}
func (h *StaffHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	payload, err := decodeBody(r)
	if err != nil {
		respondMsg(h.logger, w, http.StatusBadRequest, msgBadRequest)
		return
	}
	staff, err := h.staffService.Patch(r.Context(), id, payload)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.StaffResponse{StaffMeta: staff})
}

// Login обрабатывает POST /api/staff/login. Идентификатор приходит
// в теле; отсутствие и нечисловое значение различаются по статусу.
func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		respondMsg(h.logger, w, http.StatusBadRequest, msgBadRequest)
		return
	}
	raw, ok := payload["StaffID"]
	if !ok || raw == nil {
		respondMsg(h.logger, w, http.StatusNotFound, msgNoStaffID)
		return
	}

	var id int64
	switch v := raw.(type) {
	case float64:
		id = int64(v)
	case string:
		id, err = query.ParseID(v)
		if err != nil {
			handleServiceError(h.logger, w, err)
			return
		}
	default:
		respondMsg(h.logger, w, http.StatusBadRequest, msgBadRequest)
		return
	}

	creds, err := h.staffService.Login(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.CredentialsResponse{Credentials: *creds})
}

// UploadImage обрабатывает POST /api/staff/meta/{id}/image
func (h *StaffHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := query.ParseID(segmentBefore(r, "image"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	fh, err := firstUpload(r)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	imageURL, err := saveUpload(h.uploadDir, fh)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	staff, err := h.staffService.SetImage(r.Context(), id, imageURL)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.StaffResponse{StaffMeta: staff})
}

// lastSegment возвращает последний сегмент пути запроса
func lastSegment(r *http.Request) string {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	return parts[len(parts)-1]
}

// segmentBefore возвращает сегмент пути, стоящий перед заданным
func segmentBefore(r *http.Request, name string) string {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for i := 1; i < len(parts); i++ {
		if parts[i] == name {
			return parts[i-1]
		}
	}
	return ""
}
