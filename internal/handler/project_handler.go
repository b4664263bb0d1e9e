package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/staff-portfolio-api/internal/dto"
	"github.com/staff-portfolio-api/internal/query"
	"github.com/staff-portfolio-api/internal/service"
)

// ProjectHandler обрабатывает запросы к проектам, портфолио и учёту
// времени
type ProjectHandler struct {
	projectService service.ProjectService
	keywordService service.KeywordService
	uploadDir      string
	logger         *slog.Logger
}

// NewProjectHandler создаёт новый экземпляр хендлера
func NewProjectHandler(
	projectService service.ProjectService,
	keywordService service.KeywordService,
	uploadDir string,
	logger *slog.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		keywordService: keywordService,
		uploadDir:      uploadDir,
		logger:         logger,
	}
}

// List обрабатывает GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context(), queryParams(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.ProjectsResponse{Projects: projects})
}

// Portfolio обрабатывает GET /api/projects/staff: агрегаты по всем
// сотрудникам, отработавшим на проектах, прошедших фильтр
func (h *ProjectHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.projectService.Portfolio(r.Context(), queryParams(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.StaffPortfolioResponse{StaffPortfolio: *portfolio})
}

// PortfolioForList обрабатывает POST /api/projects/staff: агрегаты
// по явному списку кодов проектов
func (h *ProjectHandler) PortfolioForList(w http.ResponseWriter, r *http.Request) {
	var req dto.ProjectListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMsg(h.logger, w, http.StatusBadRequest, msgBadRequest)
		return
	}
	list, err := h.projectService.HoursForProjects(r.Context(), req.Projects)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.StaffHoursResponse{StaffList: list})
}

// StaffProjects обрабатывает GET /api/projects/staff/{id}
func (h *ProjectHandler) StaffProjects(w http.ResponseWriter, r *http.Request) {
	id, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	basic, details, detailed, err := h.projectService.ProjectsForStaff(r.Context(), id, queryParams(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	if detailed {
		respondJSON(h.logger, w, http.StatusOK, dto.StaffProjectDetailsResponse{Projects: details})
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.BookingRowsResponse{Projects: basic})
}

// StaffKeywords обрабатывает GET /api/projects/keywords/{id}: плоский
// отсортированный список уникальных кодов по проектам сотрудника
func (h *ProjectHandler) StaffKeywords(w http.ResponseWriter, r *http.Request) {
	id, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	codes, err := h.keywordService.CodesForStaff(r.Context(), id, queryParams(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.KeywordCodesResponse{Keywords: codes})
}

// GetByCode обрабатывает GET /api/project/{code}; при заданном StaffID
// проект дополняется строкой учёта времени этого сотрудника
func (h *ProjectHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	if raw := queryParams(r).Get("StaffID"); raw != "" {
		staffID, err := query.ParseID(raw)
		if err != nil {
			handleServiceError(h.logger, w, err)
			return
		}
		project, err := h.projectService.GetWithExperience(r.Context(), code, staffID)
		if err != nil {
			handleServiceError(h.logger, w, err)
			return
		}
		respondJSON(h.logger, w, http.StatusOK, dto.ProjectWithExperienceResponse{Project: project})
		return
	}

	project, err := h.projectService.GetByCode(r.Context(), code)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.ProjectResponse{Project: project})
}

// Patch обрабатывает PATCH /api/project/{code}
func (h *ProjectHandler) Patch(w http.ResponseWriter, r *http.Request) {
	code, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	payload, err := decodeBody(r)
	if err != nil {
		respondMsg(h.logger, w, http.StatusBadRequest, msgBadRequest)
		return
	}
	project, err := h.projectService.Patch(r.Context(), code, payload)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.ProjectResponse{Project: project})
}

// Keywords обрабатывает GET /api/project/keywords/{code}
func (h *ProjectHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	code, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	project, err := h.projectService.GetByCode(r.Context(), code)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.KeywordCodesResponse{Keywords: project.Keywords})
}

// AddExperience обрабатывает POST /api/project/staff/{code}
func (h *ProjectHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	h.experience(w, r, h.projectService.AddExperience)
}

// PatchExperience обрабатывает PATCH /api/project/staff/{code}
func (h *ProjectHandler) PatchExperience(w http.ResponseWriter, r *http.Request) {
	h.experience(w, r, h.projectService.PatchExperience)
}

func (h *ProjectHandler) experience(
	w http.ResponseWriter,
	r *http.Request,
	apply service.ExperienceFunc,
) {
	code, err := query.ParseID(lastSegment(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	payload, err := decodeBody(r)
	if err != nil {
		respondMsg(h.logger, w, http.StatusBadRequest, msgBadRequest)
		return
	}
	params := queryParams(r)
	staffIDRaw := params.Get("StaffID")
	hasStaffID := params.Has("StaffID")

	exp, err := apply(r.Context(), code, staffIDRaw, hasStaffID, payload)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.ExperienceResponse{Experience: exp})
}

// UploadImage обрабатывает POST /api/project/{code}/image
func (h *ProjectHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	code, err := query.ParseID(segmentBefore(r, "image"))
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
	project, err := h.projectService.AddImage(r.Context(), code, imageURL)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.ProjectResponse{Project: project})
}

// ClearImages обрабатывает DELETE /api/project/{code}/image
func (h *ProjectHandler) ClearImages(w http.ResponseWriter, r *http.Request) {
	code, err := query.ParseID(segmentBefore(r, "image"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	project, err := h.projectService.ClearImages(r.Context(), code)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.ProjectResponse{Project: project})
}

// Info обрабатывает GET /api/info
func (h *ProjectHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.projectService.Info(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, dto.InfoResponse{DBInfo: *info})
}
