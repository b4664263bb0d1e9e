package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/staff-portfolio-api/internal/middleware"
)

// Router настраивает маршруты API
type Router struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	staffHandler   *StaffHandler
	projectHandler *ProjectHandler
	keywordHandler *KeywordHandler
}

// NewRouter создаёт новый роутер
func NewRouter(
	staffHandler *StaffHandler,
	projectHandler *ProjectHandler,
	keywordHandler *KeywordHandler,
	logger *slog.Logger,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		logger:         logger,
		staffHandler:   staffHandler,
		projectHandler: projectHandler,
		keywordHandler: keywordHandler,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.mux.HandleFunc("/api", r.apiRouter)
	r.mux.HandleFunc("/api/", r.apiRouter)

	// Health check
	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.Recoverer(r.logger)(handler)

	return handler
}

// apiRouter разбирает путь под /api и раздаёт запросы хендлерам
func (r *Router) apiRouter(w http.ResponseWriter, req *http.Request) {
	path := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api"), "/")

	if path == "" {
		if req.Method == http.MethodGet {
			respondJSON(r.logger, w, http.StatusOK, apiDirectory)
			return
		}
		r.methodNotAllowed(w)
		return
	}

	parts := strings.Split(path, "/")
	switch parts[0] {
	case "info":
		r.infoRouter(w, req, parts)
	case "staff":
		r.staffRouter(w, req, parts)
	case "projects":
		r.projectsRouter(w, req, parts)
	case "project":
		r.projectRouter(w, req, parts)
	case "keywords":
		r.keywordsRouter(w, req, parts)
	default:
		r.notFound(w)
	}
}

func (r *Router) infoRouter(w http.ResponseWriter, req *http.Request, parts []string) {
	if len(parts) != 1 {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	r.projectHandler.Info(w, req)
}

// staffRouter обрабатывает /api/staff/...
func (r *Router) staffRouter(w http.ResponseWriter, req *http.Request, parts []string) {
	switch {
	case len(parts) == 2 && parts[1] == "login":
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		r.staffHandler.Login(w, req)

	case len(parts) == 2 && parts[1] == "meta":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		r.staffHandler.List(w, req)

	case len(parts) == 3 && parts[1] == "meta":
		switch req.Method {
		case http.MethodGet:
			r.staffHandler.GetByID(w, req)
		case http.MethodPatch:
			r.staffHandler.Patch(w, req)
		default:
			r.methodNotAllowed(w)
		}

	case len(parts) == 4 && parts[1] == "meta" && parts[3] == "image":
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		r.staffHandler.UploadImage(w, req)

	default:
		r.notFound(w)
	}
}

// projectsRouter обрабатывает /api/projects/...
func (r *Router) projectsRouter(w http.ResponseWriter, req *http.Request, parts []string) {
	switch {
	case len(parts) == 1:
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		r.projectHandler.List(w, req)

	case len(parts) == 2 && parts[1] == "staff":
		switch req.Method {
		case http.MethodGet:
			r.projectHandler.Portfolio(w, req)
		case http.MethodPost:
			r.projectHandler.PortfolioForList(w, req)
		default:
			r.methodNotAllowed(w)
		}

	case len(parts) == 3 && parts[1] == "staff":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		r.projectHandler.StaffProjects(w, req)

	case len(parts) == 3 && parts[1] == "keywords":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		r.projectHandler.StaffKeywords(w, req)

	default:
		r.notFound(w)
	}
}

// projectRouter обрабатывает /api/project/...
func (r *Router) projectRouter(w http.ResponseWriter, req *http.Request, parts []string) {
	switch {
	case len(parts) == 3 && parts[1] == "keywords":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		r.projectHandler.Keywords(w, req)

	case len(parts) == 3 && parts[1] == "staff":
		switch req.Method {
		case http.MethodPost:
			r.projectHandler.AddExperience(w, req)
		case http.MethodPatch:
			r.projectHandler.PatchExperience(w, req)
		default:
			r.methodNotAllowed(w)
		}

	case len(parts) == 2:
		switch req.Method {
		case http.MethodGet:
			r.projectHandler.GetByCode(w, req)
		case http.MethodPatch:
			r.projectHandler.Patch(w, req)
		default:
			r.methodNotAllowed(w)
		}

	case len(parts) == 3 && parts[2] == "image":
		switch req.Method {
		case http.MethodPost:
			r.projectHandler.UploadImage(w, req)
		case http.MethodDelete:
			r.projectHandler.ClearImages(w, req)
		default:
			r.methodNotAllowed(w)
		}

	default:
		r.notFound(w)
	}
}

// keywordsRouter обрабатывает /api/keywords/...
func (r *Router) keywordsRouter(w http.ResponseWriter, req *http.Request, parts []string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	switch {
	case len(parts) == 1:
		r.keywordHandler.List(w, req)
	case len(parts) == 2 && parts[1] == "allgroups":
		r.keywordHandler.AllGrouped(w, req)
	case len(parts) == 2 && parts[1] == "groups":
		r.keywordHandler.Groups(w, req)
	case len(parts) == 3 && parts[1] == "groups":
		r.keywordHandler.StaffGrouped(w, req)
	default:
		r.notFound(w)
	}
}

// apiDirectory - справочник конечных точек; отдаётся по GET /api
var apiDirectory = map[string]string{
	"GET /api":                         msgWelcome,
	"GET /api/info":                    "distinct values for dropdown filters",
	"POST /api/staff/login":            "credentials for a staff member",
	"GET /api/staff/meta":              "staff list with optional filters",
	"GET /api/staff/meta/{id}":         "one staff member",
	"PATCH /api/staff/meta/{id}":       "update mutable staff attributes",
	"POST /api/staff/meta/{id}/image":  "upload a staff profile image",
	"GET /api/projects":                "project list with optional filters",
	"GET /api/projects/staff":          "hours and project counts per staff member",
	"POST /api/projects/staff":         "hours per staff member for the listed projects",
	"GET /api/projects/staff/{id}":     "projects a staff member booked time to",
	"GET /api/projects/keywords/{id}":  "keyword codes across a staff member's projects",
	"GET /api/project/{code}":          "one project, optionally with booked time",
	"PATCH /api/project/{code}":        "update mutable project attributes",
	"GET /api/project/keywords/{code}": "keyword codes of a project",
	"POST /api/project/staff/{code}":   "book staff time to a project",
	"PATCH /api/project/staff/{code}":  "update booked staff time",
	"POST /api/project/{code}/image":   "add a project image",
	"DELETE /api/project/{code}/image": "clear project images",
	"GET /api/keywords":                "keyword rows, optionally for one group",
	"GET /api/keywords/allgroups":      "the whole taxonomy grouped",
	"GET /api/keywords/groups":         "keyword groups",
	"GET /api/keywords/groups/{id}":    "grouped keywords for a staff member",
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	respondMsg(r.logger, w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

func (r *Router) notFound(w http.ResponseWriter) {
	respondMsg(r.logger, w, http.StatusNotFound, msgPathNotFound)
}
