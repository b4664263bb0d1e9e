package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/dto"
)

// Тексты ответов - часть контракта API
const (
	msgWelcome           = "Welcome to the staff portfolio API!"
	msgBadRequest        = "bad request to db!!!"
	msgStaffNotFound     = "StaffID not found"
	msgProjectNotFound   = "ProjectCode not found"
	msgMethodNotAllowed  = "method not allowed!!!"
	msgPathNotFound      = "Path not found! :-("
	msgNoProjects        = "No projects provided!!!"
	msgNoStaffID         = "No staff id provided!!!"
	msgMissingAttributes = "Missing attributes!!!"
	msgNoTimeBooked      = "No staff time booked to project - use add experience instead!!!"
	msgNoFiles           = "no files provided"
	msgInternal          = "internal server error"
)

func respondJSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondMsg(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	respondJSON(logger, w, status, dto.ErrorResponse{Msg: msg})
}

// handleServiceError переводит ошибки доменного слоя в статусы и
// тексты контракта. Детали некорректного запроса наружу не выходят,
// только в отладочный лог.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownAttribute):
		logger.Debug("rejected request", slog.Any("error", err))
		respondMsg(logger, w, http.StatusBadRequest, msgBadRequest)
	case errors.Is(err, domain.ErrStaffNotFound):
		respondMsg(logger, w, http.StatusNotFound, msgStaffNotFound)
	case errors.Is(err, domain.ErrProjectNotFound):
		respondMsg(logger, w, http.StatusNotFound, msgProjectNotFound)
	case errors.Is(err, domain.ErrNoStaffID):
		respondMsg(logger, w, http.StatusNotFound, msgNoStaffID)
	case errors.Is(err, domain.ErrNoProjects):
		respondMsg(logger, w, http.StatusBadRequest, msgNoProjects)
	case errors.Is(err, domain.ErrMissingAttributes):
		respondMsg(logger, w, http.StatusNotFound, msgMissingAttributes)
	case errors.Is(err, domain.ErrNoTimeBooked):
		respondMsg(logger, w, http.StatusNotFound, msgNoTimeBooked)
	case errors.Is(err, domain.ErrImmutableField):
		logger.Debug("rejected request", slog.Any("error", err))
		respondMsg(logger, w, http.StatusUnprocessableEntity, msgBadRequest)
	case errors.Is(err, domain.ErrNoFiles):
		respondMsg(logger, w, http.StatusBadRequest, msgNoFiles)
	default:
		logger.Error("internal error", slog.Any("error", err))
		respondMsg(logger, w, http.StatusInternalServerError, msgInternal)
	}
}

// queryParams разбирает строку запроса, считая разделителем пар
// только "&". Стандартный разбор отбрасывает пары с ";", а точка
// с запятой служит разделителем списка кодов в значении Keywords.
func queryParams(r *http.Request) url.Values {
	params := url.Values{}
	for _, pair := range strings.Split(r.URL.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		params.Add(key, value)
	}
	return params
}

// decodeBody разбирает тело запроса в произвольную карту; пустое тело -
// пустая карта
func decodeBody(r *http.Request) (map[string]any, error) {
	payload := map[string]any{}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return payload, nil
}

// saveUpload сохраняет загруженный файл в каталог изображений и
// возвращает публичный путь
func saveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Base(fh.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// firstUpload достаёт первый файл из multipart-формы
func firstUpload(r *http.Request) (*multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, domain.ErrNoFiles
	}
	if r.MultipartForm == nil {
		return nil, domain.ErrNoFiles
	}
	for _, headers := range r.MultipartForm.File {
		if len(headers) > 0 {
			return headers[0], nil
		}
	}
	return nil, domain.ErrNoFiles
}
