// Package httpapi exposes the course catalog and assessment sessions over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/p-n-ai/pai-course/internal/assessment"
	"github.com/p-n-ai/pai-course/internal/catalog"
	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/grading"
)

const (
	maxBodyBytes = 64 << 10
	checkTimeout = 2 * time.Second
)

// CheckFunc reports whether a backing dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Config holds dependencies for the HTTP handler.
type Config struct {
	Catalog *catalog.Catalog
	Service *assessment.Service
	// Checks are run by /readyz, keyed by dependency name.
	Checks map[string]CheckFunc
}

type server struct {
	catalog *catalog.Catalog
	service *assessment.Service
	checks  map[string]CheckFunc
}

// NewHandler builds the router with all routes registered.
func NewHandler(cfg Config) http.Handler {
	s := &server{
		catalog: cfg.Catalog,
		service: cfg.Service,
		checks:  cfg.Checks,
	}
	if s.service == nil {
		s.service = assessment.NewService(assessment.ServiceConfig{Catalog: cfg.Catalog})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /v1/lessons", s.handleListLessons)
	mux.HandleFunc("GET /v1/lessons/{id}", s.handleGetLesson)
	mux.HandleFunc("GET /v1/months", s.handleMonths)
	mux.HandleFunc("GET /v1/catalog.xlsx", s.handleExport)

	mux.HandleFunc("POST /v1/lessons/{id}/sessions", s.handleStartSession)
	mux.HandleFunc("GET /v1/lessons/{id}/live", s.handleLive)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)

	return logRequests(mux)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{
		"status":      "ready",
		"lessons":     s.catalog.Len(),
		"fingerprint": s.catalog.Fingerprint(),
		"checks":      checks,
	}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}

func (s *server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	lessons := s.catalog.All()
	if m := r.URL.Query().Get("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month <= 0 {
			writeError(w, http.StatusBadRequest, "month must be a positive integer")
			return
		}
		lessons = s.catalog.ByMonth(month)
	}

	out := make([]lessonSummary, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, summarizeLesson(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewLesson(lesson))
}

func (s *server) handleMonths(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"months": s.catalog.Months()})
}

func (s *server) handleExport(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := catalog.WriteXLSX(&buf, s.catalog); err != nil {
		slog.Error("catalog export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lesson id must be an integer")
		return
	}

	view, err := s.service.Start(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	res, sum, err := s.service.Submit(r.Context(), r.PathValue("id"), req.QuestionID, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Result: res, Summary: sum})
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) lessonFromPath(w http.ResponseWriter, r *http.Request) (content.Lesson, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lesson id must be an integer")
		return content.Lesson{}, false
	}
	lesson, ok := s.catalog.Lesson(id)
	if !ok {
		writeError(w, http.StatusNotFound, "lesson not found")
		return content.Lesson{}, false
	}
	return lesson, true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, assessment.ErrLessonNotFound), errors.Is(err, assessment.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, assessment.ErrUnknownQuestion):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if errors.Is(err, grading.ErrInvalidQuestion) {
			slog.Error("question failed validation at grading time", "error", err)
		} else {
			slog.Error("request failed", "error", err)
		}
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
