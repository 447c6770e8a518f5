package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"qadashboard/internal/domain"
	"qadashboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Authenticator checks admin credentials presented with HTTP basic auth.
type Authenticator interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

type Handler struct {
	service service.Service
	auth    Authenticator
	logger  *zap.Logger
}

func NewHandler(svc service.Service, auth Authenticator, logger *zap.Logger) *Handler {
	return &Handler{
		service: svc,
		auth:    auth,
		logger:  logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/developers", h.ListDevelopers)
	r.Get("/reports/{developerID}", h.DeveloperReport)
	r.Get("/summary", h.TeamSummary)
	r.Get("/health", h.Health)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Post("/developers", h.CreateDeveloper)
		r.Patch("/developers/{developerID}", h.UpdateDeveloper)
		r.Delete("/developers/{developerID}", h.DeleteDeveloper)

		r.Post("/requirements", h.CreateRequirement)
		r.Get("/requirements/{requirementID}", h.GetRequirement)
		r.Put("/requirements/{requirementID}", h.UpdateRequirement)
		r.Delete("/requirements/{requirementID}", h.DeleteRequirement)
	})

	return r
}

func (h *Handler) ListDevelopers(w http.ResponseWriter, r *http.Request) {
	devs, err := h.service.ListDevelopers(r.Context())
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	result := make([]developerPayload, 0, len(devs))
	for _, dev := range devs {
		result = append(result, mapDeveloper(dev))
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) DeveloperReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "developerID")
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := parseOptionalDate("start_date", optionalParam(query.Get("start_date")))
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	to, err := parseOptionalDate("end_date", optionalParam(query.Get("end_date")))
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	report, err := h.service.DeveloperReport(r.Context(), id, domain.DateRange{From: from, To: to})
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapReport(report))
}

func (h *Handler) TeamSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TeamSummary(r.Context())
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	result := make([]summaryRowPayload, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapSummaryRow(row))
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateDeveloper(w http.ResponseWriter, r *http.Request) {
	var req developerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	dev, err := req.toDomain()
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	created, err := h.service.CreateDeveloper(r.Context(), dev)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"developer": mapDeveloper(created),
	})
}

func (h *Handler) UpdateDeveloper(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "developerID")
	if !ok {
		return
	}

	var req updateDeveloperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	changes, err := req.toChanges()
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	updated, err := h.service.UpdateDeveloper(r.Context(), id, changes)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"developer": mapDeveloper(updated),
	})
}

func (h *Handler) DeleteDeveloper(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "developerID")
	if !ok {
		return
	}

	if err := h.service.DeleteDeveloper(r.Context(), id); err != nil {
		h.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequirement(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateRequirement(r.Context(), req)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"requirement": mapRequirement(created),
	})
}

func (h *Handler) GetRequirement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "requirementID")
	if !ok {
		return
	}

	req, err := h.service.GetRequirement(r.Context(), id)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"requirement": mapRequirement(req),
	})
}

func (h *Handler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "requirementID")
	if !ok {
		return
	}

	req, ok := decodeRequirement(w, r)
	if !ok {
		return
	}
	req.ID = id

	updated, err := h.service.UpdateRequirement(r.Context(), req)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"requirement": mapRequirement(updated),
	})
}

func (h *Handler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "requirementID")
	if !ok {
		return
	}

	if err := h.service.DeleteRequirement(r.Context(), id); err != nil {
		h.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Health(r.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "UNHEALTHY", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrEmailExists):
		respondError(w, http.StatusConflict, "EMAIL_EXISTS", "developer email already exists")
	case errors.Is(err, domain.ErrTicketExists):
		respondError(w, http.StatusConflict, "TICKET_EXISTS", "jira ticket already exists")
	case errors.Is(err, domain.ErrDeveloperNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "developer not found")
	case errors.Is(err, domain.ErrRequirementNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "requirement not found")
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func decodeRequirement(w http.ResponseWriter, r *http.Request) (domain.Requirement, bool) {
	var body requirementRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return domain.Requirement{}, false
	}

	if err := body.validate(); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return domain.Requirement{}, false
	}

	req, err := body.toDomain()
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return domain.Requirement{}, false
	}
	return req, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id")
		return 0, false
	}
	return id, true
}

func optionalParam(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
