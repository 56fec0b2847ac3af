// Package handler is the thin HTTP layer over the farmer service. It
// translates transport payloads to and from entities and maps domain error
// codes to status codes; no business rule lives here.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"plantas/internal/farmer/models"
	"plantas/internal/farmer/service"
	"plantas/internal/farmer/store"
	"plantas/internal/platform/metrics"
	"plantas/internal/platform/middleware"
	"plantas/pkg/domain"
	dErrors "plantas/pkg/errors"
)

// Service is the use-case surface the handler depends on.
type Service interface {
	Create(ctx context.Context, f *models.Farmer) (*models.Farmer, error)
	GetByDNI(ctx context.Context, raw string) (*models.Farmer, error)
	Update(ctx context.Context, rawDNI string, f *models.Farmer) (*models.Farmer, error)
	Delete(ctx context.Context, raw string) error
	List(ctx context.Context, limit, offset int) ([]*models.Farmer, error)
	Count(ctx context.Context) (int64, error)
	FindByLocation(ctx context.Context, filter store.LocationFilter) ([]*models.Farmer, error)
}

// Handler wires the farmer routes to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func New(s Service, logger *slog.Logger, m *metrics.Metrics, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{service: s, logger: logger, metrics: m, timeout: timeout}
}

// Register mounts the farmer routes with the shared middleware stack.
func (h *Handler) Register(r chi.Router) {
	sub := chi.NewRouter()
	sub.Use(middleware.Recovery(h.logger))
	sub.Use(middleware.RequestID)
	sub.Use(middleware.Logger(h.logger))
	sub.Use(middleware.Timeout(h.timeout))
	sub.Use(middleware.ContentTypeJSON)
	sub.Use(middleware.Latency(h.metrics))

	sub.Get("/agricultores", h.handleList)
	sub.Get("/agricultores/total", h.handleCount)
	sub.Get("/agricultores/ubicacion", h.handleFindByLocation)
	sub.Get("/agricultores/{dni}", h.handleGet)
	sub.Get("/agricultores/{dni}/resumen", h.handleSummary)
	sub.Post("/agricultores", h.handleCreate)
	sub.Put("/agricultores/{dni}", h.handleUpdate)
	sub.Delete("/agricultores/{dni}", h.handleDelete)

	r.Mount("/", sub)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", service.DefaultListLimit)
	offset := queryInt(r, "offset", 0)

	farmers, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(farmers))
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.Count(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Total: total})
}

func (h *Handler) handleFindByLocation(w http.ResponseWriter, r *http.Request) {
	filter := store.LocationFilter{
		Department: r.URL.Query().Get("dpto"),
		Province:   r.URL.Query().Get("provincia"),
		District:   r.URL.Query().Get("distrito"),
	}
	farmers, err := h.service.FindByLocation(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(farmers))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.GetByDNI(r.Context(), chi.URLParam(r, "dni"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(f))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.GetByDNI(r.Context(), chi.URLParam(r, "dni"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary: service.Summarize(f),
		Metrics: service.ComputeMetrics(f),
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFarmer(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// The path identifier keys the record; the payload may omit the dni or
	// carry a different one, and neither is an error.
	payload.DNI = domain.DNI(chi.URLParam(r, "dni"))
	f, err := models.New(payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "dni"), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "dni")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody parses a request body into a raw, unvalidated record.
func decodeBody(r *http.Request) (models.Farmer, error) {
	var payload models.Farmer
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return models.Farmer{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid request body")
	}
	return payload, nil
}

// decodeFarmer parses a request body into a validated, normalized record.
func decodeFarmer(r *http.Request) (*models.Farmer, error) {
	payload, err := decodeBody(r)
	if err != nil {
		return nil, err
	}
	return models.New(payload)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// writeError performs the only domain-to-transport error translation.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	resp := errorResponse{Error: string(code)}
	var de *dErrors.Error
	if errors.As(err, &de) {
		resp.Detail = de.Message
		resp.Field = de.Field
	}
	if status >= http.StatusInternalServerError {
		// Store and wrapping details stay out of client responses.
		resp.Detail = "internal error"
		resp.Field = ""
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
