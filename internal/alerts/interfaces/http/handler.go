package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	alertapp "campus-energy/internal/alerts/application"
	alerts "campus-energy/internal/alerts/domain"
	"campus-energy/internal/audit"
	"campus-energy/internal/auth"
)

// Handler provides the alert list/acknowledge endpoints. These are the only
// request/response operations the core's own records need; the rest of the
// dashboard API lives elsewhere.
type Handler struct {
	service *alertapp.Service
	audit   audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *alertapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("alerts handler: nil service")
	}
	return &Handler{service: service, audit: auditLogger}, nil
}

// ServeHTTP handles /api/v1/alerts and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/alerts":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/alerts/"):
		h.handleAcknowledge(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	list, err := h.service.List(r.Context(), status, limit)
	switch {
	case errors.Is(err, alertapp.ErrInvalidStatusFilter):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "ack" || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	record, err := h.service.Acknowledge(r.Context(), id)
	switch {
	case errors.Is(err, alerts.ErrNotFound):
		http.Error(w, "alert not found", http.StatusNotFound)
		return
	case errors.Is(err, alerts.ErrAlreadyAcknowledged):
		http.Error(w, "alert already acknowledged", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.audit != nil {
		entry := audit.Entry{
			TenantID:     auth.TenantIDFromContext(r.Context()),
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "alert.acknowledge",
			ResourceType: "alert",
			ResourceID:   id,
			IP:           r.RemoteAddr,
			UserAgent:    r.UserAgent(),
		}
		// Audit failures never fail the acknowledged request.
		_ = h.audit.Log(r.Context(), entry)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(record)
}
