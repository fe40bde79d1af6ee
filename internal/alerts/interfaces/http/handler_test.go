package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	alertapp "campus-energy/internal/alerts/application"
	alerts "campus-energy/internal/alerts/domain"
	"campus-energy/internal/alerts/infrastructure/memory"
	"campus-energy/internal/audit"
	"campus-energy/internal/auth"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Log(_ context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) recorded() []audit.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

func newTestHandler(t *testing.T, repo alerts.AlertRepository, auditor audit.Logger) *Handler {
	t.Helper()
	service, err := alertapp.NewService(repo, log.New(os.Stdout, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, auditor)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func seedAlert(t *testing.T, repo alerts.AlertRepository, id, severity, status string) {
	t.Helper()
	err := repo.Create(context.Background(), alerts.Alert{
		ID:        id,
		Message:   "Battery level critically low",
		Severity:  severity,
		Timestamp: time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC),
		Status:    status,
	})
	if err != nil {
		t.Fatalf("seed alert %s: %v", id, err)
	}
}

func TestListAlerts(t *testing.T) {
	repo := memory.NewAlertRepository()
	seedAlert(t, repo, "alert-1", alerts.SeverityHigh, alerts.StatusActive)
	seedAlert(t, repo, "alert-2", alerts.SeverityMedium, alerts.StatusAcknowledged)
	handler := newTestHandler(t, repo, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list []alerts.Alert
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "alert-2" {
		t.Fatalf("first id = %s, want alert-2 (newest first)", list[0].ID)
	}
}

func TestListAlertsStatusFilter(t *testing.T) {
	repo := memory.NewAlertRepository()
	seedAlert(t, repo, "alert-1", alerts.SeverityHigh, alerts.StatusActive)
	seedAlert(t, repo, "alert-2", alerts.SeverityMedium, alerts.StatusAcknowledged)
	handler := newTestHandler(t, repo, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?status=active", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list []alerts.Alert
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != "alert-1" {
		t.Fatalf("unexpected filtered list: %+v", list)
	}
}

func TestListAlertsBadInputs(t *testing.T) {
	handler := newTestHandler(t, memory.NewAlertRepository(), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alerts", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("delete status = %d, want 405", rec.Code)
	}
}

type brokenRepo struct{}

func (brokenRepo) Create(context.Context, alerts.Alert) error { return errors.New("db down") }

func (brokenRepo) GetByID(context.Context, string) (*alerts.Alert, error) {
	return nil, errors.New("db down")
}

func (brokenRepo) List(context.Context, string, int) ([]alerts.Alert, error) {
	return nil, errors.New("db down")
}

func (brokenRepo) Acknowledge(context.Context, string, time.Time) error {
	return errors.New("db down")
}

func TestListAlertsStoreFailureIsServerError(t *testing.T) {
	handler := newTestHandler(t, brokenRepo{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("store failure status = %d, want 500", rec.Code)
	}

	// A bad filter stays a client error even when the store is broken.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d, want 400", rec.Code)
	}
}

func TestListAlertsEmptyIsJSONArray(t *testing.T) {
	handler := newTestHandler(t, memory.NewAlertRepository(), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("body = %q, want empty JSON array", got)
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	repo := memory.NewAlertRepository()
	seedAlert(t, repo, "alert-1", alerts.SeverityHigh, alerts.StatusActive)
	auditor := &recordingAudit{}
	handler := newTestHandler(t, repo, auditor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/alert-1/ack", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "bmu", auth.RoleOperator, "user-7"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var record alerts.Alert
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Status != alerts.StatusAcknowledged {
		t.Fatalf("status = %s, want acknowledged", record.Status)
	}
	if record.AckedAt.IsZero() {
		t.Fatal("acked_at not set")
	}

	entries := auditor.recorded()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Action != "alert.acknowledge" || entry.ResourceID != "alert-1" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.Actor != "user-7" || entry.TenantID != "bmu" {
		t.Fatalf("audit identity not captured: %+v", entry)
	}
}

func TestAcknowledgeAlertErrors(t *testing.T) {
	repo := memory.NewAlertRepository()
	seedAlert(t, repo, "alert-1", alerts.SeverityHigh, alerts.StatusAcknowledged)
	handler := newTestHandler(t, repo, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/missing/ack", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing id status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/alert-1/ack", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("double ack status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/alert-1/ack", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("get ack status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts/alert-1/archive", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown subroute status = %d, want 404", rec.Code)
	}
}
