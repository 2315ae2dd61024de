package doctor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doeshing/ytgenius/internal/domain"
	historyinfra "github.com/doeshing/ytgenius/internal/infrastructure/history"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubCredentials struct {
	session *domain.Session
}

func (s stubCredentials) CurrentSession(context.Context) (*domain.Session, error) {
	return s.session, nil
}

func statusByName(report domain.HealthReport) map[string]domain.HealthStatus {
	out := make(map[string]domain.HealthStatus, len(report.Checks))
	for _, check := range report.Checks {
		out[check.Name] = check.Status
	}
	return out
}

func TestRunHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := historyinfra.NewMemoryStore()
	if err := store.Save([]domain.HistoryRecord{{ID: 1, TaskType: domain.TaskAudit, Result: domain.NewTextPayload("x")}}); err != nil {
		t.Fatal(err)
	}

	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{ConfigFormatVersion: "1", Service: domain.ServiceSettings{BaseURL: server.URL}}},
		Credentials:    stubCredentials{session: &domain.Session{AccessToken: "t", User: domain.User{Email: "a@example.com"}}},
		History:        store,
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := statusByName(report)
	want := map[string]domain.HealthStatus{
		"Config file":        domain.HealthOK,
		"Session":            domain.HealthOK,
		"History (file)":     domain.HealthOK,
		"Generation service": domain.HealthOK,
	}
	for name, status := range want {
		if got[name] != status {
			t.Errorf("%s = %q, want %q", name, got[name], status)
		}
	}
}

func TestRunDegraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{
			Service: domain.ServiceSettings{BaseURL: url},
			History: domain.HistorySettings{Backend: "sqlite"},
		}},
		Credentials: stubCredentials{},
		History:     historyinfra.NewMemoryStoreFrom([]byte("{broken")),
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := statusByName(report)
	if got["Session"] != domain.HealthWarn {
		t.Errorf("Session = %q, want warn", got["Session"])
	}
	if got["History (sqlite)"] != domain.HealthWarn {
		t.Errorf("History = %q, want warn", got["History (sqlite)"])
	}
	if got["Generation service"] != domain.HealthWarn {
		t.Errorf("Generation service = %q, want warn", got["Generation service"])
	}
	if failed := report.Failed(); len(failed) != 0 {
		t.Errorf("Failed() = %+v, want none for warnings", failed)
	}
}

type unreadableHistory struct{}

func (unreadableHistory) Load() ([]domain.HistoryRecord, error) {
	return nil, errors.New("permission denied")
}

func (unreadableHistory) Save([]domain.HistoryRecord) error { return nil }

func TestRunUnreadableHistoryFails(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{Service: domain.ServiceSettings{BaseURL: "http://127.0.0.1:1"}}},
		Credentials:    stubCredentials{},
		History:        unreadableHistory{},
		HTTPClient:     &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, errors.New("offline") })},
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Name != "History (file)" {
		t.Fatalf("Failed() = %+v, want only History (file)", failed)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestRunConfigFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("permission denied")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("unexpected report: %+v", report)
	}
}
