package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	configapp "github.com/doeshing/ytgenius/internal/application/config"
	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Credentials    ports.CredentialProvider
	History        ports.HistoryStorage
	HistoryTarget  string
	HTTPClient     *http.Client
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.sessionCheck(ctx, cfg))
	checks = append(checks, s.historyCheck(cfg))
	checks = append(checks, s.serviceCheck(ctx, cfg))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) sessionCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	if s.Credentials == nil {
		return warn("Session", "auth store not initialized")
	}
	session, err := s.Credentials.CurrentSession(ctx)
	if err != nil {
		return fail("Session", err.Error())
	}
	if session == nil {
		return warn("Session", fmt.Sprintf("not signed in (run `ytgenius auth login` or set %s)", cfg.GetTokenEnvVar()))
	}
	details := "signed in as " + session.User.Name()
	if session.User.Email != "" {
		details += " <" + session.User.Email + ">"
	}
	if !session.ExpiresAt.IsZero() {
		details += ", expires " + session.ExpiresAt.Local().Format(domain.TimestampFormat)
	}
	return ok("Session", details)
}

func (s *Service) historyCheck(cfg domain.Config) domain.HealthCheck {
	name := fmt.Sprintf("History (%s)", cfg.GetHistoryBackend())
	if s.History == nil {
		return warn(name, "storage not initialized")
	}
	records, err := s.History.Load()
	switch {
	case errors.Is(err, domain.ErrStorageCorrupt):
		return warn(name, "stored history is corrupt and will be reset on the next write")
	case err != nil:
		return fail(name, err.Error())
	}
	details := fmt.Sprintf("%d/%d records", len(records), domain.HistoryCapacity)
	if s.HistoryTarget != "" {
		details += " in " + s.HistoryTarget
	}
	return ok(name, details)
}

func (s *Service) serviceCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	endpoint, err := cfg.GetGenerateURL()
	if err != nil {
		return fail("Generation service", err.Error())
	}
	base := strings.TrimSuffix(endpoint, domain.GeneratePath)

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultProbeTimeout}
	}
	probeCtx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, base+"/", nil)
	if err != nil {
		return fail("Generation service", err.Error())
	}
	resp, err := client.Do(req)
	if err != nil {
		return warn("Generation service", fmt.Sprintf("%s unreachable: %v", base, err))
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return warn("Generation service", fmt.Sprintf("%s responded %s", base, resp.Status))
	}
	return ok("Generation service", fmt.Sprintf("%s reachable", base))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
