package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/ytgenius/internal/domain"
)

// TestConfig_GetDefaultTask tests resolving the default task
func TestConfig_GetDefaultTask(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
		wantTask  domain.TaskTag
	}{
		{
			name:     "falls back to audit when unset",
			config:   domain.Config{},
			wantTask: domain.TaskAudit,
		},
		{
			name: "accepts configured task case-insensitively",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultTask: "Script"},
			},
			wantTask: domain.TaskScript,
		},
		{
			name: "rejects pseudo task",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultTask: "history"},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.config.GetDefaultTask()

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if task != tt.wantTask {
				t.Errorf("got task %s, want %s", task, tt.wantTask)
			}
		})
	}
}

// TestConfig_GetGenerateURL tests building the endpoint URL
func TestConfig_GetGenerateURL(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		want      string
		wantError bool
	}{
		{name: "default base", baseURL: "", want: "http://localhost:8000/api/generate"},
		{name: "trailing slash trimmed", baseURL: "https://genius.example.com/", want: "https://genius.example.com/api/generate"},
		{name: "unsupported scheme", baseURL: "ftp://genius.example.com", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{Service: domain.ServiceSettings{BaseURL: tt.baseURL}}
			got, err := cfg.GetGenerateURL()
			if tt.wantError {
				if err == nil {
					t.Errorf("expected error for %q", tt.baseURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// TestConfig_GetRequestTimeout tests timeout defaults
func TestConfig_GetRequestTimeout(t *testing.T) {
	cfg := domain.Config{}
	if got := cfg.GetRequestTimeout(); got != domain.DefaultHTTPClientTimeout {
		t.Errorf("got %v, want default %v", got, domain.DefaultHTTPClientTimeout)
	}

	cfg.Service.TimeoutSeconds = 15
	if got := cfg.GetRequestTimeout(); got != 15*time.Second {
		t.Errorf("got %v, want 15s", got)
	}
}

// TestConfig_Defaults tests the simple accessors
func TestConfig_Defaults(t *testing.T) {
	cfg := domain.Config{}

	if got := cfg.GetHistoryBackend(); got != domain.HistoryBackendFile {
		t.Errorf("history backend = %s, want file", got)
	}
	if got := cfg.GetOutputMode(); got != domain.OutputAuto {
		t.Errorf("output mode = %s, want auto", got)
	}
	if got := cfg.GetTokenEnvVar(); got != domain.DefaultTokenEnvVar {
		t.Errorf("token env var = %s, want %s", got, domain.DefaultTokenEnvVar)
	}
	sub, err := cfg.GetDefaultMetadataType()
	if err != nil || sub != domain.MetadataTitle {
		t.Errorf("metadata type = %s (%v), want title", sub, err)
	}
}
