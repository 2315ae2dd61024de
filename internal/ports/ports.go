// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the application to remain independent of specific
// implementations like the HTTP generation service, the session file or the
// history database.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., GenerationClient, HistoryStorage)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/ytgenius/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.ytgenius/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CredentialProvider hands out the current session, or nil when signed out.
type CredentialProvider interface {
	CurrentSession(context.Context) (*domain.Session, error)
}

// SessionProvider is the full authentication collaborator.
// The dispatcher only needs CredentialProvider; the CLI manages the rest.
type SessionProvider interface {
	CredentialProvider
	OnSessionChange(func(*domain.Session)) (unsubscribe func())
	SignIn(ctx context.Context, accessToken string) (*domain.Session, error)
	SignOut() error
	RecordBalance(coinsLeft int) error
}

// GenerationClient sends one request to the remote generation service.
// Implementations return *domain.GenerationError for rejected or failed calls.
type GenerationClient interface {
	Generate(ctx context.Context, accessToken string, req domain.GenerationRequest) (domain.GenerationOutcome, error)
}

// HistoryStorage persists the full ordered record list under a single key.
// Load wraps domain.ErrStorageCorrupt when stored data cannot be decoded and
// returns an empty list when nothing has been stored yet.
type HistoryStorage interface {
	Load() ([]domain.HistoryRecord, error)
	Save([]domain.HistoryRecord) error
}

// Clipboard provides cross-platform clipboard integration for copying results.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// ConfirmationPrompter handles interactive yes/no questions for irreversible actions.
type ConfirmationPrompter interface {
	Confirm(question string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
