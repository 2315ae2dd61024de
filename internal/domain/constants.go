package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// DataFilePermissions is the permission for history data (rw-r--r--)
	DataFilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for generation requests.
	// Audits fetch transcripts and run a model, so this is generous.
	DefaultHTTPClientTimeout = 120 * time.Second
	// DefaultProbeTimeout bounds the doctor reachability check
	DefaultProbeTimeout = 5 * time.Second
)

// History constants
const (
	// HistoryCapacity is the maximum number of records kept locally
	HistoryCapacity = 50
	// HistoryStorageKey names the single durable key holding the record list
	HistoryStorageKey = "yt_genius_history"
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Service constants
const (
	// DefaultBaseURL is where the generation service runs during development
	DefaultBaseURL = "http://localhost:8000"
	// GeneratePath is the generation endpoint relative to the base URL
	GeneratePath = "/api/generate"
	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes = 8 << 20
)

// Defaults
const (
	DefaultTask            = TaskAudit
	DefaultMetadataSubType = MetadataTitle
	DefaultTokenEnvVar     = "YTGENIUS_ACCESS_TOKEN"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
	// DateFormat is used in compact listings
	DateFormat = "2006-01-02"
)
