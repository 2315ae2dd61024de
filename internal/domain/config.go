package domain

// Config mirrors ~/.ytgenius/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	Service             ServiceSettings `yaml:"service"`
	Preferences         Preferences     `yaml:"preferences"`
	History             HistorySettings `yaml:"history"`
	Auth                AuthSettings    `yaml:"auth"`
}

// ServiceSettings locates the generation service.
type ServiceSettings struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultTask         string `yaml:"default_task"`
	DefaultMetadataType string `yaml:"default_metadata_type"`
	Output              string `yaml:"output"`
	CopyToClipboard     bool   `yaml:"copy_to_clipboard"`
}

// HistorySettings selects where past requests are kept.
type HistorySettings struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// AuthSettings configures the session store.
type AuthSettings struct {
	SessionFile string `yaml:"session_file"`
	TokenEnvVar string `yaml:"token_env_var"`
}

// History backends.
const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
	HistoryBackendMemory = "memory"
)

// Output modes.
const (
	OutputAuto  = "auto"
	OutputPlain = "plain"
	OutputJSON  = "json"
)
