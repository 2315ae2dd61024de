package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/ytgenius/assets"
	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/pkg/filesystem"
	"github.com/doeshing/ytgenius/internal/ports"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath     = "YTGENIUS_CONFIG"
	EnvBaseURL        = "YTGENIUS_BASE_URL"
	EnvHistoryBackend = "YTGENIUS_HISTORY_BACKEND"
)

// FileLoader loads YAML configuration from ~/.ytgenius/config.yaml (overridable via YTGENIUS_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// LoadDotEnv reads .env from the working directory and then ~/.ytgenius/.env.
// Variables already set in the environment win. Missing files are ignored.
func LoadDotEnv() []string {
	var loaded []string
	for _, path := range []string{".env", filesystem.AppPath(".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			loaded = append(loaded, path)
		}
	}
	return loaded
}

// Load implements ports.ConfigProvider. Environment overrides are applied on top
// of the file and never written back.
func (l *FileLoader) Load(ctx context.Context) (domain.Config, error) {
	cfg, err := l.LoadFile(ctx)
	if err != nil {
		return domain.Config{}, err
	}
	return applyEnv(cfg), nil
}

// LoadFile reads the config file, writing the default one on first run.
func (l *FileLoader) LoadFile(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return DefaultConfig(), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return hydrateDefaults(cfg), nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppPath("config.yaml")
}

// Save writes cfg to the config file.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Backup copies the current config file next to itself and returns the copy's path.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return hydrateDefaults(domain.Config{})
	}
	return hydrateDefaults(cfg)
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Service.BaseURL == "" {
		cfg.Service.BaseURL = domain.DefaultBaseURL
	}
	if cfg.Service.TimeoutSeconds == 0 {
		cfg.Service.TimeoutSeconds = int(domain.DefaultHTTPClientTimeout / time.Second)
	}
	if cfg.Preferences.DefaultTask == "" {
		cfg.Preferences.DefaultTask = string(domain.DefaultTask)
	}
	if cfg.Preferences.DefaultMetadataType == "" {
		cfg.Preferences.DefaultMetadataType = string(domain.DefaultMetadataSubType)
	}
	if cfg.Preferences.Output == "" {
		cfg.Preferences.Output = domain.OutputAuto
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = domain.HistoryBackendFile
	}
	if cfg.Auth.SessionFile == "" {
		cfg.Auth.SessionFile = "~/" + filesystem.AppDirName + "/session.yaml"
	}
	if cfg.Auth.TokenEnvVar == "" {
		cfg.Auth.TokenEnvVar = domain.DefaultTokenEnvVar
	}
	return cfg
}

func applyEnv(cfg domain.Config) domain.Config {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryBackend)); v != "" {
		cfg.History.Backend = v
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
