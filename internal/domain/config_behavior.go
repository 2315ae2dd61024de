package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// GetDefaultTask returns the task used when none is given on the command line.
// Returns an error if the configured task cannot be dispatched.
func (c *Config) GetDefaultTask() (TaskTag, error) {
	if strings.TrimSpace(c.Preferences.DefaultTask) == "" {
		return DefaultTask, nil
	}
	return ParseTaskTag(c.Preferences.DefaultTask)
}

// GetDefaultMetadataType returns the metadata sub type used when none is given.
func (c *Config) GetDefaultMetadataType() (MetadataSubType, error) {
	return ParseMetadataSubType(c.Preferences.DefaultMetadataType)
}

// GetRequestTimeout returns the generation request timeout
// Returns the default timeout if not configured
func (c *Config) GetRequestTimeout() time.Duration {
	if c.Service.TimeoutSeconds <= 0 {
		return DefaultHTTPClientTimeout
	}
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// GetGenerateURL joins the base URL with the generation path
func (c *Config) GetGenerateURL() (string, error) {
	base := strings.TrimSpace(c.Service.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid service.base_url %q: %w", base, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("service.base_url must be http or https, got %q", base)
	}
	return strings.TrimRight(base, "/") + GeneratePath, nil
}

// GetHistoryBackend returns the storage backend name
// Returns the file backend if not configured
func (c *Config) GetHistoryBackend() string {
	if c.History.Backend == "" {
		return HistoryBackendFile
	}
	return strings.ToLower(c.History.Backend)
}

// GetOutputMode returns the configured output mode
func (c *Config) GetOutputMode() string {
	if c.Preferences.Output == "" {
		return OutputAuto
	}
	return strings.ToLower(c.Preferences.Output)
}

// GetTokenEnvVar returns the environment variable consulted for an access token
func (c *Config) GetTokenEnvVar() string {
	if c.Auth.TokenEnvVar == "" {
		return DefaultTokenEnvVar
	}
	return c.Auth.TokenEnvVar
}

// ShouldCopyToClipboard checks if results are copied after generation
func (c *Config) ShouldCopyToClipboard() bool {
	return c.Preferences.CopyToClipboard
}
