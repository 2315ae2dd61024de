package config

import (
	"fmt"
	"strings"

	"github.com/doeshing/ytgenius/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if _, err := cfg.GetGenerateURL(); err != nil {
		return err
	}
	if cfg.Service.TimeoutSeconds < 0 {
		return fmt.Errorf("service.timeout must be >= 0")
	}
	if err := validatePreferences(cfg.Preferences); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	return validateAuth(cfg.Auth)
}

func validatePreferences(prefs domain.Preferences) error {
	if strings.TrimSpace(prefs.DefaultTask) != "" {
		if _, err := domain.ParseTaskTag(prefs.DefaultTask); err != nil {
			return fmt.Errorf("preferences.default_task: %w", err)
		}
	}
	if _, err := domain.ParseMetadataSubType(prefs.DefaultMetadataType); err != nil {
		return fmt.Errorf("preferences.default_metadata_type: %w", err)
	}
	switch strings.ToLower(prefs.Output) {
	case "", domain.OutputAuto, domain.OutputPlain, domain.OutputJSON:
	default:
		return fmt.Errorf("preferences.output must be auto|plain|json, got %s", prefs.Output)
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch strings.ToLower(history.Backend) {
	case "", domain.HistoryBackendFile, domain.HistoryBackendSQLite, domain.HistoryBackendMemory:
	default:
		return fmt.Errorf("history.backend must be file|sqlite|memory, got %s", history.Backend)
	}
	return nil
}

func validateAuth(auth domain.AuthSettings) error {
	if strings.ContainsAny(auth.TokenEnvVar, " =") {
		return fmt.Errorf("auth.token_env_var is not a valid variable name: %q", auth.TokenEnvVar)
	}
	return nil
}
