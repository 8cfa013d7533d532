package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pomotasks/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	FullGlyph        string `yaml:"full_glyph"`
	HalfGlyph        string `yaml:"half_glyph"`
	QuarterGlyph     string `yaml:"quarter_glyph"`
	WorkMinutes      int    `yaml:"work_minutes"`
	BreakMinutes     int    `yaml:"break_minutes"`
	ChecklistPath    string `yaml:"checklist_path,omitempty"`
	AutoStartBreak   bool   `yaml:"auto_start_break"`
	IdlePauseEnabled bool   `yaml:"idle_pause_enabled"`
	IdlePauseMinutes int    `yaml:"idle_pause_minutes"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads preferences from configPath.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes preferences to configPath.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := MarshalSettings(settings)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// MarshalSettings renders settings in the file format.
func MarshalSettings(settings preferences.Settings) ([]byte, error) {
	fileData := yamlSettings{
		FullGlyph:        settings.FullGlyph,
		HalfGlyph:        settings.HalfGlyph,
		QuarterGlyph:     settings.QuarterGlyph,
		WorkMinutes:      int(settings.WorkDuration / time.Minute),
		BreakMinutes:     int(settings.BreakDuration / time.Minute),
		ChecklistPath:    settings.ChecklistPath,
		AutoStartBreak:   settings.AutoStartBreak,
		IdlePauseEnabled: settings.IdlePauseEnabled,
		IdlePauseMinutes: int(settings.IdlePauseAfter / time.Minute),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return nil, fmt.Errorf("marshal settings yaml: %w", err)
	}
	return serialized, nil
}

// SettingsPath returns where settings for appName live.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	candidate := *settings
	if fileData.FullGlyph != "" {
		candidate.FullGlyph = fileData.FullGlyph
	}
	if fileData.HalfGlyph != "" {
		candidate.HalfGlyph = fileData.HalfGlyph
	}
	if fileData.QuarterGlyph != "" {
		candidate.QuarterGlyph = fileData.QuarterGlyph
	}
	if candidate.Symbols().Validate() == nil {
		settings.FullGlyph = candidate.FullGlyph
		settings.HalfGlyph = candidate.HalfGlyph
		settings.QuarterGlyph = candidate.QuarterGlyph
	}

	if fileData.WorkMinutes > 0 {
		settings.WorkDuration = time.Duration(fileData.WorkMinutes) * time.Minute
	}
	if fileData.BreakMinutes > 0 {
		settings.BreakDuration = time.Duration(fileData.BreakMinutes) * time.Minute
	}
	if fileData.IdlePauseMinutes > 0 {
		settings.IdlePauseAfter = time.Duration(fileData.IdlePauseMinutes) * time.Minute
	}

	settings.ChecklistPath = fileData.ChecklistPath
	settings.AutoStartBreak = fileData.AutoStartBreak
	settings.IdlePauseEnabled = fileData.IdlePauseEnabled
}
