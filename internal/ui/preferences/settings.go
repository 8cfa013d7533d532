package preferences

import (
	"time"

	"pomotasks/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	FullGlyph    string
	HalfGlyph    string
	QuarterGlyph string

	WorkDuration  time.Duration
	BreakDuration time.Duration

	ChecklistPath  string
	AutoStartBreak bool

	IdlePauseEnabled bool
	IdlePauseAfter   time.Duration
}

// DefaultSettings returns default settings for Pomotasks.
func DefaultSettings() Settings {
	return Settings{
		FullGlyph:        "🍅",
		HalfGlyph:        "🍓",
		QuarterGlyph:     "🍒",
		WorkDuration:     25 * time.Minute,
		BreakDuration:    5 * time.Minute,
		AutoStartBreak:   false,
		IdlePauseEnabled: true,
		IdlePauseAfter:   5 * time.Minute,
	}
}

// Symbols converts settings to the notation's glyph setting. One full glyph
// is worth one work session.
func (settings Settings) Symbols() model.SymbolSetting {
	return model.SymbolSetting{
		Full:               settings.FullGlyph,
		Half:               settings.HalfGlyph,
		Quarter:            settings.QuarterGlyph,
		WorkMinutesPerUnit: settings.WorkDuration.Minutes(),
	}
}

// SessionConfig converts settings to SessionConfig.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		Symbols:           settings.Symbols(),
		Work:              settings.WorkDuration,
		Break:             settings.BreakDuration,
		AutoStartBreak:    settings.AutoStartBreak,
		IdlePauseEnabled:  settings.IdlePauseEnabled,
		IdlePauseAfter:    settings.IdlePauseAfter,
		IdleCheckInterval: 5 * time.Second,
	}
}
