package model

import (
	"fmt"
	"strings"
	"time"
)

// SymbolSetting names the three glyphs of the tomato notation.
type SymbolSetting struct {
	Full    string
	Half    string
	Quarter string

	// WorkMinutesPerUnit scales one full glyph to minutes for the
	// minute based helpers. The unit based API ignores it.
	WorkMinutesPerUnit float64
}

// SessionConfig contains runtime settings for the work/break cycle.
type SessionConfig struct {
	Symbols SymbolSetting

	Work  time.Duration
	Break time.Duration

	AutoStartBreak bool

	IdlePauseEnabled  bool
	IdlePauseAfter    time.Duration
	IdleCheckInterval time.Duration
}

// Glyphs returns the glyphs ordered full, half, quarter.
func (setting SymbolSetting) Glyphs() [3]string {
	return [3]string{setting.Full, setting.Half, setting.Quarter}
}

// Validate reports whether the glyphs can be told apart from each other
// and from the notation's control characters.
func (setting SymbolSetting) Validate() error {
	glyphs := setting.Glyphs()
	names := [3]string{"full", "half", "quarter"}
	for i, glyph := range glyphs {
		if glyph == "" {
			return fmt.Errorf("%w: %s glyph is empty", ErrInvalidSymbols, names[i])
		}
		if strings.ContainsAny(glyph, "~+") || strings.ContainsFunc(glyph, isSpace) {
			return fmt.Errorf("%w: %s glyph %q contains control syntax", ErrInvalidSymbols, names[i], glyph)
		}
		for j := 0; j < i; j++ {
			if strings.Contains(glyph, glyphs[j]) || strings.Contains(glyphs[j], glyph) {
				return fmt.Errorf("%w: %s and %s glyphs overlap", ErrInvalidSymbols, names[j], names[i])
			}
		}
	}
	if setting.WorkMinutesPerUnit < 0 {
		return fmt.Errorf("%w: negative minutes per unit", ErrInvalidSymbols)
	}
	return nil
}

// Validate checks the symbols and the phase durations.
func (config SessionConfig) Validate() error {
	if err := config.Symbols.Validate(); err != nil {
		return err
	}
	if config.Work <= 0 {
		return fmt.Errorf("%w: work duration must be positive", ErrInvalidArgument)
	}
	if config.Break <= 0 {
		return fmt.Errorf("%w: break duration must be positive", ErrInvalidArgument)
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
