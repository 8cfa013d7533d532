package notation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"pomotasks/internal/core/model"
)

// ErrTooFewMinutes is returned when a minute amount would render no glyph.
var ErrTooFewMinutes = errors.New("too few minutes to format into glyphs")

// ParseMinutes returns the minutes a glyph run stands for.
func ParseMinutes(setting model.SymbolSetting, input string) float64 {
	return ParseCount(setting, input) * setting.WorkMinutesPerUnit
}

// FormatMinutes renders minutes as glyphs. Unlike FormatCount it requires at
// least one visible glyph.
func FormatMinutes(setting model.SymbolSetting, minutes float64) (string, error) {
	if setting.WorkMinutesPerUnit <= 0 {
		return "", fmt.Errorf("format minutes: %w: minutes per unit is %v", model.ErrInvalidArgument, setting.WorkMinutesPerUnit)
	}
	units := minutes / setting.WorkMinutesPerUnit
	if !inRange(units) {
		return "", fmt.Errorf("format %v minutes: %w", minutes, model.ErrInvalidArgument)
	}
	full, half, quarter := decompose(units)
	if full == 0 && half == 0 && quarter == 0 {
		return "", fmt.Errorf("%w: %v", ErrTooFewMinutes, minutes)
	}
	return render(setting, full, half, quarter), nil
}

// RemainingMinutes returns the minutes left in a task body, ignoring
// consumed spans.
func RemainingMinutes(setting model.SymbolSetting, body string) float64 {
	_, rest := splitConsumedSpans(body)
	return ParseMinutes(setting, rest)
}

// SubtractMinutes spends minutes from a run of remaining glyphs and returns
// the replacement text. Amounts under a quarter unit are treated as nothing.
func SubtractMinutes(setting model.SymbolSetting, glyphs string, minutes float64) (string, error) {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 1) {
		return "", fmt.Errorf("subtract %v minutes: %w", minutes, model.ErrInvalidArgument)
	}
	total := ParseMinutes(setting, glyphs)
	threshold := setting.WorkMinutesPerUnit / 4

	if total == 0 {
		if minutes < threshold {
			return "", nil
		}
		over, err := FormatMinutes(setting, minutes)
		if err != nil {
			return "", err
		}
		return spanDelimiter + overSeparator + over + spanDelimiter, nil
	}

	if minutes > total {
		spent, err := FormatMinutes(setting, total)
		if err != nil {
			return "", err
		}
		if minutes-total < threshold {
			return spanDelimiter + spent + spanDelimiter, nil
		}
		over, err := FormatMinutes(setting, minutes-total)
		if err != nil {
			return "", err
		}
		return spanDelimiter + spent + overSeparator + over + spanDelimiter, nil
	}

	if minutes < threshold {
		return FormatMinutes(setting, total)
	}
	spent, err := FormatMinutes(setting, minutes)
	if err != nil {
		return "", err
	}
	if total-minutes < threshold {
		return spanDelimiter + spent + spanDelimiter, nil
	}
	left, err := FormatMinutes(setting, total-minutes)
	if err != nil {
		return "", err
	}
	return spanDelimiter + spent + spanDelimiter + " " + left, nil
}

// UpdateBodyAfterMinutes spends minutes from the remaining glyphs of a task
// body. Existing consumed spans are kept as they are, in front.
func UpdateBodyAfterMinutes(setting model.SymbolSetting, body string, minutes float64) (string, error) {
	consumedPattern, runPattern := minutePatterns(setting)

	consumed := strings.Join(consumedPattern.FindAllString(body, -1), " ")
	withoutConsumed := strings.TrimSpace(consumedPattern.ReplaceAllString(body, ""))
	unconsumed := strings.Join(runPattern.FindAllString(withoutConsumed, -1), "")
	name := strings.TrimSpace(runPattern.ReplaceAllString(withoutConsumed, ""))

	updated, err := SubtractMinutes(setting, unconsumed, minutes)
	if err != nil {
		return "", err
	}
	return joinParts(consumed, updated, name), nil
}

// minutePatterns matches consumed spans and glyph runs made only of glyphs
// and the + separator.
func minutePatterns(setting model.SymbolSetting) (consumed, run *regexp.Regexp) {
	alternatives := []string{regexp.QuoteMeta(overSeparator)}
	for _, glyph := range setting.Glyphs() {
		if glyph != "" {
			alternatives = append(alternatives, regexp.QuoteMeta(glyph))
		}
	}
	unit := "(?:" + strings.Join(alternatives, "|") + ")+"
	return regexp.MustCompile(regexp.QuoteMeta(spanDelimiter) + unit + regexp.QuoteMeta(spanDelimiter)),
		regexp.MustCompile(unit)
}
