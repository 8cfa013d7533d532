// Package notation converts between tomato glyph runs embedded in checklist
// text and the remaining, completed and over-completed effort they stand for.
//
// A run of glyphs outside ~~ ~~ is remaining effort. A run inside ~~ ~~ is
// consumed effort, optionally split by + into the estimated part and the
// part spent after the estimate ran out:
//
//	- [ ] ~~🍅+🍓~~ Reply to emails
//	- [ ] ~~🍅~~ 🍓🍒 Write report
//
// Every function here is pure.
package notation

import (
	"math"
	"strings"

	"pomotasks/internal/core/model"
)

const (
	halfUnit    = 0.5
	quarterUnit = 0.25

	// MaxCount is the largest unit count the notation renders.
	MaxCount = 10000
)

// ParseCount returns the number of units a glyph run stands for.
// Glyphs are counted, not read in order; anything else is ignored.
func ParseCount(setting model.SymbolSetting, input string) float64 {
	full, half, quarter := countGlyphs(setting, input)
	return float64(full) + float64(half)*halfUnit + float64(quarter)*quarterUnit
}

// FormatCount renders a unit count as full, half then quarter glyphs.
// Counts that are not positive, not finite or above MaxCount render as the
// empty string.
func FormatCount(setting model.SymbolSetting, count float64) string {
	if !inRange(count) || count <= 0 {
		return ""
	}
	full, half, quarter := decompose(count)
	return render(setting, full, half, quarter)
}

// FloorToQuarter drops anything below a quarter unit.
func FloorToQuarter(count float64) float64 {
	return math.Floor(count*4) / 4
}

// inRange reports whether count is finite, not negative and at most MaxCount.
func inRange(count float64) bool {
	return count >= 0 && count <= MaxCount
}

func countGlyphs(setting model.SymbolSetting, input string) (full, half, quarter int) {
	return countGlyph(input, setting.Full), countGlyph(input, setting.Half), countGlyph(input, setting.Quarter)
}

func countGlyph(input, glyph string) int {
	if glyph == "" {
		return 0
	}
	return strings.Count(input, glyph)
}

// decompose splits count greedily. The quarter tier rounds to absorb float
// slack, then overflow is carried upward so the output stays minimal.
func decompose(count float64) (full, half, quarter int) {
	full = int(math.Floor(count))
	remainder := count - float64(full)
	half = int(math.Floor(remainder / halfUnit))
	remainder -= float64(half) * halfUnit
	quarter = int(math.Round(remainder / quarterUnit))

	if quarter >= 2 {
		half += quarter / 2
		quarter %= 2
	}
	if half >= 2 {
		full += half / 2
		half %= 2
	}
	return full, half, quarter
}

func render(setting model.SymbolSetting, full, half, quarter int) string {
	var builder strings.Builder
	builder.WriteString(strings.Repeat(setting.Full, full))
	builder.WriteString(strings.Repeat(setting.Half, half))
	builder.WriteString(strings.Repeat(setting.Quarter, quarter))
	return builder.String()
}

func stripGlyphs(setting model.SymbolSetting, input string) string {
	var pairs []string
	for _, glyph := range setting.Glyphs() {
		if glyph != "" {
			pairs = append(pairs, glyph, "")
		}
	}
	if len(pairs) == 0 {
		return input
	}
	return strings.NewReplacer(pairs...).Replace(input)
}
