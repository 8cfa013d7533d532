package notation

import (
	"fmt"
	"regexp"
	"strings"

	"pomotasks/internal/core/model"
)

const (
	spanDelimiter = "~~"
	overSeparator = "+"
)

// checkboxPattern matches an unchecked task marker, possibly indented.
var checkboxPattern = regexp.MustCompile(`^(\s*-\s*\[\s\])[ \t]?`)

// Record is the parsed form of one annotated checklist line. Counts are in
// units of one full glyph and are multiples of a quarter.
type Record struct {
	Name               string
	RemainingCount     float64
	CompletedCount     float64
	OverCompletedCount float64
	FilePath           string
	RawLine            string
}

// IsTaskLine reports whether line starts with an unchecked task marker.
func IsTaskLine(line string) bool {
	return checkboxPattern.MatchString(line)
}

// TaskBody returns the line without indentation and checkbox marker.
func TaskBody(rawLine string) string {
	return strings.TrimSpace(checkboxPattern.ReplaceAllString(rawLine, ""))
}

// Construct parses rawLine into a Record. It never fails: text that is not
// notation ends up in Name.
func Construct(setting model.SymbolSetting, rawLine, filePath string) Record {
	body := TaskBody(rawLine)
	spans, rest := splitConsumedSpans(body)

	var estimated, extra strings.Builder
	for _, span := range spans {
		before, after, _ := strings.Cut(span, overSeparator)
		estimated.WriteString(before)
		extra.WriteString(after)
	}

	return Record{
		Name:               strings.TrimSpace(stripGlyphs(setting, rest)),
		RemainingCount:     ParseCount(setting, rest),
		CompletedCount:     ParseCount(setting, estimated.String()),
		OverCompletedCount: ParseCount(setting, extra.String()),
		FilePath:           filePath,
		RawLine:            rawLine,
	}
}

// FormatBody renders the record as consumed span, remaining glyphs and name.
func FormatBody(setting model.SymbolSetting, record Record) string {
	completed := FormatCount(setting, record.CompletedCount)
	extra := FormatCount(setting, record.OverCompletedCount)

	var consumed string
	switch {
	case extra != "":
		consumed = spanDelimiter + completed + overSeparator + extra + spanDelimiter
	case completed != "":
		consumed = spanDelimiter + completed + spanDelimiter
	}

	return joinParts(consumed, FormatCount(setting, record.RemainingCount), record.Name)
}

// FormatLine splices the formatted body into RawLine right after the
// checkbox marker, keeping indentation and marker as they were.
func FormatLine(setting model.SymbolSetting, record Record) string {
	body := FormatBody(setting, record)
	prefix := linePrefix(record.RawLine)
	if body == "" {
		return strings.TrimRight(prefix, " ")
	}
	return prefix + body
}

// Subtract consumes count units from the record. Count is floored to a
// quarter first; whatever exceeds the remaining effort becomes over-completion.
// The input is left untouched.
func Subtract(record Record, count float64) (Record, error) {
	if !inRange(count) {
		return record, fmt.Errorf("subtract %v units: %w", count, model.ErrInvalidArgument)
	}

	floored := FloorToQuarter(count)
	diff := record.RemainingCount - floored

	next := record
	if diff >= 0 {
		next.RemainingCount = diff
		next.CompletedCount = record.CompletedCount + floored
	} else {
		next.RemainingCount = 0
		next.CompletedCount = record.CompletedCount + record.RemainingCount
		next.OverCompletedCount = record.OverCompletedCount - diff
	}
	if next.CompletedCount > MaxCount || next.OverCompletedCount > MaxCount {
		return record, fmt.Errorf("subtract %v units: %w: result exceeds %d units", count, model.ErrInvalidArgument, MaxCount)
	}
	return next, nil
}

// splitConsumedSpans pulls every ~~...~~ span out of body, pairing
// delimiters left to right. An unpaired ~~ stays in rest.
func splitConsumedSpans(body string) (spans []string, rest string) {
	var remainder strings.Builder
	for {
		start := strings.Index(body, spanDelimiter)
		if start < 0 {
			break
		}
		inner := body[start+len(spanDelimiter):]
		end := strings.Index(inner, spanDelimiter)
		if end < 0 {
			break
		}
		spans = append(spans, inner[:end])
		remainder.WriteString(body[:start])
		body = inner[end+len(spanDelimiter):]
	}
	remainder.WriteString(body)
	return spans, remainder.String()
}

func linePrefix(rawLine string) string {
	if loc := checkboxPattern.FindStringSubmatchIndex(rawLine); loc != nil {
		return rawLine[:loc[3]] + " "
	}
	return rawLine[:len(rawLine)-len(strings.TrimLeft(rawLine, " \t"))]
}

func joinParts(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
