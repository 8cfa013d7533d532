package notation

import (
	"path/filepath"
	"strings"
	"time"

	"pomotasks/internal/core/model"
)

// Checklist groups the open tasks of one document.
type Checklist struct {
	Name           string
	Path           string
	Tasks          []Record
	Lines          []int // 1-based line number of each task
	RemainingCount float64
}

// ParseChecklist collects every unchecked task line of content in order.
// Raw lines are kept without their line ending.
func ParseChecklist(setting model.SymbolSetting, content, fileName, filePath string) Checklist {
	checklist := Checklist{
		Name: strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		Path: filePath,
	}
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !IsTaskLine(line) {
			continue
		}
		record := Construct(setting, line, filePath)
		checklist.Tasks = append(checklist.Tasks, record)
		checklist.Lines = append(checklist.Lines, i+1)
		checklist.RemainingCount += record.RemainingCount
	}
	return checklist
}

// Estimate returns the wall time the remaining effort needs when every unit
// is followed by a break.
func (checklist Checklist) Estimate(work, brk time.Duration) time.Duration {
	return time.Duration(checklist.RemainingCount * float64(work+brk))
}
