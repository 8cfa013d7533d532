package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pomotasks/internal/core/model"
	"pomotasks/internal/core/notation"
)

const checklistExt = ".md"

// ErrLineNotFound indicates the line to rewrite is no longer in the file.
var ErrLineNotFound = errors.New("line not found")

// ChecklistStore reads and rewrites task lines in markdown files.
type ChecklistStore struct{}

// NewChecklistStore returns a store over the local file system.
func NewChecklistStore() *ChecklistStore {
	return &ChecklistStore{}
}

// LoadChecklist parses one markdown file.
func (store *ChecklistStore) LoadChecklist(symbols model.SymbolSetting, path string) (notation.Checklist, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return notation.Checklist{}, fmt.Errorf("read checklist: %w", err)
	}
	return notation.ParseChecklist(symbols, string(rawData), filepath.Base(path), path), nil
}

// LoadChecklists parses root if it is a file, or every markdown file below
// it if it is a folder, ordered by path.
func (store *ChecklistStore) LoadChecklists(symbols model.SymbolSetting, root string) ([]notation.Checklist, error) {
	if root == "" {
		return nil, fmt.Errorf("load checklists: %w: no path configured", model.ErrInvalidArgument)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("load checklists: %w", err)
	}
	if !info.IsDir() {
		checklist, err := store.LoadChecklist(symbols, root)
		if err != nil {
			return nil, err
		}
		return []notation.Checklist{checklist}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), checklistExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk checklists: %w", err)
	}
	sort.Strings(paths)

	checklists := make([]notation.Checklist, 0, len(paths))
	for _, path := range paths {
		checklist, err := store.LoadChecklist(symbols, path)
		if err != nil {
			return nil, err
		}
		checklists = append(checklists, checklist)
	}
	return checklists, nil
}

// ReplaceLine rewrites the first line of path equal to oldLine.
func (store *ChecklistStore) ReplaceLine(path, oldLine, newLine string) error {
	return store.rewrite(path, oldLine, func(string) string {
		return newLine
	})
}

// CompleteTask ticks the checkbox of rawLine.
func (store *ChecklistStore) CompleteTask(path, rawLine string) error {
	return store.rewrite(path, rawLine, func(line string) string {
		return strings.Replace(line, "[ ]", "[x]", 1)
	})
}

// TaskAt returns the task on the 1-based line number of path.
func (store *ChecklistStore) TaskAt(symbols model.SymbolSetting, path string, lineNumber int) (notation.Record, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return notation.Record{}, fmt.Errorf("read checklist: %w", err)
	}
	lines := strings.Split(string(rawData), "\n")
	if lineNumber < 1 || lineNumber > len(lines) {
		return notation.Record{}, fmt.Errorf("line %d: %w", lineNumber, ErrLineNotFound)
	}
	line := strings.TrimSuffix(lines[lineNumber-1], "\r")
	if !notation.IsTaskLine(line) {
		return notation.Record{}, fmt.Errorf("line %d is not an open task: %w", lineNumber, model.ErrInvalidArgument)
	}
	return notation.Construct(symbols, line, path), nil
}

func (store *ChecklistStore) rewrite(path, target string, edit func(string) string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat checklist: %w", err)
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read checklist: %w", err)
	}

	lines := strings.Split(string(rawData), "\n")
	found := false
	for i, line := range lines {
		content, carriage := strings.CutSuffix(line, "\r")
		if content != target {
			continue
		}
		lines[i] = edit(content)
		if carriage {
			lines[i] += "\r"
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("rewrite %s: %w", path, ErrLineNotFound)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write checklist: %w", err)
	}
	return nil
}
