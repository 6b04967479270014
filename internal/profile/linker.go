// Package profile keeps "source this file" lines present in a shell init
// file. Lines are matched by exact full-line equality and appended at most
// once; existing content is never reordered or removed.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status classifies the outcome for a single entry line.
type Status string

const (
	StatusAdded          Status = "added"
	StatusAlreadyPresent Status = "already-present"
)

// EntryResult records the outcome for one entry line.
type EntryResult struct {
	Line   string
	Status Status
}

// Header is the comment written once before the first batch of appended
// lines, so a reader of the file can tell where they came from.
const Header = "# added by dotup"

// Linker appends missing entry lines to a shell init file.
type Linker struct {
	DryRun bool

	log zerolog.Logger
}

// New creates a Linker.
func New() *Linker {
	return &Linker{log: log.With().Str("component", "profile").Logger()}
}

// EnsureLines makes each entry line exist in the target file exactly once.
// The file is created empty if absent. Missing entries are appended after a
// blank line and a comment header, written once per batch. Running twice
// with the same entries yields byte-identical content to running once.
func (l *Linker) EnsureLines(targetFile string, entries []string) ([]EntryResult, error) {
	data, err := os.ReadFile(targetFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", targetFile, err)
		}
		data = nil
		if !l.DryRun {
			if err := os.WriteFile(targetFile, nil, 0644); err != nil {
				return nil, fmt.Errorf("creating %s: %w", targetFile, err)
			}
		}
	}

	existing := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		existing[line] = true
	}

	results := make([]EntryResult, 0, len(entries))
	var missing []string
	for _, entry := range entries {
		if existing[entry] {
			results = append(results, EntryResult{Line: entry, Status: StatusAlreadyPresent})
			continue
		}
		results = append(results, EntryResult{Line: entry, Status: StatusAdded})
		missing = append(missing, entry)
	}

	if len(missing) == 0 || l.DryRun {
		return results, nil
	}

	var block strings.Builder
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		block.WriteString("\n")
	}
	block.WriteString("\n" + Header + "\n")
	for _, line := range missing {
		block.WriteString(line + "\n")
	}

	f, err := os.OpenFile(targetFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", targetFile, err)
	}
	defer f.Close()

	if _, err := f.WriteString(block.String()); err != nil {
		return nil, fmt.Errorf("appending to %s: %w", targetFile, err)
	}

	l.log.Info().Str("file", targetFile).Int("lines", len(missing)).Msg("appended profile lines")
	return results, nil
}
