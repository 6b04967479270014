// Package dotsync copies the hidden files of a dotfiles checkout into the
// home directory. The copy is additive: destination files are overwritten
// when their content differs, but files that exist only in the destination
// are never removed.
package dotsync

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Plan describes one tree sync. Computed once per run; immutable.
type Plan struct {
	SourceRoot string
	DestRoot   string
	// Marker is a sentinel file that must exist in SourceRoot. It guards
	// against running the sync from the wrong directory.
	Marker string
	// Exclude lists top-level entry names, or filepath.Match patterns, that
	// are never copied.
	Exclude []string
}

// Action classifies what happened to a single destination file.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// FileAction records the action taken for one file, with Path relative to
// the destination root.
type FileAction struct {
	Path   string
	Action Action
}

// Result holds the per-file actions of a sync. When Sync returns an error
// the actions recorded up to the failure are still present.
type Result struct {
	Actions []FileAction
}

// PreconditionError means the sync refused to start; no files were touched.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string {
	return e.Msg
}

// Syncer copies dotfile trees according to a Plan.
type Syncer struct {
	DryRun bool

	log zerolog.Logger
}

// New creates a Syncer.
func New() *Syncer {
	return &Syncer{log: log.With().Str("component", "dotsync").Logger()}
}

// Sync copies the hidden top-level entries of the plan's source root into
// its destination root. Directory structure is preserved, differing
// destination files are overwritten, destination-only files are left alone,
// and permission bits of existing destination files are never changed.
func (s *Syncer) Sync(plan Plan) (*Result, error) {
	if plan.Marker != "" {
		if _, err := os.Stat(filepath.Join(plan.SourceRoot, plan.Marker)); err != nil {
			return nil, &PreconditionError{
				Msg: fmt.Sprintf("marker file '%s' not found in %s — refusing to sync from the wrong directory", plan.Marker, plan.SourceRoot),
			}
		}
	}

	entries, err := os.ReadDir(plan.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("reading source root %s: %w", plan.SourceRoot, err)
	}

	var selected []os.DirEntry
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, ".") {
			continue
		}
		if excluded(name, plan.Exclude) {
			s.log.Debug().Str("entry", name).Msg("excluded from sync")
			continue
		}
		selected = append(selected, entry)
	}

	result := &Result{}
	for _, entry := range selected {
		srcPath := filepath.Join(plan.SourceRoot, entry.Name())
		if entry.IsDir() {
			if err := s.syncDir(plan, srcPath, entry.Name(), result); err != nil {
				return result, err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			s.log.Warn().Str("entry", entry.Name()).Msg("skipping non-regular file")
			continue
		}
		if err := s.syncFile(plan, srcPath, entry.Name(), result); err != nil {
			return result, err
		}
	}

	sort.Slice(result.Actions, func(i, j int) bool {
		return result.Actions[i].Path < result.Actions[j].Path
	})
	return result, nil
}

func (s *Syncer) syncDir(plan Plan, srcDir, relDir string, result *Result) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			s.log.Warn().Str("path", path).Msg("skipping non-regular file")
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return s.syncFile(plan, path, filepath.Join(relDir, rel), result)
	})
}

func (s *Syncer) syncFile(plan Plan, srcPath, relPath string, result *Result) error {
	destPath, err := containedPath(plan.DestRoot, relPath)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	existing, readErr := os.ReadFile(destPath)
	if readErr == nil && bytes.Equal(existing, content) {
		result.Actions = append(result.Actions, FileAction{Path: relPath, Action: ActionUnchanged})
		return nil
	}

	action := ActionUpdated
	if readErr != nil {
		action = ActionCreated
	}

	if s.DryRun {
		result.Actions = append(result.Actions, FileAction{Path: relPath, Action: action})
		return nil
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", relPath, err)
	}

	// os.WriteFile applies the mode only when creating the file, so an
	// existing destination keeps its permission bits.
	if err := os.WriteFile(destPath, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}

	s.log.Debug().Str("path", relPath).Str("action", string(action)).Msg("synced file")
	result.Actions = append(result.Actions, FileAction{Path: relPath, Action: action})
	return nil
}

// excluded reports whether a top-level entry name matches the exclusion set,
// by exact name or filepath.Match pattern.
func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// containedPath joins relPath onto destRoot and verifies the result stays
// inside destRoot.
func containedPath(destRoot, relPath string) (string, error) {
	absRoot, err := filepath.Abs(destRoot)
	if err != nil {
		return "", fmt.Errorf("resolving destination root: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(absRoot, relPath))
	rootPrefix := absRoot + string(filepath.Separator)
	if candidate != absRoot && !strings.HasPrefix(candidate, rootPrefix) {
		return "", fmt.Errorf("path '%s' escapes the destination root '%s'", relPath, absRoot)
	}
	return candidate, nil
}
