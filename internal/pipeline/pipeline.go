// Package pipeline sequences the bootstrap stages: fetch resources, update
// the dotfiles checkout, sync the tree, link the shell profile. Each stage
// reports a structured outcome; only the CLI turns outcomes into an exit
// code.
package pipeline

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"dotup/internal/config"
	"dotup/internal/dotsync"
	"dotup/internal/fetch"
	"dotup/internal/profile"
	"dotup/internal/repo"
)

// Options configures a pipeline run.
type Options struct {
	// Force skips the confirmation prompt before the tree sync.
	Force bool
	// DryRun reports would-be actions without writing anything.
	DryRun bool
	// Confirm is asked before the tree sync when Force is unset. A nil
	// Confirm is treated as a decline.
	Confirm func() bool
}

// RunResult aggregates the outcomes of all stages of one run.
type RunResult struct {
	Fetches   []fetch.Result
	Repo      *repo.Result
	Sync      *dotsync.Result
	Profile   []profile.EntryResult
	Cancelled bool

	FetchFailed bool
	SyncFailed  bool
	LinkFailed  bool
}

// ExitCode maps the aggregated outcome to the process exit code: failures of
// the fetch, sync or link stages exit 1; success and user cancellation exit 0.
func (r *RunResult) ExitCode() int {
	if r.FetchFailed || r.SyncFailed || r.LinkFailed {
		return 1
	}
	return 0
}

// Pipeline wires the four stages together.
type Pipeline struct {
	Fetcher *fetch.Fetcher
	Updater *repo.Updater
	Syncer  *dotsync.Syncer
	Linker  *profile.Linker
}

// Run executes the full stage sequence against cfg. A fetch failure stops
// the run before any later stage; repository update outcomes never do; a
// declined confirmation cancels the remaining stages.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config, opts Options) *RunResult {
	result := &RunResult{}

	if !p.FetchStage(ctx, cfg, result) {
		return result
	}

	p.UpdateStage(ctx, cfg, result)

	if !opts.Force && !opts.DryRun {
		confirmed := opts.Confirm != nil && opts.Confirm()
		if !confirmed {
			pterm.Info.Println("Sync cancelled.")
			result.Cancelled = true
			return result
		}
	}

	if !p.SyncStage(cfg, result, opts.DryRun) {
		return result
	}

	p.LinkStage(cfg, result, opts.DryRun)
	return result
}

// FetchStage fetches every configured resource, reporting each outcome.
// Returns false when a fetch failed, which aborts the run.
func (p *Pipeline) FetchStage(ctx context.Context, cfg *config.Config, result *RunResult) bool {
	for _, res := range cfg.Resources {
		r := p.Fetcher.Fetch(ctx, res)
		result.Fetches = append(result.Fetches, r)

		switch r.Outcome {
		case fetch.OutcomeSkipped:
			pterm.Info.Printfln("%s is fresh, skipping download", res.Name)
		case fetch.OutcomeDownloaded:
			if p.Fetcher.DryRun {
				pterm.Info.Printfln("would download %s to %s", res.Name, res.Dest)
			} else {
				pterm.Success.Printfln("downloaded %s to %s", res.Name, res.Dest)
			}
		case fetch.OutcomeFailed:
			pterm.Error.Printfln("fetching %s failed: %v", res.Name, r.Err)
			result.FetchFailed = true
			return false
		}
	}
	return true
}

// UpdateStage fast-forwards the configured checkout; every outcome is
// best-effort and reported, none aborts the run.
func (p *Pipeline) UpdateStage(ctx context.Context, cfg *config.Config, result *RunResult) {
	if cfg.Repo.Path == "" {
		return
	}

	r := p.Updater.Update(ctx, cfg.Repo.Path)
	result.Repo = &r

	switch r.Outcome {
	case repo.OutcomeNotARepo:
		pterm.Info.Printfln("%s is not a git checkout, skipping update", r.Path)
	case repo.OutcomeDirty:
		pterm.Warning.Printfln("%s has uncommitted changes, not updating", r.Path)
	case repo.OutcomeUnreachable:
		pterm.Warning.Printfln("remote for %s is unreachable, not updating", r.Path)
	case repo.OutcomeUpdated:
		pterm.Success.Printfln("fast-forwarded %s", r.Path)
	case repo.OutcomeUpToDate:
		pterm.Info.Printfln("%s is already up to date", r.Path)
	case repo.OutcomeFastForwardFailed:
		pterm.Warning.Printfln("could not fast-forward %s: %v", r.Path, r.Err)
	}
}

// SyncStage copies the dotfile tree. Returns false on failure, which
// aborts the run.
func (p *Pipeline) SyncStage(cfg *config.Config, result *RunResult, dryRun bool) bool {
	plan := dotsync.Plan{
		SourceRoot: cfg.Sync.Source,
		DestRoot:   cfg.Sync.Dest,
		Marker:     cfg.Sync.Marker,
		Exclude:    cfg.Sync.Exclude,
	}

	syncResult, err := p.Syncer.Sync(plan)
	result.Sync = syncResult
	if err != nil {
		pterm.Error.Printfln("sync failed: %v", err)
		result.SyncFailed = true
		return false
	}

	var created, updated, unchanged int
	for _, action := range syncResult.Actions {
		switch action.Action {
		case dotsync.ActionCreated:
			created++
			pterm.Info.Printfln("  created   %s", action.Path)
		case dotsync.ActionUpdated:
			updated++
			pterm.Info.Printfln("  updated   %s", action.Path)
		case dotsync.ActionUnchanged:
			unchanged++
		}
	}

	summary := fmt.Sprintf("sync complete: %d created, %d updated, %d unchanged", created, updated, unchanged)
	if dryRun {
		summary = "dry run — " + summary
	}
	pterm.Success.Println(summary)
	return true
}

// LinkStage ensures the configured profile lines exist in the shell init
// file.
func (p *Pipeline) LinkStage(cfg *config.Config, result *RunResult, dryRun bool) {
	if cfg.Profile.File == "" || len(cfg.Profile.Lines) == 0 {
		return
	}

	entries, err := p.Linker.EnsureLines(cfg.Profile.File, cfg.Profile.Lines)
	if err != nil {
		pterm.Error.Printfln("updating %s failed: %v", cfg.Profile.File, err)
		result.LinkFailed = true
		return
	}
	result.Profile = entries

	for _, entry := range entries {
		switch entry.Status {
		case profile.StatusAdded:
			verb := "added"
			if dryRun {
				verb = "would add"
			}
			pterm.Info.Printfln("  %s to %s: %s", verb, cfg.Profile.File, entry.Line)
		case profile.StatusAlreadyPresent:
			pterm.Info.Printfln("  already present: %s", entry.Line)
		}
	}
}
