// Package repo fast-forwards a local git checkout when that is safe: the
// working tree must be clean and the remote reachable, and only
// fast-forward updates are ever applied.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Outcome classifies the result of an update attempt.
type Outcome string

const (
	// OutcomeNotARepo means the path carries no git metadata; nothing was done.
	OutcomeNotARepo Outcome = "not-a-repo"
	// OutcomeDirty means the working tree has uncommitted changes; nothing
	// was touched, including the network.
	OutcomeDirty Outcome = "dirty"
	// OutcomeUnreachable means the remote did not answer within the probe
	// timeout; nothing was done.
	OutcomeUnreachable Outcome = "unreachable"
	// OutcomeUpdated means the current branch was fast-forwarded.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUpToDate means the branch already matched its remote counterpart.
	OutcomeUpToDate Outcome = "up-to-date"
	// OutcomeFastForwardFailed means local history has diverged; the tree is
	// left as it was.
	OutcomeFastForwardFailed Outcome = "fast-forward-failed"
)

// Result records the outcome of one update attempt.
type Result struct {
	Path    string
	Outcome Outcome
	Err     error
}

// Updater fast-forwards a checkout from its configured remote.
type Updater struct {
	Remote       string
	ProbeTimeout time.Duration

	log zerolog.Logger
}

// New creates an Updater for the given remote name and probe timeout.
func New(remote string, probeTimeout time.Duration) *Updater {
	if remote == "" {
		remote = "origin"
	}
	return &Updater{
		Remote:       remote,
		ProbeTimeout: probeTimeout,
		log:          log.With().Str("component", "repo").Logger(),
	}
}

// Update attempts a fast-forward-only update of the checkout at path.
// Every failure mode maps to a closed Outcome; Err carries detail for
// logging but no outcome is fatal to the caller.
func (u *Updater) Update(ctx context.Context, path string) Result {
	repository, err := gogit.PlainOpen(path)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return Result{Path: path, Outcome: OutcomeNotARepo}
		}
		return Result{Path: path, Outcome: OutcomeNotARepo, Err: fmt.Errorf("opening repository: %w", err)}
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return Result{Path: path, Outcome: OutcomeNotARepo, Err: fmt.Errorf("opening worktree: %w", err)}
	}

	status, err := worktree.Status()
	if err != nil {
		return Result{Path: path, Outcome: OutcomeDirty, Err: fmt.Errorf("reading worktree status: %w", err)}
	}
	if !status.IsClean() {
		u.log.Debug().Str("path", path).Msg("working tree has uncommitted changes, leaving it alone")
		return Result{Path: path, Outcome: OutcomeDirty}
	}

	remote, err := repository.Remote(u.Remote)
	if err != nil {
		return Result{Path: path, Outcome: OutcomeUnreachable, Err: fmt.Errorf("remote '%s': %w", u.Remote, err)}
	}

	probeCtx := ctx
	if u.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, u.ProbeTimeout)
		defer cancel()
	}
	if _, err := remote.ListContext(probeCtx, &gogit.ListOptions{}); err != nil {
		u.log.Debug().Str("path", path).Err(err).Msg("remote probe failed")
		return Result{Path: path, Outcome: OutcomeUnreachable, Err: err}
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{RemoteName: u.Remote})
	switch {
	case err == nil:
		u.log.Info().Str("path", path).Msg("fast-forwarded checkout")
		return Result{Path: path, Outcome: OutcomeUpdated}
	case errors.Is(err, gogit.NoErrAlreadyUpToDate):
		return Result{Path: path, Outcome: OutcomeUpToDate}
	case errors.Is(err, gogit.ErrNonFastForwardUpdate):
		return Result{Path: path, Outcome: OutcomeFastForwardFailed, Err: err}
	default:
		return Result{Path: path, Outcome: OutcomeFastForwardFailed, Err: fmt.Errorf("pulling from '%s': %w", u.Remote, err)}
	}
}
