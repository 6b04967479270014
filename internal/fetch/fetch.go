// Package fetch downloads configured remote resources into local files.
//
// A resource whose destination file is newer than its staleness threshold is
// skipped without touching the network. Downloads are written to a temporary
// sibling file and renamed over the destination, so a partial download is
// never visible.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dotup/internal/config"
)

// Outcome classifies the result of fetching a single resource.
type Outcome string

const (
	// OutcomeSkipped means the destination was fresh enough; no network call
	// was made.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDownloaded means the destination was replaced with fresh content.
	OutcomeDownloaded Outcome = "downloaded"
	// OutcomeFailed means the download did not complete; any prior
	// destination file is untouched.
	OutcomeFailed Outcome = "failed"
)

// Result records the outcome of fetching one resource.
type Result struct {
	Resource string
	Outcome  Outcome
	Err      error
}

// FetchError represents an error while fetching a specific resource.
type FetchError struct {
	Resource  string
	Operation string
	Err       error
	Hint      string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s failed: %s", e.Resource, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns an http.Client with a bounded connect timeout and a
// bounded total request timeout.
func NewHTTPClient(connectTimeout, totalTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: totalTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: totalTimeout,
		},
	}
}

// Fetcher downloads resources with staleness-based skipping.
type Fetcher struct {
	Client HTTPClient
	DryRun bool

	// Now is the clock used for staleness checks; defaults to time.Now.
	Now func() time.Time

	log zerolog.Logger
}

// New creates a Fetcher using the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		Client: client,
		log:    log.With().Str("component", "fetch").Logger(),
	}
}

// Fetch retrieves a single resource. The returned Result always carries the
// resource name and a closed Outcome; Err is set only for OutcomeFailed.
func (f *Fetcher) Fetch(ctx context.Context, res config.Resource) Result {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	if info, err := os.Stat(res.Dest); err == nil {
		age := now().Sub(info.ModTime())
		if age < res.MaxAge.Std() {
			f.log.Debug().Str("resource", res.Name).Dur("age", age).Msg("destination is fresh, skipping download")
			return Result{Resource: res.Name, Outcome: OutcomeSkipped}
		}
	}

	if f.DryRun {
		return Result{Resource: res.Name, Outcome: OutcomeDownloaded}
	}

	body, err := f.download(ctx, res)
	if err != nil {
		return Result{Resource: res.Name, Outcome: OutcomeFailed, Err: err}
	}

	if err := writeAtomic(res.Dest, body); err != nil {
		return Result{
			Resource: res.Name,
			Outcome:  OutcomeFailed,
			Err:      &FetchError{Resource: res.Name, Operation: "write", Err: err},
		}
	}

	f.log.Info().Str("resource", res.Name).Str("dest", res.Dest).Int("bytes", len(body)).Msg("downloaded resource")
	return Result{Resource: res.Name, Outcome: OutcomeDownloaded}
}

func (f *Fetcher) download(ctx context.Context, res config.Resource) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
	if err != nil {
		return nil, &FetchError{Resource: res.Name, Operation: "request", Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{
			Resource:  res.Name,
			Operation: "fetch",
			Err:       fmt.Errorf("fetching %s: %w", res.URL, err),
			Hint:      "check network connectivity and the URL",
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Resource:  res.Name,
			Operation: "fetch",
			Err:       fmt.Errorf("HTTP %d from %s", resp.StatusCode, res.URL),
			Hint:      "check that the URL is accessible and returns the expected content",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Resource: res.Name, Operation: "fetch", Err: fmt.Errorf("reading response: %w", err)}
	}

	if len(body) == 0 {
		return nil, &FetchError{
			Resource:  res.Name,
			Operation: "fetch",
			Err:       fmt.Errorf("empty response body from %s", res.URL),
			Hint:      "the server returned no content — refusing to overwrite the destination",
		}
	}

	return body, nil
}

// writeAtomic writes content to a temporary sibling of dest and renames it
// into place, so the destination is either the old content or the new one.
func writeAtomic(dest string, content []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating destination directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", dest, err)
	}

	success = true
	return nil
}
