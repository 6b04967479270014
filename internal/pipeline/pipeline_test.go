package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dotup/internal/config"
	"dotup/internal/dotsync"
	"dotup/internal/fetch"
	"dotup/internal/profile"
	"dotup/internal/repo"
)

func newTestPipeline(client fetch.HTTPClient) *Pipeline {
	return &Pipeline{
		Fetcher: fetch.New(client),
		Updater: repo.New("origin", time.Second),
		Syncer:  dotsync.New(),
		Linker:  profile.New(),
	}
}

// testConfig builds a config with one resource, a markered source tree and a
// profile file, all under temp directories.
func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	src := t.TempDir()
	dest := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "dotup.yaml"), []byte("version: 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".bashrc"), []byte("export EDITOR=vim\n"), 0644))

	return &config.Config{
		Version: 1,
		Resources: []config.Resource{
			{
				Name:   "helper",
				URL:    url,
				Dest:   filepath.Join(dest, ".helper.sh"),
				MaxAge: config.Duration(time.Hour),
			},
		},
		Sync: config.SyncConfig{
			Source: src,
			Dest:   dest,
			Marker: "dotup.yaml",
		},
		Profile: config.ProfileConfig{
			File:  filepath.Join(dest, ".bashrc_profile"),
			Lines: []string{"source ~/.helper.sh"},
		},
	}
}

func TestRunFullPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("echo helper\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	p := newTestPipeline(srv.Client())

	result := p.Run(context.Background(), cfg, Options{Force: true})
	assert.Equal(t, 0, result.ExitCode())
	assert.False(t, result.Cancelled)

	require.Len(t, result.Fetches, 1)
	assert.Equal(t, fetch.OutcomeDownloaded, result.Fetches[0].Outcome)
	assert.Nil(t, result.Repo, "repo stage must be skipped when no path is configured")

	require.NotNil(t, result.Sync)
	require.Len(t, result.Sync.Actions, 1)
	assert.Equal(t, dotsync.ActionCreated, result.Sync.Actions[0].Action)

	require.Len(t, result.Profile, 1)
	assert.Equal(t, profile.StatusAdded, result.Profile[0].Status)

	synced, err := os.ReadFile(filepath.Join(cfg.Sync.Dest, ".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n", string(synced))
}

func TestRunFetchFailureShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	p := newTestPipeline(srv.Client())

	result := p.Run(context.Background(), cfg, Options{Force: true})
	assert.Equal(t, 1, result.ExitCode())
	assert.True(t, result.FetchFailed)
	assert.Nil(t, result.Sync, "sync must not run after a fetch failure")

	_, err := os.Stat(filepath.Join(cfg.Sync.Dest, ".bashrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunDeclinedConfirmationCancels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	p := newTestPipeline(srv.Client())

	result := p.Run(context.Background(), cfg, Options{Confirm: func() bool { return false }})
	assert.True(t, result.Cancelled)
	assert.Equal(t, 0, result.ExitCode(), "a cancelled run is not a failure")
	assert.Nil(t, result.Sync)

	_, err := os.Stat(filepath.Join(cfg.Sync.Dest, ".bashrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunNilConfirmIsDecline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	p := newTestPipeline(srv.Client())

	result := p.Run(context.Background(), cfg, Options{})
	assert.True(t, result.Cancelled)
}

func TestRunSyncFailureSkipsLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, os.Remove(filepath.Join(cfg.Sync.Source, "dotup.yaml")))

	p := newTestPipeline(srv.Client())
	result := p.Run(context.Background(), cfg, Options{Force: true})

	assert.Equal(t, 1, result.ExitCode())
	assert.True(t, result.SyncFailed)
	assert.Empty(t, result.Profile)

	_, err := os.Stat(cfg.Profile.File)
	assert.True(t, os.IsNotExist(err), "link stage must not run after a sync failure")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	p := newTestPipeline(srv.Client())
	p.Fetcher.DryRun = true
	p.Syncer.DryRun = true
	p.Linker.DryRun = true

	result := p.Run(context.Background(), cfg, Options{DryRun: true})
	assert.Equal(t, 0, result.ExitCode())
	assert.False(t, result.Cancelled, "dry run must not prompt")

	entries, err := os.ReadDir(cfg.Sync.Dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name   string
		result RunResult
		want   int
	}{
		{"clean", RunResult{}, 0},
		{"cancelled", RunResult{Cancelled: true}, 0},
		{"fetch failed", RunResult{FetchFailed: true}, 1},
		{"sync failed", RunResult{SyncFailed: true}, 1},
		{"link failed", RunResult{LinkFailed: true}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.result.ExitCode())
		})
	}
}
