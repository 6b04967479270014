package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entries = []string{
	"source ~/.git-completion.bash",
	"source ~/.git-prompt.sh",
}

func TestEnsureLinesCreatesFileAndAppends(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")

	results, err := New().EnsureLines(target, entries)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StatusAdded, r.Status)
	}

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), Header)
	for _, line := range entries {
		assert.Contains(t, string(content), line+"\n")
	}
}

func TestEnsureLinesIsIdempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("# existing config\nexport PATH=$PATH:~/bin\n"), 0644))

	linker := New()
	_, err := linker.EnsureLines(target, entries)
	require.NoError(t, err)

	after, err := os.ReadFile(target)
	require.NoError(t, err)

	results, err := linker.EnsureLines(target, entries)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, StatusAlreadyPresent, r.Status)
	}

	again, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, string(after), string(again), "second run must not change the file")
}

func TestEnsureLinesExactMatchOnly(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")
	// A superstring of the entry must not count as present.
	require.NoError(t, os.WriteFile(target, []byte("# source ~/.git-prompt.sh\n"), 0644))

	results, err := New().EnsureLines(target, []string{"source ~/.git-prompt.sh"})
	require.NoError(t, err)
	assert.Equal(t, StatusAdded, results[0].Status)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\nsource ~/.git-prompt.sh\n")
}

func TestEnsureLinesPresentEntryLeavesFileUnchanged(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")
	original := "export EDITOR=vim\nsource ~/.git-completion.bash\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0644))

	results, err := New().EnsureLines(target, []string{"source ~/.git-completion.bash"})
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyPresent, results[0].Status)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestEnsureLinesHeaderWrittenOncePerBatch(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")

	_, err := New().EnsureLines(target, entries)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), Header))
}

func TestEnsureLinesHandlesMissingTrailingNewline(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("export EDITOR=vim"), 0644))

	_, err := New().EnsureLines(target, []string{"source ~/.git-prompt.sh"})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "export EDITOR=vim\n\n"+Header+"\n")
	assert.True(t, strings.HasSuffix(string(content), "source ~/.git-prompt.sh\n"))
}

func TestEnsureLinesDryRun(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")

	linker := New()
	linker.DryRun = true
	results, err := linker.EnsureLines(target, entries)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, StatusAdded, r.Status)
	}

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the file")
}

func TestEnsureLinesAppendOnly(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".bashrc")
	original := "# one\n# two\n# three\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0644))

	_, err := New().EnsureLines(target, []string{"source ~/.extra.sh"})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), original), "existing lines must keep their order")
}
