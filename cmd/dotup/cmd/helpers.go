package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"dotup/internal/config"
	"dotup/internal/pipeline"
	"dotup/pkg/dotup"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

// newPipeline builds a pipeline with all stages wired up.
func newPipeline(cfg *config.Config, dryRun bool) *pipeline.Pipeline {
	return dotup.NewPipeline(cfg, dryRun)
}

// confirmSync prompts on stdin before the tree sync.
func confirmSync() bool {
	fmt.Fprint(os.Stderr, "Sync dotfiles into the destination directory? [y/N] ")
	return readConfirmation(os.Stdin)
}

// readConfirmation decides on the first character of the answer: 'y' or 'Y'
// proceeds, anything else (including EOF) declines.
func readConfirmation(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.TrimSpace(line)
	return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "Y")
}
