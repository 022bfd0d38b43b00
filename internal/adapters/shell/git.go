package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/zerr"
)

// GitFetcher implements ports.Fetcher with a shallow git clone.
type GitFetcher struct {
	executor ports.Executor
	binary   string
}

var _ ports.Fetcher = (*GitFetcher)(nil)

// NewGitFetcher creates a fetcher that runs git through executor.
func NewGitFetcher(executor ports.Executor) *GitFetcher {
	return &GitFetcher{executor: executor, binary: "git"}
}

// Fetch clones repoURL into dst. An empty ref clones the default branch.
func (f *GitFetcher) Fetch(ctx context.Context, repoURL, ref, dst string) error {
	if repoURL == "" {
		return domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrMissingParameter, "field", "repoUrl"))
	}
	if _, err := os.Stat(dst); err == nil {
		return domain.Classify(domain.ErrConflict, zerr.With(zerr.New("fetch destination already exists"), "path", dst))
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return domain.Classify(domain.ErrFetch, zerr.With(zerr.Wrap(err, "failed to create fetch directory"), "path", dst))
	}

	args := []string{"clone", "--depth", "1", "--quiet"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, "--", repoURL, dst)

	var stderr bytes.Buffer
	cmd := domain.Command{
		Name: f.binary,
		Args: args,
		Env:  []string{"GIT_TERMINAL_PROMPT=0"},
	}
	if err := f.executor.Execute(ctx, cmd, nil, &stderr); err != nil {
		var detail error = zerr.Wrap(err, "git clone failed")
		detail = zerr.With(detail, "repository", repoURL)
		if ref != "" {
			detail = zerr.With(detail, "ref", ref)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			detail = zerr.With(detail, "stderr", msg)
		}
		_ = os.RemoveAll(dst)
		return domain.Classify(domain.ErrFetch, detail)
	}
	return nil
}
