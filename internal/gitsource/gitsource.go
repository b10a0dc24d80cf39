// Package gitsource keeps a local checkout of a stroke diagram repository
// (for example KanjiVG) that serves as fallback media.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func Sync(ctx context.Context, repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("Cloning media repository", "url", repoURL, "path", localPath)
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(localPath), err)
		}
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:   repoURL,
			Depth: 1,
		})
		if err != nil {
			// Leave no partial checkout behind.
			if rmErr := os.RemoveAll(localPath); rmErr != nil {
				slog.Warn("Failed to remove partial clone", "path", localPath, "error", rmErr)
			}
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		slog.Info("Clone successful", "path", localPath)
	case err == nil:
		slog.Debug("Pulling media repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	return nil
}

// LocalPath maps a repository URL to its checkout directory under baseDir,
// e.g. https://github.com/KanjiVG/kanjivg.git -> baseDir/github.com/KanjiVG/kanjivg.
// Repositories on the local filesystem (absolute paths or file:// URLs) map
// to baseDir/local/<path>.
func LocalPath(baseDir, repoURL string) (string, error) {
	if filepath.IsAbs(repoURL) {
		return localRepoPath(baseDir, repoURL)
	}

	parsedURL, err := url.Parse(repoURL)
	if err == nil && parsedURL.Scheme == "file" {
		return localRepoPath(baseDir, parsedURL.Path)
	}
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-like syntax: git@github.com:owner/repo.git
		if user, rest, ok := strings.Cut(repoURL, "@"); ok && user != "" {
			host, repoPath, ok := strings.Cut(rest, ":")
			repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
			if ok && host != "" && repoPath != "" && !strings.Contains(repoPath, "..") {
				return filepath.Join(baseDir, host, filepath.FromSlash(repoPath)), nil
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(strings.Trim(parsedURL.Path, "/"), ".git")
	if parsedURL.Host == "" || sanitizedPath == "" || strings.Contains(sanitizedPath, "..") {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	return filepath.Join(baseDir, parsedURL.Host, filepath.FromSlash(sanitizedPath)), nil
}

func localRepoPath(baseDir, repoPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(repoPath))
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("could not parse git URL: %s", repoPath)
	}
	rel := strings.Trim(cleaned[len(filepath.VolumeName(cleaned)):], string(filepath.Separator))
	rel = strings.TrimSuffix(strings.TrimSuffix(rel, ".git"), string(filepath.Separator))
	if rel == "" {
		return "", fmt.Errorf("could not parse git URL: %s", repoPath)
	}
	return filepath.Join(baseDir, "local", rel), nil
}
