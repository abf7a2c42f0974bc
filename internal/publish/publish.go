// Package publish commits and pushes the generated digest artifacts to the
// site repository.
package publish

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/brayvid/news-site/internal/logger"
)

// Options configures a publish run. AuthorName and AuthorEmail come from the
// config sheet; GITHUB_USER and GITHUB_EMAIL in the environment win over
// them.
type Options struct {
	RepoDir     string
	Files       []string
	AuthorName  string
	AuthorEmail string
	Location    *time.Location
}

// Push stages the generated files and pushes a timestamped commit to the
// origin branch. Publishing is best effort: every failure is reported as an
// error for the caller to log, never to abort the run on.
func Push(opts Options) error {
	token := os.Getenv("GITHUB_TOKEN")
	repo := os.Getenv("GITHUB_REPOSITORY")
	if token == "" || repo == "" {
		return fmt.Errorf("GITHUB_TOKEN or GITHUB_REPOSITORY not set, cannot push")
	}
	remoteURL := fmt.Sprintf("https://oauth2:%s@github.com/%s.git", token, repo)

	name := opts.AuthorName
	if env := os.Getenv("GITHUB_USER"); env != "" {
		name = env
	}
	email := opts.AuthorEmail
	if env := os.Getenv("GITHUB_EMAIL"); env != "" {
		email = env
	}

	if err := run(opts.RepoDir, "config", "user.name", name); err != nil {
		return err
	}
	if err := run(opts.RepoDir, "config", "user.email", email); err != nil {
		return err
	}
	if err := run(opts.RepoDir, "remote", "set-url", "origin", remoteURL); err != nil {
		logger.Info("remote set-url failed, attempting to add origin")
		if err := run(opts.RepoDir, "remote", "add", "origin", remoteURL); err != nil {
			return err
		}
	}

	branch, err := output(opts.RepoDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || branch == "" || branch == "HEAD" {
		logger.Warn("Could not determine current branch, defaulting to main", "got", branch)
		branch = "main"
	}

	if err := run(opts.RepoDir, "pull", "--rebase", "origin", branch); err != nil {
		logger.Warn("git pull --rebase failed, aborting any in-progress rebase", "error", err.Error())
		_ = run(opts.RepoDir, "rebase", "--abort")
		return fmt.Errorf("skipping push, pull --rebase failed: %w", err)
	}

	var existing []string
	for _, f := range opts.Files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := run(opts.RepoDir, append([]string{"add"}, existing...)...); err != nil {
			return err
		}
	}

	status, err := output(opts.RepoDir, "status", "--porcelain")
	if err != nil {
		return err
	}
	if status == "" {
		logger.Info("No digest changes to commit")
		return nil
	}

	message := fmt.Sprintf("Auto-update digest content - %s",
		time.Now().In(opts.Location).Format("2006-01-02 15:04:05 MST"))
	if err := run(opts.RepoDir, "commit", "-m", message); err != nil {
		return err
	}
	if err := run(opts.RepoDir, "push", "origin", branch); err != nil {
		return err
	}

	logger.Info("Pushed digest update", "branch", branch, "files", len(existing))
	return nil
}

func run(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return nil
}

func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}
