// Package git reads the checked-out branch so focus sessions can be tagged
// with what was being worked on.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// Detector implements the ports.GitDetector interface using go-git.
type Detector struct {
	dir string
}

// NewDetector creates a detector rooted at dir. An empty dir means the
// current directory.
func NewDetector(dir string) *Detector {
	return &Detector{dir: dir}
}

// Ensure Detector implements ports.GitDetector.
var _ ports.GitDetector = (*Detector)(nil)

// Detect scans workingDir, or the detector's directory, for git context.
func (d *Detector) Detect(ctx context.Context, workingDir string) (*ports.GitInfo, error) {
	dir, err := d.resolve(workingDir)
	if err != nil {
		return nil, err
	}

	repoPath, err := findGitRepo(dir)
	if err != nil {
		return nil, fmt.Errorf("git repository not found: %w", err)
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	branch := head.Name().Short()
	if branch == "HEAD" {
		branch = "HEAD detached"
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	repoName := ""
	if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		if urls := remotes[0].Config().URLs; len(urls) > 0 {
			repoName = extractRepoName(urls[0])
		}
	}

	isClean := false
	if worktree, err := repo.Worktree(); err == nil {
		if status, err := worktree.Status(); err == nil {
			isClean = status.IsClean()
		}
	}

	return &ports.GitInfo{
		Branch:     branch,
		Commit:     head.Hash().String(),
		CommitMsg:  strings.Split(commit.Message, "\n")[0],
		IsClean:    isClean,
		Repository: repoName,
	}, nil
}

// IsAvailable reports whether the detector's directory is inside a repository.
func (d *Detector) IsAvailable() bool {
	dir, err := d.resolve("")
	if err != nil {
		return false
	}
	_, err = findGitRepo(dir)
	return err == nil
}

func (d *Detector) resolve(workingDir string) (string, error) {
	if workingDir != "" {
		return workingDir, nil
	}
	if d.dir != "" {
		return d.dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return cwd, nil
}

// findGitRepo traverses up the directory tree to find a .git directory.
func findGitRepo(startPath string) (string, error) {
	currentPath := startPath

	for {
		gitPath := filepath.Join(currentPath, ".git")
		info, err := os.Stat(gitPath)
		if err == nil && info.IsDir() {
			return currentPath, nil
		}

		// worktrees keep a "gitdir: " reference file instead
		if err == nil && !info.IsDir() {
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return currentPath, nil
			}
		}

		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}

	return "", fmt.Errorf("no .git directory found")
}

// extractRepoName extracts owner/repo from a git remote URL.
func extractRepoName(url string) string {
	// git@github.com:user/repo.git
	if strings.HasPrefix(url, "git@") {
		parts := strings.Split(url, ":")
		if len(parts) >= 2 {
			return strings.TrimSuffix(parts[len(parts)-1], ".git")
		}
	}

	// https://github.com/user/repo.git
	if strings.HasPrefix(url, "http") {
		parts := strings.Split(url, "/")
		if len(parts) >= 2 {
			repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
			return parts[len(parts)-2] + "/" + repo
		}
	}

	return url
}

// ShortCommit returns a shortened commit hash.
func ShortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
