package internal

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	DefaultAuthor = "mnemonic"
	DefaultEmail  = "mnemonic@local"
)

var ErrNotInRepository = errors.New("not a git repository (no .git found)")

type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
}

// GitRecorder commits store rewrites when the store lives in a git worktree.
// It never fails the caller: problems are logged and the mutation stands.
type GitRecorder struct {
	enabled bool
	logger  Logger
	now     func() time.Time
}

func NewGitRecorder(enabled bool, logger Logger, now func() time.Time) *GitRecorder {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &GitRecorder{enabled: enabled, logger: logger, now: now}
}

// Record stages path and commits it with message. It returns the commit hash,
// or "" when recording is disabled or did not happen.
func (g *GitRecorder) Record(path, message string) string {
	if g == nil || !g.enabled {
		return ""
	}

	repo, rel, err := openRepositoryFor(path)
	if errors.Is(err, ErrNotInRepository) {
		g.logger.Debug("store not under git, skipping commit", "file", path)
		return ""
	}
	if err != nil {
		g.logger.Warn("open git repository failed", "file", path, "error", err)
		return ""
	}

	worktree, err := repo.Worktree()
	if err != nil {
		g.logger.Warn("get worktree failed", "file", path, "error", err)
		return ""
	}
	if _, err := worktree.Add(rel); err != nil {
		g.logger.Warn("stage store failed", "file", path, "error", err)
		return ""
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  DefaultAuthor,
			Email: DefaultEmail,
			When:  g.now(),
		},
	})
	if err != nil {
		g.logger.Warn("commit store failed", "file", path, "error", err)
		return ""
	}

	g.logger.Info("recorded store change", "file", path, "commit", hash.String()[:7])
	return hash.String()
}

// History lists the commits that touched path, newest first.
func History(path string, limit int) ([]*Commit, error) {
	repo, rel, err := openRepositoryFor(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return io.EOF
		}
		commits = append(commits, &Commit{
			Hash:      c.Hash.String(),
			Message:   strings.TrimSpace(c.Message),
			Author:    c.Author.Name,
			Timestamp: c.Author.When,
		})
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}
	return commits, nil
}

func openRepositoryFor(path string) (*git.Repository, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path: %w", err)
	}

	gitDir, err := FindGitDir(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	rootPath := filepath.Dir(gitDir)

	storage := filesystem.NewStorage(osfs.New(gitDir), cache.NewObjectLRUDefault())
	repo, err := git.Open(storage, osfs.New(rootPath))
	if err != nil {
		return nil, "", fmt.Errorf("open repository: %w", err)
	}

	rel, err := filepath.Rel(rootPath, abs)
	if err != nil {
		return nil, "", fmt.Errorf("get relative path: %w", err)
	}
	return repo, filepath.ToSlash(rel), nil
}
