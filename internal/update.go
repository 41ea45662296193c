package internal

import (
	"fmt"
	"strings"
	"time"
)

// Updater adds or refreshes single solution records.
type Updater struct {
	backups *BackupManager
	git     *GitRecorder
	logger  Logger
	now     func() time.Time
}

func NewUpdater(backups *BackupManager, git *GitRecorder, logger Logger, now func() time.Time) *Updater {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Updater{backups: backups, git: git, logger: logger, now: now}
}

// AddSolution records solution for problem under category in the store at
// path. A problem seen before keeps its original created_date and has its
// use_count bumped. The store is snapshotted before it is touched.
func (u *Updater) AddSolution(problem, category, solution, path string) (*Store, error) {
	// The key is stored verbatim so a problem that already carries
	// surrounding whitespace keeps hitting the same record.
	if strings.TrimSpace(problem) == "" {
		return nil, ErrEmptyProblem
	}
	if strings.TrimSpace(solution) == "" {
		return nil, ErrEmptySolution
	}
	if category == "" {
		category = Classify(problem)
	}

	if u.backups != nil {
		if _, err := u.backups.Backup(path); err != nil {
			return nil, fmt.Errorf("backup before update: %w", err)
		}
	}

	now := u.now()
	store, err := LoadStore(path, now)
	if err != nil {
		return nil, err
	}
	store.EnsureCategory(category)

	rec := SolutionRecord{
		Solution:    solution,
		CreatedDate: FormatTimestamp(now),
		UseCount:    1,
	}
	if existing, ok := store.Record(category, problem); ok {
		rec.UseCount = existing.UseCount + 1
		if store.HasField(category, problem, FieldCreatedDate) && existing.CreatedDate != "" {
			rec.CreatedDate = existing.CreatedDate
		}
	}

	store.PutRecord(category, problem, rec)
	store.Touch(now)

	if err := SaveStore(path, store); err != nil {
		return nil, err
	}
	u.logger.Info("solution added", "file", path, "category", category, "problem", problem, "use_count", rec.UseCount)

	if u.git != nil {
		u.git.Record(path, fmt.Sprintf("add: %s/%s", category, problem))
	}
	return store, nil
}
