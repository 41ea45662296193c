package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Use case input/output DTOs

type AddSolutionInput struct {
	Problem  string
	Solution string
	Category string
	Scope    string
	Path     string
}

type AddSolutionOutput struct {
	Path           string
	Category       string
	UseCount       int
	CreatedDate    string
	TotalSolutions int
}

type ValidateInput struct {
	Paths []string
	// AllowMissing turns a file that does not exist into a warning.
	AllowMissing bool
}

type ValidateOutput struct {
	Reports []*Report
}

func (o *ValidateOutput) Valid() bool {
	for _, r := range o.Reports {
		if !r.Valid() {
			return false
		}
	}
	return true
}

type LookupInput struct {
	Category string
	Problem  string
}

type LookupOutput struct {
	Scope    Scope
	Record   SolutionRecord
	Strategy ConflictStrategy
	Reason   string
}

type BackupInput struct {
	Path  string
	Scope string
}

type BackupOutput struct {
	Source   string
	Snapshot string
}

type DiffInput struct {
	Path  string
	Scope string
}

type StatsInput struct {
	Paths []string
}

type HistoryInput struct {
	Path  string
	Scope string
	Limit int
}

type CommitOutput struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
}

type HistoryOutput struct {
	Path    string
	Commits []CommitOutput
}

// Use cases

type AddSolutionUseCase struct {
	scopes  *ScopeResolver
	updater *Updater
}

func NewAddSolutionUseCase(scopes *ScopeResolver, updater *Updater) *AddSolutionUseCase {
	return &AddSolutionUseCase{scopes: scopes, updater: updater}
}

func (uc *AddSolutionUseCase) Execute(ctx context.Context, input AddSolutionInput) (*AddSolutionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := input.Path
	if path == "" {
		path = uc.scopes.Resolve(input.Scope).Path
	}
	category := input.Category
	if category == "" {
		category = Classify(input.Problem)
	}

	store, err := uc.updater.AddSolution(input.Problem, category, input.Solution, path)
	if err != nil {
		return nil, err
	}

	rec, _ := store.Record(category, input.Problem)
	return &AddSolutionOutput{
		Path:           path,
		Category:       category,
		UseCount:       rec.UseCount,
		CreatedDate:    rec.CreatedDate,
		TotalSolutions: store.TotalSolutions(),
	}, nil
}

type ValidateUseCase struct {
	validator  *Validator
	scopes     *ScopeResolver
	categories string
}

func NewValidateUseCase(validator *Validator, scopes *ScopeResolver, categories string) *ValidateUseCase {
	return &ValidateUseCase{validator: validator, scopes: scopes, categories: categories}
}

// Execute validates the given paths, or every configured store plus the
// error categories file when none are given. A path resolving to the
// categories file is checked against the categories schema.
func (uc *ValidateUseCase) Execute(ctx context.Context, input ValidateInput) (*ValidateOutput, error) {
	paths := input.Paths
	if len(paths) == 0 {
		for _, s := range uc.scopes.Cascade() {
			paths = append(paths, s.Path)
		}
		if uc.categories != "" {
			paths = append(paths, uc.categories)
		}
	}

	out := &ValidateOutput{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if input.AllowMissing {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				out.Reports = append(out.Reports, uc.validator.SkipMissing(path))
				continue
			}
		}
		if uc.categories != "" && samePath(path, uc.categories) {
			out.Reports = append(out.Reports, uc.validator.ValidateErrorCategories(path))
			continue
		}
		out.Reports = append(out.Reports, uc.validator.ValidateStore(path))
	}
	return out, nil
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// LookupUseCase finds a solution across the project and global stores. When
// both hold the problem the conflict policy picks one.
type LookupUseCase struct {
	scopes *ScopeResolver
	now    func() time.Time
}

func NewLookupUseCase(scopes *ScopeResolver, now func() time.Time) *LookupUseCase {
	if now == nil {
		now = time.Now
	}
	return &LookupUseCase{scopes: scopes, now: now}
}

func (uc *LookupUseCase) Execute(ctx context.Context, input LookupInput) (*LookupOutput, error) {
	now := uc.now()
	var project, global *ScopedRecord
	for _, scope := range uc.scopes.Cascade() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if (scope.Type == ScopeProject && project != nil) || (scope.Type == ScopeGlobal && global != nil) {
			continue
		}
		store, err := LoadStore(scope.Path, now)
		if err != nil {
			return nil, err
		}
		rec, ok := store.Record(input.Category, input.Problem)
		if !ok {
			continue
		}
		found := &ScopedRecord{Scope: scope, Record: rec}
		if scope.Type == ScopeGlobal {
			global = found
		} else {
			project = found
		}
	}

	res, ok := ResolveConflict(project, global, now)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", input.Category, input.Problem, ErrNotFound)
	}
	return &LookupOutput{
		Scope:    res.Scope,
		Record:   res.Record,
		Strategy: res.Strategy,
		Reason:   res.Reason,
	}, nil
}

type BackupUseCase struct {
	scopes  *ScopeResolver
	backups *BackupManager
}

func NewBackupUseCase(scopes *ScopeResolver, backups *BackupManager) *BackupUseCase {
	return &BackupUseCase{scopes: scopes, backups: backups}
}

func (uc *BackupUseCase) Execute(ctx context.Context, input BackupInput) (*BackupOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := input.Path
	if path == "" {
		path = uc.scopes.Resolve(input.Scope).Path
	}

	snapshot, err := uc.backups.Backup(path)
	if err != nil {
		return nil, err
	}
	return &BackupOutput{Source: path, Snapshot: snapshot}, nil
}

type DiffUseCase struct {
	scopes  *ScopeResolver
	backups *BackupManager
}

func NewDiffUseCase(scopes *ScopeResolver, backups *BackupManager) *DiffUseCase {
	return &DiffUseCase{scopes: scopes, backups: backups}
}

func (uc *DiffUseCase) Execute(ctx context.Context, input DiffInput) (*SnapshotDiff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := input.Path
	if path == "" {
		path = uc.scopes.Resolve(input.Scope).Path
	}
	return uc.backups.DiffLatest(path)
}

type StatsUseCase struct {
	scopes *ScopeResolver
	now    func() time.Time
}

func NewStatsUseCase(scopes *ScopeResolver, now func() time.Time) *StatsUseCase {
	if now == nil {
		now = time.Now
	}
	return &StatsUseCase{scopes: scopes, now: now}
}

func (uc *StatsUseCase) Execute(ctx context.Context, input StatsInput) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths := input.Paths
	if len(paths) == 0 {
		for _, s := range uc.scopes.Cascade() {
			paths = append(paths, s.Path)
		}
	}
	stats := CollectStats(paths, uc.now())
	return &stats, nil
}

type HistoryUseCase struct {
	scopes *ScopeResolver
}

func NewHistoryUseCase(scopes *ScopeResolver) *HistoryUseCase {
	return &HistoryUseCase{scopes: scopes}
}

func (uc *HistoryUseCase) Execute(ctx context.Context, input HistoryInput) (*HistoryOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := input.Path
	if path == "" {
		path = uc.scopes.Resolve(input.Scope).Path
	}

	commits, err := History(path, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &HistoryOutput{Path: path, Commits: make([]CommitOutput, len(commits))}
	for i, c := range commits {
		out.Commits[i] = CommitOutput{
			Hash:      c.Hash,
			Message:   c.Message,
			Author:    c.Author,
			Timestamp: c.Timestamp,
		}
	}
	return out, nil
}
