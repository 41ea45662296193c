package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupUseCaseTest(t *testing.T) *Services {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Store.Files = []string{
		filepath.Join(dir, "structured_memory.yaml"),
		filepath.Join(dir, "global_structured_memory.yaml"),
	}
	cfg.Store.ErrorCategories = filepath.Join(dir, "error_categories.yaml")
	writeFile(t, cfg.Store.ErrorCategories, sampleCategories)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewServices(cfg, nil, fixedClock(now))
}

func TestAddSolutionUseCase(t *testing.T) {
	svc := setupUseCaseTest(t)
	ctx := context.Background()
	uc := NewAddSolutionUseCase(svc.Scopes, svc.Updater)

	out, err := uc.Execute(ctx, AddSolutionInput{
		Problem:  "  connection refused by upstream ",
		Solution: "Check the port",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if out.Category != "networking" {
		t.Errorf("category = %q, want networking", out.Category)
	}
	if out.Path != svc.Config.Store.Files[0] {
		t.Errorf("path = %q, want project store", out.Path)
	}
	if out.UseCount != 1 || out.TotalSolutions != 1 {
		t.Errorf("use_count = %d, total = %d, want 1 and 1", out.UseCount, out.TotalSolutions)
	}

	out, err = uc.Execute(ctx, AddSolutionInput{
		Problem:  "Deadlock",
		Solution: "Order locks",
		Category: "database",
		Scope:    "global",
	})
	if err != nil {
		t.Fatalf("add global: %v", err)
	}
	if out.Path != svc.Config.Store.Files[1] {
		t.Errorf("path = %q, want global store", out.Path)
	}
}

func TestValidateUseCase(t *testing.T) {
	svc := setupUseCaseTest(t)
	ctx := context.Background()
	writeFile(t, svc.Config.Store.Files[0], sampleStore)
	writeFile(t, svc.Config.Store.Files[1], sampleStore)

	uc := NewValidateUseCase(svc.Validator, svc.Scopes, svc.Config.Store.ErrorCategories)

	out, err := uc.Execute(ctx, ValidateInput{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(out.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(out.Reports))
	}
	if !out.Valid() {
		t.Errorf("expected all files valid")
	}

	writeFile(t, svc.Config.Store.Files[1], "lessons_learned: 1\n")
	out, err = uc.Execute(ctx, ValidateInput{Paths: []string{svc.Config.Store.Files[1]}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.Valid() {
		t.Errorf("expected validation failure")
	}
}

func TestValidateUseCaseRelativeCategoriesPath(t *testing.T) {
	svc := setupUseCaseTest(t)
	dir := filepath.Dir(svc.Config.Store.ErrorCategories)
	t.Chdir(dir)

	uc := NewValidateUseCase(svc.Validator, svc.Scopes, "error_categories.yaml")
	for _, path := range []string{svc.Config.Store.ErrorCategories, "./error_categories.yaml"} {
		out, err := uc.Execute(context.Background(), ValidateInput{Paths: []string{path}})
		if err != nil {
			t.Fatalf("validate %s: %v", path, err)
		}
		if !out.Valid() {
			t.Errorf("%s checked against the wrong schema: %v", path, out.Reports[0].Err())
		}
	}
}

func TestValidateUseCaseAllowMissing(t *testing.T) {
	svc := setupUseCaseTest(t)
	ctx := context.Background()
	uc := NewValidateUseCase(svc.Validator, svc.Scopes, svc.Config.Store.ErrorCategories)

	out, err := uc.Execute(ctx, ValidateInput{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.Valid() {
		t.Fatalf("expected missing stores to fail without AllowMissing")
	}

	out, err = uc.Execute(ctx, ValidateInput{AllowMissing: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !out.Valid() {
		t.Fatalf("expected missing stores to be skipped")
	}
	if len(out.Reports) != 3 || len(out.Reports[0].Warnings) != 1 {
		t.Errorf("unexpected reports: %+v", out.Reports)
	}

	writeFile(t, svc.Config.Store.Files[0], "lessons_learned: [\n")
	out, _ = uc.Execute(ctx, ValidateInput{AllowMissing: true})
	if out.Valid() {
		t.Errorf("a present but broken store must still fail")
	}
}

func TestLookupUseCase(t *testing.T) {
	svc := setupUseCaseTest(t)
	ctx := context.Background()
	writeFile(t, svc.Config.Store.Files[0], sampleStore)
	writeFile(t, svc.Config.Store.Files[1], `lessons_learned:
  database:
    Deadlock on orders table:
      solution: Use SKIP LOCKED
      created_date: "2024-05-20T09:00:00"
      use_count: 5
`)
	uc := NewLookupUseCase(svc.Scopes, fixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))

	out, err := uc.Execute(ctx, LookupInput{Category: "networking", Problem: "Connection reset by peer"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if out.Scope.Type != ScopeProject || out.Record.UseCount != 3 {
		t.Errorf("unexpected lookup: %+v", out)
	}

	out, err = uc.Execute(ctx, LookupInput{Category: "database", Problem: "Deadlock on orders table"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if out.Scope.Type != ScopeGlobal || out.Strategy != StrategyPopularity {
		t.Errorf("expected the more used global record, got %+v", out)
	}

	_, err = uc.Execute(ctx, LookupInput{Category: "database", Problem: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBackupAndDiffUseCase(t *testing.T) {
	svc := setupUseCaseTest(t)
	ctx := context.Background()
	store := svc.Config.Store.Files[0]

	diffUC := NewDiffUseCase(svc.Scopes, svc.Backups)
	if _, err := diffUC.Execute(ctx, DiffInput{}); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	writeFile(t, store, sampleStore)
	out, err := NewBackupUseCase(svc.Scopes, svc.Backups).Execute(ctx, BackupInput{})
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if out.Source != store || out.Snapshot == "" {
		t.Fatalf("unexpected backup output: %+v", out)
	}

	writeFile(t, store, sampleStore+"extra: 1\n")
	d, err := diffUC.Execute(ctx, DiffInput{Path: store})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if d.Diff != "+extra: 1\n" {
		t.Errorf("diff = %q", d.Diff)
	}
}

func TestStatsUseCase(t *testing.T) {
	svc := setupUseCaseTest(t)
	writeFile(t, svc.Config.Store.Files[1], sampleStore)

	stats, err := NewStatsUseCase(svc.Scopes, nil).Execute(context.Background(), StatsInput{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(stats.Files))
	}
	if stats.Files[0].TotalSolutions != 2 {
		t.Errorf("total = %d, want 2", stats.Files[0].TotalSolutions)
	}
}

func TestHistoryUseCaseOutsideRepository(t *testing.T) {
	svc := setupUseCaseTest(t)
	writeFile(t, svc.Config.Store.Files[0], sampleStore)

	_, err := NewHistoryUseCase(svc.Scopes).Execute(context.Background(), HistoryInput{})
	if !errors.Is(err, ErrNotInRepository) {
		t.Errorf("expected ErrNotInRepository, got %v", err)
	}
}
