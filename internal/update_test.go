package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUpdater(t *testing.T, now *time.Time) (*Updater, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "structured_memory.yaml")
	clock := func() time.Time { return *now }
	backups := NewBackupManager(BackupConfig{Dir: "backups", MaxBackups: 5, MinAgeDays: 180}, nil, clock)
	return NewUpdater(backups, nil, nil, clock), path
}

func TestAddSolutionCreatesStore(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater, path := newTestUpdater(t, &now)

	s, err := updater.AddSolution("OAuth callback fails", "authentication", "Register the redirect URI", path)
	require.NoError(t, err)

	rec, ok := s.Record("authentication", "OAuth callback fails")
	require.True(t, ok)
	assert.Equal(t, "Register the redirect URI", rec.Solution)
	assert.Equal(t, 1, rec.UseCount)
	assert.Equal(t, FormatTimestamp(now), rec.CreatedDate)
	assert.Equal(t, 1, s.TotalSolutions())

	report := NewValidator(nil).ValidateStore(path)
	assert.True(t, report.Valid(), report.Err())
}

func TestAddSolutionTwiceBumpsUseCount(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater, path := newTestUpdater(t, &now)

	_, err := updater.AddSolution("Deadlock on orders", "database", "Lock in id order", path)
	require.NoError(t, err)
	first := FormatTimestamp(now)

	now = now.Add(48 * time.Hour)
	s, err := updater.AddSolution("Deadlock on orders", "database", "Use SKIP LOCKED", path)
	require.NoError(t, err)

	rec, ok := s.Record("database", "Deadlock on orders")
	require.True(t, ok)
	assert.Equal(t, 2, rec.UseCount)
	assert.Equal(t, first, rec.CreatedDate, "created_date of the first insert is kept")
	assert.Equal(t, "Use SKIP LOCKED", rec.Solution)
	assert.Equal(t, 1, s.TotalSolutions())

	updated, _ := s.Meta(MetaLastUpdated)
	assert.Equal(t, FormatTimestamp(now), updated)

	snapshots, err := updater.backups.Snapshots(path)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1, "only the second call had a file to snapshot")
}

func TestAddSolutionClassifiesWhenCategoryEmpty(t *testing.T) {
	now := time.Now()
	updater, path := newTestUpdater(t, &now)

	s, err := updater.AddSolution("connection refused by upstream", "", "Check the port", path)
	require.NoError(t, err)
	assert.True(t, s.HasCategory("networking"))
}

func TestAddSolutionPreservesExistingContent(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater, path := newTestUpdater(t, &now)
	writeFile(t, path, sampleStore)

	s, err := updater.AddSolution("Connection reset by peer", "networking", "Enable keepalive", path)
	require.NoError(t, err)

	rec, _ := s.Record("networking", "Connection reset by peer")
	assert.Equal(t, 4, rec.UseCount)
	assert.Equal(t, "2024-01-01T10:00:00", rec.CreatedDate)

	text := readFile(t, path)
	assert.Contains(t, text, "owner: platform")
	assert.Contains(t, text, "tags:")
	assert.Equal(t, []string{"networking", "database"}, s.Categories())
}

func TestAddSolutionMissingCreatedDateIsStamped(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater, path := newTestUpdater(t, &now)
	writeFile(t, path, `lessons_learned:
  build:
    Flaky linker:
      solution: retry
      use_count: 2
`)

	s, err := updater.AddSolution("Flaky linker", "build", "pin the toolchain", path)
	require.NoError(t, err)

	rec, _ := s.Record("build", "Flaky linker")
	assert.Equal(t, 3, rec.UseCount)
	assert.Equal(t, FormatTimestamp(now), rec.CreatedDate)
}

func TestAddSolutionRejectsEmptyInput(t *testing.T) {
	now := time.Now()
	updater, path := newTestUpdater(t, &now)

	_, err := updater.AddSolution("  ", "api", "x", path)
	assert.ErrorIs(t, err, ErrEmptyProblem)

	_, err = updater.AddSolution("problem", "api", "", path)
	assert.ErrorIs(t, err, ErrEmptySolution)
}

func TestAddSolutionRejectsBrokenStore(t *testing.T) {
	now := time.Now()
	updater, path := newTestUpdater(t, &now)
	writeFile(t, path, "lessons_learned: [\n")

	_, err := updater.AddSolution("problem", "api", "x", path)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "lessons_learned: [\n", readFile(t, path))
}

func TestAddSolutionWritesBlockStyleIntoEmptyFlowMappings(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater, path := newTestUpdater(t, &now)
	writeFile(t, path, "lessons_learned: {}\nmetadata: {}\n")

	_, err := updater.AddSolution("Connection reset by peer", "networking", "Enable keepalive", path)
	require.NoError(t, err)

	text := readFile(t, path)
	assert.NotContains(t, text, "{")
	assert.Contains(t, text, "lessons_learned:\n  networking:\n    Connection reset by peer:\n      solution: Enable keepalive\n")
	assert.Contains(t, text, "\nmetadata:\n  last_updated: ")
}

func TestAddSolutionKeepsWhitespaceInProblemKey(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater, path := newTestUpdater(t, &now)
	writeFile(t, path, `lessons_learned:
  build:
    " Flaky linker ":
      solution: retry
      created_date: "2024-01-01T10:00:00"
      use_count: 2
`)

	s, err := updater.AddSolution(" Flaky linker ", "build", "pin the toolchain", path)
	require.NoError(t, err)

	assert.Equal(t, []string{" Flaky linker "}, s.Problems("build"))
	rec, ok := s.Record("build", " Flaky linker ")
	require.True(t, ok)
	assert.Equal(t, 3, rec.UseCount)
	assert.Equal(t, "2024-01-01T10:00:00", rec.CreatedDate)
}
