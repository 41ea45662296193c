package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "structured_memory.yaml")
	bad := filepath.Join(dir, "global_structured_memory.yaml")
	writeFile(t, good, sampleStore)
	writeFile(t, bad, "lessons_learned: [\n")

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stats := CollectStats([]string{good, bad, filepath.Join(dir, "absent.yaml")}, now)

	assert.Equal(t, now, stats.Timestamp)
	require.Len(t, stats.Files, 2, "missing files are skipped")

	assert.Equal(t, good, stats.Files[0].Path)
	assert.Equal(t, 2, stats.Files[0].Categories)
	assert.Equal(t, 2, stats.Files[0].TotalSolutions)
	assert.Empty(t, stats.Files[0].Error)

	assert.Equal(t, bad, stats.Files[1].Path)
	assert.NotEmpty(t, stats.Files[1].Error)
}

func TestRoundMB(t *testing.T) {
	assert.Equal(t, 1.0, roundMB(bytesPerMB))
	assert.Equal(t, 0.001, roundMB(1100))
	assert.Equal(t, 0.0, roundMB(0))
}

func TestCheckFileSizes(t *testing.T) {
	dir := t.TempDir()
	sizes := map[string]int64{
		"small.yaml":  512,
		"medium.yaml": 2 * bytesPerMB,
		"large.yaml":  12 * bytesPerMB,
	}
	var paths []string
	for name, size := range sizes {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, f.Truncate(size))
		require.NoError(t, f.Close())
		paths = append(paths, path)
	}
	paths = append(paths, filepath.Join(dir, "absent.yaml"))

	findings := CheckFileSizes(paths, 10, 1)
	require.Len(t, findings, 2)

	byName := map[string]SizeFinding{}
	for _, f := range findings {
		byName[filepath.Base(f.Path)] = f
	}
	assert.True(t, byName["large.yaml"].Severe)
	assert.False(t, byName["medium.yaml"].Severe)
	assert.InDelta(t, 2.0, byName["medium.yaml"].SizeMB, 0.001)
}
