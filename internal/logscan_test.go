package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

func TestLogScannerScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.log")
	writeFile(t, path, `2024-06-01 11:30:00,123 - ERROR - failed to write store
2024-06-01 09:00:00,000 - ERROR - too old to matter
2024-06-01 11:45:00,000 - INFO - all good
time=2024-06-01T11:50:00.000+00:00 level=ERROR msg="validation failed"
panic: something fatal happened without a timestamp
2024-06-01 11:59:00 - critical - disk full
`)

	scanner := NewLogScanner(time.Hour, nil, fixedClock(scanNow))
	hits, err := scanner.Scan(path)
	require.NoError(t, err)

	var lines []string
	for _, h := range hits {
		lines = append(lines, h.Line)
	}
	assert.Contains(t, lines, "2024-06-01 11:30:00,123 - ERROR - failed to write store")
	assert.Contains(t, lines, "panic: something fatal happened without a timestamp")
	assert.Contains(t, lines, "2024-06-01 11:59:00 - critical - disk full")
	assert.NotContains(t, lines, "2024-06-01 09:00:00,000 - ERROR - too old to matter")
	assert.NotContains(t, lines, "2024-06-01 11:45:00,000 - INFO - all good")
}

func TestLogScannerMissingFile(t *testing.T) {
	logger := newRecordingLogger()
	scanner := NewLogScanner(time.Hour, logger, fixedClock(scanNow))

	hits, err := scanner.Scan(filepath.Join(t.TempDir(), "absent.log"))
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.True(t, logger.has("WARNING", "log file not found"))
}

func TestLogScannerExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), "")
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.log"), "")
	writeFile(t, filepath.Join(dir, "c.txt"), "")

	scanner := NewLogScanner(time.Hour, nil, nil)
	paths := scanner.Expand([]string{
		filepath.Join(dir, "**", "*.log"),
		filepath.Join(dir, "a.log"),
		filepath.Join(dir, "missing.log"),
	})

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.log"),
		filepath.Join(dir, "nested", "deep", "b.log"),
		filepath.Join(dir, "missing.log"),
	}, paths)
}

func TestLogScannerScanAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.log"), "2024-06-01 11:58:00 ERROR one\n")
	writeFile(t, filepath.Join(dir, "two.log"), "2024-06-01 11:59:00 FATAL two\n")

	scanner := NewLogScanner(time.Hour, nil, fixedClock(scanNow))
	hits := scanner.ScanAll([]string{filepath.Join(dir, "*.log")})
	require.Len(t, hits, 2)
	assert.Equal(t, "ERROR", hits[0].Severity)
	assert.Equal(t, "FATAL", hits[1].Severity)
}

func TestLineTimestamp(t *testing.T) {
	ts, ok := lineTimestamp("2024-06-01 11:30:00,123 - ERROR - x")
	require.True(t, ok)
	assert.Equal(t, 11, ts.Hour())
	assert.Equal(t, 30, ts.Minute())

	_, ok = lineTimestamp("ERROR without time")
	assert.False(t, ok)

	_, ok = lineTimestamp("")
	assert.False(t, ok)
}

func TestLineSeverityIgnoresAttributeKeysAndPlurals(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`time=2024-06-01T11:50:00Z level=WARNING msg="alert generated" errors=0 health_issues=1`, ""},
		{`time=2024-06-01T11:50:00Z level=WARNING msg="recent errors found" file=mcp.log count=2`, ""},
		{`time=2024-06-01T11:50:00Z level=INFO msg="retrying" error="dial tcp: refused"`, ""},
		{`time=2024-06-01T11:50:00Z level=ERROR msg="read log file failed"`, "ERROR"},
		{`2024-06-01 11:30:00 [CRITICAL] disk full`, "CRITICAL"},
		{`panic: fatal signal`, "FATAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lineSeverity(tt.line), tt.line)
	}
}
