package internal

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bmatcuk/doublestar/v4"
)

// severityPattern matches a level word standing on its own, in any case, as
// in "level=ERROR", "[CRITICAL]" or "panic: fatal". Attribute keys such as
// "error=..." and plurals like "errors=0" do not count.
var severityPattern = regexp.MustCompile(`(?i)(?:^|[^a-z0-9_])(error|critical|fatal)(?:$|[^a-z0-9_=])`)

const maxLogLine = 1024 * 1024

type LogHit struct {
	File      string
	Timestamp time.Time
	Line      string
	Severity  string
}

// LogScanner greps log files for error markers logged within a recent window.
type LogScanner struct {
	skip   []string
	window time.Duration
	logger Logger
	now    func() time.Time
}

func NewLogScanner(window time.Duration, logger Logger, now func() time.Time) *LogScanner {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &LogScanner{window: window, logger: logger, now: now}
}

// Skip excludes paths from every scan, typically the log file the scanner's
// own logger writes to. Empty paths are ignored.
func (s *LogScanner) Skip(paths ...string) *LogScanner {
	for _, p := range paths {
		if p != "" {
			s.skip = append(s.skip, p)
		}
	}
	return s
}

func (s *LogScanner) skipped(path string) bool {
	for _, p := range s.skip {
		if samePath(p, path) {
			return true
		}
	}
	return false
}

// Expand resolves glob patterns (doublestar syntax, ** included). Plain
// paths are kept even when missing so Scan can report them.
func (s *LogScanner) Expand(patterns []string) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		matches := []string{p}
		if strings.ContainsAny(p, "*?[{") {
			var err error
			matches, err = doublestar.FilepathGlob(p)
			if err != nil {
				s.logger.Warn("invalid log file pattern", "pattern", p, "error", err)
				continue
			}
		}
		for _, m := range matches {
			if !seen[m] && !s.skipped(m) {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths
}

// ScanAll scans every file matched by patterns. Unreadable files are logged
// and skipped.
func (s *LogScanner) ScanAll(patterns []string) []LogHit {
	var hits []LogHit
	for _, path := range s.Expand(patterns) {
		found, err := s.Scan(path)
		if err != nil {
			s.logger.Error("read log file failed", "file", path, "error", err)
			continue
		}
		if len(found) > 0 {
			s.logger.Warn("recent errors found", "file", path, "count", len(found))
		}
		hits = append(hits, found...)
	}
	return hits
}

// Scan returns the error lines of path newer than the window. Lines whose
// timestamp cannot be read are assumed to be recent.
func (s *LogScanner) Scan(path string) ([]LogHit, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("log file not found", "file", path)
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	now := s.now()
	cutoff := now.Add(-s.window)

	var hits []LogHit
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	for scanner.Scan() {
		line := scanner.Text()
		severity := lineSeverity(line)
		if severity == "" {
			continue
		}

		ts, ok := lineTimestamp(line)
		if !ok {
			ts = now
		}
		if !ts.After(cutoff) {
			continue
		}
		hits = append(hits, LogHit{
			File:      path,
			Timestamp: ts,
			Line:      strings.TrimSpace(line),
			Severity:  severity,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "scan", Path: path, Err: err}
	}
	return hits, nil
}

func lineSeverity(line string) string {
	if m := severityPattern.FindStringSubmatch(line); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// lineTimestamp reads a leading timestamp, either slog's "time=..." attribute
// or a "YYYY-MM-DD HH:MM:SS" prefix.
func lineTimestamp(line string) (time.Time, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	if v, ok := strings.CutPrefix(fields[0], "time="); ok {
		t, err := dateparse.ParseLocal(strings.Trim(v, `"`))
		return t, err == nil
	}

	if !strings.HasPrefix(fields[0], "20") {
		return time.Time{}, false
	}
	if len(fields) >= 2 {
		if t, err := dateparse.ParseLocal(fields[0] + " " + fields[1]); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseLocal(fields[0])
	return t, err == nil
}
