package internal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// SnapshotTimeLayout is embedded in snapshot names. It sorts lexically in
// chronological order and has one-second resolution: two snapshots taken in
// the same second share a name and the later one wins.
const SnapshotTimeLayout = "20060102_150405"

type BackupManager struct {
	dir        string
	maxBackups int
	minAge     time.Duration
	logger     Logger
	now        func() time.Time
}

func NewBackupManager(cfg BackupConfig, logger Logger, now func() time.Time) *BackupManager {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &BackupManager{
		dir:        cfg.Dir,
		maxBackups: cfg.MaxBackups,
		minAge:     time.Duration(cfg.MinAgeDays) * 24 * time.Hour,
		logger:     logger,
		now:        now,
	}
}

// Dir returns the snapshot directory for source. A relative backup dir is
// taken relative to the directory holding the store.
func (m *BackupManager) Dir(source string) string {
	if m.dir == "" {
		return filepath.Join(filepath.Dir(source), "backups")
	}
	if filepath.IsAbs(m.dir) {
		return m.dir
	}
	return filepath.Join(filepath.Dir(source), m.dir)
}

func splitName(source string) (stem, ext string) {
	base := filepath.Base(source)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// SnapshotName returns the snapshot file name for source taken at t.
func SnapshotName(source string, t time.Time) string {
	stem, ext := splitName(source)
	return fmt.Sprintf("%s_%s%s", stem, t.Local().Format(SnapshotTimeLayout), ext)
}

// Backup copies source into the snapshot directory and then applies the
// retention policy. A missing source is not an error: nothing is written and
// the returned path is empty.
func (m *BackupManager) Backup(source string) (string, error) {
	src, err := os.Open(source)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("store does not exist, skipping backup", "file", source)
		return "", nil
	}
	if err != nil {
		return "", &IOError{Op: "open", Path: source, Err: err}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", &IOError{Op: "stat", Path: source, Err: err}
	}

	dst := filepath.Join(m.Dir(source), SnapshotName(source, m.now()))
	err = WriteFileAtomic(dst, info.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return "", &IOError{Op: "backup", Path: dst, Err: err}
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		m.logger.Warn("could not preserve snapshot mtime", "file", dst, "error", err)
	}
	m.logger.Info("backup created", "file", dst)

	if _, err := m.Cleanup(source); err != nil {
		m.logger.Warn("backup cleanup failed", "file", source, "error", err)
	}
	return dst, nil
}

// Snapshots lists the snapshots of source, oldest first.
func (m *BackupManager) Snapshots(source string) ([]string, error) {
	dir := m.Dir(source)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "list", Path: dir, Err: err}
	}

	stem, ext := splitName(source)
	pattern := glob.QuoteMeta(stem+"_") + strings.Repeat("?", len(SnapshotTimeLayout)) + glob.QuoteMeta(ext)
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile snapshot pattern: %w", err)
	}

	var snapshots []string
	for _, e := range entries {
		if e.IsDir() || !g.Match(e.Name()) {
			continue
		}
		snapshots = append(snapshots, filepath.Join(dir, e.Name()))
	}
	sort.Strings(snapshots)
	return snapshots, nil
}

// Latest returns the newest snapshot of source, or ErrNoSnapshot.
func (m *BackupManager) Latest(source string) (string, error) {
	snapshots, err := m.Snapshots(source)
	if err != nil {
		return "", err
	}
	if len(snapshots) == 0 {
		return "", ErrNoSnapshot
	}
	return snapshots[len(snapshots)-1], nil
}

// Cleanup enforces retention: when more than maxBackups snapshots exist the
// oldest excess ones become candidates, and a candidate is only deleted once
// it is older than the minimum age. Snapshots inside the count limit are
// never touched. It returns the number of snapshots removed.
func (m *BackupManager) Cleanup(source string) (int, error) {
	snapshots, err := m.Snapshots(source)
	if err != nil {
		return 0, err
	}
	if len(snapshots) <= m.maxBackups {
		return 0, nil
	}

	cutoff := m.now().Add(-m.minAge)
	removed := 0
	for _, path := range snapshots[:len(snapshots)-m.maxBackups] {
		taken, err := snapshotTime(source, path)
		if err != nil {
			m.logger.Warn("could not process backup", "file", path, "error", err)
			continue
		}
		if !taken.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			m.logger.Warn("could not remove backup", "file", path, "error", err)
			continue
		}
		removed++
		m.logger.Info("removed old backup", "file", path)
	}
	return removed, nil
}

func snapshotTime(source, path string) (time.Time, error) {
	stem, ext := splitName(source)
	stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), stem+"_"), ext)
	return time.ParseInLocation(SnapshotTimeLayout, stamp, time.Local)
}
