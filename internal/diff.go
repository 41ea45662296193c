package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type SnapshotDiff struct {
	Snapshot string
	Diff     string
}

// DiffLatest compares the newest snapshot of source against its current
// content. Diff is empty when nothing changed since the snapshot.
func (m *BackupManager) DiffLatest(source string) (*SnapshotDiff, error) {
	snapshot, err := m.Latest(source)
	if err != nil {
		return nil, err
	}

	before, err := os.ReadFile(snapshot)
	if err != nil {
		return nil, &IOError{Op: "read", Path: snapshot, Err: err}
	}
	after, err := os.ReadFile(source)
	if err != nil {
		return nil, &IOError{Op: "read", Path: source, Err: err}
	}

	return &SnapshotDiff{Snapshot: snapshot, Diff: LineDiff(string(before), string(after))}, nil
}

// LineDiff renders a line-oriented diff with "+" / "-" prefixes. Unchanged
// lines are omitted.
func LineDiff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			fmt.Fprintf(&sb, "%s%s", prefix, line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
