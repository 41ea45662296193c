package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/4thel00z/mnemonic/internal"
)

func TestBackupCmdDefaultsToProjectStore(t *testing.T) {
	a := setupCmdTest(t)
	project := a.svc.Config.Store.Files[0]

	out, err := runRoot(t, a, "--json", "backup")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got["source"] != project {
		t.Errorf("source = %q, want %q", got["source"], project)
	}

	want := filepath.Join(filepath.Dir(project), "backups", internal.SnapshotName(project, testNow))
	if got["snapshot"] != want {
		t.Errorf("snapshot = %q, want %q", got["snapshot"], want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func TestDiffCmdWithoutSnapshot(t *testing.T) {
	a := setupCmdTest(t)

	if _, err := runRoot(t, a, "diff"); err == nil {
		t.Fatal("expected an error without snapshots")
	}
}

func TestDiffCmdShowsChanges(t *testing.T) {
	a := setupCmdTest(t)
	project := a.svc.Config.Store.Files[0]

	if _, err := runRoot(t, a, "backup"); err != nil {
		t.Fatalf("backup: %v", err)
	}
	writeTestFile(t, project, testStore+"# reviewed\n")

	out, err := runRoot(t, a, "diff")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.HasPrefix(out, "--- ") {
		t.Errorf("diff header missing: %q", out)
	}
	if !strings.HasSuffix(out, "+# reviewed\n") {
		t.Errorf("diff = %q", out)
	}
}
