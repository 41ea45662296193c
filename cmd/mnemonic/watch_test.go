package main

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestShouldIgnoreEvent(t *testing.T) {
	watched := map[string]bool{"/project/structured_memory.yaml": true}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "write to a store",
			event: fsnotify.Event{Name: "/project/structured_memory.yaml", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "store replaced by rename",
			event: fsnotify.Event{Name: "/project/structured_memory.yaml", Op: fsnotify.Create},
			want:  false,
		},
		{
			name:  "store removed",
			event: fsnotify.Event{Name: "/project/structured_memory.yaml", Op: fsnotify.Remove},
			want:  false,
		},
		{
			name:  "temp file next to the store",
			event: fsnotify.Event{Name: "/project/.structured_memory.yaml.123.tmp", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "unrelated file",
			event: fsnotify.Event{Name: "/project/notes.txt", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "chmod event ignored",
			event: fsnotify.Event{Name: "/project/structured_memory.yaml", Op: fsnotify.Chmod},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldIgnoreEvent(tt.event, watched)
			if got != tt.want {
				t.Errorf("shouldIgnoreEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatchedFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	wd, _ := filepath.Abs(".")

	watched, err := watchedFiles([]string{"structured_memory.yaml", "", "/abs/global.yaml"})
	if err != nil {
		t.Fatalf("watchedFiles: %v", err)
	}
	if len(watched) != 2 {
		t.Fatalf("expected 2 files, got %v", watched)
	}
	if !watched[filepath.Join(wd, "structured_memory.yaml")] {
		t.Errorf("relative path not resolved: %v", watched)
	}
	if !watched["/abs/global.yaml"] {
		t.Errorf("absolute path changed: %v", watched)
	}
}

func TestAddWatchDirsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	files := map[string]bool{
		filepath.Join(dir, "a.yaml"): true,
		filepath.Join(dir, "b.yaml"): true,
	}
	if err := addWatchDirs(watcher, files); err != nil {
		t.Fatalf("addWatchDirs: %v", err)
	}
	if got := watcher.WatchList(); len(got) != 1 || got[0] != dir {
		t.Errorf("watch list = %v, want [%s]", got, dir)
	}
}
