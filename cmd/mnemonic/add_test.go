package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestSplitAddArgs(t *testing.T) {
	tests := []struct {
		name                        string
		args                        []string
		problem, category, solution string
	}{
		{
			name:     "problem and solution",
			args:     []string{"disk full", "rotate logs"},
			problem:  "disk full",
			solution: "rotate logs",
		},
		{
			name:     "category in the middle",
			args:     []string{"disk full", "filesystem", "rotate logs"},
			problem:  "disk full",
			category: "filesystem",
			solution: "rotate logs",
		},
		{
			name:     "category last",
			args:     []string{"disk full", "rotate logs", "filesystem"},
			problem:  "disk full",
			category: "filesystem",
			solution: "rotate logs",
		},
		{
			name:     "unknown middle word is the solution",
			args:     []string{"disk full", "rotate", "ops"},
			problem:  "disk full",
			category: "ops",
			solution: "rotate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem, category, solution := splitAddArgs(tt.args)
			if problem != tt.problem || category != tt.category || solution != tt.solution {
				t.Errorf("splitAddArgs(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.args, problem, category, solution, tt.problem, tt.category, tt.solution)
			}
		})
	}
}

func TestAddCmdBumpsUseCount(t *testing.T) {
	a := setupCmdTest(t)
	project := a.svc.Config.Store.Files[0]

	out, err := runRoot(t, a, "add", "Connection reset by peer", "networking", "Use keepalive")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "(use count 4)") {
		t.Errorf("add output = %q, want use count 4", out)
	}

	content, _ := os.ReadFile(project)
	if !strings.Contains(string(content), "Use keepalive") {
		t.Errorf("solution not written:\n%s", content)
	}
	if !strings.Contains(string(content), "2024-05-01T10:00:00") {
		t.Errorf("created_date must be preserved:\n%s", content)
	}
}

func TestAddCmdJSON(t *testing.T) {
	a := setupCmdTest(t)

	out, err := runRoot(t, a, "--json", "add", "  token expired  ", "refresh it")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got["category"] != "authentication" {
		t.Errorf("category = %v, want authentication", got["category"])
	}
	if got["problem"] != "  token expired  " {
		t.Errorf("problem = %q, want the key as given", got["problem"])
	}
	if got["use_count"] != float64(1) {
		t.Errorf("use_count = %v, want 1", got["use_count"])
	}
	if got["total_solutions"] != float64(3) {
		t.Errorf("total_solutions = %v, want 3", got["total_solutions"])
	}
}

func TestAddCmdRejectsConflictingCategory(t *testing.T) {
	a := setupCmdTest(t)

	if _, err := runRoot(t, a, "add", "--category", "database", "disk full", "filesystem", "rotate logs"); err == nil {
		t.Fatal("expected an error for two different categories")
	}
}

func TestAddCmdRequiresSolution(t *testing.T) {
	a := setupCmdTest(t)

	if _, err := runRoot(t, a, "add", "only a problem"); err == nil {
		t.Fatal("expected an argument error")
	}
	if _, err := runRoot(t, a, "add", "problem", "   "); err == nil {
		t.Fatal("expected an error for a blank solution")
	}
}
