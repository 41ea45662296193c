package internal

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"OAuth PKCE intent not triggering", "authentication"},
		{"Unauthorized: bad TOKEN", "authentication"},
		{"connection timeout to db", "networking"},
		{"SQL deadlock detected", "database"},
		{"permission denied writing file", "filesystem"},
		{"heap exhausted", "memory"},
		{"missing env var", "configuration"},
		{"rate limit exceeded", "api"},
		{"race detected between goroutines", "concurrency"},
		{"schema mismatch", "validation"},
		{"compilation failed", "build"},
		{"everything exploded", CategoryUncategorised},
		{"", CategoryUncategorised},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := Classify(tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestCategoriesOrder(t *testing.T) {
	cats := Categories()
	if len(cats) != 11 {
		t.Fatalf("expected 11 categories, got %d", len(cats))
	}
	if cats[0] != "authentication" {
		t.Errorf("first category = %q, want authentication", cats[0])
	}
	if cats[len(cats)-1] != CategoryUncategorised {
		t.Errorf("last category = %q, want %q", cats[len(cats)-1], CategoryUncategorised)
	}
}

func TestKnownCategory(t *testing.T) {
	for _, name := range []string{"database", "build", CategoryUncategorised} {
		if !KnownCategory(name) {
			t.Errorf("KnownCategory(%q) = false", name)
		}
	}
	for _, name := range []string{"Check manifest.json permissions", "Database", ""} {
		if KnownCategory(name) {
			t.Errorf("KnownCategory(%q) = true", name)
		}
	}
}
