package v1

import "time"

// Solution is one recorded fix for a problem.
type Solution struct {
	Category    string `json:"category"`
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	CreatedDate string `json:"created_date"`
	UseCount    int    `json:"use_count"`
	Scope       string `json:"scope,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
}

// ValidationReport holds the diagnostics for one file.
type ValidationReport struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// CheckResult summarizes a maintenance run.
type CheckResult struct {
	Reports     []ValidationReport `json:"reports"`
	Pruned      map[string]int     `json:"pruned"`
	TotalPruned int                `json:"total_pruned"`
}

// StoreStats counts the content of one store.
type StoreStats struct {
	Path           string  `json:"path"`
	Categories     int     `json:"categories"`
	TotalSolutions int     `json:"total_solutions"`
	SizeMB         float64 `json:"size_mb"`
	Error          string  `json:"error,omitempty"`
}

// Commit represents a git commit that touched a store.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}
