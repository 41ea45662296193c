package internal

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

const bytesPerMB = 1024 * 1024

type FileStats struct {
	Path           string  `json:"path"`
	Categories     int     `json:"categories"`
	TotalSolutions int     `json:"total_solutions"`
	SizeMB         float64 `json:"size_mb"`
	Error          string  `json:"error,omitempty"`
}

type Stats struct {
	Timestamp time.Time   `json:"timestamp"`
	Files     []FileStats `json:"files"`
}

// CollectStats summarizes each existing store. Unreadable stores are
// reported with Error set instead of failing the whole collection.
func CollectStats(paths []string, now time.Time) Stats {
	stats := Stats{Timestamp: now, Files: []FileStats{}}
	for _, path := range paths {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			stats.Files = append(stats.Files, FileStats{Path: path, Error: err.Error()})
			continue
		}

		store, err := LoadStore(path, now)
		if err != nil {
			stats.Files = append(stats.Files, FileStats{Path: path, Error: err.Error()})
			continue
		}

		stats.Files = append(stats.Files, FileStats{
			Path:           path,
			Categories:     len(store.Categories()),
			TotalSolutions: store.CountSolutions(),
			SizeMB:         roundMB(info.Size()),
		})
	}
	return stats
}

func roundMB(size int64) float64 {
	mb := float64(size) / bytesPerMB
	return float64(int64(mb*1000+0.5)) / 1000
}

// SizeFinding flags a file above one of two thresholds. Severe is set when
// the upper threshold was crossed.
type SizeFinding struct {
	Path   string
	SizeMB float64
	Severe bool
}

func CheckFileSizes(paths []string, severeMB, noticeMB float64) []SizeFinding {
	var findings []SizeFinding
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		mb := float64(info.Size()) / bytesPerMB
		switch {
		case mb > severeMB:
			findings = append(findings, SizeFinding{Path: path, SizeMB: mb, Severe: true})
		case mb > noticeMB:
			findings = append(findings, SizeFinding{Path: path, SizeMB: mb})
		}
	}
	return findings
}
