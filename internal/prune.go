package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PruneCandidate is a record whose created_date falls before the cutoff.
type PruneCandidate struct {
	Category string
	Problem  string
	Created  time.Time
}

type PruneResult struct {
	Candidates []PruneCandidate
	Skipped    int
	Remaining  int
}

func (r PruneResult) Count() int { return len(r.Candidates) }

// PruneOptions controls how created_date values are compared to the cutoff.
// By default zone information is dropped and wall clocks are compared in
// local time; NormalizeUTC compares absolute instants instead.
type PruneOptions struct {
	NormalizeUTC bool
	DryRun       bool
}

// PruneStore removes every record created strictly before cutoff, unless
// DryRun is set. Records with unparsable dates are logged and kept.
func PruneStore(s *Store, cutoff time.Time, opts PruneOptions, logger Logger) PruneResult {
	if logger == nil {
		logger = NopLogger()
	}
	if !opts.NormalizeUTC {
		cutoff = Timestamp{Time: cutoff.In(time.Local)}.Naive()
	}

	var res PruneResult
	for _, category := range s.Categories() {
		for _, problem := range s.Problems(category) {
			node := s.problemNode(category, problem)
			if node == nil {
				continue
			}
			raw := mappingValue(node, FieldCreatedDate)
			if raw == nil {
				continue
			}

			created, err := parseCreated(raw)
			if err != nil {
				res.Skipped++
				logger.Warn("invalid date, entry skipped", "category", category, "problem", problem, "error", err)
				continue
			}

			when := created.Naive()
			if opts.NormalizeUTC {
				when = created.Time.UTC()
			}
			if when.Before(cutoff) {
				res.Candidates = append(res.Candidates, PruneCandidate{Category: category, Problem: problem, Created: when})
				logger.Info("pruning old entry", "category", category, "problem", problem, "created", when.Format(time.DateOnly))
			}
		}
	}

	if !opts.DryRun {
		for _, c := range res.Candidates {
			s.RemoveProblem(c.Category, c.Problem)
		}
	}
	res.Remaining = s.CountSolutions()
	return res
}

func parseCreated(n *yaml.Node) (Timestamp, error) {
	if n.Kind != yaml.ScalarNode {
		return Timestamp{}, fmt.Errorf("created_date is not a scalar")
	}
	return ParseTimestamp(n.Value)
}

// Pruner applies PruneStore to store files, snapshotting before each rewrite.
type Pruner struct {
	backups *BackupManager
	git     *GitRecorder
	logger  Logger
	now     func() time.Time
	opts    PruneOptions
}

func NewPruner(backups *BackupManager, git *GitRecorder, logger Logger, now func() time.Time, normalizeUTC bool) *Pruner {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Pruner{
		backups: backups,
		git:     git,
		logger:  logger,
		now:     now,
		opts:    PruneOptions{NormalizeUTC: normalizeUTC},
	}
}

// Prune removes entries older than maxAgeDays from the store at path and
// returns how many were (or, with dryRun, would be) removed. A maxAgeDays of
// zero puts the cutoff at now; a negative one falls back to the default.
func (p *Pruner) Prune(path string, maxAgeDays int, dryRun bool) (int, error) {
	if maxAgeDays < 0 {
		maxAgeDays = DefaultMaxAgeDays
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("file does not exist", "file", path)
		return 0, nil
	}
	if err != nil {
		return 0, &IOError{Op: "read", Path: path, Err: err}
	}

	now := p.now()
	store, err := ParseStore(path, data, now)
	if err != nil {
		return 0, err
	}
	if len(store.Categories()) == 0 {
		p.logger.Warn("no lessons_learned entries found", "file", path)
		return 0, nil
	}

	opts := p.opts
	opts.DryRun = dryRun
	cutoff := now.AddDate(0, 0, -maxAgeDays)
	res := PruneStore(store, cutoff, opts, p.logger.With("file", path))

	if dryRun {
		p.logger.Info(fmt.Sprintf("would prune %d old entries (dry run)", res.Count()), "file", path)
		return res.Count(), nil
	}
	if res.Count() == 0 {
		p.logger.Info("nothing to prune", "file", path)
		return 0, nil
	}

	stamp := FormatTimestamp(now)
	store.SetMeta(MetaLastPruned, stamp)
	store.SetMeta(MetaLastUpdated, stamp)
	store.SetMeta(MetaTotalSolutions, res.Remaining)

	if p.backups != nil {
		if _, err := p.backups.Backup(path); err != nil {
			return 0, fmt.Errorf("backup before prune: %w", err)
		}
	}
	if err := SaveStore(path, store); err != nil {
		return 0, err
	}
	p.logger.Info(fmt.Sprintf("pruned %d old entries, %d solutions remaining", res.Count(), res.Remaining), "file", path)

	if p.git != nil {
		p.git.Record(path, fmt.Sprintf("prune: remove %d entries older than %d days", res.Count(), maxAgeDays))
	}
	return res.Count(), nil
}
