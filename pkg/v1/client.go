package v1

import (
	"context"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
)

var (
	ErrNotFound         = internal.ErrNotFound
	ErrValidationFailed = internal.ErrValidationFailed
)

// Client provides programmatic access to the lessons-learned stores.
type Client struct {
	svc   *internal.Services
	scope string
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	conf, err := internal.LoadConfig(cfg.configFile)
	if err != nil {
		return nil, err
	}
	if len(cfg.stores) > 0 {
		conf.Store.Files = cfg.stores
	}
	if cfg.categories != "" {
		conf.Store.ErrorCategories = cfg.categories
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	logger := internal.NopLogger()
	if cfg.logOutput != nil {
		logger = internal.NewSlogLogger(cfg.logOutput, cfg.logLevel)
	}

	return &Client{
		svc:   internal.NewServices(conf, logger, nil),
		scope: cfg.scope,
	}, nil
}

// AddSolution records solution for problem. An empty category is derived
// from the problem text.
func (c *Client) AddSolution(ctx context.Context, problem, solution, category string) (*Solution, error) {
	uc := internal.NewAddSolutionUseCase(c.svc.Scopes, c.svc.Updater)
	out, err := uc.Execute(ctx, internal.AddSolutionInput{
		Problem: problem, Solution: solution, Category: category, Scope: c.scope,
	})
	if err != nil {
		return nil, fmt.Errorf("add solution: %w", err)
	}
	return &Solution{
		Category:    out.Category,
		Problem:     problem,
		Solution:    solution,
		CreatedDate: out.CreatedDate,
		UseCount:    out.UseCount,
	}, nil
}

// Lookup returns the recorded solution for problem in category. Both the
// project and the global store are searched; when each holds the problem the
// conflict policy decides, and Strategy names the rule that did.
func (c *Client) Lookup(ctx context.Context, category, problem string) (*Solution, error) {
	uc := internal.NewLookupUseCase(c.svc.Scopes, nil)
	out, err := uc.Execute(ctx, internal.LookupInput{Category: category, Problem: problem})
	if err != nil {
		return nil, err
	}
	return &Solution{
		Category:    category,
		Problem:     problem,
		Solution:    out.Record.Solution,
		CreatedDate: out.Record.CreatedDate,
		UseCount:    out.Record.UseCount,
		Scope:       string(out.Scope.Type),
		Strategy:    string(out.Strategy),
	}, nil
}

// Validate checks every store and the error categories file.
func (c *Client) Validate(ctx context.Context) ([]ValidationReport, error) {
	uc := internal.NewValidateUseCase(c.svc.Validator, c.svc.Scopes, c.svc.Config.Store.ErrorCategories)
	out, err := uc.Execute(ctx, internal.ValidateInput{})
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return toReports(out.Reports), nil
}

// Check runs the maintenance pass. When a file is invalid nothing is pruned
// and the error matches ErrValidationFailed; the reports are still returned.
func (c *Client) Check(ctx context.Context, dryRun bool) (*CheckResult, error) {
	out, err := c.svc.Maintenance.Check(ctx, internal.CheckInput{DryRun: dryRun})
	if out == nil {
		return nil, err
	}
	return &CheckResult{
		Reports:     toReports(out.Reports),
		Pruned:      out.Pruned,
		TotalPruned: out.TotalPruned,
	}, err
}

// Backup snapshots the store of the client's scope.
func (c *Client) Backup(ctx context.Context) (string, error) {
	out, err := internal.NewBackupUseCase(c.svc.Scopes, c.svc.Backups).Execute(ctx, internal.BackupInput{Scope: c.scope})
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	return out.Snapshot, nil
}

// Stats counts categories and solutions per existing store.
func (c *Client) Stats(ctx context.Context) ([]StoreStats, error) {
	out, err := internal.NewStatsUseCase(c.svc.Scopes, nil).Execute(ctx, internal.StatsInput{})
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	stats := make([]StoreStats, 0, len(out.Files))
	for _, f := range out.Files {
		stats = append(stats, StoreStats(f))
	}
	return stats, nil
}

// History returns up to limit commits that touched the store, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]Commit, error) {
	out, err := internal.NewHistoryUseCase(c.svc.Scopes).Execute(ctx, internal.HistoryInput{Scope: c.scope, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	commits := make([]Commit, 0, len(out.Commits))
	for _, cm := range out.Commits {
		commits = append(commits, Commit(cm))
	}
	return commits, nil
}

// Classify maps an error message to a category name.
func (c *Client) Classify(message string) string {
	return internal.Classify(message)
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func toReports(reports []*internal.Report) []ValidationReport {
	out := make([]ValidationReport, 0, len(reports))
	for _, r := range reports {
		vr := ValidationReport{Path: r.Path, Valid: r.Valid(), Warnings: r.Warnings}
		for _, e := range r.Errors {
			vr.Errors = append(vr.Errors, e.Error())
		}
		out = append(out, vr)
	}
	return out
}
