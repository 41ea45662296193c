package internal

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	checkWarnMB = 10
	checkInfoMB = 1
)

// Services holds every component built from one Config.
type Services struct {
	Config      *Config
	Logger      Logger
	Scopes      *ScopeResolver
	Validator   *Validator
	Backups     *BackupManager
	Git         *GitRecorder
	Pruner      *Pruner
	Updater     *Updater
	Maintenance *MaintenanceService
	Monitor     *MonitorService
}

// NewServices wires components from cfg. A nil now uses the wall clock.
func NewServices(cfg *Config, logger Logger, now func() time.Time) *Services {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}

	validator := NewValidator(logger)
	backups := NewBackupManager(cfg.Backup, logger, now)
	git := NewGitRecorder(cfg.Git.AutoCommit, logger, now)
	pruner := NewPruner(backups, git, logger, now, cfg.Prune.NormalizeUTC)

	check := NewHTTPHealthCheck(cfg.Monitor.HealthURL, cfg.Monitor.HealthTimeout, &http.Client{})
	alerter := NewAlerter(cfg.Alert.Enabled, NewSMTPNotifier(cfg.Alert), logger)

	return &Services{
		Config:      cfg,
		Logger:      logger,
		Scopes:      NewScopeResolver(cfg.Store.Files),
		Validator:   validator,
		Backups:     backups,
		Git:         git,
		Pruner:      pruner,
		Updater:     NewUpdater(backups, git, logger, now),
		Maintenance: NewMaintenanceService(cfg, validator, pruner, logger, now),
		Monitor:     NewMonitorService(cfg, check, alerter, logger, now),
	}
}

type CheckInput struct {
	DryRun bool
	// MaxAgeDays overrides prune.max_age_days when set. Zero prunes
	// everything dated before now.
	MaxAgeDays *int
}

type CheckOutput struct {
	Reports     []*Report
	Sizes       []SizeFinding
	Stats       Stats
	Pruned      map[string]int
	TotalPruned int
	PruneErrors []error
}

// MaintenanceService runs the periodic consistency check: validate, report
// sizes and stats, then prune.
type MaintenanceService struct {
	files      []string
	categories string
	maxAgeDays int
	validator  *Validator
	pruner     *Pruner
	logger     Logger
	now        func() time.Time
}

func NewMaintenanceService(cfg *Config, validator *Validator, pruner *Pruner, logger Logger, now func() time.Time) *MaintenanceService {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &MaintenanceService{
		files:      cfg.Store.Files,
		categories: cfg.Store.ErrorCategories,
		maxAgeDays: cfg.Prune.MaxAgeDays,
		validator:  validator,
		pruner:     pruner,
		logger:     logger,
		now:        now,
	}
}

// Check validates every store and the categories file. Nothing is pruned
// unless all of them pass; a failure returns ErrValidationFailed along with
// the reports. Prune failures on one store do not stop the others.
func (s *MaintenanceService) Check(ctx context.Context, in CheckInput) (*CheckOutput, error) {
	s.logger.Info("starting memory consistency check")
	out := &CheckOutput{Pruned: make(map[string]int)}

	valid := true
	for _, path := range s.files {
		r := s.validator.ValidateStore(path)
		out.Reports = append(out.Reports, r)
		valid = valid && r.Valid()
	}
	if s.categories != "" {
		r := s.validator.ValidateErrorCategories(s.categories)
		out.Reports = append(out.Reports, r)
		valid = valid && r.Valid()
	}
	if !valid {
		s.logger.Error("some files failed validation, fix errors before continuing")
		return out, ErrValidationFailed
	}

	sized := append([]string{}, s.files...)
	if s.categories != "" {
		sized = append(sized, s.categories)
	}
	out.Sizes = CheckFileSizes(sized, checkWarnMB, checkInfoMB)
	for _, f := range out.Sizes {
		if f.Severe {
			s.logger.Warn(fmt.Sprintf("large file size (%.2f MB)", f.SizeMB), "file", f.Path)
		} else {
			s.logger.Info(fmt.Sprintf("file size: %.2f MB", f.SizeMB), "file", f.Path)
		}
	}

	out.Stats = CollectStats(s.files, s.now())
	for _, st := range out.Stats.Files {
		if st.Error != "" {
			s.logger.Error("read store failed", "file", st.Path, "error", st.Error)
			continue
		}
		s.logger.Info(fmt.Sprintf("%d categories, %d solutions", st.Categories, st.TotalSolutions), "file", st.Path)
	}

	maxAge := s.maxAgeDays
	if in.MaxAgeDays != nil {
		maxAge = *in.MaxAgeDays
	}
	for _, path := range s.files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n, err := s.pruner.Prune(path, maxAge, in.DryRun)
		if err != nil {
			s.logger.Error("prune failed", "file", path, "error", err)
			out.PruneErrors = append(out.PruneErrors, err)
			continue
		}
		out.Pruned[path] = n
		out.TotalPruned += n
	}

	s.logger.Info(fmt.Sprintf("consistency check completed, total entries pruned: %d", out.TotalPruned))
	if in.DryRun {
		s.logger.Info("dry run mode, no changes were made")
	}
	return out, nil
}
