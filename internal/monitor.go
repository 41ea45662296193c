package internal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	monitorSevereMB = 50
	monitorNoticeMB = 10
	alertErrorLines = 5
)

type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

type MonitorReport struct {
	Errors       []LogHit
	HealthIssues []string
	SizeWarnings []string
	Subject      string
	AlertSent    bool
}

// IssueCount counts recent errors and health issues. Size warnings alone
// raise an alert but are not counted as issues.
func (r *MonitorReport) IssueCount() int {
	return len(r.Errors) + len(r.HealthIssues)
}

func (r *MonitorReport) HasFindings() bool {
	return r.IssueCount() > 0 || len(r.SizeWarnings) > 0
}

type MonitorService struct {
	logFiles   []string
	storeFiles []string
	scanner    *LogScanner
	health     HealthChecker
	alerter    *Alerter
	logger     Logger
	now        func() time.Time
}

func NewMonitorService(cfg *Config, health HealthChecker, alerter *Alerter, logger Logger, now func() time.Time) *MonitorService {
	if logger == nil {
		logger = NopLogger()
	}
	if now == nil {
		now = time.Now
	}
	window := time.Duration(cfg.Monitor.WindowMinutes) * time.Minute
	return &MonitorService{
		logFiles:   cfg.Monitor.LogFiles,
		storeFiles: cfg.Store.Files,
		scanner:    NewLogScanner(window, logger, now).Skip(cfg.Monitor.LogFile),
		health:     health,
		alerter:    alerter,
		logger:     logger,
		now:        now,
	}
}

// Run scans logs, checks health and checks file sizes, then raises a single
// alert if anything was found. Network failures only ever surface as
// findings or log lines.
func (m *MonitorService) Run(ctx context.Context) *MonitorReport {
	m.logger.Info("starting log monitoring check")
	report := &MonitorReport{}

	report.Errors = m.scanner.ScanAll(m.logFiles)

	if m.health != nil {
		status := m.health.Check(ctx)
		if !status.Healthy {
			report.HealthIssues = append(report.HealthIssues, "MCP Server: "+status.Message)
			m.logger.Warn("server health issue", "url", status.URL, "detail", status.Message)
		}
	}

	sized := append(m.scanner.Expand(m.logFiles), m.storeFiles...)
	for _, f := range CheckFileSizes(sized, monitorSevereMB, monitorNoticeMB) {
		label := "Large file"
		if f.Severe {
			label = "Very large file"
		}
		report.SizeWarnings = append(report.SizeWarnings, fmt.Sprintf("%s: %s (%.1f MB)", f.Path, label, f.SizeMB))
	}
	if len(report.SizeWarnings) > 0 {
		m.logger.Info("file size warnings", "count", len(report.SizeWarnings))
	}

	if !report.HasFindings() {
		m.logger.Info("no issues detected")
		return report
	}

	severity := "WARNING"
	if len(report.Errors) > 0 {
		severity = "CRITICAL"
	}
	report.Subject = fmt.Sprintf("[%s] Brains Memory System Alert", severity)
	body := FormatAlert(report, m.now(), workingDir())
	if m.alerter != nil {
		report.AlertSent = m.alerter.Send(ctx, report.Subject, body)
	}

	m.logger.Warn("alert generated",
		"errors", len(report.Errors),
		"health_issues", len(report.HealthIssues),
		"size_warnings", len(report.SizeWarnings))
	return report
}

// TestAlert sends a fixed message to verify the alert configuration.
func (m *MonitorService) TestAlert(ctx context.Context) bool {
	m.logger.Info("sending test alert")
	body := fmt.Sprintf("This is a test alert to verify monitoring configuration.\n\nTime: %s\nSystem: %s\n",
		FormatTimestamp(m.now()), workingDir())
	if m.alerter == nil {
		return false
	}
	return m.alerter.Send(ctx, "Test Alert - Brains Memory System", body)
}

// FormatAlert renders the alert body. Only the last few error lines are
// included.
func FormatAlert(r *MonitorReport, now time.Time, location string) string {
	var sb strings.Builder
	sb.WriteString("Brains Memory System Alert\n")
	fmt.Fprintf(&sb, "Time: %s\n\n", FormatTimestamp(now))

	if len(r.Errors) > 0 {
		fmt.Fprintf(&sb, "Recent Errors (%d):\n", len(r.Errors))
		shown := r.Errors
		if len(shown) > alertErrorLines {
			shown = shown[len(shown)-alertErrorLines:]
		}
		for _, e := range shown {
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", e.File, FormatTimestamp(e.Timestamp), e.Line)
		}
		sb.WriteString("\n")
	}

	if len(r.HealthIssues) > 0 {
		sb.WriteString("Health Issues:\n")
		for _, issue := range r.HealthIssues {
			fmt.Fprintf(&sb, "  - %s\n", issue)
		}
		sb.WriteString("\n")
	}

	if len(r.SizeWarnings) > 0 {
		sb.WriteString("File Size Warnings:\n")
		for _, w := range r.SizeWarnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "System Location: %s\n", location)
	return sb.String()
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return wd
}
