package internal

import (
	"fmt"
	"time"
)

type ConflictStrategy string

const (
	StrategyRecentProject   ConflictStrategy = "recent_project_priority"
	StrategyNewer           ConflictStrategy = "newer_solution"
	StrategyPopularity      ConflictStrategy = "popularity_based"
	StrategyLocalPreference ConflictStrategy = "default_local_preference"
)

const (
	recentProjectWindow = 30 * 24 * time.Hour
	globalMaxAge        = 180 * 24 * time.Hour
	newerGapDays        = 90
	popularityRatio     = 3.0
)

// ScopedRecord is a solution record together with the store it came from.
type ScopedRecord struct {
	Scope  Scope
	Record SolutionRecord
}

type Resolution struct {
	ScopedRecord
	Strategy ConflictStrategy
	Reason   string
}

// ResolveConflict picks between the project and global record for the same
// problem. Either may be nil. A global record on its own older than 180 days
// is not returned. With both present, in order: a project record younger
// than 30 days wins, then the newer record when they are more than 90 days
// apart, then the more used one when its use count is over 3x the other,
// and the project record otherwise. Records without a readable created_date
// count as infinitely old.
func ResolveConflict(project, global *ScopedRecord, now time.Time) (*Resolution, bool) {
	switch {
	case project == nil && global == nil:
		return nil, false
	case global == nil:
		return &Resolution{*project, StrategyLocalPreference, "only project solution available"}, true
	case project == nil:
		created, ok := recordTime(global.Record)
		if !ok || !created.After(now.Add(-globalMaxAge)) {
			return nil, false
		}
		return &Resolution{*global, StrategyLocalPreference, "only recent global solution available"}, true
	}

	projectTime, projectOK := recordTime(project.Record)
	globalTime, globalOK := recordTime(global.Record)

	if projectOK && projectTime.After(now.Add(-recentProjectWindow)) {
		return &Resolution{*project, StrategyRecentProject, "recent project solution takes priority"}, true
	}

	if projectOK && globalOK {
		gap := int(projectTime.Sub(globalTime).Abs().Hours() / 24)
		if gap > newerGapDays {
			newer := project
			if globalTime.After(projectTime) {
				newer = global
			}
			return &Resolution{*newer, StrategyNewer, fmt.Sprintf("newer solution chosen (age difference: %d days)", gap)}, true
		}
	}

	pc, gc := project.Record.UseCount, global.Record.UseCount
	lo, hi := min(pc, gc), max(pc, gc)
	if (lo > 0 && float64(hi)/float64(lo) > popularityRatio) || (lo <= 0 && hi > 0) {
		popular := project
		if gc > pc {
			popular = global
		}
		reason := fmt.Sprintf("popular solution chosen (use counts: project=%d, global=%d)", pc, gc)
		return &Resolution{*popular, StrategyPopularity, reason}, true
	}

	return &Resolution{*project, StrategyLocalPreference, "project solution preferred"}, true
}

func recordTime(rec SolutionRecord) (time.Time, bool) {
	ts, err := ParseTimestamp(rec.CreatedDate)
	if err != nil {
		return time.Time{}, false
	}
	if ts.Aware {
		return ts.Time, true
	}
	return ts.Naive(), true
}
