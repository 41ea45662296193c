package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoped(scope ScopeType, age time.Duration, useCount int, now time.Time) *ScopedRecord {
	return &ScopedRecord{
		Scope: Scope{Type: scope, Path: string(scope) + ".yaml"},
		Record: SolutionRecord{
			Solution:    string(scope) + " fix",
			CreatedDate: FormatTimestamp(now.Add(-age)),
			UseCount:    useCount,
		},
	}
}

func TestResolveConflict(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name      string
		project   *ScopedRecord
		global    *ScopedRecord
		wantScope ScopeType
		strategy  ConflictStrategy
	}{
		{"project only", scoped(ScopeProject, 400*day, 1, now), nil, ScopeProject, StrategyLocalPreference},
		{"recent global only", nil, scoped(ScopeGlobal, 10*day, 1, now), ScopeGlobal, StrategyLocalPreference},
		{"recent project wins", scoped(ScopeProject, 5*day, 1, now), scoped(ScopeGlobal, 1*day, 50, now), ScopeProject, StrategyRecentProject},
		{"newer global wins", scoped(ScopeProject, 150*day, 1, now), scoped(ScopeGlobal, 40*day, 1, now), ScopeGlobal, StrategyNewer},
		{"popular global wins", scoped(ScopeProject, 60*day, 2, now), scoped(ScopeGlobal, 50*day, 7, now), ScopeGlobal, StrategyPopularity},
		{"project by default", scoped(ScopeProject, 60*day, 2, now), scoped(ScopeGlobal, 50*day, 6, now), ScopeProject, StrategyLocalPreference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ResolveConflict(tt.project, tt.global, now)
			require.True(t, ok)
			assert.Equal(t, tt.wantScope, res.Scope.Type)
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestResolveConflictDropsStaleGlobal(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	_, ok := ResolveConflict(nil, scoped(ScopeGlobal, 181*24*time.Hour, 9, now), now)
	assert.False(t, ok)

	_, ok = ResolveConflict(nil, nil, now)
	assert.False(t, ok)
}
