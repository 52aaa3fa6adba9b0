package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relayops/modbalance/core/balancer"
)

func testResult(runID string) *balancer.Result {
	return &balancer.Result{
		RunID:         runID,
		ProvenOptimal: true,
		Objective:     12.5,
		MovedCount:    1,
		Schedule: []balancer.SuggestedMove{
			{InstanceID: "wi1:loc1", OriginalWeek: 1, NewWeek: 2, Moved: true},
			{InstanceID: "wi2:loc2", OriginalWeek: 3, NewWeek: 3},
		},
		Weeks: []balancer.WeekComparison{
			{WeekIndex: 1, TotalHoursBefore: 15, TotalHoursAfter: 10},
			{WeekIndex: 2, TotalHoursBefore: 5, TotalHoursAfter: 10},
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close()) }()

	res := testResult("run-1")
	require.NoError(t, st.SaveRun(res, time.Now()))

	schedule, weeks, err := st.LoadRun("run-1")
	require.NoError(t, err)
	require.Equal(t, res.Schedule, schedule)
	require.Equal(t, res.Weeks, weeks)
}

func TestLoadLatestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close()) }()

	require.NoError(t, st.SaveRun(testResult("run-old"), time.Now().Add(-time.Hour)))
	latest := testResult("run-new")
	latest.Schedule = latest.Schedule[:1]
	require.NoError(t, st.SaveRun(latest, time.Now()))

	schedule, _, err := st.LoadRun("")
	require.NoError(t, err)
	require.Equal(t, latest.Schedule, schedule)
}

func TestLoadUnknownRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close()) }()

	_, _, err = st.LoadRun("missing")
	require.Error(t, err)

	_, _, err = st.LoadRun("")
	require.Error(t, err)
}
