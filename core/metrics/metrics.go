package metrics

import "time"

// RunRecord summarizes one optimization run for observability sinks.
type RunRecord struct {
	RunID         string
	Status        string
	Objective     float64
	Gap           float64
	Instances     int
	Weeks         int
	Moved         int
	TotalSlack    float64
	TypeSlack     float64
	SolveDuration time.Duration
	Timestamp     time.Time
}

// WeekLoadRecord carries one week's before/after load for time-series sinks.
type WeekLoadRecord struct {
	RunID            string
	WeekIndex        int
	TotalHoursBefore float64
	TotalHoursAfter  float64
	TypeHoursBefore  float64
	TypeHoursAfter   float64
	Timestamp        time.Time
}

// Sink receives run observability records. Implementations must be safe for
// sequential use from the service; the optimizer itself never records.
type Sink interface {
	RecordRun(RunRecord) error
	RecordWeekLoads([]WeekLoadRecord) error
}

// NopSink drops all records.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error             { return nil }
func (NopSink) RecordWeekLoads([]WeekLoadRecord) error { return nil }
