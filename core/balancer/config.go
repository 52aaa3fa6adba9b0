package balancer

import "fmt"

// Config carries the optimization parameters for one run. It is passed by
// value into the driver so concurrent runs with different parameters never
// share state.
type Config struct {
	// Weekly capacity thresholds in hours. The holiday variants apply to
	// weeks flagged as holiday in the input table.
	TotalHoursThreshold        float64 `json:"total_hours_threshold"`
	HolidayTotalHoursThreshold float64 `json:"holiday_total_hours_threshold"`

	// LimitedLocationType names the location category with its own capacity
	// threshold (reduced-capacity stores).
	LimitedLocationType string `json:"limited_location_type"`

	// TypeHoursThreshold caps the weekly hours of the limited location type.
	// When zero it is derived as TypeAvgHours * MaxTypeStoresPerWeek, a
	// configured proxy for the per-store average that the source data does
	// not carry.
	TypeHoursThreshold        float64 `json:"type_hours_threshold"`
	HolidayTypeHoursThreshold float64 `json:"holiday_type_hours_threshold"`
	TypeAvgHours              float64 `json:"type_avg_hours"`
	HolidayTypeAvgHours       float64 `json:"holiday_type_avg_hours"`
	MaxTypeStoresPerWeek      int     `json:"max_type_stores_per_week"`

	// Objective weights. Overage is penalized, never forbidden, so the
	// program stays feasible under any workload.
	PenaltyTotal        float64 `json:"penalty_total"`
	PenaltyType         float64 `json:"penalty_type"`
	HolidayPenaltyTotal float64 `json:"holiday_penalty_total"`
	HolidayPenaltyType  float64 `json:"holiday_penalty_type"`
	CostPerMove         float64 `json:"cost_per_move"`

	// RequestBias discounts the move cost toward an externally requested
	// week for pending and approved requests. Zero disables the bias, in
	// which case requests influence nothing but the reconciliation report.
	RequestBias float64 `json:"request_bias"`

	// Solver limits.
	SolverTimeLimitSeconds int     `json:"solver_time_limit_seconds"`
	GapTolerance           float64 `json:"gap_tolerance"`
	MaxNodes               int     `json:"max_nodes"`

	// CandidateWeekWindow restricts each instance's target weeks to +/- N
	// weeks around its current week. Zero means the full horizon.
	CandidateWeekWindow int `json:"candidate_week_window"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.SolverTimeLimitSeconds == 0 {
		c.SolverTimeLimitSeconds = 300
	}
	if c.GapTolerance == 0 {
		c.GapTolerance = 0.01
	}
	if c.HolidayTotalHoursThreshold == 0 {
		c.HolidayTotalHoursThreshold = c.TotalHoursThreshold
	}
	if c.TypeHoursThreshold == 0 && c.TypeAvgHours > 0 {
		c.TypeHoursThreshold = c.TypeAvgHours * float64(c.MaxTypeStoresPerWeek)
	}
	if c.HolidayTypeHoursThreshold == 0 {
		if c.HolidayTypeAvgHours > 0 {
			c.HolidayTypeHoursThreshold = c.HolidayTypeAvgHours * float64(c.MaxTypeStoresPerWeek)
		} else {
			c.HolidayTypeHoursThreshold = c.TypeHoursThreshold
		}
	}
	if c.HolidayPenaltyTotal == 0 {
		c.HolidayPenaltyTotal = c.PenaltyTotal
	}
	if c.HolidayPenaltyType == 0 {
		c.HolidayPenaltyType = c.PenaltyType
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.TotalHoursThreshold < 0 || c.TypeHoursThreshold < 0 {
		return fmt.Errorf("thresholds must be nonnegative")
	}
	if c.PenaltyTotal < 0 || c.PenaltyType < 0 || c.CostPerMove < 0 {
		return fmt.Errorf("penalties and move cost must be nonnegative")
	}
	if c.RequestBias < 0 {
		return fmt.Errorf("request bias must be nonnegative")
	}
	if c.RequestBias > c.CostPerMove {
		return fmt.Errorf("request bias %v exceeds cost per move %v", c.RequestBias, c.CostPerMove)
	}
	if c.SolverTimeLimitSeconds < 0 {
		return fmt.Errorf("solver time limit must be nonnegative")
	}
	if c.GapTolerance < 0 || c.GapTolerance >= 1 {
		return fmt.Errorf("gap tolerance must be in [0,1)")
	}
	if c.CandidateWeekWindow < 0 {
		return fmt.Errorf("candidate week window must be nonnegative")
	}
	return nil
}

// thresholdsFor resolves the capacity pair for a week.
func (c Config) thresholdsFor(isHoliday bool) (total, typ float64) {
	if isHoliday {
		return c.HolidayTotalHoursThreshold, c.HolidayTypeHoursThreshold
	}
	return c.TotalHoursThreshold, c.TypeHoursThreshold
}

// penaltiesFor resolves the overage penalty pair for a week.
func (c Config) penaltiesFor(isHoliday bool) (total, typ float64) {
	if isHoliday {
		return c.HolidayPenaltyTotal, c.HolidayPenaltyType
	}
	return c.PenaltyTotal, c.PenaltyType
}
