package balancer

import (
	"math"
	"sort"
	"time"

	"github.com/relayops/modbalance/core/milp"
)

// SuggestedMove is one row of the suggested-schedule table.
type SuggestedMove struct {
	InstanceID   string `json:"instance_id"`
	OriginalWeek int    `json:"original_week"`
	NewWeek      int    `json:"new_week"`
	Moved        bool   `json:"moved"`
	// Rounded marks rows whose assignment variable came back fractional and
	// needed integer repair.
	Rounded bool `json:"rounded,omitempty"`
}

// WeekComparison is one row of the per-week before/after table.
type WeekComparison struct {
	WeekIndex        int     `json:"week_index"`
	TotalHoursBefore float64 `json:"total_hours_before"`
	TotalHoursAfter  float64 `json:"total_hours_after"`
	TypeHoursBefore  float64 `json:"type_hours_before"`
	TypeHoursAfter   float64 `json:"type_hours_after"`
}

// RequestOutcome classifies how a move request was reconciled.
type RequestOutcome string

const (
	RequestMatched       RequestOutcome = "matched"
	RequestUnmatched     RequestOutcome = "unmatched"
	RequestNotApplicable RequestOutcome = "not-applicable"
)

// RequestReconciliation is one row of the request-reconciliation view.
type RequestReconciliation struct {
	InstanceID    string         `json:"instance_id"`
	RequestedWeek int            `json:"requested_week"`
	NewWeek       int            `json:"new_week"`
	Outcome       RequestOutcome `json:"outcome"`
}

// Result is the outcome of a successful optimization run.
type Result struct {
	RunID         string
	Status        milp.Status
	ProvenOptimal bool
	Objective     float64
	Gap           float64
	Nodes         int
	SolveDuration time.Duration

	Schedule []SuggestedMove
	Weeks    []WeekComparison
	Requests []RequestReconciliation

	MovedCount      int
	TotalSlackHours float64
	TypeSlackHours  float64
}

const roundTol = 1e-6

// extractResult maps the solved variable vector back onto the schedule and
// computes the comparison tables.
func extractResult(runID string, p *program, sol milp.Solution) *Result {
	res := &Result{
		RunID:         runID,
		Status:        sol.Status,
		ProvenOptimal: sol.Status == milp.StatusOptimal,
		Objective:     sol.Objective,
		Gap:           sol.Gap,
		Nodes:         sol.Nodes,
	}

	type weekTotals struct{ total, typ float64 }
	before := make(map[int]weekTotals)
	after := make(map[int]weekTotals)
	add := func(m map[int]weekTotals, week int, hours, typeHours float64) {
		t := m[week]
		t.total += hours
		t.typ += typeHours
		m[week] = t
	}

	for i := range p.entities {
		e := &p.entities[i]
		assigned, rounded := assignedWeek(e, sol.Values)
		for _, m := range e.members {
			typeHours := 0.0
			if p.cfg.LimitedLocationType != "" && m.LocationType == p.cfg.LimitedLocationType {
				typeHours = m.HoursRequired
			}
			add(before, m.CurrentWeek, m.HoursRequired, typeHours)
			add(after, assigned, m.HoursRequired, typeHours)

			moved := assigned != m.CurrentWeek
			if moved {
				res.MovedCount++
			}
			res.Schedule = append(res.Schedule, SuggestedMove{
				InstanceID:   m.InstanceID,
				OriginalWeek: m.CurrentWeek,
				NewWeek:      assigned,
				Moved:        moved,
				Rounded:      rounded,
			})
			if m.RequestStatus.String() != "none" && m.RequestStatus.String() != "" {
				res.Requests = append(res.Requests, reconcile(m.InstanceID, m.RequestedWeek, assigned,
					m.CannotMove, m.HasRequest()))
			}
		}
	}

	// History rows outside the horizon stay put and appear unchanged.
	for _, m := range p.context {
		res.Schedule = append(res.Schedule, SuggestedMove{
			InstanceID:   m.InstanceID,
			OriginalWeek: m.CurrentWeek,
			NewWeek:      m.CurrentWeek,
		})
	}

	for _, wc := range p.weeks {
		wk := wc.week.WeekIndex
		res.Weeks = append(res.Weeks, WeekComparison{
			WeekIndex:        wk,
			TotalHoursBefore: before[wk].total,
			TotalHoursAfter:  after[wk].total,
			TypeHoursBefore:  before[wk].typ,
			TypeHoursAfter:   after[wk].typ,
		})
		res.TotalSlackHours += math.Max(0, after[wk].total-wc.totalLimit)
		res.TypeSlackHours += math.Max(0, after[wk].typ-wc.typeLimit)
	}

	sort.Slice(res.Schedule, func(a, b int) bool { return res.Schedule[a].InstanceID < res.Schedule[b].InstanceID })
	sort.Slice(res.Requests, func(a, b int) bool { return res.Requests[a].InstanceID < res.Requests[b].InstanceID })
	return res
}

// assignedWeek picks the entity's solved week. True binaries come back as
// clean 0/1; solver tolerance can leave fractional residue, in which case the
// largest value wins and the row is flagged so downstream consumers can
// re-check it.
func assignedWeek(e *entity, values []float64) (week int, rounded bool) {
	best := e.candidates[0]
	bestVal := math.Inf(-1)
	ones := 0
	for _, wk := range e.candidates {
		v := values[e.vars[wk]]
		if math.Abs(v-math.Round(v)) > roundTol {
			rounded = true
		}
		if math.Round(v) == 1 {
			ones++
		}
		if v > bestVal {
			best, bestVal = wk, v
		}
	}
	if ones != 1 {
		// Rounding broke the assignment constraint; the argmax repair above
		// restores it but the row must be flagged.
		rounded = true
	}
	return best, rounded
}

func reconcile(instanceID string, requested, assigned int, cannotMove, active bool) RequestReconciliation {
	rec := RequestReconciliation{InstanceID: instanceID, RequestedWeek: requested, NewWeek: assigned}
	switch {
	case cannotMove || !active:
		rec.Outcome = RequestNotApplicable
	case assigned == requested:
		rec.Outcome = RequestMatched
	default:
		rec.Outcome = RequestUnmatched
	}
	return rec
}
