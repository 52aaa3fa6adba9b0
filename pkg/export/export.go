// Package export writes the optimizer's output tables in the stable shapes
// the reporting collaborator consumes.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/relayops/modbalance/core/balancer"
)

// WriteScheduleJSON writes the suggested-schedule table to w in JSON format.
func WriteScheduleJSON(w io.Writer, schedule []balancer.SuggestedMove) error {
	return json.NewEncoder(w).Encode(schedule)
}

// WriteScheduleCSV writes the suggested-schedule table with its fixed header.
func WriteScheduleCSV(w io.Writer, schedule []balancer.SuggestedMove) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"instance_id", "original_week", "new_week", "moved"}); err != nil {
		return err
	}
	for _, m := range schedule {
		rec := []string{
			m.InstanceID,
			strconv.Itoa(m.OriginalWeek),
			strconv.Itoa(m.NewWeek),
			strconv.FormatBool(m.Moved),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWeekComparisonJSON writes the per-week before/after table in JSON.
func WriteWeekComparisonJSON(w io.Writer, weeks []balancer.WeekComparison) error {
	return json.NewEncoder(w).Encode(weeks)
}

// WriteWeekComparisonCSV writes the per-week before/after table with its
// fixed header.
func WriteWeekComparisonCSV(w io.Writer, weeks []balancer.WeekComparison) error {
	cw := csv.NewWriter(w)
	header := []string{"week_index", "total_hours_before", "total_hours_after", "type_hours_before", "type_hours_after"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, wk := range weeks {
		rec := []string{
			strconv.Itoa(wk.WeekIndex),
			formatHours(wk.TotalHoursBefore),
			formatHours(wk.TotalHoursAfter),
			formatHours(wk.TypeHoursBefore),
			formatHours(wk.TypeHoursAfter),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRequestsJSON writes the request-reconciliation view in JSON.
func WriteRequestsJSON(w io.Writer, reqs []balancer.RequestReconciliation) error {
	return json.NewEncoder(w).Encode(reqs)
}

// WriteRequestsCSV writes the request-reconciliation view.
func WriteRequestsCSV(w io.Writer, reqs []balancer.RequestReconciliation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"instance_id", "requested_week", "new_week", "outcome"}); err != nil {
		return err
	}
	for _, r := range reqs {
		rec := []string{
			r.InstanceID,
			strconv.Itoa(r.RequestedWeek),
			strconv.Itoa(r.NewWeek),
			string(r.Outcome),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
