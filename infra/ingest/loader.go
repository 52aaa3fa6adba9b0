// Package ingest loads the collaborator-supplied input tables. Missing-value
// handling and type normalization are the upstream pipeline's job; loaders
// here only map columns onto typed records and reject what cannot be parsed.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/relayops/modbalance/core/model"
)

// LoadInstances reads the schedule-instance table from a CSV or JSON file,
// chosen by extension.
func LoadInstances(path string) ([]model.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return decodeInstancesCSV(f)
	case ".json":
		return decodeInstancesJSON(f)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}

// LoadWeeks reads the week-slot table from a CSV or JSON file.
func LoadWeeks(path string) ([]model.WeekSlot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return decodeWeeksCSV(f)
	case ".json":
		return decodeWeeksJSON(f)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}

type instanceRow struct {
	InstanceID    string  `json:"instance_id"`
	WorkItemID    string  `json:"work_item_id"`
	LocationID    string  `json:"location_id"`
	LocationType  string  `json:"location_type"`
	HoursRequired float64 `json:"hours_required"`
	CurrentWeek   int     `json:"current_week"`
	CannotMove    bool    `json:"cannot_move"`
	GroupID       string  `json:"group_id"`
	RequestedWeek int     `json:"requested_week"`
	RequestStatus string  `json:"request_status"`
}

func (r instanceRow) toInstance() (model.Instance, error) {
	status, err := model.ParseRequestStatus(r.RequestStatus)
	if err != nil {
		return model.Instance{}, fmt.Errorf("instance %s: %w", r.InstanceID, err)
	}
	return model.Instance{
		InstanceID:    r.InstanceID,
		WorkItemID:    r.WorkItemID,
		LocationID:    r.LocationID,
		LocationType:  r.LocationType,
		HoursRequired: r.HoursRequired,
		CurrentWeek:   r.CurrentWeek,
		CannotMove:    r.CannotMove,
		GroupID:       r.GroupID,
		RequestedWeek: r.RequestedWeek,
		RequestStatus: status,
	}, nil
}

func decodeInstancesJSON(r io.Reader) ([]model.Instance, error) {
	var rows []instanceRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, err
	}
	instances := make([]model.Instance, 0, len(rows))
	for _, row := range rows {
		in, err := row.toInstance()
		if err != nil {
			return nil, err
		}
		instances = append(instances, in)
	}
	return instances, nil
}

func decodeInstancesCSV(r io.Reader) ([]model.Instance, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := headerIndex(header)
	var instances []model.Instance
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		var row instanceRow
		row.InstanceID = get("instance_id")
		row.WorkItemID = get("work_item_id")
		row.LocationID = get("location_id")
		row.LocationType = get("location_type")
		if row.HoursRequired, err = parseFloat(get("hours_required")); err != nil {
			return nil, fmt.Errorf("line %d hours_required: %w", line, err)
		}
		if row.CurrentWeek, err = parseInt(get("current_week")); err != nil {
			return nil, fmt.Errorf("line %d current_week: %w", line, err)
		}
		if row.CannotMove, err = parseBool(get("cannot_move")); err != nil {
			return nil, fmt.Errorf("line %d cannot_move: %w", line, err)
		}
		row.GroupID = get("group_id")
		if row.RequestedWeek, err = parseInt(get("requested_week")); err != nil {
			return nil, fmt.Errorf("line %d requested_week: %w", line, err)
		}
		row.RequestStatus = get("request_status")
		in, err := row.toInstance()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		instances = append(instances, in)
	}
	return instances, nil
}

type weekRow struct {
	WeekIndex           int     `json:"week_index"`
	IsHoliday           bool    `json:"is_holiday"`
	TotalHoursThreshold float64 `json:"total_hours_threshold"`
	TypeHoursThreshold  float64 `json:"type_hours_threshold"`
}

func decodeWeeksJSON(r io.Reader) ([]model.WeekSlot, error) {
	var rows []weekRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, err
	}
	weeks := make([]model.WeekSlot, 0, len(rows))
	for _, row := range rows {
		weeks = append(weeks, model.WeekSlot(row))
	}
	return weeks, nil
}

func decodeWeeksCSV(r io.Reader) ([]model.WeekSlot, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := headerIndex(header)
	var weeks []model.WeekSlot
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		var w model.WeekSlot
		if w.WeekIndex, err = parseInt(get("week_index")); err != nil {
			return nil, fmt.Errorf("line %d week_index: %w", line, err)
		}
		if w.IsHoliday, err = parseBool(get("is_holiday")); err != nil {
			return nil, fmt.Errorf("line %d is_holiday: %w", line, err)
		}
		if w.TotalHoursThreshold, err = parseFloat(get("total_hours_threshold")); err != nil {
			return nil, fmt.Errorf("line %d total_hours_threshold: %w", line, err)
		}
		if w.TypeHoursThreshold, err = parseFloat(get("type_hours_threshold")); err != nil {
			return nil, fmt.Errorf("line %d type_hours_threshold: %w", line, err)
		}
		weeks = append(weeks, w)
	}
	return weeks, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
