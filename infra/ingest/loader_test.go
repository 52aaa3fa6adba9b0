package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relayops/modbalance/core/model"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadInstancesCSV(t *testing.T) {
	data := `instance_id,work_item_id,location_id,location_type,hours_required,current_week,cannot_move,group_id,requested_week,request_status
wi1:loc1,wi1,loc1,standard,6.5,3,false,,0,
wi2:loc2,wi2,loc2,compact,4,3,true,g1,5,pending
`
	path := writeFile(t, "instances.csv", data)

	instances, err := LoadInstances(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("rows = %d, want 2", len(instances))
	}
	first := instances[0]
	if first.InstanceID != "wi1:loc1" || first.HoursRequired != 6.5 || first.CurrentWeek != 3 {
		t.Fatalf("first row = %+v", first)
	}
	if first.RequestStatus != model.RequestNone {
		t.Fatalf("empty status parsed as %v", first.RequestStatus)
	}
	second := instances[1]
	if !second.CannotMove || second.GroupID != "g1" {
		t.Fatalf("second row = %+v", second)
	}
	if second.RequestStatus != model.RequestPending || second.RequestedWeek != 5 {
		t.Fatalf("second row request = %v week %d", second.RequestStatus, second.RequestedWeek)
	}
}

func TestLoadInstancesCSVShuffledColumns(t *testing.T) {
	// Column positions come from the header, not a fixed order.
	data := `current_week,instance_id,hours_required
7,wi1:loc1,2
`
	path := writeFile(t, "instances.csv", data)

	instances, err := LoadInstances(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if instances[0].CurrentWeek != 7 || instances[0].HoursRequired != 2 {
		t.Fatalf("row = %+v", instances[0])
	}
}

func TestLoadInstancesCSVBadValue(t *testing.T) {
	data := `instance_id,hours_required,current_week
wi1:loc1,not-a-number,3
`
	path := writeFile(t, "instances.csv", data)
	if _, err := LoadInstances(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadInstancesJSON(t *testing.T) {
	data := `[
  {"instance_id": "wi1:loc1", "hours_required": 6.5, "current_week": 3},
  {"instance_id": "wi2:loc2", "hours_required": 4, "current_week": 3, "request_status": "approved", "requested_week": 5}
]`
	path := writeFile(t, "instances.json", data)

	instances, err := LoadInstances(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("rows = %d, want 2", len(instances))
	}
	if instances[1].RequestStatus != model.RequestApproved {
		t.Fatalf("status = %v, want approved", instances[1].RequestStatus)
	}
}

func TestLoadInstancesUnknownStatus(t *testing.T) {
	data := `[{"instance_id": "wi1:loc1", "request_status": "maybe"}]`
	path := writeFile(t, "instances.json", data)
	if _, err := LoadInstances(path); err == nil {
		t.Fatal("expected an error for an unknown request status")
	}
}

func TestLoadWeeksCSV(t *testing.T) {
	data := `week_index,is_holiday,total_hours_threshold,type_hours_threshold
1,false,,
2,true,30,12
`
	path := writeFile(t, "weeks.csv", data)

	weeks, err := LoadWeeks(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []model.WeekSlot{
		{WeekIndex: 1},
		{WeekIndex: 2, IsHoliday: true, TotalHoursThreshold: 30, TypeHoursThreshold: 12},
	}
	for i, w := range want {
		if weeks[i] != w {
			t.Fatalf("week %d = %+v, want %+v", i, weeks[i], w)
		}
	}
}

func TestLoadWeeksJSON(t *testing.T) {
	data := `[{"week_index": 1}, {"week_index": 2, "is_holiday": true}]`
	path := writeFile(t, "weeks.json", data)

	weeks, err := LoadWeeks(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(weeks) != 2 || !weeks[1].IsHoliday {
		t.Fatalf("weeks = %+v", weeks)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "weeks.xml", "<weeks/>")
	if _, err := LoadWeeks(path); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
	if _, err := LoadInstances(path); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}
