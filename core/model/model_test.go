package model

import "testing"

func TestParseRequestStatus(t *testing.T) {
	cases := []struct {
		in   string
		want RequestStatus
	}{
		{"", RequestNone},
		{"none", RequestNone},
		{"pending", RequestPending},
		{"approved", RequestApproved},
		{"rejected", RequestRejected},
	}
	for _, c := range cases {
		got, err := ParseRequestStatus(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parse %q = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseRequestStatus("maybe"); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
}

func TestInstanceValidate(t *testing.T) {
	valid := Instance{InstanceID: "wi-1:loc-1", HoursRequired: 4, CurrentWeek: 3}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid instance rejected: %v", err)
	}

	cases := []Instance{
		{HoursRequired: 4},
		{InstanceID: "a", HoursRequired: -1},
		{InstanceID: "a", RequestedWeek: 2},
	}
	for i, in := range cases {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d: expected a validation error", i)
		}
	}
}

func TestValidateInstancesDuplicates(t *testing.T) {
	instances := []Instance{
		{InstanceID: "a", HoursRequired: 1},
		{InstanceID: "a", HoursRequired: 2},
	}
	if err := ValidateInstances(instances); err == nil {
		t.Fatal("expected a duplicate id error")
	}
}

func TestHasRequest(t *testing.T) {
	if (Instance{RequestStatus: RequestRejected}).HasRequest() {
		t.Fatal("rejected request counted as active")
	}
	if !(Instance{RequestStatus: RequestPending}).HasRequest() {
		t.Fatal("pending request not counted as active")
	}
	if !(Instance{RequestStatus: RequestApproved}).HasRequest() {
		t.Fatal("approved request not counted as active")
	}
}

func TestNewHorizonSortsWeeks(t *testing.T) {
	h, err := NewHorizon([]WeekSlot{{WeekIndex: 3}, {WeekIndex: 1}, {WeekIndex: 2}})
	if err != nil {
		t.Fatalf("new horizon: %v", err)
	}
	for i, w := range h.Weeks() {
		if w.WeekIndex != i+1 {
			t.Fatalf("position %d holds week %d", i, w.WeekIndex)
		}
	}
	if !h.Contains(2) || h.Contains(4) {
		t.Fatal("contains lookup wrong")
	}
	if pos, ok := h.Position(3); !ok || pos != 2 {
		t.Fatalf("position(3) = %d,%v", pos, ok)
	}
}

func TestNewHorizonRejectsBadInput(t *testing.T) {
	if _, err := NewHorizon(nil); err == nil {
		t.Fatal("expected an error for an empty horizon")
	}
	if _, err := NewHorizon([]WeekSlot{{WeekIndex: 1}, {WeekIndex: 1}}); err == nil {
		t.Fatal("expected an error for duplicate weeks")
	}
	if _, err := NewHorizon([]WeekSlot{{WeekIndex: 1, TotalHoursThreshold: -1}}); err == nil {
		t.Fatal("expected an error for a negative threshold")
	}
}
