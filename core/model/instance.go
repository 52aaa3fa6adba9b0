package model

import "fmt"

// RequestStatus tracks the lifecycle of an external move request.
type RequestStatus int

const (
	RequestNone RequestStatus = iota
	RequestPending
	RequestApproved
	RequestRejected
)

// String returns the textual form used in input tables and reports.
func (s RequestStatus) String() string {
	switch s {
	case RequestNone:
		return "none"
	case RequestPending:
		return "pending"
	case RequestApproved:
		return "approved"
	case RequestRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseRequestStatus converts the textual form back to a RequestStatus.
// The empty string maps to RequestNone.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch s {
	case "", "none":
		return RequestNone, nil
	case "pending":
		return RequestPending, nil
	case "approved":
		return RequestApproved, nil
	case "rejected":
		return RequestRejected, nil
	default:
		return RequestNone, fmt.Errorf("unknown request status %q", s)
	}
}

// Instance is one schedulable unit: a work item at one location for one
// planning cycle. Instances are immutable snapshots for the duration of an
// optimization run.
type Instance struct {
	InstanceID    string // unique key: work-item id x location id
	WorkItemID    string
	LocationID    string
	LocationType  string
	HoursRequired float64

	// CurrentWeek is the ordinal week index the instance is scheduled in
	// today. It may fall outside the planning horizon for historical rows.
	CurrentWeek int

	// CannotMove pins the instance to CurrentWeek (seasonal or fixed
	// infrastructure work).
	CannotMove bool

	// GroupID ties instances that must be co-scheduled. Empty means no group.
	GroupID string

	// RequestedWeek is an externally requested target slot. Only meaningful
	// when RequestStatus is not RequestNone.
	RequestedWeek int
	RequestStatus RequestStatus
}

// HasRequest reports whether the instance carries an external move request.
func (i Instance) HasRequest() bool {
	return i.RequestStatus == RequestPending || i.RequestStatus == RequestApproved
}

// Validate checks a single instance record.
func (i Instance) Validate() error {
	if i.InstanceID == "" {
		return fmt.Errorf("instance id is required")
	}
	if i.HoursRequired < 0 {
		return fmt.Errorf("instance %s: hours required must be nonnegative, got %v", i.InstanceID, i.HoursRequired)
	}
	if i.RequestStatus == RequestNone && i.RequestedWeek != 0 {
		return fmt.Errorf("instance %s: requested week set without a request status", i.InstanceID)
	}
	return nil
}

// ValidateInstances checks a full input table: every record must be valid and
// instance IDs must be unique.
func ValidateInstances(instances []Instance) error {
	seen := make(map[string]struct{}, len(instances))
	for _, in := range instances {
		if err := in.Validate(); err != nil {
			return err
		}
		if _, ok := seen[in.InstanceID]; ok {
			return fmt.Errorf("duplicate instance id %s", in.InstanceID)
		}
		seen[in.InstanceID] = struct{}{}
	}
	return nil
}
