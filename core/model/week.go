package model

import (
	"fmt"
	"sort"
)

// WeekSlot is one planning period. Thresholds are resolved from configuration
// before the optimizer sees the slot, so holiday handling stays out of the
// constraint builder.
type WeekSlot struct {
	WeekIndex int
	IsHoliday bool

	// TotalHoursThreshold caps the combined workload of the week.
	TotalHoursThreshold float64
	// TypeHoursThreshold caps the workload of the capacity-limited location
	// type. Both caps are soft: exceeding them costs penalty, not feasibility.
	TypeHoursThreshold float64
}

// Validate checks a single week slot.
func (w WeekSlot) Validate() error {
	if w.TotalHoursThreshold < 0 || w.TypeHoursThreshold < 0 {
		return fmt.Errorf("week %d: thresholds must be nonnegative", w.WeekIndex)
	}
	return nil
}

// Horizon is the ordered set of week slots modeled in one run.
type Horizon struct {
	weeks []WeekSlot
	index map[int]int // week index -> position in weeks
}

// NewHorizon builds a horizon from the given slots, sorted by week index.
// Duplicate week indexes are rejected.
func NewHorizon(weeks []WeekSlot) (*Horizon, error) {
	if len(weeks) == 0 {
		return nil, fmt.Errorf("horizon requires at least one week")
	}
	sorted := make([]WeekSlot, len(weeks))
	copy(sorted, weeks)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].WeekIndex < sorted[b].WeekIndex })
	idx := make(map[int]int, len(sorted))
	for pos, w := range sorted {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if _, ok := idx[w.WeekIndex]; ok {
			return nil, fmt.Errorf("duplicate week index %d", w.WeekIndex)
		}
		idx[w.WeekIndex] = pos
	}
	return &Horizon{weeks: sorted, index: idx}, nil
}

// Weeks returns the slots in ascending week order.
func (h *Horizon) Weeks() []WeekSlot { return h.weeks }

// Len returns the number of modeled weeks.
func (h *Horizon) Len() int { return len(h.weeks) }

// Contains reports whether the week index is part of the horizon.
func (h *Horizon) Contains(weekIndex int) bool {
	_, ok := h.index[weekIndex]
	return ok
}

// Position returns the position of the week within the horizon.
func (h *Horizon) Position(weekIndex int) (int, bool) {
	pos, ok := h.index[weekIndex]
	return pos, ok
}
