package domain

import "time"

// AssignmentEntry is the committed outcome for one unit in a cycle.
//
// Route holds the final road-following path (always more than two points).
// ProviderDurationMin is the routing provider's duration and GraphDurationMin
// the estimate derived from the refined path distance; EstimatedDurationMin is
// whichever of the two the engine is configured to report.
type AssignmentEntry struct {
	UnitID               string
	Facility             *Facility
	Route                Route
	Cost                 float64
	DistanceKm           float64
	ProviderDurationMin  float64
	GraphDurationMin     float64
	EstimatedDurationMin float64
	// SharedFacility is set when the facility came from the relaxed pool
	// after every accepting facility had already been used this cycle.
	SharedFacility bool
}

// Assignment is the result of one cycle, keyed by unit ID.
// It is produced fresh each cycle and never diffed against the previous one.
type Assignment struct {
	CycleID   string
	StartedAt time.Time
	Entries   map[string]AssignmentEntry
	// Order lists unit IDs in the order they were committed.
	Order []string
}

func NewAssignment(cycleID string, startedAt time.Time) *Assignment {
	return &Assignment{
		CycleID:   cycleID,
		StartedAt: startedAt,
		Entries:   make(map[string]AssignmentEntry),
	}
}

// Commit records an entry for the unit.
func (a *Assignment) Commit(e AssignmentEntry) {
	if _, ok := a.Entries[e.UnitID]; !ok {
		a.Order = append(a.Order, e.UnitID)
	}
	a.Entries[e.UnitID] = e
}

func (a *Assignment) Len() int { return len(a.Entries) }
