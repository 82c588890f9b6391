package domain

import "time"

// HistoryRecord is an entry in a unit's assignment log.
type HistoryRecord struct {
	Facility   string
	Cost       float64
	Route      Route
	DistanceKm float64
	At         time.Time
}

// Mobile dispatchable unit (ambulance).
// History is append-only: records are never mutated or removed.
type Unit struct {
	ID        string
	Position  Coordinates
	Specialty string
	History   []HistoryRecord
}

func NewUnit(id string, pos Coordinates, specialty string) *Unit {
	return &Unit{
		ID:        id,
		Position:  pos,
		Specialty: specialty,
	}
}

// Append a record to the unit's history.
func (u *Unit) AppendHistory(rec HistoryRecord) {
	u.History = append(u.History, rec)
}

// Move the unit to a new position.
func (u *Unit) MoveTo(c Coordinates) {
	u.Position = c
}
