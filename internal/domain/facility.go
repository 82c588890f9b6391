package domain

import "slices"

// Facility is a hospital that can receive units.
// Name is unique and is used as the exclusivity key within a cycle.
// WaitMinutes and Occupancy are refreshed externally between cycles;
// the engine only reads them.
type Facility struct {
	Name        string
	Location    Coordinates
	Specialties []string
	WaitMinutes int
	Capacity    int
	Occupancy   int
}

func (f *Facility) AcceptsPatients() bool { return f.Occupancy < f.Capacity }

func (f *Facility) OccupancyRatio() float64 {
	if f.Capacity <= 0 {
		return 1
	}
	return float64(f.Occupancy) / float64(f.Capacity)
}

func (f *Facility) HasSpecialty(s string) bool { return slices.Contains(f.Specialties, s) }
