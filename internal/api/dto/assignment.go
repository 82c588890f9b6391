package dto

import (
	"time"

	"ambulance-dispatch-service/internal/domain"

	"github.com/cespare/xxhash/v2"
)

// Display colors for units on a map.
var unitColors = [...]string{"green", "orange", "red", "purple"}

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type AssignmentEntryResponse struct {
	UnitID               string               `json:"unit_id"`
	Facility             string               `json:"facility"`
	FacilityLocation     CoordinateResponse   `json:"facility_location"`
	Cost                 float64              `json:"cost"`
	DistanceKm           float64              `json:"distance_km"`
	ProviderDurationMin  float64              `json:"provider_duration_min"`
	GraphDurationMin     float64              `json:"graph_duration_min"`
	EstimatedDurationMin float64              `json:"estimated_duration_min"`
	SharedFacility       bool                 `json:"shared_facility"`
	Color                string               `json:"color"`
	Route                []CoordinateResponse `json:"route"`
}

type AssignmentResponse struct {
	CycleID   string                    `json:"cycle_id"`
	StartedAt time.Time                 `json:"started_at"`
	Entries   []AssignmentEntryResponse `json:"entries"`
}

type PositionEvent struct {
	UnitID   string    `json:"unit_id"`
	Facility string    `json:"facility"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	At       time.Time `json:"at"`
}

// UnitColor picks a stable display color for a unit ID.
func UnitColor(unitID string) string {
	return unitColors[xxhash.Sum64String(unitID)%uint64(len(unitColors))]
}

func Coordinates(pts []domain.Coordinates) []CoordinateResponse {
	out := make([]CoordinateResponse, 0, len(pts))
	for _, p := range pts {
		out = append(out, CoordinateResponse{Lat: p.Lat, Lon: p.Lon})
	}
	return out
}

// NewAssignmentResponse renders entries in commit order.
func NewAssignmentResponse(a *domain.Assignment) AssignmentResponse {
	res := AssignmentResponse{
		CycleID:   a.CycleID,
		StartedAt: a.StartedAt,
		Entries:   make([]AssignmentEntryResponse, 0, len(a.Order)),
	}
	for _, id := range a.Order {
		e := a.Entries[id]
		entry := AssignmentEntryResponse{
			UnitID:               e.UnitID,
			Cost:                 e.Cost,
			DistanceKm:           e.DistanceKm,
			ProviderDurationMin:  e.ProviderDurationMin,
			GraphDurationMin:     e.GraphDurationMin,
			EstimatedDurationMin: e.EstimatedDurationMin,
			SharedFacility:       e.SharedFacility,
			Color:                UnitColor(e.UnitID),
			Route:                Coordinates(e.Route.Points),
		}
		if e.Facility != nil {
			entry.Facility = e.Facility.Name
			entry.FacilityLocation = CoordinateResponse{Lat: e.Facility.Location.Lat, Lon: e.Facility.Location.Lon}
		}
		res.Entries = append(res.Entries, entry)
	}
	return res
}
