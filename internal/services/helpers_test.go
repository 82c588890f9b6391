package services

import (
	"ambulance-dispatch-service/internal/adapters/routing"
	"ambulance-dispatch-service/internal/domain"
)

var (
	unitPos       = domain.Coordinates{Lat: 2.4448, Lon: -76.6147}
	sanJose       = domain.Coordinates{Lat: 2.441981, Lon: -76.612537}
	laEstancia    = domain.Coordinates{Lat: 2.451490, Lon: -76.623228}
	susanaLopez   = domain.Coordinates{Lat: 2.455510, Lon: -76.619900}
	santaGracia   = domain.Coordinates{Lat: 2.448185, Lon: -76.610145}
	pinnedTraffic = TrafficFunc(func() float64 { return 0.25 })
)

// line returns n evenly spaced points from a to b inclusive.
func line(a, b domain.Coordinates, n int) []domain.Coordinates {
	pts := make([]domain.Coordinates, n)
	for i := range pts {
		f := float64(i) / float64(n-1)
		pts[i] = domain.Coordinates{
			Lat: a.Lat + (b.Lat-a.Lat)*f,
			Lon: a.Lon + (b.Lon-a.Lon)*f,
		}
	}
	return pts
}

func roadRoute(a, b domain.Coordinates, n int, minutes float64) domain.Route {
	return domain.Route{Points: line(a, b, n), DurationMin: minutes, DistanceKm: 1.5}
}

func facility(name string, loc domain.Coordinates, specialty string, wait, capacity, occupancy int) *domain.Facility {
	return &domain.Facility{
		Name:        name,
		Location:    loc,
		Specialties: []string{specialty},
		WaitMinutes: wait,
		Capacity:    capacity,
		Occupancy:   occupancy,
	}
}

func okRoute(from, to domain.Coordinates, n int, minutes float64) routing.MockRoute {
	return routing.MockRoute{From: from, To: to, Route: roadRoute(from, to, n, minutes)}
}
