package dto

type RouteRequest struct {
	OriginLat      float64 `validate:"latitude"`
	OriginLon      float64 `validate:"longitude"`
	DestinationLat float64 `validate:"latitude"`
	DestinationLon float64 `validate:"longitude"`
}

type RouteResponse struct {
	Points      []CoordinateResponse `json:"points"`
	Polyline    string               `json:"polyline"`
	DurationMin float64              `json:"duration_min"`
	DistanceKm  float64              `json:"distance_km"`
	Cached      bool                 `json:"cached"`
}
