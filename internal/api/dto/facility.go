package dto

import "ambulance-dispatch-service/internal/domain"

type FacilityResponse struct {
	Name            string             `json:"name"`
	Location        CoordinateResponse `json:"location"`
	Specialties     []string           `json:"specialties"`
	WaitMinutes     int                `json:"wait_minutes"`
	Capacity        int                `json:"capacity"`
	Occupancy       int                `json:"occupancy"`
	AcceptsPatients bool               `json:"accepts_patients"`
}

type FacilitiesResponse struct {
	Facilities []FacilityResponse `json:"facilities"`
}

func NewFacilitiesResponse(fs []domain.Facility) FacilitiesResponse {
	res := FacilitiesResponse{Facilities: make([]FacilityResponse, 0, len(fs))}
	for _, f := range fs {
		specialties := f.Specialties
		if specialties == nil {
			specialties = []string{}
		}
		res.Facilities = append(res.Facilities, FacilityResponse{
			Name:            f.Name,
			Location:        CoordinateResponse{Lat: f.Location.Lat, Lon: f.Location.Lon},
			Specialties:     specialties,
			WaitMinutes:     f.WaitMinutes,
			Capacity:        f.Capacity,
			Occupancy:       f.Occupancy,
			AcceptsPatients: f.AcceptsPatients(),
		})
	}
	return res
}
