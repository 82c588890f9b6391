package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"ambulance-dispatch-service/internal/domain"
)

// TrafficSource yields a traffic factor in [0, 0.5).
type TrafficSource interface {
	Factor() float64
}

// TrafficFunc adapts a function to TrafficSource.
type TrafficFunc func() float64

func (f TrafficFunc) Factor() float64 { return f() }

// RandomTraffic draws factors uniformly from [0, 0.5) using math/rand/v2.
type RandomTraffic struct {
	rng *rand.Rand
}

// NewRandomTraffic returns a source backed by rng, or the global generator
// when rng is nil.
func NewRandomTraffic(rng *rand.Rand) *RandomTraffic {
	return &RandomTraffic{rng: rng}
}

func (r *RandomTraffic) Factor() float64 {
	if r.rng == nil {
		return rand.Float64() * 0.5
	}
	return r.rng.Float64() * 0.5
}

const (
	specialtyMatchFull    = 1.0
	specialtyMatchPartial = 0.5
	occupancyWeight       = 5.0
	specialtyPenalty      = 3.0
	trafficWeight         = 2.0
)

var errInvalidCostInput = errors.New("cost: invalid input")

// CostModel scores a (unit, facility, route) candidate. Lower is better.
type CostModel struct {
	Traffic TrafficSource
}

func NewCostModel(traffic TrafficSource) *CostModel {
	if traffic == nil {
		traffic = NewRandomTraffic(nil)
	}
	return &CostModel{Traffic: traffic}
}

// Cost combines traffic-adjusted travel time, facility wait, occupancy and
// specialty match:
//
//	adjusted = base * (1 + traffic*2)
//	cost     = adjusted + wait + occupancy*5 + (1-match)*3
//
// Only defined for road-following routes with a positive base duration.
func (m *CostModel) Cost(
	unit *domain.Unit,
	facility *domain.Facility,
	route domain.Route,
	baseDurationMin float64,
) (float64, error) {
	if unit == nil || facility == nil {
		return 0, fmt.Errorf("%w: nil unit or facility", errInvalidCostInput)
	}
	if !route.IsRoadFollowing() {
		return 0, fmt.Errorf("%w: route has %d points", errInvalidCostInput, len(route.Points))
	}
	if baseDurationMin <= 0 {
		return 0, fmt.Errorf("%w: base duration %.3f", errInvalidCostInput, baseDurationMin)
	}

	match := specialtyMatchPartial
	if facility.HasSpecialty(unit.Specialty) {
		match = specialtyMatchFull
	}

	traffic := m.Traffic.Factor()
	adjusted := baseDurationMin * (1 + traffic*trafficWeight)

	return adjusted +
		float64(facility.WaitMinutes) +
		facility.OccupancyRatio()*occupancyWeight +
		(1-match)*specialtyPenalty, nil
}

// minCommittedCost is the smallest cost a committed entry may carry.
const minCommittedCost = 0.1

// roundCost rounds to one decimal. Valid costs are positive, so rounding
// never yields zero: anything below the first decimal becomes minCommittedCost.
func roundCost(c float64) float64 {
	return math.Max(math.Round(c*10)/10, minCommittedCost)
}
