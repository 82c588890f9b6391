package services

import (
	"math"
	"math/rand/v2"
	"testing"

	"ambulance-dispatch-service/internal/domain"
)

func TestCostFormula(t *testing.T) {
	m := NewCostModel(pinnedTraffic)
	u := domain.NewUnit("A1", unitPos, "Cardiología")
	f := facility("San José", sanJose, "Cardiología", 5, 4, 1)
	r := roadRoute(unitPos, sanJose, 10, 12)

	got, err := m.Cost(u, f, r, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 12*(1+0.25*2) + 5 + 0.25*5 + 0
	want := 18.0 + 5 + 1.25
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("cost = %v, want %v", got, want)
	}
}

func TestCostMonotonicity(t *testing.T) {
	m := NewCostModel(pinnedTraffic)
	u := domain.NewUnit("A1", unitPos, "Trauma")
	r := roadRoute(unitPos, sanJose, 5, 10)

	cost := func(f *domain.Facility) float64 {
		t.Helper()
		c, err := m.Cost(u, f, r, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return c
	}

	base := cost(facility("F", sanJose, "Trauma", 3, 10, 2))

	if c := cost(facility("F", sanJose, "Trauma", 4, 10, 2)); c <= base {
		t.Fatalf("higher wait should cost more: %v <= %v", c, base)
	}
	if c := cost(facility("F", sanJose, "Trauma", 3, 10, 5)); c <= base {
		t.Fatalf("higher occupancy should cost more: %v <= %v", c, base)
	}
	mismatch := cost(facility("F", sanJose, "Pediatría", 3, 10, 2))
	if math.Abs(mismatch-base-1.5) > 1e-9 {
		t.Fatalf("specialty mismatch penalty = %v, want 1.5", mismatch-base)
	}
}

func TestCostRejectsInvalidInput(t *testing.T) {
	m := NewCostModel(pinnedTraffic)
	u := domain.NewUnit("A1", unitPos, "General")
	f := facility("F", sanJose, "General", 1, 1, 0)

	if _, err := m.Cost(u, f, roadRoute(unitPos, sanJose, 2, 5), 5); err == nil {
		t.Fatal("expected error for straight-line route")
	}
	if _, err := m.Cost(u, f, roadRoute(unitPos, sanJose, 4, 5), 0); err == nil {
		t.Fatal("expected error for zero base duration")
	}
	if _, err := m.Cost(nil, f, roadRoute(unitPos, sanJose, 4, 5), 5); err == nil {
		t.Fatal("expected error for nil unit")
	}
}

func TestRandomTrafficRange(t *testing.T) {
	src := NewRandomTraffic(rand.New(rand.NewPCG(1, 2)))
	for range 1000 {
		f := src.Factor()
		if f < 0 || f >= 0.5 {
			t.Fatalf("factor %v out of [0, 0.5)", f)
		}
	}
}

func TestRoundCost(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{24.25, 24.3},
		{24.24, 24.2},
		{7, 7},
		{0.04, 0.1},
		{0.05, 0.1},
	}
	for _, tt := range tests {
		if got := roundCost(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("roundCost(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
