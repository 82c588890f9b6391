package facilitystate

import (
	"context"
	"math/rand/v2"
	"testing"

	"ambulance-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomRefreshStaysInRange(t *testing.T) {
	r := NewRandom(rand.New(rand.NewPCG(7, 11)))
	facilities := []*domain.Facility{
		{Name: "San José", Capacity: 12},
		{Name: "La Estancia", Capacity: 1},
	}

	sawFull := false
	for range 200 {
		require.NoError(t, r.Refresh(context.Background(), facilities))
		for _, f := range facilities {
			assert.GreaterOrEqual(t, f.WaitMinutes, 2)
			assert.LessOrEqual(t, f.WaitMinutes, 6)
			assert.GreaterOrEqual(t, f.Occupancy, 0)
			assert.LessOrEqual(t, f.Occupancy, f.Capacity)
			if !f.AcceptsPatients() {
				sawFull = true
			}
		}
	}
	assert.True(t, sawFull, "occupancy should reach capacity sometimes")
}

func TestRandomRefreshDeterministicWithSeed(t *testing.T) {
	run := func() []int {
		r := NewRandom(rand.New(rand.NewPCG(1, 2)))
		fs := []*domain.Facility{{Capacity: 10}, {Capacity: 10}}
		require.NoError(t, r.Refresh(context.Background(), fs))
		return []int{fs[0].WaitMinutes, fs[0].Occupancy, fs[1].WaitMinutes, fs[1].Occupancy}
	}
	assert.Equal(t, run(), run())
}

func TestRandomRefreshHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRandom(nil).Refresh(ctx, []*domain.Facility{{Capacity: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
