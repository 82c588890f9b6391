package facilitystate

import (
	"context"
	"math/rand/v2"
	"sync"

	"ambulance-dispatch-service/internal/domain"
)

const (
	minWaitMinutes = 2
	maxWaitMinutes = 6
)

// Random simulates facility state for demos: wait time drawn from 2..6
// minutes and occupancy from 0..capacity on every refresh.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a refresher using rng, or a randomly seeded generator when nil.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Random{rng: rng}
}

func (r *Random) Refresh(ctx context.Context, facilities []*domain.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range facilities {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.WaitMinutes = minWaitMinutes + r.rng.IntN(maxWaitMinutes-minWaitMinutes+1)
		if f.Capacity > 0 {
			f.Occupancy = r.rng.IntN(f.Capacity + 1)
		}
	}
	return nil
}
