package oracle

import (
	"sort"
	"sync"

	"github.com/tkhs-dev/updown/pkg/engine"
)

// History is an in-memory, timestamp-ordered log of price samples backing
// the engine.PriceOracle contract. The streamer appends live ticks; the
// engine reads synchronously. Bounded: once capacity is reached the oldest
// samples are evicted, so settlement lookups only work while the maturity
// window is still inside the retained history.
type History struct {
	mu      sync.RWMutex
	samples []engine.Sample
	cap     int
}

// DefaultCapacity retains ~8 hours of 1/sec ticks.
const DefaultCapacity = 30000

// NewHistory creates an empty history. capacity <= 0 uses DefaultCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{cap: capacity}
}

// Record appends a sample. Samples usually arrive in timestamp order; a
// late-arriving tick is inserted at its sorted position so settlement
// lookups stay correct.
func (h *History) Record(ts uint32, price uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := engine.Sample{Timestamp: ts, Price: price}
	n := len(h.samples)
	if n == 0 || h.samples[n-1].Timestamp <= ts {
		h.samples = append(h.samples, s)
	} else {
		i := sort.Search(n, func(i int) bool { return h.samples[i].Timestamp > ts })
		h.samples = append(h.samples, engine.Sample{})
		copy(h.samples[i+1:], h.samples[i:])
		h.samples[i] = s
	}

	if len(h.samples) > h.cap {
		drop := len(h.samples) - h.cap
		h.samples = append(h.samples[:0], h.samples[drop:]...)
	}
}

// CurrentPrice returns the newest sample's price.
func (h *History) CurrentPrice() (uint64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.samples) == 0 {
		return 0, false
	}
	return h.samples[len(h.samples)-1].Price, true
}

// SettlementPrice returns the earliest sample at or after the given time.
func (h *History) SettlementPrice(atOrAfter uint32) (engine.Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i := sort.Search(len(h.samples), func(i int) bool {
		return h.samples[i].Timestamp >= atOrAfter
	})
	if i == len(h.samples) {
		return engine.Sample{}, false
	}
	return h.samples[i], true
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

var _ engine.PriceOracle = (*History)(nil)
