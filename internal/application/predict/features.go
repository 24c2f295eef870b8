package predict

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler draws uniform values in [0, 1).
type Sampler interface {
	Float64() float64
}

// lockedSampler wraps a dedicated rand source; *rand.Rand is not safe for concurrent use.
type lockedSampler struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSampler returns a Sampler seeded from seed. Zero seeds from the clock.
func NewSampler(seed int64) Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSampler{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSampler) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Features is the per-modality vector fed into fusion.
type Features struct {
	Modality  string
	Values    []float64
	Text      string
	Processed bool
}

// extract produces a placeholder feature vector of length n.
// No real MRI/EEG/text feature extraction happens here.
func extract(s Sampler, modality string, n int) Features {
	values := make([]float64, n)
	for i := range values {
		values[i] = s.Float64()
	}
	return Features{Modality: modality, Values: values, Processed: true}
}
