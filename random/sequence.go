package random

import "math"

// Sequence replays scripted Float64 values in order and then repeats the last
// one. IntN, NormFloat64 and Shuffle are derived from the same stream, which
// makes it handy for pinning down individual branches in tests.
type Sequence struct {
	values []float64
	pos    int
}

func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	v := s.values[s.pos]
	if s.pos < len(s.values)-1 {
		s.pos++
	}
	return v
}

func (s *Sequence) IntN(n int) int {
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// NormFloat64 maps the next value v to (v-0.5)*2, so 0.5 means "exactly the mean".
func (s *Sequence) NormFloat64() float64 {
	return (s.Float64() - 0.5) * 2
}

// Shuffle leaves the order untouched.
func (s *Sequence) Shuffle(n int, swap func(i, j int)) {}

// Remaining reports how many scripted values have not been consumed yet.
func (s *Sequence) Remaining() int {
	return int(math.Max(0, float64(len(s.values)-1-s.pos)))
}
