package testutil

import "fmt"

// Rolls is a scripted dice.Source. Float64 and IntN replay their own
// queues in order and panic when a queue runs dry, so a test that draws
// more than it scripted fails loudly.
type Rolls struct {
	floats []float64
	ints   []int

	FloatCalls int
	IntCalls   int
}

// NewRolls returns a source replaying floats.
func NewRolls(floats ...float64) *Rolls {
	return &Rolls{floats: floats}
}

// WithInts appends values returned by IntN. Each value is reduced
// modulo n at draw time.
func (r *Rolls) WithInts(ints ...int) *Rolls {
	r.ints = append(r.ints, ints...)
	return r
}

// Float64 returns the next scripted float.
func (r *Rolls) Float64() float64 {
	if len(r.floats) == 0 {
		panic(fmt.Sprintf("testutil.Rolls: Float64 called %d times, script exhausted", r.FloatCalls+1))
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	r.FloatCalls++
	return v
}

// IntN returns the next scripted int modulo n.
func (r *Rolls) IntN(n int) int {
	if len(r.ints) == 0 {
		panic(fmt.Sprintf("testutil.Rolls: IntN called %d times, script exhausted", r.IntCalls+1))
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	r.IntCalls++
	return v % n
}

// Remaining returns how many scripted values were not consumed.
func (r *Rolls) Remaining() int {
	return len(r.floats) + len(r.ints)
}
