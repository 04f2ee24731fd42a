package maze

const (
	lcgMultiplier uint64 = 48271
	lcgModulus    uint64 = 2147483647 // 2^31 - 1
)

// LCG is a Park-Miller (MINSTD) linear congruential generator.
// It only uses integer arithmetic so every platform draws the same sequence.
type LCG struct {
	state uint32
}

// NewLCG creates a generator for the given seed. Seed 0 is replaced with 1
// since 0 is a fixed point of the recurrence.
func NewLCG(seed uint32) *LCG {
	if seed == 0 {
		seed = 1
	}
	return &LCG{state: seed}
}

// State returns the current internal state.
func (r *LCG) State() uint32 {
	return r.state
}

func (r *LCG) advance() {
	r.state = uint32(uint64(r.state) * lcgMultiplier % lcgModulus)
}

// Randint returns an integer in [a, b].
func (r *LCG) Randint(a, b int) int {
	r.advance()
	span := uint64(b - a + 1)
	return a + int(uint64(r.state)*span/lcgModulus)
}

// ChoiceIndex returns an index in [0, n).
func (r *LCG) ChoiceIndex(n int) int {
	r.advance()
	return int(uint64(r.state) * uint64(n) / lcgModulus)
}
