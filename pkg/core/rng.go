package core

import "github.com/chewxy/math32"

// ldsPrimes are the square roots of the first 32 primes, used as Weyl-sequence
// strides for the low-discrepancy sampler. From loicvdbruh's shadertoy
// "Hybrid sampler" (NlGXzz): http://extremelearning.com.au/unreasonable-effectiveness-of-quasirandom-sequences/
var ldsPrimes = [32]uint32{
	0x6a09e667, 0xbb67ae84, 0x3c6ef372, 0xa54ff539, 0x510e527f, 0x9b05688a, 0x1f83d9ab, 0x5be0cd18,
	0xcbbb9d5c, 0x629a2929, 0x91590159, 0x452fecd8, 0x67332667, 0x8eb44a86, 0xdb0c2e0b, 0x47b5481d,
	0xae5f9155, 0xcf6c85d1, 0x2f73477d, 0x6d1826ca, 0x8b43d455, 0xe360b595, 0x1c456002, 0x6f196330,
	0xd94ebeaf, 0x9cc4a611, 0x261dc1f2, 0x5815a7bd, 0x70b7ed67, 0xa1513c68, 0x44f93634, 0x720dcdfc,
}

const invU32MaxFloat = float32(1.0) / 4294967296.0

// pcgHash is a cheap permuted-congruential-generator hash used to seed the
// per-pixel low-discrepancy sequence from a sample index.
func pcgHash(input uint32) uint32 {
	state := input*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// lds returns the dimension-th low-discrepancy sample for index n, offset by
// a per-pixel seed.
func lds(n uint32, dimension int, offset uint32) float32 {
	return float32(ldsPrimes[dimension]*(n+offset)) * invU32MaxFloat
}

// State is the per-pixel RNG state carried between progressive samples: a
// sample index (x) and a per-pixel seed (y), plus the dimension counter used
// to stratify successive 1D/2D/3D requests within one sample.
type State struct {
	SampleIndex uint32
	Seed        uint32
	dimension   int
}

// NewState seeds RNG state for a pixel. seed is typically derived once from
// the pixel's coordinates (e.g. via pcgHash) and kept fixed across samples;
// SampleIndex advances by one every time NextSample is called.
func NewState(seed uint32) State {
	return State{Seed: pcgHash(seed)}
}

// NextSample returns the state to use for the following progressive sample,
// advancing the sample index and resetting the per-sample dimension counter.
func (s State) NextSample() State {
	return State{SampleIndex: s.SampleIndex + 1, Seed: s.Seed}
}

// Gen1 returns the next 1D low-discrepancy sample in (0,1), advancing the
// dimension counter.
func (s *State) Gen1() float64 {
	s.dimension++
	return float64(lds(s.SampleIndex, s.dimension%len(ldsPrimes), s.Seed))
}

// Gen2 returns the next 2D low-discrepancy sample.
func (s *State) Gen2() Vec2 {
	return Vec2{X: s.Gen1(), Y: s.Gen1()}
}

// Gen3 returns the next 3D low-discrepancy sample.
func (s *State) Gen3() Vec3 {
	return Vec3{X: s.Gen1(), Y: s.Gen1(), Z: s.Gen1()}
}

// Gen1f32 mirrors Gen1 but stays in float32 end to end, matching the
// arithmetic a GPU compute-shader backend performs bit-for-bit.
func (s *State) Gen1f32() float32 {
	s.dimension++
	return lds(s.SampleIndex, s.dimension%len(ldsPrimes), s.Seed)
}

// Gen3f32 mirrors Gen3 in float32.
func (s *State) Gen3f32() (float32, float32, float32) {
	return s.Gen1f32(), s.Gen1f32(), s.Gen1f32()
}

// math32Sqrt is a small indirection used by code that wants GPU-parity
// float32 transcendentals without importing math32 directly.
func math32Sqrt(x float32) float32 { return math32.Sqrt(x) }
