// Package selection implements the byte-driven selection oracle: every
// choice the generator makes is pulled from a finite input buffer rather
// than a hidden entropy source, so a coverage-guided fuzzer can steer
// generation by mutating the bytes.
package selection

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
)

// ErrNotEnoughData is returned once the byte stream is exhausted and a
// primitive needs more bytes to make a choice. Callers treat this as
// "skip this input", never as a bug.
var ErrNotEnoughData = errors.New("selection: not enough data")

// Source is a cursor over an opaque byte buffer. All draws are
// prefix-consuming: a given prefix of bytes always yields the same
// sequence of decisions regardless of what is appended after it, except
// for a final draw that ran past the end and was zero-padded (see
// Uint64), which appended bytes change. This is
// is what makes growing an input safe (see the byte-monotonicity
// property in the top-level design notes).
type Source struct {
	data []byte
	pos  int
}

// NewSource wraps a byte buffer for sequential consumption.
func NewSource(data []byte) *Source {
	return &Source{data: data}
}

// Remaining reports how many unconsumed bytes are left.
func (s *Source) Remaining() int {
	return len(s.data) - s.pos
}

// take consumes up to n bytes, returning fewer only when the stream is
// exhausted. It never returns an error itself; callers decide whether a
// short read is fatal.
func (s *Source) take(n int) []byte {
	if s.pos >= len(s.data) {
		return nil
	}
	end := s.pos + n
	if end > len(s.data) {
		end = len(s.data)
	}
	b := s.data[s.pos:end]
	s.pos = end
	return b
}

// Uint64 consumes up to 8 bytes and returns them as a little-endian
// uint64, zero-padding on the high end if fewer bytes remain. It only
// fails once the stream is completely exhausted, matching the
// underlying byte-consuming primitive's behavior of tolerating partial
// reads near the end of the buffer so that small trailing inputs still
// produce a (less random, but deterministic) decision instead of
// uniformly failing.
func (s *Source) Uint64() (uint64, error) {
	if s.Remaining() == 0 {
		return 0, ErrNotEnoughData
	}
	buf := make([]byte, 8)
	copy(buf, s.take(8))
	return binary.LittleEndian.Uint64(buf), nil
}

// BoundedInt draws an integer in [lo, hi] inclusive. When lo == hi no
// bytes are consumed and lo is returned.
func (s *Source) BoundedInt(lo, hi int) (int, error) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo, nil
	}
	v, err := s.Uint64()
	if err != nil {
		return 0, err
	}
	span := uint64(hi-lo) + 1
	return lo + int(v%span), nil
}

// Ratio returns true with probability n/d, consuming one draw.
func (s *Source) Ratio(n, d uint64) (bool, error) {
	if d == 0 {
		return false, nil
	}
	v, err := s.Uint64()
	if err != nil {
		return false, err
	}
	return v%d < n, nil
}

// Bool draws a uniformly-distributed boolean.
func (s *Source) Bool() (bool, error) {
	return s.Ratio(1, 2)
}

// defaultThreshold is the divisor-of-10000 chance of taking the "sane,
// clustered around target" branch over the "rare, large tail" branch.
const defaultThreshold = 9950

const (
	defaultAlpha = 4.0
	defaultBeta  = 9.0
)

// RandomNumber draws integers that cluster around a target but can
// rarely reach all the way to max, modeling "usually small, sometimes
// large" quantities such as a module's struct count.
type RandomNumber struct {
	Min    int `toml:"min"`
	Target int `toml:"target"`
	Max    int `toml:"max"`

	onceSet   bool
	onceValue int
}

// NewRandomNumber constructs a RandomNumber, panicking on an invalid
// range the way the original constructor asserts its invariants.
func NewRandomNumber(min, target, max int) RandomNumber {
	if min > max {
		panic("selection: RandomNumber min > max")
	}
	if target < min || target > max {
		panic("selection: RandomNumber target out of [min, max]")
	}
	return RandomNumber{Min: min, Target: target, Max: max}
}

// Select draws a value: with high probability a "small" value in
// [min, 2*target] shaped by a Beta(4,9) distribution skewed toward the
// low end, and otherwise a uniform "large" value in [2*target, max].
func (r RandomNumber) Select(s *Source) (int, error) {
	if r.Min == r.Max {
		return r.Min, nil
	}
	small, err := s.Ratio(defaultThreshold, 10000)
	if err != nil {
		return 0, err
	}
	if small {
		return r.selectSmall(s)
	}
	return r.selectLarge(s)
}

// SelectOnce caches the first draw for the lifetime of this value,
// mirroring a decision made once and reused (e.g. the
// additional-operations count generateBlock draws).
func (r *RandomNumber) SelectOnce(s *Source) (int, error) {
	if r.onceSet {
		return r.onceValue, nil
	}
	v, err := r.Select(s)
	if err != nil {
		return 0, err
	}
	r.onceSet = true
	r.onceValue = v
	return v, nil
}

func (r RandomNumber) selectSmall(s *Source) (int, error) {
	seed, err := s.Uint64()
	if err != nil {
		return 0, err
	}
	rng := rand.New(rand.NewSource(int64(seed)))
	value := sampleBeta(rng, defaultAlpha, defaultBeta)

	rangef := float64(2*r.Target - r.Min)
	mapped := value*rangef + float64(r.Min)
	return int(math.Round(mapped)), nil
}

func (r RandomNumber) selectLarge(s *Source) (int, error) {
	return s.BoundedInt(2*r.Target, r.Max)
}

// sampleBeta draws from a Beta(alpha, beta) distribution using the
// standard gamma-ratio construction: X/(X+Y) is Beta(a,b)-distributed
// when X ~ Gamma(a), Y ~ Gamma(b). No third-party statistical
// distribution package is exercised anywhere else in this module, so
// Marsaglia-Tsang gamma sampling is implemented directly against
// math/rand here rather than introducing a single-purpose dependency
// for one call site.
func sampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	x := sampleGamma(rng, alpha)
	y := sampleGamma(rng, beta)
	if x+y == 0 {
		return 0
	}
	return x / (x + y)
}

// sampleGamma implements the Marsaglia-Tsang method for shape >= 1,
// boosting shape < 1 via the standard u^(1/shape) correction.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// ChooseIdxWeighted returns index i with probability proportional to
// weights[i]. The implementation is a deliberately non-uniform
// cumulative-threshold scan over a 0..=100 draw: it conserves input
// bytes at the cost of exact proportionality, so tests on this function
// should only assert monotonic bias toward larger weights.
func ChooseIdxWeighted(s *Source, weights []int) (int, error) {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0, nil
	}
	draw, err := s.BoundedInt(0, 100)
	if err != nil {
		return 0, err
	}
	fraction := float64(draw) / 100.0
	cumulative := 0.0
	for i, w := range weights {
		cumulative += float64(w) / float64(total)
		if cumulative >= fraction {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

// ChooseItemWeighted is the value-returning counterpart of
// ChooseIdxWeighted.
func ChooseItemWeighted[T any](s *Source, items []T, weights []int) (T, error) {
	idx, err := ChooseIdxWeighted(s, weights)
	if err != nil {
		var zero T
		return zero, err
	}
	return items[idx], nil
}
