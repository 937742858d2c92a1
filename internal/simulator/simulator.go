// Package simulator executes rotation circuits on a state-vector simulator and samples
// measurement outcomes.
//
// Outcome keys follow the usual quantum SDK convention: the leftmost character is the
// highest-index qubit and qubit 0 is the rightmost character.
package simulator

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"

	"github.com/rewired-gh/quantumscout/internal/circuit"
)

// MaxQubits bounds the state vector at 2^MaxQubits amplitudes
const MaxQubits = 20

// checkEvery is how many shots are sampled between context checks
const checkEvery = 4096

// ErrInvalidShots is returned when the shot count is not positive
var ErrInvalidShots = errors.New("shots must be positive")

// Counts maps a measured bitstring to the number of shots that produced it
type Counts map[string]int

// Total returns the number of shots recorded
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Simulator samples circuit outcomes from a random source
type Simulator struct {
	src rand.Source
}

// New creates a simulator. A zero seed draws from a cryptographically seeded
// generator; any other seed gives reproducible samples.
func New(seed uint64) *Simulator {
	if seed == 0 {
		return NewWithSource(&frandSource{rng: frand.New()})
	}
	return NewWithSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewWithSource creates a simulator drawing from src
func NewWithSource(src rand.Source) *Simulator {
	return &Simulator{src: src}
}

// frandSource adapts frand to rand.Source
type frandSource struct {
	rng *frand.RNG
}

func (s *frandSource) Uint64() uint64 {
	var b [8]byte
	_, _ = s.rng.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// StateVector returns the amplitudes after applying every gate to |0...0⟩.
// Amplitude index bit q is the state of qubit q.
func StateVector(c *circuit.Circuit) ([]complex128, error) {
	if c.NumQubits <= 0 || c.NumQubits > MaxQubits {
		return nil, fmt.Errorf("circuit has %d qubits, want 1-%d", c.NumQubits, MaxQubits)
	}

	amps := make([]complex128, 1<<c.NumQubits)
	amps[0] = 1

	for _, g := range c.Gates {
		if g.Qubit < 0 || g.Qubit >= c.NumQubits {
			return nil, fmt.Errorf("gate targets qubit %d outside 0-%d", g.Qubit, c.NumQubits-1)
		}
		m, err := matrix(g)
		if err != nil {
			return nil, err
		}
		apply(amps, g.Qubit, m)
	}
	return amps, nil
}

// Probabilities returns the measurement probability of every basis state
func Probabilities(c *circuit.Circuit) ([]float64, error) {
	amps, err := StateVector(c)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(amps))
	for i, a := range amps {
		r := cmplx.Abs(a)
		probs[i] = r * r
	}
	return probs, nil
}

// Run measures every qubit of c shots times and returns the outcome counts.
// Outcomes that never occur are absent from the result.
func (s *Simulator) Run(ctx context.Context, c *circuit.Circuit, shots int) (Counts, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShots, shots)
	}
	probs, err := Probabilities(c)
	if err != nil {
		return nil, err
	}

	dist := distuv.NewCategorical(probs, s.src)
	hits := make(map[int]int)
	for i := 0; i < shots; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[int(dist.Rand())]++
	}

	counts := make(Counts, len(hits))
	for idx, n := range hits {
		counts[fmt.Sprintf("%0*b", c.NumQubits, idx)] = n
	}
	return counts, nil
}

type gateMatrix [2][2]complex128

func matrix(g circuit.Gate) (gateMatrix, error) {
	cos := complex(math.Cos(g.Theta/2), 0)
	sin := math.Sin(g.Theta / 2)
	switch g.Kind {
	case circuit.RX:
		return gateMatrix{
			{cos, complex(0, -sin)},
			{complex(0, -sin), cos},
		}, nil
	case circuit.RY:
		return gateMatrix{
			{cos, complex(-sin, 0)},
			{complex(sin, 0), cos},
		}, nil
	default:
		return gateMatrix{}, fmt.Errorf("%w: %q", circuit.ErrUnknownRotation, g.Kind)
	}
}

// apply multiplies the amplitude pairs that differ only in qubit q by m
func apply(amps []complex128, q int, m gateMatrix) {
	bit := 1 << q
	for i := range amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := amps[i], amps[j]
		amps[i] = m[0][0]*a0 + m[0][1]*a1
		amps[j] = m[1][0]*a0 + m[1][1]*a1
	}
}
