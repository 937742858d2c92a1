// Package circuit builds the parameterized rotation circuit that encodes an alliance's
// score history: one qubit per score bit, one rotation per qubit, then a measurement of
// every qubit.
package circuit

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Rotation names a single-qubit rotation gate
type Rotation string

const (
	// RX rotates about the X axis
	RX Rotation = "rx"
	// RY rotates about the Y axis
	RY Rotation = "ry"
)

// ErrUnknownRotation is returned for rotation names other than rx and ry
var ErrUnknownRotation = errors.New("unknown rotation")

// ParseRotation maps a configuration value to a Rotation
func ParseRotation(s string) (Rotation, error) {
	switch Rotation(strings.ToLower(s)) {
	case RX:
		return RX, nil
	case RY:
		return RY, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRotation, s)
	}
}

// Gate is a rotation by Theta applied to Qubit
type Gate struct {
	Kind  Rotation
	Qubit int
	Theta float64
}

// Circuit is a list of gates over NumQubits qubits, followed by measuring all of them
type Circuit struct {
	NumQubits int
	Gates     []Gate
}

// Build creates a circuit applying rotation thetas[i] to qubit i
func Build(thetas []float64, rotation Rotation) (*Circuit, error) {
	if len(thetas) == 0 {
		return nil, errors.New("circuit needs at least one theta")
	}
	if rotation != RX && rotation != RY {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRotation, rotation)
	}

	c := &Circuit{
		NumQubits: len(thetas),
		Gates:     make([]Gate, len(thetas)),
	}
	for i, theta := range thetas {
		if math.IsNaN(theta) || math.IsInf(theta, 0) {
			return nil, fmt.Errorf("theta %d is not finite", i)
		}
		c.Gates[i] = Gate{Kind: rotation, Qubit: i, Theta: theta}
	}
	return c, nil
}

// Draw renders the circuit as text, one wire per qubit
func (c *Circuit) Draw() string {
	labels := make([]string, c.NumQubits)
	width := 0
	for _, g := range c.Gates {
		if g.Qubit < 0 || g.Qubit >= c.NumQubits {
			continue
		}
		labels[g.Qubit] = fmt.Sprintf("%s(%.3f)", strings.ToUpper(string(g.Kind)), g.Theta)
		width = max(width, len(labels[g.Qubit]))
	}

	var b strings.Builder
	for q := 0; q < c.NumQubits; q++ {
		gate := labels[q]
		if gate == "" {
			gate = strings.Repeat("─", width)
		} else {
			gate += strings.Repeat("─", width-len(gate))
		}
		fmt.Fprintf(&b, "q%d: ─%s─ M ─ c%d\n", q, gate, q)
	}
	return b.String()
}
