package circuit

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	thetas := []float64{0, math.Pi / 2, math.Pi}

	c, err := Build(thetas, RX)
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumQubits)
	require.Len(t, c.Gates, 3)
	for i, g := range c.Gates {
		assert.Equal(t, RX, g.Kind)
		assert.Equal(t, i, g.Qubit)
		assert.Equal(t, thetas[i], g.Theta)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, RX)
	assert.Error(t, err)

	_, err = Build([]float64{1}, Rotation("rz"))
	assert.ErrorIs(t, err, ErrUnknownRotation)

	_, err = Build([]float64{math.NaN()}, RY)
	assert.Error(t, err)
}

func TestParseRotation(t *testing.T) {
	r, err := ParseRotation("RY")
	require.NoError(t, err)
	assert.Equal(t, RY, r)

	_, err = ParseRotation("h")
	assert.ErrorIs(t, err, ErrUnknownRotation)
}

func TestDraw(t *testing.T) {
	c, err := Build([]float64{math.Pi, 0}, RX)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(c.Draw(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "q0: ─RX(3.142)"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "M ─ c1"), lines[1])
}
