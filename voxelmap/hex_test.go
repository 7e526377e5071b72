package voxelmap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexCubeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		q := rng.Intn(201) - 100
		r := rng.Intn(201) - 100
		h := NewHexCoord(q, r)
		assert.Equal(t, 0, h.Q+h.R+h.S)
	}
}

func TestHexDistanceSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 300; i++ {
		a := NewHexCoord(rng.Intn(41)-20, rng.Intn(41)-20)
		b := NewHexCoord(rng.Intn(41)-20, rng.Intn(41)-20)
		assert.Equal(t, a.Distance(b), b.Distance(a))
	}
}

func TestHexLineEndpoints(t *testing.T) {
	cases := []struct{ a, b HexCoord }{
		{NewHexCoord(0, 0), NewHexCoord(0, 0)},
		{NewHexCoord(0, 0), NewHexCoord(5, -2)},
		{NewHexCoord(-3, 4), NewHexCoord(3, -4)},
		{NewHexCoord(10, 10), NewHexCoord(-10, -5)},
	}
	for _, c := range cases {
		line := c.a.Line(c.b)
		require.Len(t, line, c.a.Distance(c.b)+1)
		assert.Equal(t, c.a, line[0])
		assert.Equal(t, c.b, line[len(line)-1])
	}
}

func TestHexNeighborOrderAndDistance(t *testing.T) {
	h := NewHexCoord(0, 0)
	for _, n := range h.Neighbors() {
		assert.Equal(t, 1, h.Distance(n))
	}
}

func TestHexRingAndSpiral(t *testing.T) {
	h := NewHexCoord(0, 0)
	ring2 := h.Ring(2)
	assert.Len(t, ring2, 12)
	for _, c := range ring2 {
		assert.Equal(t, 2, h.Distance(c))
	}

	spiral2 := h.Spiral(2)
	assert.Len(t, spiral2, 1+6+12)
}

func TestHexOffsetRoundTrip(t *testing.T) {
	for _, grid := range []GridType{GridHexPointyTop, GridHexFlatTop} {
		for q := -5; q <= 5; q++ {
			for r := -5; r <= 5; r++ {
				h := NewHexCoord(q, r)
				col, row := h.ToOffset(grid)
				back := HexFromOffset(col, row, grid)
				assert.Equalf(t, h, back, "grid=%v q=%d r=%d", grid, q, r)
			}
		}
	}
}
