package voxelmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupercover3DEndpoints(t *testing.T) {
	a := [3]int{0, 0, 0}
	b := [3]int{5, -3, 2}
	line := Supercover3D(a, b)
	require.NotEmpty(t, line)
	assert.Equal(t, a, line[0])
	assert.Equal(t, b, line[len(line)-1])
}

func TestHasLineOfSightUnobstructed(t *testing.T) {
	m := New(DefaultConfig(16, 16, 4))
	assert.True(t, m.HasLineOfSight([3]int{0, 0, 0}, [3]int{10, 0, 0}))
}

func TestHasLineOfSightBlockedByWall(t *testing.T) {
	m := New(DefaultConfig(16, 16, 4))
	for z := 0; z < 4; z++ {
		for y := 0; y < 16; y++ {
			m.Set(8, y, z, Voxel{Solid: true, BlocksLight: true})
		}
	}
	assert.False(t, m.HasLineOfSight([3]int{4, 8, 1}, [3]int{12, 8, 1}))
}
