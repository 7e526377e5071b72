package voxelmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkableNeighborsRectangular(t *testing.T) {
	m := New(DefaultConfig(4, 4, 2))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, 0, Voxel{IsWalkable: true, IsFloor: true})
		}
	}
	n := m.WalkableNeighbors([3]int{1, 1, 0})
	assert.Len(t, n, 8)
}

func TestWalkableNeighborsClimbable(t *testing.T) {
	m := New(DefaultConfig(4, 4, 3))
	m.Set(1, 1, 0, Voxel{IsWalkable: true})
	m.Set(1, 1, 1, Voxel{IsWalkable: true, IsClimbable: true})
	n := m.WalkableNeighbors([3]int{1, 1, 0})
	found := false
	for _, c := range n {
		if c == [3]int{1, 1, 1} {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMovementCostDiagonalPenalty(t *testing.T) {
	m := New(DefaultConfig(4, 4, 2))
	m.Set(0, 0, 0, Voxel{MovementCost: 1})
	m.Set(1, 1, 0, Voxel{MovementCost: 1})
	m.Set(0, 1, 0, Voxel{MovementCost: 1})
	straight := m.MovementCost([3]int{0, 0, 0}, [3]int{0, 1, 0})
	diag := m.MovementCost([3]int{0, 0, 0}, [3]int{1, 1, 0})
	assert.InDelta(t, 1.0, straight, 1e-6)
	assert.Greater(t, diag, straight)
}

func TestCanMoveToBlockedBySolid(t *testing.T) {
	m := New(DefaultConfig(4, 4, 2))
	m.Set(1, 0, 0, Voxel{Solid: true})
	assert.False(t, m.CanMoveTo([3]int{0, 0, 0}, [3]int{1, 0, 0}))
}

func TestCanMoveToCeilingTrap(t *testing.T) {
	m := New(DefaultConfig(4, 4, 3))
	m.Set(1, 0, 1, Voxel{}) // destination, one floor up
	m.Set(1, 0, 2, Voxel{Solid: true})
	assert.False(t, m.CanMoveTo([3]int{0, 0, 0}, [3]int{1, 0, 1}))
}
