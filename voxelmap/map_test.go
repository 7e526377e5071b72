package voxelmap

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateRoundTrip(t *testing.T) {
	m := New(DefaultConfig(8, 8, 4))
	w, h, d := m.Dimensions()
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				center := m.VoxelToWorldCenter(x, y, z)
				back := m.WorldToVoxel(center)
				require.Equal(t, [3]int{x, y, z}, back)
			}
		}
	}
}

func TestOutOfBoundsReadsReturnEmpty(t *testing.T) {
	m := New(DefaultConfig(4, 4, 4))
	assert.True(t, m.At(-1, 0, 0).IsEmpty())
	assert.True(t, m.At(100, 0, 0).IsEmpty())
}

func TestOutOfBoundsWriteFails(t *testing.T) {
	m := New(DefaultConfig(4, 4, 4))
	ok := m.Set(-1, 0, 0, Voxel{Solid: true})
	assert.False(t, ok)
}

func TestSolidImpliesNotWalkable(t *testing.T) {
	m := New(DefaultConfig(4, 4, 4))
	m.Set(1, 1, 1, Voxel{Solid: true, IsWalkable: true})
	assert.False(t, m.At(1, 1, 1).IsWalkable)
}

func TestDirtyRegionCoversWrites(t *testing.T) {
	m := New(DefaultConfig(10, 10, 4))
	m.Set(3, 4, 1, Voxel{IsFloor: true})
	union, ok := m.DirtyUnion()
	require.True(t, ok)
	assert.True(t, union.Contains(3, 4, 1))

	m.ClearDirty()
	_, ok = m.DirtyUnion()
	assert.False(t, ok)
}

func TestGroundLevel(t *testing.T) {
	m := New(DefaultConfig(4, 4, 5))
	m.Set(0, 0, 0, Voxel{IsFloor: true})
	m.Set(0, 0, 2, Voxel{IsFloor: true})

	assert.Equal(t, 2, m.GroundLevel(0, 0))

	// Blocked by a solid voxel immediately above the higher floor.
	m.Set(0, 0, 3, Voxel{Solid: true})
	assert.Equal(t, 0, m.GroundLevel(0, 0))
}

func TestGroundLevelNoFloorFound(t *testing.T) {
	m := New(DefaultConfig(4, 4, 4))
	assert.Equal(t, -1, m.GroundLevel(0, 0))
}

func TestLargeObjectAtomicity(t *testing.T) {
	m := New(DefaultConfig(10, 10, 4))

	id1 := m.PlaceLargeObject([3]int{2, 2, 0}, [3]int{3, 3, 2}, Voxel{Solid: true, MaterialID: 7})
	require.NotZero(t, id1)

	// Overlapping placement must fail and must not touch any voxel.
	before := m.At(3, 3, 0)
	id2 := m.PlaceLargeObject([3]int{3, 3, 0}, [3]int{3, 3, 2}, Voxel{Solid: true, MaterialID: 9})
	assert.Zero(t, id2)
	assert.Equal(t, before, m.At(3, 3, 0))
	assert.Equal(t, id1, m.At(3, 3, 0).OwnerEntityID)
}

// S6 — large-object rollback scenario.
func TestLargeObjectRollbackScenario(t *testing.T) {
	m := New(DefaultConfig(20, 20, 4))

	id1 := m.PlaceLargeObject([3]int{5, 5, 0}, [3]int{3, 3, 2}, Voxel{Solid: true})
	require.NotZero(t, id1)

	id2 := m.PlaceLargeObject([3]int{6, 5, 0}, [3]int{3, 3, 2}, Voxel{Solid: true})
	assert.Zero(t, id2)
	assert.Equal(t, id1, m.At(6, 5, 0).OwnerEntityID)
}

func TestRemoveLargeObject(t *testing.T) {
	m := New(DefaultConfig(10, 10, 4))
	id := m.PlaceLargeObject([3]int{1, 1, 0}, [3]int{2, 2, 1}, Voxel{Solid: true})
	require.NotZero(t, id)

	assert.True(t, m.RemoveLargeObject(id))
	assert.True(t, m.At(1, 1, 0).IsEmpty())
	_, found := m.LargeObjectByID(id)
	assert.False(t, found)
}

func TestHexToVoxelCenter(t *testing.T) {
	cfg := DefaultConfig(8, 8, 4)
	cfg.GridType = GridHexPointyTop
	m := New(cfg)
	pos, z := m.HexToVoxel(NewHexCoord(0, 0), 1)
	assert.Equal(t, mgl32.Vec3{0, 0, m.TileSizeZ()}, pos)
	assert.Equal(t, 1, z)
}
