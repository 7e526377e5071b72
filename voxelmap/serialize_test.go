package voxelmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseRoundTrip(t *testing.T) {
	m := New(DefaultConfig(6, 6, 2))
	m.Set(1, 1, 0, Voxel{IsFloor: true, MaterialID: 3})
	m.Set(2, 2, 1, Voxel{Solid: true, MaterialID: 5})
	id := m.PlaceLargeObject([3]int{3, 3, 0}, [3]int{2, 2, 1}, Voxel{Solid: true})
	require.NotZero(t, id)

	data, err := m.MarshalSparseJSON()
	require.NoError(t, err)

	loaded, err := UnmarshalSparseJSON(data)
	require.NoError(t, err)

	assert.Equal(t, m.At(1, 1, 0), loaded.At(1, 1, 0))
	assert.Equal(t, m.At(2, 2, 1), loaded.At(2, 2, 1))
	_, found := loaded.LargeObjectByID(id)
	assert.True(t, found)
}

func TestSaveLoadSparseJSONFile(t *testing.T) {
	m := New(DefaultConfig(4, 4, 2))
	m.Set(0, 0, 0, Voxel{IsFloor: true})

	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, m.SaveSparseJSON(path))

	loaded, err := LoadSparseJSON(path)
	require.NoError(t, err)
	assert.Equal(t, m.At(0, 0, 0), loaded.At(0, 0, 0))
}

func TestDenseJSONIncludesEmptyVoxels(t *testing.T) {
	m := New(DefaultConfig(2, 2, 1))
	data, err := m.MarshalDenseJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"layers\"")
}
