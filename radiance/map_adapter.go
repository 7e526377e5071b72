package radiance

import "github.com/gekko3d/voxelcore/voxelmap"

// MapOcclusion adapts a *voxelmap.Voxel3DMap to OcclusionProvider, always
// querying the light-blocking flag (spec.md §4.2's `IsBlocked(x, y, z,
// light bool)`, pinned to light=true for this consumer).
type MapOcclusion struct {
	Map *voxelmap.Voxel3DMap
}

func (m MapOcclusion) Dimensions() (int, int, int) { return m.Map.Dimensions() }
func (m MapOcclusion) TileSizeXY() float32         { return m.Map.TileSizeXY() }
func (m MapOcclusion) TileSizeZ() float32          { return m.Map.TileSizeZ() }
func (m MapOcclusion) IsBlocked(x, y, z int) bool  { return m.Map.IsBlocked(x, y, z, true) }
