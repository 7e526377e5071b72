// Package radiance implements the multi-level 3D radiance cache described
// in spec.md §4.4: a set of cascades of decreasing probe density, refreshed
// under a per-frame budget, sampled by shaders for indirect lighting and by
// fogofwar for visibility brightness.
package radiance

// OcclusionProvider is the small capability spec.md §9 prescribes in place
// of the legacy `IVoxelOcclusionProvider` virtual interface: any storage
// shape that can report its dimensions, tile sizes and whether a voxel
// blocks light can feed the cache. voxelmap.Voxel3DMap satisfies this via
// MapOcclusion.
type OcclusionProvider interface {
	Dimensions() (w, h, d int)
	TileSizeXY() float32
	TileSizeZ() float32
	IsBlocked(x, y, z int) bool
}
