package fogofwar

import "github.com/go-gl/mathgl/mgl32"

// MapProvider is the C1 capability spec.md §6 lists as consumed by C5:
// dimensions, world<->voxel conversion, and a vertical line-of-sight test.
// voxelmap.Voxel3DMap satisfies this directly.
type MapProvider interface {
	Dimensions() (w, h, d int)
	WorldToVoxel(p mgl32.Vec3) [3]int
	VoxelToWorldCenter(x, y, z int) mgl32.Vec3
	HasLineOfSight(a, b [3]int) bool
}

// RadianceProvider is the C4 capability spec.md §4.5 consumes: validity and
// brightness at a world position. A nil RadianceProvider degrades to a
// zeroed visibility channel rather than crashing (spec.md §4.5, "Failure:
// missing cascade reference").
type RadianceProvider interface {
	ValidityBrightnessAt(worldPos mgl32.Vec3) (validity, brightness float32, ok bool)
}
