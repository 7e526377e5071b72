package fogofwar

// FogState is a voxel's exploration/visibility state (spec.md §4.5,
// "Contract").
type FogState int

const (
	Unknown FogState = iota
	Explored
	Visible
)

// voxelFog is the per-voxel state tracked by FogOfWar.
type voxelFog struct {
	state      FogState
	brightness float32
	everSeen   bool
}

// FloorProgress reports exploration coverage for one floor (spec.md §4.5,
// "Persistence").
type FloorProgress struct {
	ExploredVoxels int
	TotalVoxels    int
}
