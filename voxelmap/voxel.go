// Package voxelmap implements the bounded 3D voxel grid (spec.md §4.2,
// "Voxel3DMap") consumed by the radiance cache and the fog-of-war system:
// coordinate transforms, ground-level queries, large-object placement,
// pathfinding hooks, line of sight, dirty-region tracking and persistence.
package voxelmap

// Appearance describes how a voxel looks, independent of its physics.
type Appearance struct {
	MaterialID uint16  // surface-material identifier, 0 = none
	Variant    uint8   // variant byte within the material
	ModelID    uint32  // optional model identifier, 0 = none
	ModelScale float32 // model scale, only meaningful if ModelID != 0
	ModelYaw   float32 // model rotation about Z, radians
	ModelOff   [3]float32
}

// IsEmpty reports whether this appearance carries nothing to draw — spec.md
// §3's "empty voxel has no appearance and no model" invariant.
func (a Appearance) IsEmpty() bool {
	return a.MaterialID == 0 && a.ModelID == 0
}

// Voxel is one cell of the grid (spec.md §3).
type Voxel struct {
	Appearance Appearance

	Solid        bool
	BlocksLight  bool
	IsFloor      bool
	IsCeiling    bool
	IsClimbable  bool
	IsTransparent bool
	IsWalkable   bool
	IsSwimmable  bool
	IsDamaging   bool

	MovementCost   float32
	DamagePerSecond float32
	LightEmission  float32
	LightColor     [3]float32

	OwnerEntityID uint64 // 0 = none
	UserFlags     uint16
}

// emptyVoxel is the shared immutable value returned for out-of-bounds reads
// (spec.md §4.2, "Invariants": "out-of-bounds reads return a shared
// immutable empty voxel").
var emptyVoxel = Voxel{}

// EmptyVoxel returns the canonical empty voxel value.
func EmptyVoxel() Voxel { return emptyVoxel }

// Normalize enforces the cross-field invariants from spec.md §3:
// solid implies not walkable. BlocksLight is independent of Solid (a window
// is solid but non-blocking) and is left untouched.
func (v Voxel) Normalize() Voxel {
	if v.Solid {
		v.IsWalkable = false
	}
	return v
}

// IsEmpty reports whether this is the canonical empty voxel: no appearance,
// no physical flags, no scalars set.
func (v Voxel) IsEmpty() bool {
	return v == emptyVoxel
}
