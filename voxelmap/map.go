package voxelmap

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Config configures a Voxel3DMap at construction (spec.md §3, §6).
type Config struct {
	Width, Height, Depth int      `yaml:"width,omitempty"`
	TileSizeXY           float32  `yaml:"tile_size_xy"`
	TileSizeZ            float32  `yaml:"tile_size_z"`
	GridType             GridType `yaml:"grid_type"`
	HexOuterRadius       float32  `yaml:"hex_outer_radius"`
	// MaxGroundHeight bounds how far GroundLevel scans upward per column.
	MaxGroundHeight int `yaml:"max_ground_height"`
}

// DefaultConfig returns a rectangular grid with Z tile size = XY/3, the
// default ratio named in spec.md §3.
func DefaultConfig(w, h, d int) Config {
	const xy = float32(1.0)
	return Config{
		Width: w, Height: h, Depth: d,
		TileSizeXY:      xy,
		TileSizeZ:       xy / 3,
		GridType:        GridRectangular,
		HexOuterRadius:  xy / 2,
		MaxGroundHeight: d,
	}
}

// AABB is an integer voxel-space axis-aligned bounding box, inclusive of
// Min and exclusive of Max on every axis (half-open, like Go slicing).
type AABB struct {
	Min, Max [3]int
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	out := a
	for i := 0; i < 3; i++ {
		if b.Min[i] < out.Min[i] {
			out.Min[i] = b.Min[i]
		}
		if b.Max[i] > out.Max[i] {
			out.Max[i] = b.Max[i]
		}
	}
	return out
}

// Contains reports whether the voxel (x, y, z) falls inside the AABB.
func (a AABB) Contains(x, y, z int) bool {
	return x >= a.Min[0] && x < a.Max[0] &&
		y >= a.Min[1] && y < a.Max[1] &&
		z >= a.Min[2] && z < a.Max[2]
}

// Voxel3DMap is the bounded 3D grid described in spec.md §4.2.
type Voxel3DMap struct {
	cfg    Config
	voxels []Voxel // row-major: index = x + y*W + z*W*H

	objects      []LargeObject
	nextObjectID uint64

	dirty    []AABB
	anyDirty bool
}

// New allocates a W*H*D voxel grid per cfg.
func New(cfg Config) *Voxel3DMap {
	if cfg.Width < 1 {
		cfg.Width = 1
	}
	if cfg.Height < 1 {
		cfg.Height = 1
	}
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	if cfg.TileSizeXY <= 0 {
		cfg.TileSizeXY = 1
	}
	if cfg.TileSizeZ <= 0 {
		cfg.TileSizeZ = cfg.TileSizeXY / 3
	}
	return &Voxel3DMap{
		cfg:          cfg,
		voxels:       make([]Voxel, cfg.Width*cfg.Height*cfg.Depth),
		nextObjectID: 1,
	}
}

// Dimensions returns (W, H, D).
func (m *Voxel3DMap) Dimensions() (int, int, int) {
	return m.cfg.Width, m.cfg.Height, m.cfg.Depth
}

// TileSizeXY returns the configured XY tile size in world units.
func (m *Voxel3DMap) TileSizeXY() float32 { return m.cfg.TileSizeXY }

// TileSizeZ returns the configured Z (floor) tile size in world units.
func (m *Voxel3DMap) TileSizeZ() float32 { return m.cfg.TileSizeZ }

// Config returns the map's configuration.
func (m *Voxel3DMap) Config() Config { return m.cfg }

func (m *Voxel3DMap) inBounds(x, y, z int) bool {
	return x >= 0 && x < m.cfg.Width &&
		y >= 0 && y < m.cfg.Height &&
		z >= 0 && z < m.cfg.Depth
}

func (m *Voxel3DMap) index(x, y, z int) int {
	return x + y*m.cfg.Width + z*m.cfg.Width*m.cfg.Height
}

// At returns the voxel at (x, y, z). Out-of-bounds reads return the shared
// empty voxel (spec.md §4.2 invariant).
func (m *Voxel3DMap) At(x, y, z int) Voxel {
	if !m.inBounds(x, y, z) {
		return EmptyVoxel()
	}
	return m.voxels[m.index(x, y, z)]
}

// Set writes a voxel at (x, y, z), normalizing its cross-field invariants
// and marking the cell dirty. Returns false for an out-of-bounds write
// (spec.md §7).
func (m *Voxel3DMap) Set(x, y, z int, v Voxel) bool {
	if !m.inBounds(x, y, z) {
		return false
	}
	m.voxels[m.index(x, y, z)] = v.Normalize()
	m.markDirty(AABB{Min: [3]int{x, y, z}, Max: [3]int{x + 1, y + 1, z + 1}})
	return true
}

// IsBlocked reports whether (x, y, z) blocks movement (solid) or light
// (blocksLight), selected by the caller — the C1 interface consumed by C4
// and C5 (spec.md §6).
func (m *Voxel3DMap) IsBlocked(x, y, z int, light bool) bool {
	v := m.At(x, y, z)
	if light {
		return v.BlocksLight
	}
	return v.Solid
}

// WorldToVoxel converts a world-space point to its containing voxel index
// (spec.md §4.2: "ivec3(floor(x/XY), floor(y/XY), floor(z/Z))").
func (m *Voxel3DMap) WorldToVoxel(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Floor(float64(p.X() / m.cfg.TileSizeXY))),
		int(math.Floor(float64(p.Y() / m.cfg.TileSizeXY))),
		int(math.Floor(float64(p.Z() / m.cfg.TileSizeZ))),
	}
}

// VoxelToWorldCorner returns the minimum-corner world position of voxel
// (x, y, z).
func (m *Voxel3DMap) VoxelToWorldCorner(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(x) * m.cfg.TileSizeXY,
		float32(y) * m.cfg.TileSizeXY,
		float32(z) * m.cfg.TileSizeZ,
	}
}

// VoxelToWorldCenter returns the center world position of voxel (x, y, z).
func (m *Voxel3DMap) VoxelToWorldCenter(x, y, z int) mgl32.Vec3 {
	c := m.VoxelToWorldCorner(x, y, z)
	return c.Add(mgl32.Vec3{m.cfg.TileSizeXY / 2, m.cfg.TileSizeXY / 2, m.cfg.TileSizeZ / 2})
}

// HexToVoxel returns the world-space center of hex h at the given Z level,
// plus the Z voxel index, per spec.md §4.2 ("Hex-to-voxel").
func (m *Voxel3DMap) HexToVoxel(h HexCoord, zLevel int) (mgl32.Vec3, int) {
	x, y := hexToWorldXY(h, m.cfg.HexOuterRadius, m.cfg.GridType)
	return mgl32.Vec3{x, y, float32(zLevel) * m.cfg.TileSizeZ}, zLevel
}

func hexToWorldXY(h HexCoord, size float32, grid GridType) (x, y float32) {
	q, r := float64(h.Q), float64(h.R)
	if grid == GridHexFlatTop {
		x = float32(size * 1.5 * q)
		y = float32(size * (math.Sqrt(3)/2*q + math.Sqrt(3)*r))
		return
	}
	// pointy-top default
	x = float32(size * (math.Sqrt(3)*q + math.Sqrt(3)/2*r))
	y = float32(size * 1.5 * r)
	return
}

// GroundLevel returns the highest z whose voxel at (x, y) satisfies
// isFloor and has no solid voxel immediately above it that would block
// standing, scanned within [0, MaxGroundHeight). Returns -1 if none
// (spec.md §4.2).
func (m *Voxel3DMap) GroundLevel(x, y int) int {
	maxZ := m.cfg.MaxGroundHeight
	if maxZ <= 0 || maxZ > m.cfg.Depth {
		maxZ = m.cfg.Depth
	}
	for z := maxZ - 1; z >= 0; z-- {
		v := m.At(x, y, z)
		if !v.IsFloor {
			continue
		}
		if z+1 < m.cfg.Depth && m.At(x, y, z+1).Solid {
			continue
		}
		return z
	}
	return -1
}

// ForEachColumn visits every (x, y) column exactly once via fn, which
// receives only the column's x and y.
func (m *Voxel3DMap) ForEachColumn(fn func(x, y int)) {
	for y := 0; y < m.cfg.Height; y++ {
		for x := 0; x < m.cfg.Width; x++ {
			fn(x, y)
		}
	}
}

// ForEachLayer visits every (x, y) voxel at the given z, in row-major order.
func (m *Voxel3DMap) ForEachLayer(z int, fn func(x, y int, v Voxel)) {
	if z < 0 || z >= m.cfg.Depth {
		return
	}
	for y := 0; y < m.cfg.Height; y++ {
		for x := 0; x < m.cfg.Width; x++ {
			fn(x, y, m.voxels[m.index(x, y, z)])
		}
	}
}

// VisitRegion visits every voxel within box (clamped to bounds) via fn.
func (m *Voxel3DMap) VisitRegion(box AABB, fn func(x, y, z int, v Voxel)) {
	minX, minY, minZ := box.Min[0], box.Min[1], box.Min[2]
	maxX, maxY, maxZ := box.Max[0], box.Max[1], box.Max[2]
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if minZ < 0 {
		minZ = 0
	}
	if maxX > m.cfg.Width {
		maxX = m.cfg.Width
	}
	if maxY > m.cfg.Height {
		maxY = m.cfg.Height
	}
	if maxZ > m.cfg.Depth {
		maxZ = m.cfg.Depth
	}
	for z := minZ; z < maxZ; z++ {
		for y := minY; y < maxY; y++ {
			for x := minX; x < maxX; x++ {
				fn(x, y, z, m.voxels[m.index(x, y, z)])
			}
		}
	}
}
