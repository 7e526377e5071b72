package radiance

import (
	"github.com/go-gl/mathgl/mgl32"

	gpupl "github.com/gekko3d/voxelcore/radiance/gpu"
)

// CascadeLevel is one level of the radiance cache (spec.md §3,
// "CascadeLevel"). Current/History mirror the RGBA16F textures described in
// spec.md §4.4 as flat CPU-side arrays (RGB = irradiance, A = validity);
// the GPU path (radiance/gpu) uploads/downloads the same layout to real
// textures when a device is attached.
type CascadeLevel struct {
	Resolution int
	Spacing    float32
	Origin     mgl32.Vec3

	Current []mgl32.Vec4
	History []mgl32.Vec4

	Positions     []mgl32.Vec3
	Validity      []float32
	PendingUpdate []bool

	scanCursor int // round-robin start index for Update's budget drain
}

func newCascadeLevel(resolution int, spacing float32) *CascadeLevel {
	n := resolution * resolution * resolution
	return &CascadeLevel{
		Resolution:    resolution,
		Spacing:       spacing,
		Current:       make([]mgl32.Vec4, n),
		History:       make([]mgl32.Vec4, n),
		Positions:     make([]mgl32.Vec3, n),
		Validity:      make([]float32, n),
		PendingUpdate: make([]bool, n),
	}
}

func (l *CascadeLevel) index(x, y, z int) int {
	return x + y*l.Resolution + z*l.Resolution*l.Resolution
}

func (l *CascadeLevel) inBounds(x, y, z int) bool {
	return x >= 0 && x < l.Resolution && y >= 0 && y < l.Resolution && z >= 0 && z < l.Resolution
}

// worldOf returns the world-space position of probe (x, y, z): the level's
// origin plus the probe's offset scaled by spacing, centred in its cell.
func (l *CascadeLevel) worldOf(x, y, z int) mgl32.Vec3 {
	half := float32(l.Resolution) / 2
	return l.Origin.Add(mgl32.Vec3{
		(float32(x) - half) * l.Spacing,
		(float32(y) - half) * l.Spacing,
		(float32(z) - half) * l.Spacing,
	})
}

// bounds returns the min/max world-space corners this level covers.
func (l *CascadeLevel) bounds() (min, max mgl32.Vec3) {
	half := float32(l.Resolution) / 2 * l.Spacing
	min = l.Origin.Sub(mgl32.Vec3{half, half, half})
	max = l.Origin.Add(mgl32.Vec3{half, half, half})
	return
}

func (l *CascadeLevel) contains(p mgl32.Vec3) bool {
	min, max := l.bounds()
	return p.X() >= min.X() && p.X() <= max.X() &&
		p.Y() >= min.Y() && p.Y() <= max.Y() &&
		p.Z() >= min.Z() && p.Z() <= max.Z()
}

// probeOf returns the probe coordinate nearest world position p.
func (l *CascadeLevel) probeOf(p mgl32.Vec3) (x, y, z int) {
	half := float32(l.Resolution) / 2
	rel := p.Sub(l.Origin)
	x = int(rel.X()/l.Spacing + half + 0.5)
	y = int(rel.Y()/l.Spacing + half + 0.5)
	z = int(rel.Z()/l.Spacing + half + 0.5)
	return
}

// markAllPending flags every probe of the level needs-update, used on
// origin snap and on initial allocation.
func (l *CascadeLevel) markAllPending() {
	for i := range l.PendingUpdate {
		l.PendingUpdate[i] = true
	}
}

// gpuView adapts the level into the shape radiance/gpu.Pipeline.Dispatch
// expects, sharing backing arrays with Current/History so the pipeline's
// writes land directly in this level (avoids the radiance<->radiance/gpu
// import cycle: gpu.LevelView is a local type, not *CascadeLevel).
func (l *CascadeLevel) gpuView() gpupl.LevelView {
	return gpupl.LevelView{
		Resolution: l.Resolution,
		Spacing:    l.Spacing,
		Origin:     l.Origin,
		Current:    l.Current,
		History:    l.History,
	}
}

// swap exchanges current and history, per spec.md §4.4's "the current/
// history textures of this level are swapped" (end-of-level, per spec.md
// §9's resolved open question).
func (l *CascadeLevel) swap() {
	l.Current, l.History = l.History, l.Current
}
