package radiance

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/voxelcore/internal/elog"
	gpupl "github.com/gekko3d/voxelcore/radiance/gpu"
)

// RadianceCascades3D is the multi-level radiance cache described in
// spec.md §4.4.
type RadianceCascades3D struct {
	cfg Config
	occ OcclusionProvider
	log elog.Logger

	mu     sync.Mutex
	levels []*CascadeLevel
	lights []Light
	frame  uint64
	stats  Stats

	pipeline *gpupl.Pipeline // nil until EnableGPU succeeds
}

// New constructs a RadianceCascades3D against occ (the voxel occlusion
// volume) and allocates its cascades per cfg (spec.md §4.4, "initialize").
func New(cfg Config, occ OcclusionProvider) *RadianceCascades3D {
	r := &RadianceCascades3D{
		occ: occ,
		log: elog.Or(cfg.Logger),
	}
	r.Initialize(cfg)
	return r
}

// Initialize (re)allocates every cascade level per cfg and marks every
// probe for update. Existing GPU resources, if any, are released first
// (spec.md §4.4, "setConfig tears down and re-allocates").
func (r *RadianceCascades3D) Initialize(cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()

	if cfg.NumCascades < 1 {
		cfg.NumCascades = 1
	}
	if cfg.BaseResolution < 4 {
		cfg.BaseResolution = 4
	}
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = 2
	}
	r.cfg = cfg
	r.log = elog.Or(cfg.Logger)

	r.levels = make([]*CascadeLevel, cfg.NumCascades)
	for i := 0; i < cfg.NumCascades; i++ {
		resolution := cfg.BaseResolution >> uint(i)
		if resolution < 4 {
			resolution = 4
		}
		spacing := cfg.BaseSpacing * float32(math.Pow(float64(cfg.ScaleFactor), float64(i)))
		lvl := newCascadeLevel(resolution, spacing)
		lvl.markAllPending()
		r.levels[i] = lvl
	}
	r.stats = Stats{ProbesUpdatedByLevel: make([]int, cfg.NumCascades)}
}

// SetConfig tears down and reallocates the cache with new cascade
// parameters, per spec.md §4.4.
func (r *RadianceCascades3D) SetConfig(cfg Config) {
	r.Initialize(cfg)
}

// Shutdown releases GPU resources (if any) and drops the CPU-side arrays.
func (r *RadianceCascades3D) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
	r.levels = nil
}

func (r *RadianceCascades3D) teardownLocked() {
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
}

// EnableGPU attempts to compile and bind the propagation compute shader
// against device. On failure it logs, leaves GPU propagation disabled and
// returns the error; the cache remains usable via the CPU fallback
// (spec.md §4.4, "Failure").
func (r *RadianceCascades3D) EnableGPU(device gpupl.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pl, err := gpupl.NewPipeline(device)
	if err != nil {
		r.log.Errorf("radiance: shader load failed, GPU propagation disabled: %v", err)
		r.stats.LastShaderError = err.Error()
		r.stats.GPUEnabled = false
		return err
	}
	r.pipeline = pl
	r.stats.GPUEnabled = true
	return nil
}

// DisableGPU releases GPU resources and reverts to the CPU fallback path.
func (r *RadianceCascades3D) DisableGPU() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	r.stats.GPUEnabled = false
}

// AddLight registers a light consumed by PropagateLighting.
func (r *RadianceCascades3D) AddLight(l Light) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights = append(r.lights, l)
}

// ClearLights removes every registered light.
func (r *RadianceCascades3D) ClearLights() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights = r.lights[:0]
}

// Lights returns a copy of the currently registered lights, for the GPU
// uniform upload path.
func (r *RadianceCascades3D) Lights() []Light {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Light, len(r.lights))
	copy(out, r.lights)
	return out
}

// InjectDirectLighting marks the probe containing each point pending, at
// every level whose bounds contain it (spec.md §4.4, "Injection").
func (r *RadianceCascades3D) InjectDirectLighting(points []mgl32.Vec3, radiance mgl32.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = radiance // consumed by the compute kernel / CPU ray march, not stored per-probe here
	for _, p := range points {
		for _, lvl := range r.levels {
			if !lvl.contains(p) {
				continue
			}
			x, y, z := lvl.probeOf(p)
			if lvl.inBounds(x, y, z) {
				lvl.PendingUpdate[lvl.index(x, y, z)] = true
			}
		}
	}
}

// InjectEmissive marks every probe within radius/spacing cells of center,
// at each level (spec.md §4.4, "Injection").
func (r *RadianceCascades3D) InjectEmissive(center mgl32.Vec3, radiance mgl32.Vec3, radius float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = radiance
	for _, lvl := range r.levels {
		if !lvl.contains(center) {
			continue
		}
		cellRadius := int(math.Ceil(float64(radius / lvl.Spacing)))
		cx, cy, cz := lvl.probeOf(center)
		for dz := -cellRadius; dz <= cellRadius; dz++ {
			for dy := -cellRadius; dy <= cellRadius; dy++ {
				for dx := -cellRadius; dx <= cellRadius; dx++ {
					x, y, z := cx+dx, cy+dy, cz+dz
					if !lvl.inBounds(x, y, z) {
						continue
					}
					if dx*dx+dy*dy+dz*dz > cellRadius*cellRadius {
						continue
					}
					lvl.PendingUpdate[lvl.index(x, y, z)] = true
				}
			}
		}
	}
}

// updateOrigins snaps each level's origin to its spacing grid around
// playerPos, marking the whole level pending when the snap moves by more
// than half a cell (spec.md §4.4, "Origin snapping").
func (r *RadianceCascades3D) updateOrigins(playerPos mgl32.Vec3) int {
	snapped := 0
	for _, lvl := range r.levels {
		snapTo := func(v float32) float32 {
			return float32(math.Round(float64(v/lvl.Spacing))) * lvl.Spacing
		}
		newOrigin := mgl32.Vec3{snapTo(playerPos.X()), snapTo(playerPos.Y()), snapTo(playerPos.Z())}
		if newOrigin.Sub(lvl.Origin).Len() > lvl.Spacing/2 {
			lvl.Origin = newOrigin
			lvl.markAllPending()
			snapped++
		}
	}
	return snapped
}

// Update advances the cache by one frame: it re-snaps origins, then drains
// up to cfg.MaxProbesPerFrame pending probes, finest level first,
// re-evaluating their world positions and marking them valid (spec.md
// §4.4, "Update budget"). It does not itself relight probes — that is
// PropagateLighting's job — only bookkeeping of which probes are live.
func (r *RadianceCascades3D) Update(dt float32, playerPos mgl32.Vec3) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapped := r.updateOrigins(playerPos)

	remaining := r.cfg.MaxProbesPerFrame
	byLevel := make([]int, len(r.levels))
	for i, lvl := range r.levels {
		if remaining <= 0 {
			break
		}
		n := len(lvl.PendingUpdate)
		if n == 0 {
			continue
		}
		visited := 0
		idx := lvl.scanCursor
		for visited < n && remaining > 0 {
			if lvl.PendingUpdate[idx] {
				x := idx % lvl.Resolution
				y := (idx / lvl.Resolution) % lvl.Resolution
				z := idx / (lvl.Resolution * lvl.Resolution)
				lvl.Positions[idx] = lvl.worldOf(x, y, z)
				lvl.Validity[idx] = 1
				lvl.PendingUpdate[idx] = false
				remaining--
				byLevel[i]++
			}
			idx = (idx + 1) % n
			visited++
		}
		lvl.scanCursor = idx
	}

	total := 0
	for _, c := range byLevel {
		total += c
	}
	r.stats.ProbesUpdatedThisFrame = total
	r.stats.ProbesUpdatedByLevel = byLevel
	r.stats.OriginsSnappedThisFrame = snapped
	return r.stats
}

// Stats returns the most recent frame's statistics.
func (r *RadianceCascades3D) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// NumCascades returns the configured cascade count.
func (r *RadianceCascades3D) NumCascades() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.levels)
}

// LevelSpacing returns level i's spacing, for callers (e.g. tests) that
// need to reason about origin-snap stability without reaching into
// internals.
func (r *RadianceCascades3D) LevelSpacing(i int) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.levels) {
		return 0
	}
	return r.levels[i].Spacing
}

// LevelOrigin returns level i's current origin.
func (r *RadianceCascades3D) LevelOrigin(i int) mgl32.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.levels) {
		return mgl32.Vec3{}
	}
	return r.levels[i].Origin
}
