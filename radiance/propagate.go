package radiance

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	gpupl "github.com/gekko3d/voxelcore/radiance/gpu"
)

// PropagateLighting walks the cascade levels fine-to-coarse, relighting
// every probe with Validity > 0 (spec.md §4.4, "Propagation"). When a GPU
// pipeline is attached it dispatches the compute shader per level;
// otherwise it runs the equivalent ray-marching algorithm on the CPU so
// the cache stays usable without a GPU (spec.md §4.4, "CPU fallback").
func (r *RadianceCascades3D) PropagateLighting() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, lvl := range r.levels {
		var finer *CascadeLevel
		if i > 0 {
			finer = r.levels[i-1]
		}
		if r.pipeline != nil {
			view := lvl.gpuView()
			var finerView *gpupl.LevelView
			if finer != nil {
				fv := finer.gpuView()
				finerView = &fv
			}
			if err := r.pipeline.Dispatch(i, view, finerView, gpuLightViews(r.lights), r.occ, gpupl.DispatchConfig{
				RaysPerProbe:  r.cfg.RaysPerProbe,
				TemporalBlend: r.cfg.TemporalBlend,
			}, r.frame); err != nil {
				r.log.Errorf("radiance: GPU dispatch failed on level %d, falling back to CPU: %v", i, err)
				r.propagateLevelCPU(lvl, finer)
			} else {
				lvl.Current = view.Current
			}
		} else {
			r.propagateLevelCPU(lvl, finer)
		}
		lvl.swap() // end-of-level swap, per spec.md §9's resolved open question
	}
	r.frame++
}

// propagateLevelCPU implements spec.md §4.4's per-probe algorithm directly
// in Go: trace raysPerProbe directions (spherical Fibonacci, reseeded by
// frame index), step through the occlusion volume accumulating light
// contributions, average, and blend with history.
func (r *RadianceCascades3D) propagateLevelCPU(lvl, finer *CascadeLevel) {
	maxDistance := lvl.Spacing * 4
	rays := r.cfg.RaysPerProbe
	if rays < 1 {
		rays = 1
	}

	for idx := range lvl.Current {
		if lvl.Validity[idx] <= 0 {
			continue
		}
		x := idx % lvl.Resolution
		y := (idx / lvl.Resolution) % lvl.Resolution
		z := idx / (lvl.Resolution * lvl.Resolution)
		pos := lvl.worldOf(x, y, z)

		var sum mgl32.Vec3
		for s := 0; s < rays; s++ {
			dir := sphericalFibonacci(s, rays, r.frame)
			sum = sum.Add(r.traceRay(pos, dir, maxDistance, lvl, finer))
		}
		avg := sum.Mul(1 / float32(rays))

		newSample := mgl32.Vec4{avg.X(), avg.Y(), avg.Z(), 1}
		history := lvl.History[idx]
		blend := r.cfg.TemporalBlend
		lvl.Current[idx] = lerpVec4(newSample, history, blend)
	}
}

// traceRay steps from origin along dir through the occlusion volume,
// accumulating light attenuated by distance and occluded by solid voxels,
// plus energy carried up from the finer cascade's nearest probe at the
// ray's first hit (spec.md §4.4, step 2).
func (r *RadianceCascades3D) traceRay(origin, dir mgl32.Vec3, maxDistance float32, lvl, finer *CascadeLevel) mgl32.Vec3 {
	var out mgl32.Vec3
	const step = 0.5

	for t := float32(step); t < maxDistance; t += step {
		p := origin.Add(dir.Mul(t))
		if r.occludedAt(p) {
			if finer != nil {
				out = out.Add(r.sampleNearest(finer, p).Mul(0.25))
			}
			return out
		}
	}

	for _, l := range r.lights {
		toLight := l.Position.Sub(origin)
		dist := toLight.Len()
		if dist > l.Radius || dist <= 0 {
			continue
		}
		if !r.hasClearPathToLight(origin, l.Position) {
			continue
		}
		ndl := dir.Dot(toLight.Normalize())
		if ndl <= 0 {
			continue
		}
		atten := ndl * (1 - dist/l.Radius) * l.Intensity
		out = out.Add(l.Color.Mul(atten))
	}
	return out
}

// hasClearPathToLight walks in fixed steps from p to the light, returning
// false if any intervening voxel blocks light. Used only by the CPU
// fallback ray tracer — the GPU kernel does this in the compute shader.
func (r *RadianceCascades3D) hasClearPathToLight(p, lightPos mgl32.Vec3) bool {
	if r.occ == nil {
		return true
	}
	delta := lightPos.Sub(p)
	dist := delta.Len()
	if dist <= 0.0001 {
		return true
	}
	dir := delta.Mul(1 / dist)
	const step = 0.5
	for t := step; t < dist; t += step {
		sample := p.Add(dir.Mul(t))
		if r.occludedAt(sample) {
			return false
		}
	}
	return true
}

func (r *RadianceCascades3D) occludedAt(p mgl32.Vec3) bool {
	if r.occ == nil {
		return false
	}
	w, h, d := r.occ.Dimensions()
	xy, z := r.occ.TileSizeXY(), r.occ.TileSizeZ()
	vx := int(math.Floor(float64(p.X() / xy)))
	vy := int(math.Floor(float64(p.Y() / xy)))
	vz := int(math.Floor(float64(p.Z() / z)))
	if vx < 0 || vx >= w || vy < 0 || vy >= h || vz < 0 || vz >= d {
		return false
	}
	return r.occ.IsBlocked(vx, vy, vz)
}

func (r *RadianceCascades3D) sampleNearest(lvl *CascadeLevel, p mgl32.Vec3) mgl32.Vec3 {
	x, y, z := lvl.probeOf(p)
	if !lvl.inBounds(x, y, z) {
		return mgl32.Vec3{}
	}
	c := lvl.Current[lvl.index(x, y, z)]
	return mgl32.Vec3{c.X(), c.Y(), c.Z()}
}

func gpuLightViews(lights []Light) []gpupl.LightView {
	out := make([]gpupl.LightView, len(lights))
	for i, l := range lights {
		out[i] = gpupl.LightView{
			Position:  l.Position,
			Color:     l.Color,
			Intensity: l.Intensity,
			Radius:    l.Radius,
		}
	}
	return out
}

func lerpVec4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return mgl32.Vec4{
		a.X()*(1-t) + b.X()*t,
		a.Y()*(1-t) + b.Y()*t,
		a.Z()*(1-t) + b.Z()*t,
		a.W()*(1-t) + b.W()*t,
	}
}

// sphericalFibonacci returns the i-th of n directions of a spherical
// Fibonacci point set, rotated by frame so successive frames sample
// complementary directions (spec.md §4.4, step 1).
func sphericalFibonacci(i, n int, frame uint64) mgl32.Vec3 {
	const goldenAngle = 2.39996322972865332 // pi * (3 - sqrt(5))
	offset := float64(frame%997) / 997 * 2 * math.Pi
	fi := float64(i) + 0.5
	phi := goldenAngle*fi + offset
	cosTheta := 1 - 2*fi/float64(n)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	return mgl32.Vec3{
		float32(math.Cos(phi) * sinTheta),
		float32(math.Sin(phi) * sinTheta),
		float32(cosTheta),
	}
}

// SampleRadiance picks the finest level whose bounds contain worldPos. Per
// spec.md §9's resolved open question, the CPU API does not perform
// trilinear filtering — that happens in shaders with hardware sampling —
// so this returns a zero value and ok=false.
func (r *RadianceCascades3D) SampleRadiance(worldPos mgl32.Vec3, normal mgl32.Vec3) (mgl32.Vec3, bool) {
	_ = normal
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lvl := range r.levels {
		if lvl.contains(worldPos) {
			return mgl32.Vec3{}, false
		}
	}
	return mgl32.Vec3{}, false
}

// ValidityBrightnessAt returns the finest level's nearest-probe validity
// (alpha channel) and brightness (max RGB channel) at worldPos, for
// fogofwar's visibility update (spec.md §4.5, "Read the radiance cache's
// validity / brightness at that voxel"). ok is false if no level's bounds
// contain worldPos.
func (r *RadianceCascades3D) ValidityBrightnessAt(worldPos mgl32.Vec3) (validity, brightness float32, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lvl := range r.levels {
		if !lvl.contains(worldPos) {
			continue
		}
		x, y, z := lvl.probeOf(worldPos)
		if !lvl.inBounds(x, y, z) {
			continue
		}
		c := lvl.Current[lvl.index(x, y, z)]
		br := c.X()
		if c.Y() > br {
			br = c.Y()
		}
		if c.Z() > br {
			br = c.Z()
		}
		return c.W(), br, true
	}
	return 0, 0, false
}

// DebugSampleNearest returns the nearest probe's stored radiance at the
// finest level containing worldPos, bypassing SampleRadiance's
// shader-only contract. Used by tests and offline inspection — never by
// the production sampling path.
func (r *RadianceCascades3D) DebugSampleNearest(worldPos mgl32.Vec3) (mgl32.Vec3, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lvl := range r.levels {
		if lvl.contains(worldPos) {
			return r.sampleNearest(lvl, worldPos), true
		}
	}
	return mgl32.Vec3{}, false
}

// ExportFloorSlice returns the z = floorIndex*ZLevelsPerFloor slab of
// level 0's radiance as a row-major [resolution*resolution]mgl32.Vec4
// slice (spec.md §4.4, "Per-floor export").
func (r *RadianceCascades3D) ExportFloorSlice(floorIndex int) []mgl32.Vec4 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.levels) == 0 {
		return nil
	}
	lvl := r.levels[0]
	z := floorIndex * r.cfg.ZLevelsPerFloor
	if z < 0 || z >= lvl.Resolution {
		return nil
	}
	out := make([]mgl32.Vec4, lvl.Resolution*lvl.Resolution)
	for y := 0; y < lvl.Resolution; y++ {
		for x := 0; x < lvl.Resolution; x++ {
			out[x+y*lvl.Resolution] = lvl.Current[lvl.index(x, y, z)]
		}
	}
	return out
}

// DumpFloorPNG writes floorIndex's level-0 radiance slab to a PNG at path,
// mapping the RGB irradiance channels directly to 8-bit color (clamped).
// A debug/offline-inspection escape hatch (SPEC_FULL.md §3.5); not part of
// the shader sampling path.
func (r *RadianceCascades3D) DumpFloorPNG(path string, floorIndex int) error {
	slice := r.ExportFloorSlice(floorIndex)
	if slice == nil {
		return os.ErrInvalid
	}
	res := int(math.Sqrt(float64(len(slice))))
	img := image.NewRGBA(image.Rect(0, 0, res, res))
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			c := slice[x+y*res]
			img.Set(x, y, color.RGBA{
				R: clamp255(c.X()),
				G: clamp255(c.Y()),
				B: clamp255(c.Z()),
				A: 255,
			})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func clamp255(v float32) uint8 {
	v *= 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
