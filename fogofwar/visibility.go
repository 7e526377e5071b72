package fogofwar

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UpdateVisibility advances the floor transition and, for every voxel
// within visionRadius of playerPos, refreshes its fog state from the
// radiance cache (spec.md §4.5, "Visibility update" and "Floor transition
// state machine").
func (fw *FogOfWar) UpdateVisibility(dt float32, playerPos mgl32.Vec3, visionRadius float32) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.floorTransition += dt * fw.cfg.FloorTransitionSpeed
	if fw.floorTransition > 1 {
		fw.floorTransition = 1
	}

	playerVoxel := fw.mapP.WorldToVoxel(playerPos)
	validPlayer := fw.inBounds(playerVoxel[0], playerVoxel[1], playerVoxel[2])

	r := int(math.Ceil(float64(visionRadius)))
	r2 := visionRadius * visionRadius

	// A voxel that leaves vision range must still be allowed to decay from
	// Visible toward Explored — otherwise it would stay lit forever once
	// the player walks away, which the literal per-voxel loop over "every
	// voxel within vision" alone would never revisit. So every in-bounds
	// voxel is swept once per frame: voxels inside the vision box run the
	// full set-Visible-or-decay rule (spec.md §4.5, "Visibility update");
	// voxels outside it only ever decay, same as an occluded voxel inside
	// the box.
	for z := 0; z < fw.d; z++ {
		for y := 0; y < fw.h; y++ {
			for x := 0; x < fw.w; x++ {
				idx := fw.index(x, y, z)
				vf := &fw.voxels[idx]

				inVision := false
				if validPlayer {
					dx := x - playerVoxel[0]
					dy := y - playerVoxel[1]
					dz := z - playerVoxel[2]
					if dx < -r || dx > r || dy < -r || dy > r || dz < -r || dz > r {
						inVision = false
					} else {
						dist2 := float32(dx*dx + dy*dy + dz*dz)
						inVision = dist2 <= r2
					}
				}

				if inVision {
					fw.updateVoxelLocked(vf, x, y, z, playerVoxel, dt)
				} else {
					fw.decayLocked(vf, dt)
				}
			}
		}
	}
}

// updateVoxelLocked applies spec.md §4.5's per-voxel visibility rule. Must
// be called with fw.mu held.
func (fw *FogOfWar) updateVoxelLocked(vf *voxelFog, x, y, z int, playerVoxel [3]int, dt float32) {
	if !fw.mapP.HasLineOfSight(playerVoxel, [3]int{x, y, z}) {
		fw.decayLocked(vf, dt)
		return
	}

	var brightness float32
	var lit bool
	if fw.rad != nil {
		_, b, ok := fw.rad.ValidityBrightnessAt(fw.mapP.VoxelToWorldCenter(x, y, z))
		brightness = b
		lit = ok
	}

	if lit && brightness >= fw.cfg.VisibilityThreshold {
		vf.state = Visible
		vf.brightness += (fw.cfg.VisibleBrightness - vf.brightness) * clamp01(dt*fw.cfg.TransitionSpeed)
		if fw.cfg.RevealOnExplore {
			vf.everSeen = true
		}
		return
	}

	fw.decayLocked(vf, dt)
}

func (fw *FogOfWar) decayLocked(vf *voxelFog, dt float32) {
	target := fw.cfg.UnexploredBrightness
	if vf.everSeen {
		vf.state = Explored
		target = fw.cfg.ExploredBrightness
	} else if vf.state == Visible {
		vf.state = Unknown
	}
	vf.brightness += (target - vf.brightness) * clamp01(dt*fw.cfg.TransitionSpeed)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FogState returns voxel (x, y, z)'s current state.
func (fw *FogOfWar) FogState(x, y, z int) FogState {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.inBounds(x, y, z) {
		return Unknown
	}
	return fw.voxels[fw.index(x, y, z)].state
}

// IsExplored reports whether voxel (x, y, z) has ever been seen.
func (fw *FogOfWar) IsExplored(x, y, z int) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.inBounds(x, y, z) {
		return false
	}
	return fw.voxels[fw.index(x, y, z)].everSeen
}

// IsVisible reports whether voxel (x, y, z) is currently Visible.
func (fw *FogOfWar) IsVisible(x, y, z int) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.inBounds(x, y, z) {
		return false
	}
	return fw.voxels[fw.index(x, y, z)].state == Visible
}

// Brightness returns voxel (x, y, z)'s smoothed brightness in [0, 1].
func (fw *FogOfWar) Brightness(x, y, z int) float32 {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.inBounds(x, y, z) {
		return 0
	}
	return fw.voxels[fw.index(x, y, z)].brightness
}
