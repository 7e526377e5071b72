package fogofwar

// RevealVoxel marks a single voxel explored (spec.md §4.5, "Manual
// operations").
func (fw *FogOfWar) RevealVoxel(x, y, z int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.inBounds(x, y, z) {
		return
	}
	vf := &fw.voxels[fw.index(x, y, z)]
	vf.everSeen = true
	if vf.state == Unknown {
		vf.state = Explored
	}
}

// RevealArea marks every voxel within radius of center explored.
func (fw *FogOfWar) RevealArea(center [3]int, radius int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	r2 := radius * radius
	for dz := -radius; dz <= radius; dz++ {
		z := center[2] + dz
		if z < 0 || z >= fw.d {
			continue
		}
		for dy := -radius; dy <= radius; dy++ {
			y := center[1] + dy
			if y < 0 || y >= fw.h {
				continue
			}
			for dx := -radius; dx <= radius; dx++ {
				x := center[0] + dx
				if x < 0 || x >= fw.w {
					continue
				}
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				vf := &fw.voxels[fw.index(x, y, z)]
				vf.everSeen = true
				if vf.state == Unknown {
					vf.state = Explored
				}
			}
		}
	}
}

// RevealFloor marks every voxel of floor explored.
func (fw *FogOfWar) RevealFloor(floor int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for z := 0; z < fw.d; z++ {
		if fw.floorOf(z) != floor {
			continue
		}
		for y := 0; y < fw.h; y++ {
			for x := 0; x < fw.w; x++ {
				vf := &fw.voxels[fw.index(x, y, z)]
				vf.everSeen = true
				if vf.state == Unknown {
					vf.state = Explored
				}
			}
		}
	}
}

// RevealAll marks every voxel in the map explored.
func (fw *FogOfWar) RevealAll() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for i := range fw.voxels {
		fw.voxels[i].everSeen = true
		if fw.voxels[i].state == Unknown {
			fw.voxels[i].state = Explored
		}
	}
}

// HideVoxel forces a voxel back to Unknown without clearing its
// ever-explored flag — a transient hide, not a reset (spec.md §4.5,
// "Manual operations").
func (fw *FogOfWar) HideVoxel(x, y, z int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.inBounds(x, y, z) {
		return
	}
	fw.voxels[fw.index(x, y, z)].state = Unknown
}

// ResetFog clears every voxel back to its initial, never-explored state —
// the only operation allowed to un-set ever-explored (spec.md testable
// property 13).
func (fw *FogOfWar) ResetFog() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for i := range fw.voxels {
		fw.voxels[i] = voxelFog{brightness: fw.cfg.UnexploredBrightness}
	}
}

// FloorProgress reports floor's exploration coverage (spec.md §4.5,
// "Persistence").
func (fw *FogOfWar) FloorProgress(floor int) FloorProgress {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	var p FloorProgress
	for z := 0; z < fw.d; z++ {
		if fw.floorOf(z) != floor {
			continue
		}
		for y := 0; y < fw.h; y++ {
			for x := 0; x < fw.w; x++ {
				p.TotalVoxels++
				if fw.voxels[fw.index(x, y, z)].everSeen {
					p.ExploredVoxels++
				}
			}
		}
	}
	return p
}
