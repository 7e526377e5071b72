package fogofwar

// FogTextureForFloor returns floor's fog state as a row-major
// [w*h]float32 slab (brightness per voxel, sampled at the floor's first Z
// level), for the renderer to darken geometry (spec.md §4.5, "Contract").
func (fw *FogOfWar) FogTextureForFloor(floor int) []float32 {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	z := floor * fw.zLevelsPerFloor()
	if z < 0 || z >= fw.d {
		return nil
	}
	out := make([]float32, fw.w*fw.h)
	for y := 0; y < fw.h; y++ {
		for x := 0; x < fw.w; x++ {
			out[x+y*fw.w] = fw.voxels[fw.index(x, y, z)].brightness
		}
	}
	return out
}

// CombinedTextureForFloor returns floor's fog brightness multiplied by the
// attached radiance cache's brightness at each voxel (fog * lighting,
// spec.md §4.5, "Contract"). If no radiance provider is attached it falls
// back to the fog channel alone.
func (fw *FogOfWar) CombinedTextureForFloor(floor int) []float32 {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	z := floor * fw.zLevelsPerFloor()
	if z < 0 || z >= fw.d {
		return nil
	}
	out := make([]float32, fw.w*fw.h)
	for y := 0; y < fw.h; y++ {
		for x := 0; x < fw.w; x++ {
			vf := fw.voxels[fw.index(x, y, z)]
			lighting := float32(1)
			if fw.rad != nil {
				if _, b, ok := fw.rad.ValidityBrightnessAt(fw.mapP.VoxelToWorldCenter(x, y, z)); ok {
					lighting = b
				}
			}
			out[x+y*fw.w] = vf.brightness * lighting
		}
	}
	return out
}

func (fw *FogOfWar) zLevelsPerFloor() int {
	if fw.cfg.ZLevelsPerFloor < 1 {
		return 1
	}
	return fw.cfg.ZLevelsPerFloor
}
