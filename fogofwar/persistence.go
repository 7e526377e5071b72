package fogofwar

import (
	"encoding/binary"
	"fmt"
)

// SaveExploredState serializes the ever-explored bitmap, one bit per voxel,
// row-major (x, y, z), prefixed with (W, H, D) as 32-bit little-endian
// integers (spec.md §6, "Persistence").
func (fw *FogOfWar) SaveExploredState() []byte {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	n := fw.w * fw.h * fw.d
	bitmap := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if fw.voxels[i].everSeen {
			bitmap[i/8] |= 1 << uint(i%8)
		}
	}

	out := make([]byte, 12+len(bitmap))
	binary.LittleEndian.PutUint32(out[0:], uint32(fw.w))
	binary.LittleEndian.PutUint32(out[4:], uint32(fw.h))
	binary.LittleEndian.PutUint32(out[8:], uint32(fw.d))
	copy(out[12:], bitmap)
	return out
}

// LoadExploredState restores the ever-explored bitmap from data. A
// dimension mismatch against the live grid is rejected and the current
// state is preserved (spec.md §4.5, "Failure").
func (fw *FogOfWar) LoadExploredState(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("fogofwar: truncated explored-state blob (%d bytes)", len(data))
	}
	w := int(binary.LittleEndian.Uint32(data[0:]))
	h := int(binary.LittleEndian.Uint32(data[4:]))
	d := int(binary.LittleEndian.Uint32(data[8:]))

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if w != fw.w || h != fw.h || d != fw.d {
		fw.log.Warnf("fogofwar: rejecting explored-state load, dimension mismatch: saved %dx%dx%d, live %dx%dx%d", w, h, d, fw.w, fw.h, fw.d)
		return fmt.Errorf("fogofwar: dimension mismatch: saved %dx%dx%d, live %dx%dx%d", w, h, d, fw.w, fw.h, fw.d)
	}

	n := w * h * d
	bitmap := data[12:]
	if len(bitmap) < (n+7)/8 {
		return fmt.Errorf("fogofwar: truncated bitmap: need %d bytes, got %d", (n+7)/8, len(bitmap))
	}
	for i := 0; i < n; i++ {
		seen := bitmap[i/8]&(1<<uint(i%8)) != 0
		fw.voxels[i].everSeen = seen
		if seen && fw.voxels[i].state == Unknown {
			fw.voxels[i].state = Explored
		}
	}
	return nil
}
