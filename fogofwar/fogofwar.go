package fogofwar

import (
	"sync"

	"github.com/gekko3d/voxelcore/internal/elog"
)

// FogOfWar is the per-voxel visibility/exploration tracker described in
// spec.md §4.5.
type FogOfWar struct {
	cfg  Config
	mapP MapProvider
	rad  RadianceProvider
	log  elog.Logger

	mu     sync.Mutex
	w, h, d int
	voxels []voxelFog

	currentFloor    int
	previousFloor   int
	floorTransition float32
	viewMode        ViewMode
}

// New allocates a FogOfWar over mapP's dimensions. rad may be nil; with a
// nil radiance provider every voxel is treated as unlit, so visibility
// updates only decay fog and advance the floor transition (spec.md §4.5,
// "Failure").
func New(cfg Config, mapP MapProvider, rad RadianceProvider) *FogOfWar {
	w, h, d := mapP.Dimensions()
	f := &FogOfWar{
		cfg:             cfg,
		mapP:            mapP,
		rad:             rad,
		log:             elog.Or(cfg.Logger),
		w:               w,
		h:               h,
		d:               d,
		voxels:          make([]voxelFog, w*h*d),
		floorTransition: 1,
	}
	return f
}

// SetRadianceProvider attaches (or detaches, with nil) the cascade this fog
// tracker samples validity/brightness from.
func (f *FogOfWar) SetRadianceProvider(rad RadianceProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rad = rad
}

func (f *FogOfWar) index(x, y, z int) int {
	return x + y*f.w + z*f.w*f.h
}

func (f *FogOfWar) inBounds(x, y, z int) bool {
	return x >= 0 && x < f.w && y >= 0 && y < f.h && z >= 0 && z < f.d
}

func (f *FogOfWar) floorOf(z int) int {
	return z / f.zLevelsPerFloor()
}

// SetViewMode changes which floors shouldRenderFloor/getFloorOpacity expose.
func (f *FogOfWar) SetViewMode(mode ViewMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewMode = mode
}

func (f *FogOfWar) ViewMode() ViewMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewMode
}

// SetCurrentFloor begins a floor transition if f differs from the current
// floor (spec.md §4.5, "Floor transition state machine").
func (fw *FogOfWar) SetCurrentFloor(floor int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if floor == fw.currentFloor {
		return
	}
	fw.previousFloor = fw.currentFloor
	fw.currentFloor = floor
	fw.floorTransition = 0
}

func (fw *FogOfWar) CurrentFloor() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.currentFloor
}

func (fw *FogOfWar) PreviousFloor() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.previousFloor
}

func (fw *FogOfWar) FloorTransition() float32 {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.floorTransition
}

// shouldRenderFloor reports whether floor should be drawn under the
// current view mode (spec.md §4.5, "Which floors are drawn").
func (fw *FogOfWar) ShouldRenderFloor(floor int) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.shouldRenderFloorLocked(floor)
}

func (fw *FogOfWar) shouldRenderFloorLocked(floor int) bool {
	switch fw.viewMode {
	case CurrentFloor:
		return floor == fw.currentFloor
	case CutawayAbove:
		return floor <= fw.currentFloor
	case XRay:
		up, down := fw.cfg.MaxVerticalVisionUp, fw.cfg.MaxVerticalVisionDown
		vision := up
		if down > vision {
			vision = down
		}
		return absInt(floor-fw.currentFloor) <= vision
	case AllFloors:
		return true
	default:
		return floor == fw.currentFloor
	}
}

// GetFloorOpacity returns floor's render opacity under the current view
// mode (spec.md §4.5, "Per-floor opacity").
func (fw *FogOfWar) GetFloorOpacity(floor int) float32 {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if !fw.shouldRenderFloorLocked(floor) {
		return 0
	}
	if floor == fw.currentFloor {
		return fw.floorTransition
	}
	if floor < fw.currentFloor {
		return fw.cfg.BelowFloorOpacity * fw.floorTransition
	}
	// only reachable in XRay and AllFloors, per shouldRenderFloorLocked
	return fw.cfg.AboveFloorOpacity
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
