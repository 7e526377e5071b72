// Package fogofwar implements FogOfWar3D (spec.md §4.5): per-voxel
// visibility/exploration state, floor-fade transitions, and per-floor fog
// textures consumed by a rendering layer outside this module's scope.
package fogofwar

import "github.com/gekko3d/voxelcore/internal/elog"

// ViewMode selects which floors shouldRenderFloor/getFloorOpacity expose to
// the renderer (spec.md §4.5, "Which floors are drawn").
type ViewMode int

const (
	CurrentFloor ViewMode = iota
	CutawayAbove
	XRay
	AllFloors
)

// Config configures a FogOfWar at construction (spec.md §6).
type Config struct {
	Width, Height, Depth int `yaml:"-"` // not read: New takes the dimensions from the MapProvider

	UnexploredBrightness float32 `yaml:"unexplored_brightness"`
	ExploredBrightness   float32 `yaml:"explored_brightness"`
	VisibleBrightness    float32 `yaml:"visible_brightness"`
	TransitionSpeed      float32 `yaml:"transition_speed"`
	VisibilityThreshold  float32 `yaml:"visibility_threshold"`
	RevealOnExplore      bool    `yaml:"reveal_on_explore"`

	FloorTransitionSpeed float32 `yaml:"floor_transition_speed"`
	AboveFloorOpacity    float32 `yaml:"above_floor_opacity"`
	BelowFloorOpacity    float32 `yaml:"below_floor_opacity"`

	FogColor    [3]float32 `yaml:"fog_color"`
	ExploredTint [3]float32 `yaml:"explored_tint"`

	MaxVerticalVisionUp   int `yaml:"max_vertical_vision_up"`
	MaxVerticalVisionDown int `yaml:"max_vertical_vision_down"`

	ZLevelsPerFloor int `yaml:"z_levels_per_floor"`

	Logger elog.Logger `yaml:"-"`
}

// DefaultConfig returns the defaults named in spec.md §6's recognised keys.
func DefaultConfig() Config {
	return Config{
		UnexploredBrightness: 0.0,
		ExploredBrightness:   0.35,
		VisibleBrightness:    1.0,
		TransitionSpeed:      4.0,
		VisibilityThreshold:  0.05,
		RevealOnExplore:      true,

		FloorTransitionSpeed: 2.0,
		AboveFloorOpacity:    0.0,
		BelowFloorOpacity:    0.5,

		FogColor:     [3]float32{0, 0, 0},
		ExploredTint: [3]float32{0.5, 0.5, 0.6},

		MaxVerticalVisionUp:   1,
		MaxVerticalVisionDown: 1,

		ZLevelsPerFloor: 3,
	}
}
