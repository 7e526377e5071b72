package radiance

import "github.com/gekko3d/voxelcore/internal/elog"

// Config configures a RadianceCascades3D at construction (spec.md §6).
type Config struct {
	NumCascades int     `yaml:"num_cascades"`
	BaseResolution int  `yaml:"base_resolution"`
	BaseSpacing    float32 `yaml:"base_spacing"`
	ScaleFactor    float32 `yaml:"scale_factor"`

	MaxProbesPerFrame int `yaml:"max_probes_per_frame"`
	RaysPerProbe      int `yaml:"rays_per_probe"`

	TemporalBlend float32 `yaml:"temporal_blend"`

	ZLevelsPerFloor int `yaml:"z_levels_per_floor"`

	Logger elog.Logger `yaml:"-"`
}

// DefaultConfig returns the cascade parameters named in spec.md §4.4: four
// levels, scale factor 2, default temporal blend 0.95.
func DefaultConfig() Config {
	return Config{
		NumCascades:       4,
		BaseResolution:    32,
		BaseSpacing:       1.0,
		ScaleFactor:       2.0,
		MaxProbesPerFrame: 4096,
		RaysPerProbe:      16,
		TemporalBlend:     0.95,
		ZLevelsPerFloor:   3,
	}
}
