package aischeduler

// LODConfig holds the radii and per-tier frame intervals described in
// spec.md §4.3.
type LODConfig struct {
	FullRadius   float32 `yaml:"full_radius"`
	MediumRadius float32 `yaml:"medium_radius"`
	LowRadius    float32 `yaml:"low_radius"`

	// FullEveryFrames etc are expressed in frames-between-updates, not Hz,
	// matching spec.md's "update every ~3 frames" phrasing.
	FullEveryFrames   int `yaml:"full_every_frames"`
	MediumEveryFrames int `yaml:"medium_every_frames"`
	LowEveryFrames    int `yaml:"low_every_frames"`

	// Hysteresis is the extra distance an entity must cross before
	// demoting or promoting a tier, preventing flicker at a boundary
	// (spec.md §4.3, "with hysteresis so entities ... do not flicker").
	Hysteresis float32 `yaml:"hysteresis"`
}

// DefaultLODConfig returns the radii named in spec.md §4.3.
func DefaultLODConfig() LODConfig {
	return LODConfig{
		FullRadius:        40,
		MediumRadius:      80,
		LowRadius:         160,
		FullEveryFrames:   1,
		MediumEveryFrames: 3,
		LowEveryFrames:    8,
		Hysteresis:        2,
	}
}

// deriveLOD picks a LOD tier from distance, given the entity's current tier
// so promotions/demotions only happen once the distance clears the current
// boundary by Hysteresis.
func (c LODConfig) deriveLOD(distance float32, current LODTier) LODTier {
	full, medium, low := c.FullRadius, c.MediumRadius, c.LowRadius
	h := c.Hysteresis

	switch current {
	case Full:
		if distance > full+h {
			current = Medium
		} else {
			return Full
		}
	case Medium:
		if distance <= full-h {
			return Full
		}
		if distance > medium+h {
			current = LowLOD
		} else {
			return Medium
		}
	case LowLOD:
		if distance <= medium-h {
			return Medium
		}
		if distance > low+h {
			current = Dormant
		} else {
			return LowLOD
		}
	case Dormant:
		if distance <= low-h {
			current = LowLOD
		} else {
			return Dormant
		}
	}

	// Re-evaluate once more without hysteresis for entities jumping more
	// than one tier in a single update (e.g. teleport).
	switch {
	case distance <= full:
		return Full
	case distance <= medium:
		return Medium
	case distance <= low:
		return LowLOD
	default:
		return Dormant
	}
}

// interval returns the simulated-frame interval for tier, in frames.
func (c LODConfig) interval(tier LODTier) int {
	switch tier {
	case Full:
		return max1(c.FullEveryFrames)
	case Medium:
		return max1(c.MediumEveryFrames)
	case LowLOD:
		return max1(c.LowEveryFrames)
	default:
		return 0 // Dormant: never ticks on its own
	}
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
