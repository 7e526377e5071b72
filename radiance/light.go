package radiance

import "github.com/go-gl/mathgl/mgl32"

// Light is one light source registered with the cascade (spec.md §4.4's
// "position, RGB color, intensity, radius, optional floor").
type Light struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Radius    float32

	// Floor restricts the light to a single floor index when HasFloor is
	// true; otherwise it affects every floor it reaches.
	Floor    int
	HasFloor bool
}
