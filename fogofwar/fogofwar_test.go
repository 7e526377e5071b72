package fogofwar

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/voxelcore/radiance"
	"github.com/gekko3d/voxelcore/voxelmap"
)

// alwaysLitRadiance reports every voxel as fully visible, decoupling
// fogofwar's own tests from the radiance cache's ray-marching behavior.
type alwaysLitRadiance struct{}

func (alwaysLitRadiance) ValidityBrightnessAt(mgl32.Vec3) (float32, float32, bool) {
	return 1, 1, true
}

func newTestMap(w, h, d int) *voxelmap.Voxel3DMap {
	return voxelmap.New(voxelmap.DefaultConfig(w, h, d))
}

func TestMonotonicExploration(t *testing.T) {
	m := newTestMap(20, 20, 1)
	cfg := DefaultConfig()
	cfg.RevealOnExplore = true
	fw := New(cfg, m, alwaysLitRadiance{})

	fw.UpdateVisibility(1.0, mgl32.Vec3{10, 10, 0}, 5)
	require.True(t, fw.IsExplored(10, 12, 0))

	// Walk the player far away; the voxel should decay out of Visible but
	// must remain Explored, never regressing to Unknown.
	for i := 0; i < 50; i++ {
		fw.UpdateVisibility(1.0, mgl32.Vec3{0, 0, 0}, 5)
	}
	assert.Equal(t, Explored, fw.FogState(10, 12, 0))
	assert.True(t, fw.IsExplored(10, 12, 0))

	fw.ResetFog()
	assert.False(t, fw.IsExplored(10, 12, 0))
	assert.Equal(t, Unknown, fw.FogState(10, 12, 0))
}

func TestViewModeDeterminismAlwaysRendersCurrentFloor(t *testing.T) {
	m := newTestMap(4, 4, 8)
	fw := New(DefaultConfig(), m, nil)
	fw.SetCurrentFloor(2)

	for _, mode := range []ViewMode{CurrentFloor, CutawayAbove, XRay, AllFloors} {
		fw.SetViewMode(mode)
		assert.True(t, fw.ShouldRenderFloor(2), "mode %v", mode)
	}
}

func TestTransitionCompletesAfterExpectedUpdateCount(t *testing.T) {
	m := newTestMap(4, 4, 4)
	cfg := DefaultConfig()
	cfg.FloorTransitionSpeed = 2.0
	fw := New(cfg, m, nil)

	dt := float32(1.0 / 30.0)
	fw.SetCurrentFloor(1)
	assert.Equal(t, float32(0), fw.FloorTransition())

	expected := int(math.Ceil(float64(1 / (dt * cfg.FloorTransitionSpeed))))
	for i := 0; i < expected; i++ {
		fw.UpdateVisibility(dt, mgl32.Vec3{0, 0, 0}, 0)
	}
	assert.Equal(t, float32(1), fw.FloorTransition())
}

// Scenario S3.
func TestFogExplorationPersistenceScenarioS3(t *testing.T) {
	m := newTestMap(20, 20, 1)
	cfg := DefaultConfig()
	cfg.RevealOnExplore = true
	fw := New(cfg, m, alwaysLitRadiance{})

	for i := 0; i < 5; i++ {
		fw.UpdateVisibility(1.0/60.0, mgl32.Vec3{10, 10, 0}, 8)
	}
	state := fw.FogState(14, 10, 0)
	assert.True(t, state == Explored || state == Visible)

	saved := fw.SaveExploredState()
	fw.ResetFog()
	require.False(t, fw.IsExplored(14, 10, 0))

	require.NoError(t, fw.LoadExploredState(saved))
	assert.True(t, fw.IsExplored(14, 10, 0))
}

func TestLoadExploredStateRejectsDimensionMismatch(t *testing.T) {
	m1 := newTestMap(10, 10, 1)
	fw1 := New(DefaultConfig(), m1, nil)
	fw1.RevealVoxel(5, 5, 0)
	saved := fw1.SaveExploredState()

	m2 := newTestMap(20, 20, 1)
	fw2 := New(DefaultConfig(), m2, nil)
	fw2.RevealVoxel(1, 1, 0)

	err := fw2.LoadExploredState(saved)
	assert.Error(t, err)
	// current state preserved
	assert.True(t, fw2.IsExplored(1, 1, 0))
}

// Scenario S4.
func TestFloorCutawayScenarioS4(t *testing.T) {
	m := newTestMap(4, 4, 4*3) // ZLevelsPerFloor default 3 -> floors 0..3
	cfg := DefaultConfig()
	fw := New(cfg, m, nil)
	fw.SetViewMode(CutawayAbove)
	fw.SetCurrentFloor(1)

	assert.True(t, fw.ShouldRenderFloor(0))
	assert.True(t, fw.ShouldRenderFloor(1))
	assert.False(t, fw.ShouldRenderFloor(2))
	assert.False(t, fw.ShouldRenderFloor(3))

	fw.SetViewMode(XRay) // default MaxVerticalVisionUp/Down = 1, matching S4's upVision = 1
	assert.True(t, fw.ShouldRenderFloor(2))
	assert.False(t, fw.ShouldRenderFloor(3))
}

func TestMissingRadianceProviderDegradesGracefully(t *testing.T) {
	m := newTestMap(10, 10, 1)
	fw := New(DefaultConfig(), m, nil)
	assert.NotPanics(t, func() {
		fw.UpdateVisibility(1.0/60.0, mgl32.Vec3{5, 5, 0}, 5)
	})
	assert.Equal(t, float32(0), fw.Brightness(5, 5, 0)) // decays toward unexplored, never crashes
}

func TestRealRadianceCacheSatisfiesProvider(t *testing.T) {
	var _ RadianceProvider = (*radiance.RadianceCascades3D)(nil)
}

func TestVoxelMapSatisfiesMapProvider(t *testing.T) {
	var _ MapProvider = (*voxelmap.Voxel3DMap)(nil)
}
