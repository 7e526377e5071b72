package aischeduler

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndDeregister(t *testing.T) {
	s := New(DefaultConfig())
	s.Register(1, Normal, mgl32.Vec3{0, 0, 0})
	assert.Equal(t, 1, s.Count())

	assert.True(t, s.Deregister(1))
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Deregister(1))
}

func TestUpdateCallbackReturnFalseDeregisters(t *testing.T) {
	s := New(DefaultConfig())
	s.Register(1, Critical, mgl32.Vec3{0, 0, 0})
	s.SetEntityUpdateFunc(func(id EntityID, tsu float32, lod LODTier) bool {
		return false
	})
	s.Update(0.1, mgl32.Vec3{0, 0, 0}, 0)
	assert.Equal(t, 0, s.Count())
}

func TestCandidatesBoundsUpdated(t *testing.T) {
	s := New(DefaultConfig())
	for i := 0; i < 50; i++ {
		s.Register(EntityID(i+1), Normal, mgl32.Vec3{float32(i), 0, 0})
	}
	s.SetEntityUpdateFunc(func(id EntityID, tsu float32, lod LODTier) bool { return true })
	st := s.Update(0.016, mgl32.Vec3{0, 0, 0}, 0)
	assert.LessOrEqual(t, st.Updated, st.Candidates)
}

func TestDeregisterDuringCallbackIsSafe(t *testing.T) {
	s := New(DefaultConfig())
	for i := 1; i <= 5; i++ {
		s.Register(EntityID(i), Critical, mgl32.Vec3{0, 0, 0})
	}
	s.SetEntityUpdateFunc(func(id EntityID, tsu float32, lod LODTier) bool {
		if id == 3 {
			s.Deregister(EntityID(2))
		}
		return true
	})
	require.NotPanics(t, func() {
		s.Update(0.1, mgl32.Vec3{0, 0, 0}, 0)
	})
	assert.Equal(t, 4, s.Count())
}

func TestGroupLeaderUpdateEmitsGroupCallback(t *testing.T) {
	s := New(DefaultConfig())
	s.Register(1, Critical, mgl32.Vec3{0, 0, 0})
	s.Register(2, Critical, mgl32.Vec3{2, 0, 0})
	s.JoinGroup(1, GroupID("g1"), true)
	s.JoinGroup(2, GroupID("g1"), false)

	s.SetEntityUpdateFunc(func(id EntityID, tsu float32, lod LODTier) bool { return true })

	var sawGroup bool
	s.SetGroupUpdateFunc(func(g GroupSnapshot) {
		sawGroup = true
		assert.Equal(t, EntityID(1), g.Leader)
		assert.Len(t, g.Members, 2)
	})

	st := s.Update(0.1, mgl32.Vec3{0, 0, 0}, 0)
	assert.True(t, sawGroup)
	assert.Equal(t, 1, st.GroupsUpdated)
}

// S5 — AI LOD promotion scenario (abbreviated: 200 entities, 60 frames).
func TestLODPromotionScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LOD.FullRadius = 10
	cfg.LOD.MediumRadius = 30
	cfg.LOD.LowRadius = 100
	cfg.FrameTimeBudget = 5 * time.Millisecond
	s := New(cfg)

	const n = 200
	for i := 0; i < n; i++ {
		s.Register(EntityID(i+1), Normal, mgl32.Vec3{float32(i), 0, 0})
	}

	updateCounts := make(map[EntityID]int)
	s.SetEntityUpdateFunc(func(id EntityID, tsu float32, lod LODTier) bool {
		updateCounts[id]++
		time.Sleep(10 * time.Microsecond) // ~0.01ms callback cost
		return true
	})

	for f := 0; f < 60; f++ {
		s.Update(1.0/60.0, mgl32.Vec3{0, 0, 0}, cfg.FrameTimeBudget)
	}

	for i := 0; i < n; i++ {
		id := EntityID(i + 1)
		dist := float32(i)
		switch {
		case dist < cfg.LOD.FullRadius:
			assert.Greaterf(t, updateCounts[id], 0, "entity %d within full radius never updated", id)
		case dist >= cfg.LOD.LowRadius:
			assert.Equalf(t, 0, updateCounts[id], "entity %d beyond low radius updated %d times", id, updateCounts[id])
		}
	}
}

func TestNoStarvationBeyondTwiceInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LOD.FullRadius = 1
	cfg.LOD.MediumRadius = 5
	cfg.LOD.LowRadius = 1000
	s := New(cfg)

	// Far-away, low-priority entity competing against enough Critical
	// entities to fully consume the frame budget every frame: a
	// naive priority-only sort would starve it forever, but the starved
	// flag must eventually put it at the head of the candidate list
	// (spec.md §4.3, "no candidate starves"). Critical entities are kept
	// at just the count the budget can fully service each frame, so they
	// never themselves go starved and background's single starved slot
	// always wins the head of the list once it crosses the threshold.
	s.Register(1, Background, mgl32.Vec3{50, 0, 0})
	const numCritical = 50
	for i := 0; i < numCritical; i++ {
		s.Register(EntityID(i+2), Critical, mgl32.Vec3{0, 0, 0})
	}
	s.SetEntityUpdateFunc(func(id EntityID, tsu float32, lod LODTier) bool {
		time.Sleep(20 * time.Microsecond)
		return true
	})

	maxGapFrames := 0
	gap := 0
	const budget = numCritical * 20 * time.Microsecond
	for f := 0; f < 400; f++ {
		s.Update(1.0/60.0, mgl32.Vec3{0, 0, 0}, budget)
		snap, ok := s.Snapshot(1)
		require.True(t, ok)
		if snap.TimeSinceUpdate == 0 {
			if gap > maxGapFrames {
				maxGapFrames = gap
			}
			gap = 0
		} else {
			gap++
		}
	}
	interval := s.cfg.LOD.interval(LowLOD)
	assert.LessOrEqual(t, maxGapFrames, 2*interval+2)
}
