// Package aischeduler implements the LOD-driven update dispatcher from
// spec.md §4.3: per-frame selection of which AI entities tick, under a
// time budget, with priority tiers, LOD tiers and optional group-leader
// sharing.
package aischeduler

import "github.com/go-gl/mathgl/mgl32"

// PriorityTier ranks how important an entity's updates are, independent of
// distance (spec.md §3, "AIEntityInfo").
type PriorityTier int

const (
	Background PriorityTier = iota
	Low
	Normal
	High
	Critical
)

// LODTier is how richly an entity is updated this frame (GLOSSARY, "LOD").
type LODTier int

const (
	Full LODTier = iota
	Medium
	LowLOD
	Dormant
)

func (l LODTier) String() string {
	switch l {
	case Full:
		return "Full"
	case Medium:
		return "Medium"
	case LowLOD:
		return "Low"
	case Dormant:
		return "Dormant"
	default:
		return "Unknown"
	}
}

// EntityID identifies a registered AI entity.
type EntityID uint64

// entityInfo is one registered AI entity's scheduling state (spec.md §3,
// "AIEntityInfo").
type entityInfo struct {
	id       EntityID
	priority PriorityTier
	lod      LODTier

	position         mgl32.Vec3
	distanceToPlayer float32

	lastUpdateFrame    uint64
	timeSinceUpdate    float32
	updateInterval     float32

	groupID    GroupID
	isLeader   bool

	// hintTargetValid / hintPathValid let callers stash cheap inter-frame
	// hints without the scheduler interpreting them.
	hintTargetValid bool
	hintThreat      float32
	hintPathValid   bool
}

// Snapshot is the read-only view of an entity handed to callers (stats,
// inspection) without exposing the scheduler's internal registry for
// mutation, per spec.md §5 ("callbacks may read but not mutate the
// scheduler's registry").
type Snapshot struct {
	ID               EntityID
	Priority         PriorityTier
	LOD              LODTier
	Position         mgl32.Vec3
	DistanceToPlayer float32
	TimeSinceUpdate  float32
	UpdateInterval   float32
	GroupID          GroupID
	IsLeader         bool
}

func (e *entityInfo) snapshot() Snapshot {
	return Snapshot{
		ID:               e.id,
		Priority:         e.priority,
		LOD:              e.lod,
		Position:         e.position,
		DistanceToPlayer: e.distanceToPlayer,
		TimeSinceUpdate:  e.timeSinceUpdate,
		UpdateInterval:   e.updateInterval,
		GroupID:          e.groupID,
		IsLeader:         e.isLeader,
	}
}
