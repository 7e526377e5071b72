package aischeduler

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GroupID identifies an AIGroup. The zero value means "no group".
type GroupID string

// NewGroupID mints a fresh group id.
func NewGroupID() GroupID {
	return GroupID(uuid.NewString())
}

// group is a set of entities sharing a leader (spec.md §3, "AIGroup").
// Exactly one leader per non-empty group.
type group struct {
	id           GroupID
	leader       EntityID
	members      map[EntityID]struct{}
	centroid     mgl32.Vec3
	sharedTarget *mgl32.Vec3
	lastPathTime float32
	centroidDirty bool
}

func newGroup(id GroupID, leader EntityID) *group {
	return &group{
		id:      id,
		leader:  leader,
		members: map[EntityID]struct{}{leader: {}},
	}
}

func (g *group) memberList() []EntityID {
	out := make([]EntityID, 0, len(g.members))
	for id := range g.members {
		out = append(out, id)
	}
	return out
}

// GroupSnapshot is the read-only view of a group handed to the group-update
// callback.
type GroupSnapshot struct {
	ID           GroupID
	Leader       EntityID
	Members      []EntityID
	Centroid     mgl32.Vec3
	SharedTarget *mgl32.Vec3
}

func (g *group) snapshot() GroupSnapshot {
	return GroupSnapshot{
		ID:           g.id,
		Leader:       g.leader,
		Members:      g.memberList(),
		Centroid:     g.centroid,
		SharedTarget: g.sharedTarget,
	}
}
