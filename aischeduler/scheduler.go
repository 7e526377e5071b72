package aischeduler

import (
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/voxelcore/internal/elog"
)

// EntityUpdateFunc is invoked for each entity selected this frame. It
// receives the entity id, the simulated time since its last update and its
// current LOD tier, and returns false to deregister the entity (spec.md
// §4.3, "An entity whose update callback returns false is deregistered").
type EntityUpdateFunc func(id EntityID, timeSinceUpdate float32, lod LODTier) bool

// GroupUpdateFunc is invoked once per frame for every group whose leader
// was updated this frame.
type GroupUpdateFunc func(group GroupSnapshot)

// Config configures an AIScheduler at construction (spec.md §6).
type Config struct {
	LOD              LODConfig `yaml:"lod"`
	FrameTimeBudget  time.Duration `yaml:"frame_time_budget"`
	Logger           elog.Logger   `yaml:"-"`
}

// DefaultConfig returns spec.md's default radii and a 5ms frame budget.
func DefaultConfig() Config {
	return Config{
		LOD:             DefaultLODConfig(),
		FrameTimeBudget: 5 * time.Millisecond,
	}
}

// Stats reports the result of the most recent Update call (spec.md §4.3,
// "Stats").
type Stats struct {
	UpdatedByLOD  map[LODTier]int
	TimeSpent     time.Duration
	PeakFrameTime time.Duration
	GroupsUpdated int
	Candidates    int
	Updated       int
}

// Scheduler tracks AI entities and dispatches their per-frame updates under
// a time budget (spec.md §4.3).
type Scheduler struct {
	cfg Config
	log elog.Logger

	mu       sync.Mutex
	entities map[EntityID]*entityInfo
	groups   map[GroupID]*group

	onEntityUpdate EntityUpdateFunc
	onGroupUpdate  GroupUpdateFunc

	frame uint64
	stats Stats

	tls sync.Map // worker-thread marker, see MarkWorkerThread
}

// New constructs a Scheduler from cfg.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		log:      elog.Or(cfg.Logger),
		entities: make(map[EntityID]*entityInfo),
		groups:   make(map[GroupID]*group),
	}
}

// SetEntityUpdateFunc installs the per-entity update callback.
func (s *Scheduler) SetEntityUpdateFunc(fn EntityUpdateFunc) { s.onEntityUpdate = fn }

// SetGroupUpdateFunc installs the per-group update callback.
func (s *Scheduler) SetGroupUpdateFunc(fn GroupUpdateFunc) { s.onGroupUpdate = fn }

// Register adds an entity to the scheduler, initially at Dormant LOD so the
// first Update call assigns its real tier.
func (s *Scheduler) Register(id EntityID, priority PriorityTier, pos mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[id] = &entityInfo{
		id:       id,
		priority: priority,
		lod:      Dormant,
		position: pos,
	}
}

// Deregister removes id. Safe to call from inside an update callback
// (spec.md §4.3, "Cancellation"): Update copies its candidate list by id
// before invoking callbacks, so a mid-frame deregistration never corrupts
// the frame in progress. Returns false for an unknown id (spec.md §7,
// "Misuse").
func (s *Scheduler) Deregister(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		s.log.Warnf("aischeduler: deregister unknown entity %d", id)
		return false
	}
	if e.groupID != "" {
		s.leaveGroupLocked(e)
	}
	delete(s.entities, id)
	return true
}

// JoinGroup adds id to a group, creating it with id as leader if groupID is
// new. isLeader marks id as the group's leader; at most one leader may
// exist at a time, enforced by promoting the newest isLeader=true caller.
func (s *Scheduler) JoinGroup(id EntityID, groupID GroupID, isLeader bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return
	}
	if e.groupID != "" && e.groupID != groupID {
		s.leaveGroupLocked(e)
	}

	g, ok := s.groups[groupID]
	if !ok {
		g = newGroup(groupID, id)
		s.groups[groupID] = g
		e.isLeader = true
	}
	g.members[id] = struct{}{}
	g.centroidDirty = true
	e.groupID = groupID

	if isLeader {
		if old, ok := s.entities[g.leader]; ok {
			old.isLeader = false
		}
		g.leader = id
		e.isLeader = true
	}
}

func (s *Scheduler) leaveGroupLocked(e *entityInfo) {
	g, ok := s.groups[e.groupID]
	if !ok {
		e.groupID = ""
		e.isLeader = false
		return
	}
	delete(g.members, e.id)
	g.centroidDirty = true
	if len(g.members) == 0 {
		delete(s.groups, g.id)
	} else if e.isLeader {
		// Promote an arbitrary remaining member to leader.
		for next := range g.members {
			g.leader = next
			if ne, ok := s.entities[next]; ok {
				ne.isLeader = true
			}
			break
		}
	}
	e.groupID = ""
	e.isLeader = false
}

// Count returns the number of registered entities.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

// Snapshot returns a read-only copy of id's scheduling state.
func (s *Scheduler) Snapshot(id EntityID) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

// candidate is the scratch scheduling key used to sort and drain this
// frame's work.
type candidate struct {
	id       EntityID
	priority PriorityTier
	urgency  float32 // timeSinceUpdate / interval
	starved  bool
}

// Update advances the scheduler by dt simulated seconds: it recomputes
// distances and LOD tiers, builds the candidate list, drains it under
// frameTimeBudget, invokes the entity and group callbacks, and returns the
// frame's Stats (spec.md §4.3, "Per-frame algorithm").
func (s *Scheduler) Update(dt float32, playerPos mgl32.Vec3, frameTimeBudget time.Duration) Stats {
	start := time.Now()
	s.mu.Lock()
	s.frame++

	cands := make([]candidate, 0, len(s.entities))

	for id, e := range s.entities {
		e.timeSinceUpdate += dt
		e.distanceToPlayer = e.position.Sub(playerPos).Len()

		if e.priority == Critical {
			e.lod = Full
		} else {
			e.lod = s.cfg.LOD.deriveLOD(e.distanceToPlayer, e.lod)
		}

		intervalFrames := s.cfg.LOD.interval(e.lod)
		intervalSeconds := float32(intervalFrames) * max(dt, 1e-6)
		e.updateInterval = intervalSeconds

		if e.lod == Dormant && e.priority != Critical {
			continue // never a spontaneous candidate; only explicit events wake it
		}

		urgency := e.timeSinceUpdate / max(intervalSeconds, 1e-6)
		starved := e.timeSinceUpdate > 2*intervalSeconds

		cands = append(cands, candidate{id: id, priority: e.priority, urgency: urgency, starved: starved})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].starved != cands[j].starved {
			return cands[i].starved // starved entities go to the candidate head
		}
		if cands[i].starved {
			// Among starved candidates, priority no longer decides order:
			// the most relatively overdue entity goes first so a
			// low-priority entity cannot be starved forever by a larger
			// population of high-priority ones (spec.md §4.3, "no
			// candidate starves").
			return cands[i].urgency > cands[j].urgency
		}
		if cands[i].priority != cands[j].priority {
			return cands[i].priority > cands[j].priority
		}
		return cands[i].urgency > cands[j].urgency
	})

	// Copy candidate ids out before releasing the lock-protected map for
	// callback dispatch, so a callback's Deregister cannot corrupt this
	// frame's iteration (spec.md §4.3, "Cancellation").
	ids := make([]EntityID, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	s.mu.Unlock()

	byLOD := map[LODTier]int{}
	updatedLeaders := make(map[GroupID]struct{})
	updatedCount := 0

	for _, id := range ids {
		if frameTimeBudget > 0 && time.Since(start) >= frameTimeBudget {
			break
		}

		s.mu.Lock()
		e, ok := s.entities[id]
		if !ok {
			s.mu.Unlock()
			continue
		}
		tsu := e.timeSinceUpdate
		lod := e.lod
		groupID := e.groupID
		isLeader := e.isLeader
		s.mu.Unlock()

		keep := true
		if s.onEntityUpdate != nil {
			keep = s.onEntityUpdate(id, tsu, lod)
		}

		s.mu.Lock()
		if e2, ok := s.entities[id]; ok {
			e2.timeSinceUpdate = 0
			e2.lastUpdateFrame = s.frame
		}
		s.mu.Unlock()

		byLOD[lod]++
		updatedCount++

		if !keep {
			s.Deregister(id)
		} else if isLeader && groupID != "" {
			updatedLeaders[groupID] = struct{}{}
		}
	}

	groupsUpdated := 0
	if s.onGroupUpdate != nil {
		for gid := range updatedLeaders {
			s.mu.Lock()
			g, ok := s.groups[gid]
			if ok {
				s.recomputeCentroidLocked(g)
			}
			var snap GroupSnapshot
			if ok {
				snap = g.snapshot()
			}
			s.mu.Unlock()
			if ok {
				s.onGroupUpdate(snap)
				groupsUpdated++
			}
		}
	}

	elapsed := time.Since(start)
	st := Stats{
		UpdatedByLOD:  byLOD,
		TimeSpent:     elapsed,
		PeakFrameTime: elapsed,
		GroupsUpdated: groupsUpdated,
		Candidates:    len(ids),
		Updated:       updatedCount,
	}
	s.mu.Lock()
	if elapsed > s.stats.PeakFrameTime {
		st.PeakFrameTime = elapsed
	} else {
		st.PeakFrameTime = s.stats.PeakFrameTime
	}
	s.stats = st
	s.mu.Unlock()

	return st
}

func (s *Scheduler) recomputeCentroidLocked(g *group) {
	if !g.centroidDirty {
		return
	}
	var sum mgl32.Vec3
	n := 0
	for id := range g.members {
		if e, ok := s.entities[id]; ok {
			sum = sum.Add(e.position)
			n++
		}
	}
	if n > 0 {
		g.centroid = sum.Mul(1 / float32(n))
	}
	g.centroidDirty = false
}

// UpdatePosition records id's new world position, ahead of the next Update
// call. Also marks its group's centroid dirty if the move exceeds eps
// (SPEC_FULL.md §3.6: lazy centroid recompute).
func (s *Scheduler) UpdatePosition(id EntityID, pos mgl32.Vec3, eps float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return
	}
	moved := e.position.Sub(pos).Len()
	e.position = pos
	if moved > eps && e.groupID != "" {
		if g, ok := s.groups[e.groupID]; ok {
			g.centroidDirty = true
		}
	}
}

// MarkWorkerThread flags the calling goroutine (identified by workerID,
// since Go has no native goroutine-local storage) as an AI worker thread.
// Grounded on spec.md §9's "thread-local boolean set on worker entry and
// cleared on exit" — approximated here with a sync.Map keyed by the
// caller-supplied worker id (e.g. a jobsystem worker index).
func (s *Scheduler) MarkWorkerThread(workerID int) {
	s.tls.Store(workerID, true)
}

// ClearWorkerThread clears the marker set by MarkWorkerThread.
func (s *Scheduler) ClearWorkerThread(workerID int) {
	s.tls.Delete(workerID)
}

// IsWorkerThread reports whether workerID was marked via MarkWorkerThread.
func (s *Scheduler) IsWorkerThread(workerID int) bool {
	v, ok := s.tls.Load(workerID)
	return ok && v.(bool)
}

func max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
