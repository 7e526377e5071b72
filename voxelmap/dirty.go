package voxelmap

// markDirty records box as a mutated region. Every mutation records its
// AABB; the union is exposed to consumers (C4, C5, renderer) and cleared on
// their request (spec.md §4.2, "Dirty tracking"). Mark-then-drain: callers
// accumulate AABBs as they mutate and pull the union once per frame rather
// than diffing the whole grid.
func (m *Voxel3DMap) markDirty(box AABB) {
	m.dirty = append(m.dirty, box)
	m.anyDirty = true
}

// DirtyRegions returns every AABB marked dirty since the last ClearDirty.
func (m *Voxel3DMap) DirtyRegions() []AABB {
	return m.dirty
}

// DirtyUnion returns the union of every dirty AABB, and ok=false if nothing
// is dirty.
func (m *Voxel3DMap) DirtyUnion() (AABB, bool) {
	if len(m.dirty) == 0 {
		return AABB{}, false
	}
	union := m.dirty[0]
	for _, b := range m.dirty[1:] {
		union = union.Union(b)
	}
	return union, true
}

// ClearDirty drops every recorded dirty region, for use by a consumer once
// it has processed them.
func (m *Voxel3DMap) ClearDirty() {
	m.dirty = m.dirty[:0]
	m.anyDirty = false
}

// AnyDirty reports whether any region has been marked dirty since the last
// ClearDirty.
func (m *Voxel3DMap) AnyDirty() bool {
	return m.anyDirty
}
