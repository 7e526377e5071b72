package voxelmap

import "github.com/google/uuid"

// LargeObject records a multi-voxel placed object (spec.md §3, §4.2). ID is
// a dense uint64 taken from the map's nextObjectID counter, so it fits the
// footprint voxels' uint64 OwnerEntityID field; each record also carries a
// separate random UUID.
type LargeObject struct {
	ID       uint64
	UUID     uuid.UUID
	Origin   [3]int
	Size     [3]int
	Template Voxel
}

// PlaceLargeObject places a size-box object at origin, copying template
// into every covered voxel and tagging them with the new object's ID.
// Preconditions: the whole box fits in bounds and every covered cell is
// empty (spec.md §4.2). On failure, returns 0 and leaves every candidate
// voxel unchanged (spec.md §8, property 9).
func (m *Voxel3DMap) PlaceLargeObject(origin, size [3]int, template Voxel) uint64 {
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return 0
	}
	maxX, maxY, maxZ := origin[0]+size[0], origin[1]+size[1], origin[2]+size[2]
	if origin[0] < 0 || origin[1] < 0 || origin[2] < 0 {
		return 0
	}
	if maxX > m.cfg.Width || maxY > m.cfg.Height || maxZ > m.cfg.Depth {
		return 0
	}

	for z := origin[2]; z < maxZ; z++ {
		for y := origin[1]; y < maxY; y++ {
			for x := origin[0]; x < maxX; x++ {
				if !m.voxels[m.index(x, y, z)].IsEmpty() {
					return 0
				}
			}
		}
	}

	id := m.nextObjectID
	m.nextObjectID++

	placed := template.Normalize()
	placed.OwnerEntityID = id
	for z := origin[2]; z < maxZ; z++ {
		for y := origin[1]; y < maxY; y++ {
			for x := origin[0]; x < maxX; x++ {
				m.voxels[m.index(x, y, z)] = placed
			}
		}
	}

	m.objects = append(m.objects, LargeObject{
		ID:       id,
		UUID:     uuid.New(),
		Origin:   origin,
		Size:     size,
		Template: template,
	})
	m.markDirty(AABB{Min: origin, Max: [3]int{maxX, maxY, maxZ}})
	return id
}

// RemoveLargeObject clears every voxel owned by id and drops its record.
// Returns false if no such object exists.
func (m *Voxel3DMap) RemoveLargeObject(id uint64) bool {
	idx := -1
	for i, o := range m.objects {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	obj := m.objects[idx]
	maxX := obj.Origin[0] + obj.Size[0]
	maxY := obj.Origin[1] + obj.Size[1]
	maxZ := obj.Origin[2] + obj.Size[2]
	for z := obj.Origin[2]; z < maxZ; z++ {
		for y := obj.Origin[1]; y < maxY; y++ {
			for x := obj.Origin[0]; x < maxX; x++ {
				if m.voxels[m.index(x, y, z)].OwnerEntityID == id {
					m.voxels[m.index(x, y, z)] = EmptyVoxel()
				}
			}
		}
	}
	m.objects = append(m.objects[:idx], m.objects[idx+1:]...)
	m.markDirty(AABB{Min: obj.Origin, Max: [3]int{maxX, maxY, maxZ}})
	return true
}

// LargeObjects returns every currently placed large object.
func (m *Voxel3DMap) LargeObjects() []LargeObject {
	return m.objects
}

// LargeObjectByID returns the object record for id, if present.
func (m *Voxel3DMap) LargeObjectByID(id uint64) (LargeObject, bool) {
	for _, o := range m.objects {
		if o.ID == id {
			return o, true
		}
	}
	return LargeObject{}, false
}
