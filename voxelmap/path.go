package voxelmap

// IsWalkable reports whether pos can be stood on (spec.md §4.2,
// "Pathfinding hooks").
func (m *Voxel3DMap) IsWalkable(pos [3]int) bool {
	return m.At(pos[0], pos[1], pos[2]).IsWalkable
}

// inPlaneOffsets returns the XY neighbor offsets for the map's grid type:
// 8 for a rectangular grid (diagonals always included; there is no
// 4-neighbor mode), or 6 for a hex grid (the canonical E/NE/NW/W/SW/SE order
// projected to offset coordinates).
func (m *Voxel3DMap) inPlaneOffsets(x, y int) [][2]int {
	switch m.cfg.GridType {
	case GridHexPointyTop, GridHexFlatTop:
		h := HexFromOffset(x, y, m.cfg.GridType)
		offs := make([][2]int, 0, 6)
		for _, n := range h.Neighbors() {
			nc, nr := n.ToOffset(m.cfg.GridType)
			offs = append(offs, [2]int{nc - x, nr - y})
		}
		return offs
	default:
		return [][2]int{
			{1, 0}, {-1, 0}, {0, 1}, {0, -1},
			{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
		}
	}
}

// WalkableNeighbors returns the walkable in-plane neighbors of pos (6 on hex
// grids, 8 on rectangular ones), plus the voxel above when it is climbable
// and walkable, and the voxel below when it is walkable and either it or pos
// is climbable (spec.md §4.2). Vertical movement depends only on
// IsClimbable; there are no ramp or stairs flags.
func (m *Voxel3DMap) WalkableNeighbors(pos [3]int) [][3]int {
	x, y, z := pos[0], pos[1], pos[2]
	var out [][3]int

	for _, o := range m.inPlaneOffsets(x, y) {
		nx, ny := x+o[0], y+o[1]
		if m.At(nx, ny, z).IsWalkable {
			out = append(out, [3]int{nx, ny, z})
		}
	}

	if z+1 < m.cfg.Depth {
		above := m.At(x, y, z+1)
		if above.IsClimbable && above.IsWalkable {
			out = append(out, [3]int{x, y, z + 1})
		}
	}
	if z-1 >= 0 {
		below := m.At(x, y, z-1)
		if below.IsWalkable && (below.IsClimbable || m.At(x, y, z).IsClimbable) {
			out = append(out, [3]int{x, y, z - 1})
		}
	}

	return out
}

// MovementCost returns the average of from/to's movement costs, times a
// diagonal penalty of sqrt(2) when the step is diagonal in-plane (spec.md
// §4.2).
func (m *Voxel3DMap) MovementCost(from, to [3]int) float32 {
	a := m.At(from[0], from[1], from[2])
	b := m.At(to[0], to[1], to[2])
	base := (a.MovementCost + b.MovementCost) / 2

	dx, dy := to[0]-from[0], to[1]-from[1]
	if dx != 0 && dy != 0 {
		base *= 1.41421356
	}
	return base
}

// CanMoveTo reports whether the step from -> to is unobstructed: no solid
// blocker at to, and no ceiling trap when stepping up (spec.md §4.2).
func (m *Voxel3DMap) CanMoveTo(from, to [3]int) bool {
	dest := m.At(to[0], to[1], to[2])
	if dest.Solid {
		return false
	}
	if to[2] > from[2] {
		// Stepping up: the voxel above the destination must not be solid,
		// or the entity would have its head trapped by a ceiling.
		if to[2]+1 < m.cfg.Depth && m.At(to[0], to[1], to[2]+1).Solid {
			return false
		}
	}
	return true
}
