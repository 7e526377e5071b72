package voxelmap

// HasLineOfSight walks a 3D Bresenham line between voxel a and voxel b,
// one cell per step along the dominant axis, and returns true iff none of
// the visited cells block light (spec.md §4.2, "Line of sight"). Cells the
// line only clips without being stepped into are not visited.
func (m *Voxel3DMap) HasLineOfSight(a, b [3]int) bool {
	for _, cell := range Supercover3D(a, b) {
		if m.At(cell[0], cell[1], cell[2]).BlocksLight {
			return false
		}
	}
	return true
}

// Supercover3D returns the voxels a 3D Bresenham line from a to b steps
// through, one per step of the driving axis, inclusive of both endpoints;
// despite the name it is not a full supercover. The driving axis is whichever
// has the largest delta; the other two accumulate error and step whenever
// it crosses zero, the standard 3D Bresenham formulation.
func Supercover3D(a, b [3]int) [][3]int {
	x, y, z := a[0], a[1], a[2]
	x2, y2, z2 := b[0], b[1], b[2]

	dx, dy, dz := absInt(x2-x), absInt(y2-y), absInt(z2-z)
	sx, sy, sz := sign(x2-x), sign(y2-y), sign(z2-z)

	steps := dx
	if dy > steps {
		steps = dy
	}
	if dz > steps {
		steps = dz
	}

	out := make([][3]int, 0, steps+1)
	out = append(out, [3]int{x, y, z})

	switch {
	case dx >= dy && dx >= dz:
		p1, p2 := 2*dy-dx, 2*dz-dx
		for x != x2 {
			x += sx
			if p1 >= 0 {
				y += sy
				p1 -= 2 * dx
			}
			if p2 >= 0 {
				z += sz
				p2 -= 2 * dx
			}
			p1 += 2 * dy
			p2 += 2 * dz
			out = append(out, [3]int{x, y, z})
		}
	case dy >= dx && dy >= dz:
		p1, p2 := 2*dx-dy, 2*dz-dy
		for y != y2 {
			y += sy
			if p1 >= 0 {
				x += sx
				p1 -= 2 * dy
			}
			if p2 >= 0 {
				z += sz
				p2 -= 2 * dy
			}
			p1 += 2 * dx
			p2 += 2 * dz
			out = append(out, [3]int{x, y, z})
		}
	default:
		p1, p2 := 2*dy-dz, 2*dx-dz
		for z != z2 {
			z += sz
			if p1 >= 0 {
				y += sy
				p1 -= 2 * dz
			}
			if p2 >= 0 {
				x += sx
				p2 -= 2 * dz
			}
			p1 += 2 * dy
			p2 += 2 * dx
			out = append(out, [3]int{x, y, z})
		}
	}

	return out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
