package voxelmap

import "math"

// GridType selects whether a Voxel3DMap addresses its XY plane with hex
// cells or a plain rectangular grid (spec.md §3, "Voxel3DMap").
type GridType int

const (
	GridRectangular GridType = iota
	GridHexPointyTop
	GridHexFlatTop
)

// HexCoord is a cube coordinate (q, r, s) with q + r + s == 0 (spec.md §3).
type HexCoord struct {
	Q, R, S int
}

// NewHexCoord builds a HexCoord from q, r, deriving s so the cube invariant
// holds by construction.
func NewHexCoord(q, r int) HexCoord {
	return HexCoord{Q: q, R: r, S: -q - r}
}

// hexDirections is the canonical neighbor table, order E, NE, NW, W, SW, SE.
var hexDirections = [6]HexCoord{
	{Q: 1, R: 0, S: -1},  // E
	{Q: 1, R: -1, S: 0},  // NE
	{Q: 0, R: -1, S: 1},  // NW
	{Q: -1, R: 0, S: 1},  // W
	{Q: -1, R: 1, S: 0},  // SW
	{Q: 0, R: 1, S: -1},  // SE
}

// Direction returns the unit hex step in the given canonical direction
// index [0,6) (E, NE, NW, W, SW, SE).
func Direction(idx int) HexCoord {
	return hexDirections[((idx%6)+6)%6]
}

// Add returns the cube-coordinate sum of h and o.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R, S: h.S + o.S}
}

// Sub returns the cube-coordinate difference h - o.
func (h HexCoord) Sub(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q - o.Q, R: h.R - o.R, S: h.S - o.S}
}

// Neighbor returns the cell adjacent to h in canonical direction idx.
func (h HexCoord) Neighbor(idx int) HexCoord {
	return h.Add(Direction(idx))
}

// Neighbors returns all six adjacent cells in canonical order.
func (h HexCoord) Neighbors() [6]HexCoord {
	var out [6]HexCoord
	for i := range hexDirections {
		out[i] = h.Neighbor(i)
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Distance returns the Manhattan cube distance between h and o, symmetric
// by construction (spec.md §8, property 6).
func (h HexCoord) Distance(o HexCoord) int {
	d := h.Sub(o)
	return (absInt(d.Q) + absInt(d.R) + absInt(d.S)) / 2
}

// fractional is a cube coordinate with float components, used only for
// line interpolation and rounding.
type fractional struct {
	Q, R, S float64
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func hexLerp(a, b HexCoord, t float64) fractional {
	return fractional{
		Q: lerp(float64(a.Q), float64(b.Q), t),
		R: lerp(float64(a.R), float64(b.R), t),
		S: lerp(float64(a.S), float64(b.S), t),
	}
}

// round snaps a fractional cube coordinate to the nearest valid HexCoord,
// correcting whichever axis drifted most from its rounded value so that
// q + r + s stays zero.
func (f fractional) round() HexCoord {
	rq := math.Round(f.Q)
	rr := math.Round(f.R)
	rs := math.Round(f.S)

	dq := math.Abs(rq - f.Q)
	dr := math.Abs(rr - f.R)
	ds := math.Abs(rs - f.S)

	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	default:
		rs = -rq - rr
	}

	return HexCoord{Q: int(rq), R: int(rr), S: int(rs)}
}

// Line draws a supercover-style hex line from h to o: length
// h.Distance(o)+1, starting at h and ending at o (spec.md §8, property 7).
func (h HexCoord) Line(o HexCoord) []HexCoord {
	n := h.Distance(o)
	out := make([]HexCoord, n+1)
	if n == 0 {
		out[0] = h
		return out
	}
	step := 1.0 / float64(n)
	for i := 0; i <= n; i++ {
		out[i] = hexLerp(h, o, step*float64(i)).round()
	}
	out[0] = h
	out[n] = o
	return out
}

// Ring returns every cell exactly radius steps from h, in canonical
// direction order. Ring(0) is [h].
func (h HexCoord) Ring(radius int) []HexCoord {
	if radius <= 0 {
		return []HexCoord{h}
	}
	out := make([]HexCoord, 0, 6*radius)
	cur := h.Add(scaleHex(Direction(4), radius)) // start at SW*radius
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			out = append(out, cur)
			cur = cur.Neighbor(side)
		}
	}
	return out
}

func scaleHex(h HexCoord, k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k, S: h.S * k}
}

// Spiral returns every cell within maxRadius of h (inclusive), ordered ring
// by ring outward starting with h itself.
func (h HexCoord) Spiral(maxRadius int) []HexCoord {
	out := []HexCoord{h}
	for r := 1; r <= maxRadius; r++ {
		out = append(out, h.Ring(r)...)
	}
	return out
}

// Range returns every cell within n steps of h — equivalent to Spiral but
// named for parity with the common "hex range" operation.
func (h HexCoord) Range(n int) []HexCoord {
	return h.Spiral(n)
}

// ToOffset converts h to an offset (col, row) coordinate under the given
// orientation: odd-r for pointy-top, odd-q for flat-top (spec.md §3).
func (h HexCoord) ToOffset(grid GridType) (col, row int) {
	switch grid {
	case GridHexFlatTop:
		col = h.Q
		row = h.R + (h.Q-(h.Q&1))/2
	default: // GridHexPointyTop and any other value default to odd-r
		col = h.Q + (h.R-(h.R&1))/2
		row = h.R
	}
	return
}

// HexFromOffset converts an offset (col, row) back to cube coordinates
// under the given orientation, inverting ToOffset.
func HexFromOffset(col, row int, grid GridType) HexCoord {
	switch grid {
	case GridHexFlatTop:
		q := col
		r := row - (col-(col&1))/2
		return NewHexCoord(q, r)
	default:
		q := col - (row-(row&1))/2
		r := row
		return NewHexCoord(q, r)
	}
}
