package physics

import (
	"math"
	"slices"

	"contact3d/internal/geometry"
)

// DefaultCellSize is the spatial grid cell edge length.
const DefaultCellSize = 5.0

// maxCellSpan is the widest a sphere may be, in cells per axis, before it skips the grid and
// is tested against everything.
const maxCellSpan = 8

// CellKey identifies a grid cell.
type CellKey struct {
	X, Y, Z int
}

// CandidatePair is a pair of bounding-sphere indices that overlap, with A < B.
type CandidatePair struct {
	A, B int
}

// SpatialGrid is the CPU broad-phase: a spatial hash of bounding spheres. Each sphere is
// inserted into every cell its bounds cover, so large shapes are never missed.
type SpatialGrid struct {
	CellSize float32

	cells    map[CellKey][]int
	oversize []int
	seen     map[CandidatePair]bool
}

func NewSpatialGrid(cellSize float32) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SpatialGrid{
		CellSize: cellSize,
		cells:    make(map[CellKey][]int),
		seen:     make(map[CandidatePair]bool),
	}
}

func (g *SpatialGrid) cellOf(x, y, z float32) CellKey {
	return CellKey{
		X: int(math.Floor(float64(x / g.CellSize))),
		Y: int(math.Floor(float64(y / g.CellSize))),
		Z: int(math.Floor(float64(z / g.CellSize))),
	}
}

// rebuild clears and repopulates the grid
func (g *SpatialGrid) rebuild(bounds []geometry.Sphere) {
	clear(g.cells)
	g.oversize = g.oversize[:0]

	for i, s := range bounds {
		lo := g.cellOf(s.Center.X-s.Radius, s.Center.Y-s.Radius, s.Center.Z-s.Radius)
		hi := g.cellOf(s.Center.X+s.Radius, s.Center.Y+s.Radius, s.Center.Z+s.Radius)
		if hi.X-lo.X >= maxCellSpan || hi.Y-lo.Y >= maxCellSpan || hi.Z-lo.Z >= maxCellSpan {
			g.oversize = append(g.oversize, i)
			continue
		}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := CellKey{x, y, z}
					g.cells[key] = append(g.cells[key], i)
				}
			}
		}
	}
}

// Pairs returns every pair of overlapping spheres (touching counts), sorted by A then B.
func (g *SpatialGrid) Pairs(bounds []geometry.Sphere) []CandidatePair {
	g.rebuild(bounds)
	clear(g.seen)

	var pairs []CandidatePair
	test := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		pair := CandidatePair{A: a, B: b}
		if g.seen[pair] {
			return
		}
		g.seen[pair] = true
		if geometry.SphereAndSphere(bounds[a], bounds[b]) {
			pairs = append(pairs, pair)
		}
	}

	for _, members := range g.cells {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				test(members[i], members[j])
			}
		}
	}
	for _, big := range g.oversize {
		for other := range bounds {
			if other != big {
				test(big, other)
			}
		}
	}

	sortPairs(pairs)
	return pairs
}

// BruteForcePairs tests every pair of spheres directly.
func BruteForcePairs(bounds []geometry.Sphere) []CandidatePair {
	var pairs []CandidatePair
	for i := range bounds {
		for j := i + 1; j < len(bounds); j++ {
			if geometry.SphereAndSphere(bounds[i], bounds[j]) {
				pairs = append(pairs, CandidatePair{A: i, B: j})
			}
		}
	}
	return pairs
}

func sortPairs(pairs []CandidatePair) {
	slices.SortFunc(pairs, func(p, q CandidatePair) int {
		if p.A != q.A {
			return p.A - q.A
		}
		return p.B - q.B
	})
}
