package geometry

import rl "github.com/gen2brain/raylib-go/raylib"

// Triangle is an immutable triangle with its supporting plane and the two coordinate axes
// used for 2D containment tests.
type Triangle struct {
	Points [3]rl.Vector3
	Center rl.Vector3

	// Normal·x + D = 0 for every x on the supporting plane.
	Normal rl.Vector3
	D      float32

	// I1 < I2 are the coordinate axes kept when projecting onto 2D; the axis along which
	// the normal is largest is dropped.
	I1, I2 int
}

// NewTriangle builds a triangle and its derived data. Winding P0, P1, P2 gives the normal
// direction (P1-P0)×(P2-P0).
func NewTriangle(p0, p1, p2 rl.Vector3) Triangle {
	t := Triangle{Points: [3]rl.Vector3{p0, p1, p2}}
	t.Center = rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(p0, p1), p2), 1.0/3.0)

	n := rl.Vector3CrossProduct(rl.Vector3Subtract(p1, p0), rl.Vector3Subtract(p2, p0))
	if l := rl.Vector3Length(n); l > 0 {
		n = rl.Vector3Scale(n, 1/l)
	}
	t.Normal = n
	t.D = -rl.Vector3DotProduct(n, p0)
	t.I1, t.I2 = dominantAxes(n)
	return t
}

// dominantAxes drops the axis with the largest absolute normal component. Ties go to the
// lower axis so the choice is deterministic.
func dominantAxes(n rl.Vector3) (int, int) {
	ax, ay, az := absf(n.X), absf(n.Y), absf(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return 1, 2
	case ay >= az:
		return 0, 2
	default:
		return 0, 1
	}
}

// Edge returns Points[(i+1)%3] - Points[i].
func (t Triangle) Edge(i int) rl.Vector3 {
	return rl.Vector3Subtract(t.Points[(i+1)%3], t.Points[i])
}

// Plane returns the supporting plane in Normal·x = Offset form.
func (t Triangle) Plane() Plane {
	return Plane{Normal: t.Normal, Offset: -t.D}
}

// SignedDistance is the distance from p to the supporting plane, positive on the normal side.
func (t Triangle) SignedDistance(p rl.Vector3) float32 {
	return rl.Vector3DotProduct(t.Normal, p) + t.D
}

// Degenerate reports whether the triangle has no area.
func (t Triangle) Degenerate() bool {
	return t.Normal.X == 0 && t.Normal.Y == 0 && t.Normal.Z == 0
}

// PointInTriangle projects p and the triangle onto the I1/I2 plane and reports whether the
// projection lies inside. Edges and vertices count as inside. The distance of p from the
// plane is not considered.
func (t Triangle) PointInTriangle(p rl.Vector3) bool {
	if t.Degenerate() {
		return false
	}
	p0 := t.Points[0]
	u0 := Component(p, t.I1) - Component(p0, t.I1)
	v0 := Component(p, t.I2) - Component(p0, t.I2)
	u1 := Component(t.Points[1], t.I1) - Component(p0, t.I1)
	v1 := Component(t.Points[1], t.I2) - Component(p0, t.I2)
	u2 := Component(t.Points[2], t.I1) - Component(p0, t.I1)
	v2 := Component(t.Points[2], t.I2) - Component(p0, t.I2)

	var a, b float32
	if absf(u1) < Epsilon {
		b = u0 / u2
		if b < 0 || b > 1 {
			return false
		}
		a = (v0 - b*v2) / v1
	} else {
		b = (v0*u1 - u0*v1) / (v2*u1 - u2*v1)
		if b < 0 || b > 1 {
			return false
		}
		a = (u0 - b*u2) / u1
	}
	return a >= 0 && a+b <= 1
}

// ClosestPoint returns the point on the triangle (interior or boundary) nearest to p.
//
// With E0 = P1-P0 and E1 = P2-P0 the candidate is P0 + s*E0 + t*E1. The unclamped
// minimiser (s, t) is scaled by det, and the sign of s, t and s+t-det picks one of seven
// regions:
//
//	     t
//	  2  |
//	     |\
//	  3  | \   1
//	     | 0\
//	-----+---\----- s
//	  4  | 5  \  6
//
// Each region clamps to the matching edge or vertex.
func (t Triangle) ClosestPoint(p rl.Vector3) rl.Vector3 {
	p0 := t.Points[0]
	e0 := rl.Vector3Subtract(t.Points[1], p0)
	e1 := rl.Vector3Subtract(t.Points[2], p0)
	diff := rl.Vector3Subtract(p0, p)

	a00 := rl.Vector3DotProduct(e0, e0)
	a01 := rl.Vector3DotProduct(e0, e1)
	a11 := rl.Vector3DotProduct(e1, e1)
	b0 := rl.Vector3DotProduct(diff, e0)
	b1 := rl.Vector3DotProduct(diff, e1)
	det := absf(a00*a11 - a01*a01)

	if det == 0 {
		return t.closestOnEdges(p)
	}

	s := a01*b1 - a11*b0
	tt := a01*b0 - a00*b1

	if s+tt <= det {
		if s < 0 {
			if tt < 0 {
				// region 4
				if b0 < 0 {
					tt = 0
					if -b0 >= a00 {
						s = 1
					} else {
						s = -b0 / a00
					}
				} else {
					s = 0
					if b1 >= 0 {
						tt = 0
					} else if -b1 >= a11 {
						tt = 1
					} else {
						tt = -b1 / a11
					}
				}
			} else {
				// region 3
				s = 0
				if b1 >= 0 {
					tt = 0
				} else if -b1 >= a11 {
					tt = 1
				} else {
					tt = -b1 / a11
				}
			}
		} else if tt < 0 {
			// region 5
			tt = 0
			if b0 >= 0 {
				s = 0
			} else if -b0 >= a00 {
				s = 1
			} else {
				s = -b0 / a00
			}
		} else {
			// region 0
			inv := 1 / det
			s *= inv
			tt *= inv
		}
	} else {
		if s < 0 {
			// region 2
			tmp0 := a01 + b0
			tmp1 := a11 + b1
			if tmp1 > tmp0 {
				numer := tmp1 - tmp0
				denom := a00 - 2*a01 + a11
				if numer >= denom {
					s, tt = 1, 0
				} else {
					s = numer / denom
					tt = 1 - s
				}
			} else {
				s = 0
				if tmp1 <= 0 {
					tt = 1
				} else if b1 >= 0 {
					tt = 0
				} else {
					tt = -b1 / a11
				}
			}
		} else if tt < 0 {
			// region 6
			tmp0 := a01 + b1
			tmp1 := a00 + b0
			if tmp1 > tmp0 {
				numer := tmp1 - tmp0
				denom := a00 - 2*a01 + a11
				if numer >= denom {
					tt, s = 1, 0
				} else {
					tt = numer / denom
					s = 1 - tt
				}
			} else {
				tt = 0
				if tmp1 <= 0 {
					s = 1
				} else if b0 >= 0 {
					s = 0
				} else {
					s = -b0 / a00
				}
			}
		} else {
			// region 1
			numer := a11 + b1 - a01 - b0
			if numer <= 0 {
				s, tt = 0, 1
			} else {
				denom := a00 - 2*a01 + a11
				if numer >= denom {
					s, tt = 1, 0
				} else {
					s = numer / denom
					tt = 1 - s
				}
			}
		}
	}

	return rl.Vector3Add(p0, rl.Vector3Add(rl.Vector3Scale(e0, s), rl.Vector3Scale(e1, tt)))
}

// ClosestPointDistance returns the closest point on the triangle and its distance from p.
func (t Triangle) ClosestPointDistance(p rl.Vector3) (rl.Vector3, float32) {
	c := t.ClosestPoint(p)
	return c, rl.Vector3Distance(c, p)
}

// closestOnEdges handles zero-area triangles by testing the three edge segments.
func (t Triangle) closestOnEdges(p rl.Vector3) rl.Vector3 {
	best := t.Points[0]
	bestDist := lengthSq(rl.Vector3Subtract(p, best))
	for i := 0; i < 3; i++ {
		c := ClosestPointOnSegment(p, t.Points[i], t.Points[(i+1)%3])
		if d := lengthSq(rl.Vector3Subtract(p, c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// ClosestPointOnSegment clamps the projection of p onto segment a-b.
func ClosestPointOnSegment(p, a, b rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	l := lengthSq(ab)
	if l == 0 {
		return a
	}
	s := clampf(rl.Vector3DotProduct(rl.Vector3Subtract(p, a), ab)/l, 0, 1)
	return rl.Vector3Add(a, rl.Vector3Scale(ab, s))
}
