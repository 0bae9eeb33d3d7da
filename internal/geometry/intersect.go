package geometry

import rl "github.com/gen2brain/raylib-go/raylib"

// All tests below treat touching shapes as intersecting.

// SphereAndHalfSpace reports whether the sphere reaches into the half-space behind the plane.
func SphereAndHalfSpace(s Sphere, p Plane) bool {
	return rl.Vector3DotProduct(p.Normal, s.Center)-s.Radius <= p.Offset
}

// SphereAndPlane reports whether the sphere touches the (two-sided) plane.
func SphereAndPlane(s Sphere, p Plane) bool {
	return absf(p.Distance(s.Center)) <= s.Radius
}

// SphereAndSphere reports whether two spheres overlap.
func SphereAndSphere(a, b Sphere) bool {
	r := a.Radius + b.Radius
	return lengthSq(rl.Vector3Subtract(a.Center, b.Center)) <= r*r
}

// SphereAndBox reports whether a sphere overlaps an oriented box.
func SphereAndBox(s Sphere, b Box) bool {
	closest := b.ClosestPoint(s.Center)
	return lengthSq(rl.Vector3Subtract(s.Center, closest)) <= s.Radius*s.Radius
}

// SphereAndTriangle reports whether a sphere touches a triangle.
func SphereAndTriangle(s Sphere, t Triangle) bool {
	if t.Degenerate() {
		return false
	}
	dist := t.SignedDistance(s.Center)
	if absf(dist) > s.Radius {
		return false
	}

	// Centre projects inside the face: the plane distance already decided it.
	projected := rl.Vector3Subtract(s.Center, rl.Vector3Scale(t.Normal, dist))
	if t.PointInTriangle(projected) {
		return true
	}

	r2 := s.Radius * s.Radius
	for i := 0; i < 3; i++ {
		edge := t.Edge(i)
		toCenter := rl.Vector3Subtract(s.Center, t.Points[i])
		l := lengthSq(edge)
		if l == 0 {
			continue
		}
		along := clampf(rl.Vector3DotProduct(toCenter, edge)/l, 0, 1)
		offset := rl.Vector3Subtract(toCenter, rl.Vector3Scale(edge, along))
		if lengthSq(offset) <= r2 {
			return true
		}
	}
	return false
}

// BoxAndHalfSpace reports whether any part of the box lies behind the plane.
func BoxAndHalfSpace(b Box, p Plane) bool {
	projectedRadius := b.ProjectedRadius(p.Normal)
	boxDistance := rl.Vector3DotProduct(p.Normal, b.Center) - projectedRadius
	return boxDistance <= p.Offset
}

// BoxAndBox tests two oriented boxes with the separating axis theorem over the 15
// candidate axes: three face normals of each box and the nine edge cross products.
func BoxAndBox(a, b Box) bool {
	// Vector from A's center to B's center
	t := rl.Vector3Subtract(b.Center, a.Center)

	for i := 0; i < 3; i++ {
		if !overlapOnAxis(a, b, a.Axes[i], t) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		if !overlapOnAxis(a, b, b.Axes[i], t) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := rl.Vector3CrossProduct(a.Axes[i], b.Axes[j])
			// Parallel edges give no usable axis
			if rl.Vector3Length(axis) < 0.0001 {
				continue
			}
			if !overlapOnAxis(a, b, rl.Vector3Normalize(axis), t) {
				return false
			}
		}
	}
	return true
}

// overlapOnAxis checks if two boxes overlap when projected onto axis.
func overlapOnAxis(a, b Box, axis, t rl.Vector3) bool {
	distance := absf(rl.Vector3DotProduct(t, axis))
	return distance <= a.ProjectedRadius(axis)+b.ProjectedRadius(axis)
}

// PenetrationOnAxis returns how far two boxes overlap along axis; negative means a gap.
// toCenter is b.Center - a.Center.
func PenetrationOnAxis(a, b Box, axis, toCenter rl.Vector3) float32 {
	distance := absf(rl.Vector3DotProduct(toCenter, axis))
	return a.ProjectedRadius(axis) + b.ProjectedRadius(axis) - distance
}
