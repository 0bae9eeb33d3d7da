package geometry

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RayTriangle intersects a ray with a triangle. In segment mode only hits with parameter
// t in [0, 1] count, i.e. no further than one Direction length from the origin. The returned
// distance is t*|Direction|.
func RayTriangle(r Ray, tri Triangle, segment bool) (rl.Vector3, float32, bool) {
	if tri.Degenerate() {
		return rl.Vector3{}, 0, false
	}
	denom := rl.Vector3DotProduct(tri.Normal, r.Direction)
	if absf(denom) < Epsilon {
		return rl.Vector3{}, 0, false
	}

	t := -(rl.Vector3DotProduct(tri.Normal, r.Origin) + tri.D) / denom
	if t < 0 {
		return rl.Vector3{}, 0, false
	}
	if segment && t > 1 {
		return rl.Vector3{}, 0, false
	}

	point := r.At(t)
	if !tri.PointInTriangle(point) {
		return rl.Vector3{}, 0, false
	}
	return point, t * rl.Vector3Length(r.Direction), true
}

// RaySphere returns the first hit of a ray against a sphere within maxDistance. The ray
// direction is normalized here.
func RaySphere(r Ray, s Sphere, maxDistance float32) (Hit, bool) {
	dir := rl.Vector3Normalize(r.Direction)
	oc := rl.Vector3Subtract(r.Origin, s.Center)
	b := 2.0 * rl.Vector3DotProduct(oc, dir)
	c := rl.Vector3DotProduct(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return Hit{}, false
	}

	root := float32(math.Sqrt(float64(discriminant)))
	t := (-b - root) / 2
	if t < 0 {
		t = (-b + root) / 2
	}
	if t < 0 || t > maxDistance {
		return Hit{}, false
	}

	point := rl.Vector3Add(r.Origin, rl.Vector3Scale(dir, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, s.Center))
	return Hit{Point: point, Normal: normal, Distance: t}, true
}

// RayBox returns the first hit of a ray against an oriented box within maxDistance using
// the slab method in the box frame. The ray direction is normalized here.
func RayBox(r Ray, b Box, maxDistance float32) (Hit, bool) {
	dir := rl.Vector3Normalize(r.Direction)
	origin := b.ToLocal(r.Origin)
	localDir := rl.Vector3{
		X: rl.Vector3DotProduct(dir, b.Axes[0]),
		Y: rl.Vector3DotProduct(dir, b.Axes[1]),
		Z: rl.Vector3DotProduct(dir, b.Axes[2]),
	}

	tmin := float32(-1e30)
	tmax := float32(1e30)
	enterAxis, exitAxis := -1, -1
	var enterSign, exitSign float32

	for axis := 0; axis < 3; axis++ {
		o := Component(origin, axis)
		d := Component(localDir, axis)
		h := Component(b.HalfSize, axis)

		if absf(d) < Epsilon {
			if o < -h || o > h {
				return Hit{}, false
			}
			continue
		}

		t1 := (-h - o) / d
		t2 := (h - o) / d
		in, out := float32(-1), float32(1)
		if t1 > t2 {
			t1, t2 = t2, t1
			in, out = 1, -1
		}
		if t1 > tmin {
			tmin, enterAxis, enterSign = t1, axis, in
		}
		if t2 < tmax {
			tmax, exitAxis, exitSign = t2, axis, out
		}
		if tmin > tmax {
			return Hit{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return Hit{}, false
	}

	t := tmin
	axis, sign := enterAxis, enterSign
	if t < 0 {
		// Origin inside the box: report the exit face
		t = tmax
		axis, sign = exitAxis, exitSign
	}
	if t > maxDistance {
		return Hit{}, false
	}

	normal := rl.Vector3{}
	if axis >= 0 {
		normal = rl.Vector3Scale(b.Axes[axis], sign)
	}

	point := rl.Vector3Add(r.Origin, rl.Vector3Scale(dir, t))
	return Hit{Point: point, Normal: normal, Distance: t}, true
}
