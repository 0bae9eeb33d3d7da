package physics

import (
	"contact3d/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Primitive Primitive
	Body      Body
	Point     rl.Vector3
	Normal    rl.Vector3
	Distance  float32
}

// Raycast checks every primitive and returns the closest hit within maxDistance.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	ray := geometry.Ray{Origin: origin, Direction: direction}

	var closest RaycastHit
	closest.Distance = maxDistance
	found := false

	consider := func(p Primitive, h geometry.Hit) {
		if h.Distance <= closest.Distance {
			closest = RaycastHit{
				Primitive: p,
				Body:      p.Owner(),
				Point:     h.Point,
				Normal:    h.Normal,
				Distance:  h.Distance,
			}
			found = true
		}
	}

	for _, p := range w.Primitives {
		switch shape := p.(type) {
		case *CollisionSphere:
			if h, ok := geometry.RaySphere(ray, shape.Sphere(), closest.Distance); ok {
				consider(p, h)
			}
		case *CollisionBox:
			if h, ok := geometry.RayBox(ray, shape.Box(), closest.Distance); ok {
				consider(p, h)
			}
		case *CollisionTriangleSoup:
			for _, tri := range shape.WorldTriangles() {
				if h, ok := raycastTriangle(ray, tri); ok && h.Distance <= closest.Distance {
					consider(p, h)
				}
			}
		case *CollisionPlane:
			if h, ok := raycastPlane(ray, shape); ok && h.Distance <= closest.Distance {
				consider(p, h)
			}
		}
	}

	return closest, found
}

// raycastTriangle reports the hit normal facing back along the ray.
func raycastTriangle(ray geometry.Ray, tri geometry.Triangle) (geometry.Hit, bool) {
	point, distance, ok := geometry.RayTriangle(ray, tri, false)
	if !ok {
		return geometry.Hit{}, false
	}
	normal := tri.Normal
	if rl.Vector3DotProduct(normal, ray.Direction) > 0 {
		normal = rl.Vector3Negate(normal)
	}
	return geometry.Hit{Point: point, Normal: normal, Distance: distance}, true
}

// raycastPlane only hits the front face of half-spaces.
func raycastPlane(ray geometry.Ray, p *CollisionPlane) (geometry.Hit, bool) {
	denom := rl.Vector3DotProduct(p.Normal, ray.Direction)
	if denom > -geometry.Epsilon && (!p.TwoSided || denom < geometry.Epsilon) {
		return geometry.Hit{}, false
	}
	t := (p.Offset - rl.Vector3DotProduct(p.Normal, ray.Origin)) / denom
	if t < 0 {
		return geometry.Hit{}, false
	}
	normal := p.Normal
	if denom > 0 {
		normal = rl.Vector3Negate(normal)
	}
	return geometry.Hit{Point: ray.At(t), Normal: normal, Distance: t}, true
}
