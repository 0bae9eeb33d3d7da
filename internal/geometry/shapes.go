package geometry

import rl "github.com/gen2brain/raylib-go/raylib"

// Sphere is a ball in world space.
type Sphere struct {
	Center rl.Vector3
	Radius float32
}

// Plane is the set of points x with Normal·x = Offset. Normal is unit length.
type Plane struct {
	Normal rl.Vector3
	Offset float32
}

// NewPlane builds a plane through point with the given normal (normalized here).
func NewPlane(normal, point rl.Vector3) Plane {
	n := rl.Vector3Normalize(normal)
	return Plane{Normal: n, Offset: rl.Vector3DotProduct(n, point)}
}

// Distance returns the signed distance from p to the plane, positive on the normal side.
func (p Plane) Distance(point rl.Vector3) float32 {
	return rl.Vector3DotProduct(p.Normal, point) - p.Offset
}

// Ray is a half-line, or a segment Origin..Origin+Direction when tested in segment mode.
type Ray struct {
	Origin    rl.Vector3
	Direction rl.Vector3
}

// At returns Origin + t*Direction.
func (r Ray) At(t float32) rl.Vector3 {
	return rl.Vector3Add(r.Origin, rl.Vector3Scale(r.Direction, t))
}

// Hit describes where a ray met a shape.
type Hit struct {
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}
