package physics

import (
	"contact3d/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeKind tags collision primitives for detector dispatch.
type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapePlane
	ShapeTriangleSoup
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapePlane:
		return "plane"
	case ShapeTriangleSoup:
		return "triangle soup"
	default:
		return "unknown"
	}
}

// Primitive is a shape bound to a body.
type Primitive interface {
	Shape() ShapeKind
	Owner() Body
	// CalculateInternals caches world-space data; call once per step after bodies move.
	CalculateInternals()
	// Bounds returns a world bounding sphere, or false for unbounded shapes.
	Bounds() (geometry.Sphere, bool)
}

// CollisionPrimitive is the part shared by body-attached shapes: the body, the offset of the
// shape from it, and the combined transform cached by CalculateInternals.
type CollisionPrimitive struct {
	Body   Body
	Offset rl.Matrix

	transform rl.Matrix
}

func newCollisionPrimitive(body Body) CollisionPrimitive {
	return CollisionPrimitive{Body: body, Offset: rl.MatrixIdentity(), transform: rl.MatrixIdentity()}
}

// CalculateInternals caches Offset followed by the body transform.
func (p *CollisionPrimitive) CalculateInternals() {
	if p.Body == nil {
		p.transform = p.Offset
		return
	}
	p.transform = rl.MatrixMultiply(p.Offset, p.Body.Transform())
}

// Owner returns the body the shape is attached to.
func (p *CollisionPrimitive) Owner() Body {
	return p.Body
}

// Transform returns the cached world transform.
func (p *CollisionPrimitive) Transform() rl.Matrix {
	return p.transform
}

// Axis returns column i of the cached transform: the world X, Y, Z axes for 0..2 and the
// position for 3.
func (p *CollisionPrimitive) Axis(i int) rl.Vector3 {
	m := p.transform
	switch i {
	case 0:
		return rl.Vector3{X: m.M0, Y: m.M1, Z: m.M2}
	case 1:
		return rl.Vector3{X: m.M4, Y: m.M5, Z: m.M6}
	case 2:
		return rl.Vector3{X: m.M8, Y: m.M9, Z: m.M10}
	default:
		return rl.Vector3{X: m.M12, Y: m.M13, Z: m.M14}
	}
}

// Position returns the world position of the shape.
func (p *CollisionPrimitive) Position() rl.Vector3 {
	return p.Axis(3)
}

// CollisionSphere is a sphere centred on the primitive's position.
type CollisionSphere struct {
	CollisionPrimitive
	Radius float32
}

func NewCollisionSphere(body Body, radius float32) *CollisionSphere {
	s := &CollisionSphere{CollisionPrimitive: newCollisionPrimitive(body), Radius: radius}
	s.CalculateInternals()
	return s
}

func (s *CollisionSphere) Shape() ShapeKind { return ShapeSphere }

func (s *CollisionSphere) Sphere() geometry.Sphere {
	return geometry.Sphere{Center: s.Position(), Radius: s.Radius}
}

func (s *CollisionSphere) Bounds() (geometry.Sphere, bool) {
	return s.Sphere(), true
}

// CollisionBox is an oriented box aligned with the primitive's axes.
type CollisionBox struct {
	CollisionPrimitive
	HalfSize rl.Vector3
}

func NewCollisionBox(body Body, halfSize rl.Vector3) *CollisionBox {
	b := &CollisionBox{CollisionPrimitive: newCollisionPrimitive(body), HalfSize: halfSize}
	b.CalculateInternals()
	return b
}

func (b *CollisionBox) Shape() ShapeKind { return ShapeBox }

func (b *CollisionBox) Box() geometry.Box {
	return geometry.BoxFromTransform(b.transform, b.HalfSize)
}

func (b *CollisionBox) Bounds() (geometry.Sphere, bool) {
	return geometry.Sphere{Center: b.Position(), Radius: rl.Vector3Length(b.HalfSize)}, true
}

// CollisionPlane is immovable world geometry. It is not attached to a body unless Body is
// set explicitly. Planes are half-spaces unless TwoSided is set.
type CollisionPlane struct {
	Normal   rl.Vector3
	Offset   float32
	TwoSided bool
	Body     Body
}

// NewCollisionPlane creates a half-space plane; normal is normalized here.
func NewCollisionPlane(normal rl.Vector3, offset float32) *CollisionPlane {
	return &CollisionPlane{Normal: rl.Vector3Normalize(normal), Offset: offset}
}

func (p *CollisionPlane) Shape() ShapeKind { return ShapePlane }
func (p *CollisionPlane) Owner() Body { return p.Body }
func (p *CollisionPlane) CalculateInternals() {}
func (p *CollisionPlane) Bounds() (geometry.Sphere, bool) { return geometry.Sphere{}, false }

func (p *CollisionPlane) Plane() geometry.Plane {
	return geometry.Plane{Normal: p.Normal, Offset: p.Offset}
}

// CollisionTriangleSoup is a set of triangles in the primitive's local space. World-space
// copies are rebuilt by CalculateInternals.
type CollisionTriangleSoup struct {
	CollisionPrimitive
	Triangles []geometry.Triangle

	world  []geometry.Triangle
	radius float32
}

func NewCollisionTriangleSoup(body Body, triangles []geometry.Triangle) *CollisionTriangleSoup {
	s := &CollisionTriangleSoup{
		CollisionPrimitive: newCollisionPrimitive(body),
		Triangles:          triangles,
		world:              make([]geometry.Triangle, len(triangles)),
	}
	for _, tri := range triangles {
		for _, p := range tri.Points {
			if l := rl.Vector3Length(p); l > s.radius {
				s.radius = l
			}
		}
	}
	s.CalculateInternals()
	return s
}

func (s *CollisionTriangleSoup) Shape() ShapeKind { return ShapeTriangleSoup }

// CalculateInternals refreshes the transform and the world-space triangles.
func (s *CollisionTriangleSoup) CalculateInternals() {
	s.CollisionPrimitive.CalculateInternals()
	if len(s.world) != len(s.Triangles) {
		s.world = make([]geometry.Triangle, len(s.Triangles))
	}
	for i, tri := range s.Triangles {
		s.world[i] = geometry.NewTriangle(
			rl.Vector3Transform(tri.Points[0], s.transform),
			rl.Vector3Transform(tri.Points[1], s.transform),
			rl.Vector3Transform(tri.Points[2], s.transform),
		)
	}
}

// WorldTriangles returns the triangles cached by the last CalculateInternals.
func (s *CollisionTriangleSoup) WorldTriangles() []geometry.Triangle {
	return s.world
}

func (s *CollisionTriangleSoup) Bounds() (geometry.Sphere, bool) {
	return geometry.Sphere{Center: s.Position(), Radius: s.radius}, true
}
