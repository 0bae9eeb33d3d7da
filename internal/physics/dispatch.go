package physics

type shapePair struct {
	a, b ShapeKind
}

type detectFunc func(a, b Primitive, data *ContactBuffer, limit int) int

// detectors maps ordered shape pairs to their detector. Collide also tries the reversed pair.
var detectors = map[shapePair]detectFunc{
	{ShapeSphere, ShapeSphere}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		return SphereAndSphere(a.(*CollisionSphere), b.(*CollisionSphere), data, limit)
	},
	{ShapeSphere, ShapePlane}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		plane := b.(*CollisionPlane)
		if plane.TwoSided {
			return SphereAndTruePlane(a.(*CollisionSphere), plane, data, limit)
		}
		return SphereAndHalfSpace(a.(*CollisionSphere), plane, data, limit)
	},
	{ShapeBox, ShapePlane}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		return BoxAndHalfSpace(a.(*CollisionBox), b.(*CollisionPlane), data, limit)
	},
	{ShapeBox, ShapeSphere}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		return BoxAndSphere(a.(*CollisionBox), b.(*CollisionSphere), data, limit)
	},
	{ShapeBox, ShapeBox}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		return BoxAndBox(a.(*CollisionBox), b.(*CollisionBox), data, limit)
	},
	{ShapeSphere, ShapeTriangleSoup}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		return SphereAndTriangleSoup(a.(*CollisionSphere), b.(*CollisionTriangleSoup), data, limit)
	},
	{ShapeBox, ShapeTriangleSoup}: func(a, b Primitive, data *ContactBuffer, limit int) int {
		return BoxAndTriangleSoup(a.(*CollisionBox), b.(*CollisionTriangleSoup), data, limit)
	},
}

// Collide runs the detector for the shape kinds of a and b. Pairs with no detector, such
// as plane/plane, produce nothing.
func Collide(a, b Primitive, data *ContactBuffer, limit int) int {
	if a == nil || b == nil || limit <= 0 {
		return 0
	}
	if detect, ok := detectors[shapePair{a.Shape(), b.Shape()}]; ok {
		return detect(a, b, data, limit)
	}
	if detect, ok := detectors[shapePair{b.Shape(), a.Shape()}]; ok {
		return detect(b, a, data, limit)
	}
	return 0
}

// CanCollide reports whether a detector exists for the two shape kinds.
func CanCollide(a, b ShapeKind) bool {
	_, forward := detectors[shapePair{a, b}]
	_, reverse := detectors[shapePair{b, a}]
	return forward || reverse
}
