package physics

import (
	"contact3d/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Detectors write contacts for one pair of primitives into data, at most limit of them and
// never past the buffer's capacity, and return how many they wrote. Each one checks the
// buffer before touching it.

// SphereAndHalfSpace generates a contact when the sphere dips behind the plane.
func SphereAndHalfSpace(sphere *CollisionSphere, plane *CollisionPlane, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	position := sphere.Position()

	distance := rl.Vector3DotProduct(plane.Normal, position) - sphere.Radius - plane.Offset
	if distance > 0 {
		return 0
	}

	c := data.NewContact(sphere.Body, plane.Body)
	c.ContactNormal = plane.Normal
	c.Penetration = -distance
	c.ContactPoint = rl.Vector3Subtract(position, rl.Vector3Scale(plane.Normal, distance+sphere.Radius))
	data.AddContact()
	return 1
}

// SphereAndTruePlane generates a contact against a two-sided plane, pushing the sphere out
// on whichever side its centre lies.
func SphereAndTruePlane(sphere *CollisionSphere, plane *CollisionPlane, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	position := sphere.Position()

	centreDistance := rl.Vector3DotProduct(plane.Normal, position) - plane.Offset
	if centreDistance*centreDistance > sphere.Radius*sphere.Radius {
		return 0
	}

	normal := plane.Normal
	penetration := -centreDistance
	if centreDistance < 0 {
		normal = rl.Vector3Negate(normal)
		penetration = -penetration
	}
	penetration += sphere.Radius

	c := data.NewContact(sphere.Body, plane.Body)
	c.ContactNormal = normal
	c.Penetration = penetration
	c.ContactPoint = rl.Vector3Subtract(position, rl.Vector3Scale(plane.Normal, centreDistance))
	data.AddContact()
	return 1
}

// SphereAndSphere generates a contact between overlapping spheres at the midpoint of the
// overlap.
func SphereAndSphere(one, two *CollisionSphere, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	positionOne := one.Position()
	positionTwo := two.Position()

	midline := rl.Vector3Subtract(positionOne, positionTwo)
	size := rl.Vector3Length(midline)
	if size <= 0 || size > one.Radius+two.Radius {
		return 0
	}

	normal := rl.Vector3Scale(midline, 1/size)
	c := data.NewContact(one.Body, two.Body)
	c.ContactNormal = normal
	c.Penetration = one.Radius + two.Radius - size
	// Halfway between the two surfaces along the centre line
	surfaceTwo := rl.Vector3Add(positionTwo, rl.Vector3Scale(normal, two.Radius))
	surfaceOne := rl.Vector3Subtract(positionOne, rl.Vector3Scale(normal, one.Radius))
	c.ContactPoint = rl.Vector3Scale(rl.Vector3Add(surfaceOne, surfaceTwo), 0.5)
	data.AddContact()
	return 1
}

// BoxAndHalfSpace generates one contact per box vertex behind the plane.
func BoxAndHalfSpace(box *CollisionBox, plane *CollisionPlane, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	if !geometry.BoxAndHalfSpace(box.Box(), plane.Plane()) {
		return 0
	}

	written := 0
	for _, vertex := range box.Box().Vertices() {
		distance := rl.Vector3DotProduct(vertex, plane.Normal)
		if distance > plane.Offset {
			continue
		}
		if !canWrite(data, written, limit) {
			break
		}
		penetration := plane.Offset - distance

		c := data.NewContact(box.Body, plane.Body)
		c.ContactNormal = plane.Normal
		c.Penetration = penetration
		// Halfway between the vertex and the plane
		c.ContactPoint = rl.Vector3Add(vertex, rl.Vector3Scale(plane.Normal, penetration*0.5))
		data.AddContact()
		written++
	}
	return written
}

// BoxAndSphere generates a contact between a box and a sphere at the point of the box
// closest to the sphere centre.
func BoxAndSphere(box *CollisionBox, sphere *CollisionSphere, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	b := box.Box()
	centre := sphere.Position()
	relCentre := b.ToLocal(centre)

	// Early out on any separating face axis
	if absf(relCentre.X)-sphere.Radius > box.HalfSize.X ||
		absf(relCentre.Y)-sphere.Radius > box.HalfSize.Y ||
		absf(relCentre.Z)-sphere.Radius > box.HalfSize.Z {
		return 0
	}

	closest := b.ClosestPoint(centre)
	offset := rl.Vector3Subtract(closest, centre)
	distSq := rl.Vector3DotProduct(offset, offset)
	if distSq > sphere.Radius*sphere.Radius {
		return 0
	}

	var normal rl.Vector3
	var penetration float32
	if distSq > geometry.Epsilon {
		dist := sqrtf(distSq)
		normal = rl.Vector3Scale(offset, 1/dist)
		penetration = sphere.Radius - dist
	} else {
		// Centre inside the box: leave through the nearest face
		normal, penetration = insideBoxFace(b, relCentre)
		penetration += sphere.Radius
		closest = centre
	}

	c := data.NewContact(box.Body, sphere.Body)
	c.ContactNormal = normal
	c.Penetration = penetration
	c.ContactPoint = closest
	data.AddContact()
	return 1
}

// insideBoxFace finds the face nearest a box-local point inside the box. It returns the
// direction the box must move to expel the point and how deep the point is.
func insideBoxFace(b geometry.Box, local rl.Vector3) (rl.Vector3, float32) {
	best := 0
	bestDepth := b.HalfSize.X - absf(local.X)
	for i := 1; i < 3; i++ {
		depth := geometry.Component(b.HalfSize, i) - absf(geometry.Component(local, i))
		if depth < bestDepth {
			best, bestDepth = i, depth
		}
	}
	normal := b.Axes[best]
	if geometry.Component(local, best) > 0 {
		normal = rl.Vector3Negate(normal)
	}
	return normal, bestDepth
}

// BoxAndPoint generates a contact when point lies inside the box, through the shallowest
// face. The contact has no second body.
func BoxAndPoint(box *CollisionBox, point rl.Vector3, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	b := box.Box()
	local := b.ToLocal(point)

	for i := 0; i < 3; i++ {
		if absf(geometry.Component(local, i)) > geometry.Component(box.HalfSize, i) {
			return 0
		}
	}

	normal, depth := insideBoxFace(b, local)

	c := data.NewContact(box.Body, nil)
	c.ContactNormal = normal
	c.Penetration = depth
	c.ContactPoint = point
	data.AddContact()
	return 1
}

// BoxAndBox runs the separating axis test over the fifteen candidate axes and writes a
// single contact on the axis of least penetration: a vertex of one box against a face of
// the other, or the closest points of two edges.
func BoxAndBox(one, two *CollisionBox, data *ContactBuffer, limit int) int {
	if !canWrite(data, 0, limit) {
		return 0
	}
	boxOne, boxTwo := one.Box(), two.Box()
	toCentre := rl.Vector3Subtract(two.Position(), one.Position())

	sat := boxSAT{one: boxOne, two: boxTwo, toCentre: toCentre, best: -1, penetration: maxFloat}

	for i := 0; i < 3; i++ {
		if !sat.tryAxis(boxOne.Axes[i], i) {
			return 0
		}
	}
	for i := 0; i < 3; i++ {
		if !sat.tryAxis(boxTwo.Axes[i], i+3) {
			return 0
		}
	}
	// Remember the best face axis in case edges turn out parallel
	bestSingleAxis := sat.best

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !sat.tryAxis(rl.Vector3CrossProduct(boxOne.Axes[i], boxTwo.Axes[j]), 6+i*3+j) {
				return 0
			}
		}
	}
	if sat.best < 0 {
		return 0
	}

	switch {
	case sat.best < 3:
		// Vertex of box two on a face of box one
		fillPointFaceBoxBox(one, two, boxOne, boxTwo, toCentre, data, sat.best, sat.penetration)
	case sat.best < 6:
		// Vertex of box one on a face of box two; swap and flip toCentre
		fillPointFaceBoxBox(two, one, boxTwo, boxOne, rl.Vector3Negate(toCentre), data, sat.best-3, sat.penetration)
	default:
		fillEdgeEdgeBoxBox(one, two, boxOne, boxTwo, toCentre, data, sat.best-6, bestSingleAxis, sat.penetration)
	}
	data.AddContact()
	return 1
}

const maxFloat = float32(3.4e38)

// boxSAT tracks the axis of least overlap during a box/box test.
type boxSAT struct {
	one, two    geometry.Box
	toCentre    rl.Vector3
	best        int
	penetration float32
}

// tryAxis returns false when axis separates the boxes. Near-zero axes from parallel edges
// are skipped.
func (s *boxSAT) tryAxis(axis rl.Vector3, index int) bool {
	if rl.Vector3DotProduct(axis, axis) < 0.0001 {
		return true
	}
	axis = rl.Vector3Normalize(axis)

	penetration := geometry.PenetrationOnAxis(s.one, s.two, axis, s.toCentre)
	if penetration < 0 {
		return false
	}
	if penetration < s.penetration {
		s.penetration = penetration
		s.best = index
	}
	return true
}

// fillPointFaceBoxBox writes a contact for the vertex of two deepest along face axis best
// of one. The contact slot is filled but not committed.
func fillPointFaceBoxBox(one, two *CollisionBox, boxOne, boxTwo geometry.Box, toCentre rl.Vector3, data *ContactBuffer, best int, penetration float32) {
	normal := boxOne.Axes[best]
	if rl.Vector3DotProduct(normal, toCentre) > 0 {
		normal = rl.Vector3Negate(normal)
	}

	// Which vertex of two: the one most towards box one
	vertex := two.HalfSize
	if rl.Vector3DotProduct(boxTwo.Axes[0], normal) < 0 {
		vertex.X = -vertex.X
	}
	if rl.Vector3DotProduct(boxTwo.Axes[1], normal) < 0 {
		vertex.Y = -vertex.Y
	}
	if rl.Vector3DotProduct(boxTwo.Axes[2], normal) < 0 {
		vertex.Z = -vertex.Z
	}

	c := data.NewContact(one.Body, two.Body)
	c.ContactNormal = normal
	c.Penetration = penetration
	c.ContactPoint = boxTwo.ToWorld(vertex)
}

// fillEdgeEdgeBoxBox writes a contact between the closest points of the two edges whose
// cross product gave the best axis.
func fillEdgeEdgeBoxBox(one, two *CollisionBox, boxOne, boxTwo geometry.Box, toCentre rl.Vector3, data *ContactBuffer, best, bestSingleAxis int, penetration float32) {
	oneAxisIndex := best / 3
	twoAxisIndex := best % 3
	oneAxis := boxOne.Axes[oneAxisIndex]
	twoAxis := boxTwo.Axes[twoAxisIndex]
	axis := rl.Vector3Normalize(rl.Vector3CrossProduct(oneAxis, twoAxis))

	// The axis should point from box two to box one
	if rl.Vector3DotProduct(axis, toCentre) > 0 {
		axis = rl.Vector3Negate(axis)
	}

	// Find a point on each edge: the edge midpoint, chosen among the four parallel edges
	ptOnOneEdge := one.HalfSize
	ptOnTwoEdge := two.HalfSize
	for i := 0; i < 3; i++ {
		if i == oneAxisIndex {
			setComponent(&ptOnOneEdge, i, 0)
		} else if rl.Vector3DotProduct(boxOne.Axes[i], axis) > 0 {
			setComponent(&ptOnOneEdge, i, -geometry.Component(ptOnOneEdge, i))
		}

		if i == twoAxisIndex {
			setComponent(&ptOnTwoEdge, i, 0)
		} else if rl.Vector3DotProduct(boxTwo.Axes[i], axis) < 0 {
			setComponent(&ptOnTwoEdge, i, -geometry.Component(ptOnTwoEdge, i))
		}
	}

	vertex := edgeContactPoint(
		boxOne.ToWorld(ptOnOneEdge), oneAxis, geometry.Component(one.HalfSize, oneAxisIndex),
		boxTwo.ToWorld(ptOnTwoEdge), twoAxis, geometry.Component(two.HalfSize, twoAxisIndex),
		bestSingleAxis > 2,
	)

	c := data.NewContact(one.Body, two.Body)
	c.ContactNormal = axis
	c.Penetration = penetration
	c.ContactPoint = vertex
}

// edgeContactPoint returns the midpoint of the closest points of two edges given by a
// midpoint, unit direction and half length. When the closest points fall outside an edge,
// the contact is really vertex/face and the midpoint of the edge picked by useOne is used.
func edgeContactPoint(pOne, dOne rl.Vector3, oneSize float32, pTwo, dTwo rl.Vector3, twoSize float32, useOne bool) rl.Vector3 {
	smOne := rl.Vector3DotProduct(dOne, dOne)
	smTwo := rl.Vector3DotProduct(dTwo, dTwo)
	dpOneTwo := rl.Vector3DotProduct(dTwo, dOne)

	toSt := rl.Vector3Subtract(pOne, pTwo)
	dpStaOne := rl.Vector3DotProduct(dOne, toSt)
	dpStaTwo := rl.Vector3DotProduct(dTwo, toSt)

	denom := smOne*smTwo - dpOneTwo*dpOneTwo
	fallback := pTwo
	if useOne {
		fallback = pOne
	}
	// Parallel edges
	if absf(denom) < 0.0001 {
		return fallback
	}

	mua := (dpOneTwo*dpStaTwo - smTwo*dpStaOne) / denom
	mub := (smOne*dpStaTwo - dpOneTwo*dpStaOne) / denom
	if mua > oneSize || mua < -oneSize || mub > twoSize || mub < -twoSize {
		return fallback
	}

	cOne := rl.Vector3Add(pOne, rl.Vector3Scale(dOne, mua))
	cTwo := rl.Vector3Add(pTwo, rl.Vector3Scale(dTwo, mub))
	return rl.Vector3Scale(rl.Vector3Add(cOne, cTwo), 0.5)
}

func setComponent(v *rl.Vector3, i int, value float32) {
	switch i {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

// SphereAndTriangleSoup generates a contact for every triangle the sphere touches, from the
// closest point on the triangle to the sphere centre.
func SphereAndTriangleSoup(sphere *CollisionSphere, soup *CollisionTriangleSoup, data *ContactBuffer, limit int) int {
	s := sphere.Sphere()
	written := 0
	for _, tri := range soup.WorldTriangles() {
		if !canWrite(data, written, limit) {
			break
		}
		if !geometry.SphereAndTriangle(s, tri) {
			continue
		}

		closest, dist := tri.ClosestPointDistance(s.Center)
		if dist > s.Radius {
			continue
		}

		var normal rl.Vector3
		if dist > geometry.Epsilon {
			normal = rl.Vector3Scale(rl.Vector3Subtract(s.Center, closest), 1/dist)
		} else {
			// Centre on the triangle: push out along the face normal
			normal = tri.Normal
		}

		c := data.NewContact(sphere.Body, soup.Body)
		c.ContactNormal = normal
		c.Penetration = s.Radius - dist
		c.ContactPoint = closest
		data.AddContact()
		written++
	}
	return written
}

// BoxAndTriangleSoup generates contacts for every triangle the box overlaps. Box vertices
// behind the triangle's plane that project inside the triangle become contacts; when none
// do, a single contact is placed at the triangle point closest to the box centre.
func BoxAndTriangleSoup(box *CollisionBox, soup *CollisionTriangleSoup, data *ContactBuffer, limit int) int {
	b := box.Box()
	vertices := b.Vertices()
	written := 0

	for _, tri := range soup.WorldTriangles() {
		if !canWrite(data, written, limit) {
			break
		}
		if tri.Degenerate() || !geometry.BoxAndTriangle(b, tri) {
			continue
		}

		// Face the normal towards the box
		normal := tri.Normal
		offset := -tri.D
		if rl.Vector3DotProduct(normal, b.Center)-offset < 0 {
			normal = rl.Vector3Negate(normal)
			offset = -offset
		}

		found := 0
		for _, v := range vertices {
			distance := rl.Vector3DotProduct(normal, v) - offset
			if distance > 0 {
				continue
			}
			projected := rl.Vector3Subtract(v, rl.Vector3Scale(normal, distance))
			if !tri.PointInTriangle(projected) {
				continue
			}
			if !canWrite(data, written, limit) {
				return written
			}

			c := data.NewContact(box.Body, soup.Body)
			c.ContactNormal = normal
			c.Penetration = -distance
			c.ContactPoint = rl.Vector3Add(v, rl.Vector3Scale(normal, -distance*0.5))
			data.AddContact()
			written++
			found++
		}
		if found > 0 {
			continue
		}

		// An edge or vertex of the triangle is inside the box
		penetration := b.ProjectedRadius(normal) - (rl.Vector3DotProduct(normal, b.Center) - offset)
		if penetration <= 0 || !canWrite(data, written, limit) {
			continue
		}
		c := data.NewContact(box.Body, soup.Body)
		c.ContactNormal = normal
		c.Penetration = penetration
		c.ContactPoint = tri.ClosestPoint(b.Center)
		data.AddContact()
		written++
	}
	return written
}
