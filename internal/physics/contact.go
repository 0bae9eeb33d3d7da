package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// angularLimit caps the rotational share of a position correction, as a fraction of the
	// contact's lever arm in the contact plane.
	angularLimit = 0.2
	// velocityLimit is the closing speed below which restitution is ignored, so resting
	// contacts do not bounce.
	velocityLimit = 0.25
)

// Contact is a single point of touching between two bodies. Bodies[1] is nil for contacts
// against immovable world geometry.
type Contact struct {
	Bodies [2]Body

	ContactPoint rl.Vector3
	// ContactNormal points from Bodies[1] into Bodies[0].
	ContactNormal rl.Vector3
	Penetration   float32

	Friction    float32
	Restitution float32

	// Derived by CalculateInternals and kept current by the resolver.
	ContactToWorld          mgl32.Mat3
	RelativeContactPosition [2]rl.Vector3
	ContactVelocity         rl.Vector3
	DesiredDeltaVelocity    float32
}

// SetBodyData stamps the bodies and surface parameters.
func (c *Contact) SetBodyData(one, two Body, friction, restitution float32) {
	c.Bodies[0] = one
	c.Bodies[1] = two
	c.Friction = friction
	c.Restitution = restitution
}

// swapBodies exchanges the two bodies and flips the normal to keep it pointing into slot 0.
func (c *Contact) swapBodies() {
	c.ContactNormal = rl.Vector3Negate(c.ContactNormal)
	c.Bodies[0], c.Bodies[1] = c.Bodies[1], c.Bodies[0]
}

// MatchAwakeState wakes a sleeping body touching an awake one. Contacts with world geometry
// or an immovable body never change anything.
func (c *Contact) MatchAwakeState() {
	a, b := c.Bodies[0], c.Bodies[1]
	if a == nil || b == nil {
		return
	}
	if a.InverseMass() == 0 || b.InverseMass() == 0 {
		return
	}
	awakeA, awakeB := a.IsAwake(), b.IsAwake()
	if awakeA == awakeB {
		return
	}
	if awakeA {
		b.SetAwake(true)
	} else {
		a.SetAwake(true)
	}
}

// CalculateInternals fills the basis, relative positions, contact velocity and desired
// velocity change. A contact with only a second body is swapped first.
func (c *Contact) CalculateInternals(duration float32) {
	if c.Bodies[0] == nil {
		c.swapBodies()
	}
	if c.Bodies[0] == nil {
		return
	}

	c.ContactToWorld = contactBasis(c.ContactNormal)

	c.RelativeContactPosition[0] = rl.Vector3Subtract(c.ContactPoint, c.Bodies[0].Position())
	if c.Bodies[1] != nil {
		c.RelativeContactPosition[1] = rl.Vector3Subtract(c.ContactPoint, c.Bodies[1].Position())
	} else {
		c.RelativeContactPosition[1] = rl.Vector3{}
	}

	c.ContactVelocity = c.localVelocity(0, duration)
	if c.Bodies[1] != nil {
		c.ContactVelocity = rl.Vector3Subtract(c.ContactVelocity, c.localVelocity(1, duration))
	}

	c.CalculateDesiredDeltaVelocity(duration)
}

// localVelocity is the velocity of the contact point on body i in contact space. Velocity
// gained from last frame's acceleration is kept only in the tangent plane.
func (c *Contact) localVelocity(i int, duration float32) rl.Vector3 {
	body := c.Bodies[i]

	velocity := rl.Vector3Add(rl.Vector3CrossProduct(body.Rotation(), c.RelativeContactPosition[i]), body.Velocity())
	contactVelocity := transformTranspose(c.ContactToWorld, velocity)

	accVelocity := transformTranspose(c.ContactToWorld, rl.Vector3Scale(body.LastFrameAcceleration(), duration))
	accVelocity.X = 0

	return rl.Vector3Add(contactVelocity, accVelocity)
}

// CalculateDesiredDeltaVelocity sets the closing-velocity change needed to honour
// restitution. Slow contacts get no bounce, and velocity built up by last frame's
// acceleration is removed from the bounce.
func (c *Contact) CalculateDesiredDeltaVelocity(duration float32) {
	var velocityFromAcc float32
	if c.Bodies[0] != nil && c.Bodies[0].IsAwake() {
		velocityFromAcc += rl.Vector3DotProduct(rl.Vector3Scale(c.Bodies[0].LastFrameAcceleration(), duration), c.ContactNormal)
	}
	if c.Bodies[1] != nil && c.Bodies[1].IsAwake() {
		velocityFromAcc -= rl.Vector3DotProduct(rl.Vector3Scale(c.Bodies[1].LastFrameAcceleration(), duration), c.ContactNormal)
	}

	restitution := c.Restitution
	if absf(c.ContactVelocity.X) < velocityLimit {
		restitution = 0
	}

	c.DesiredDeltaVelocity = -c.ContactVelocity.X - restitution*(c.ContactVelocity.X-velocityFromAcc)
}

// ApplyVelocityChange applies the impulse that removes DesiredDeltaVelocity and reports the
// velocity and rotation change of each body. Entries for a missing body are zero.
func (c *Contact) ApplyVelocityChange(velocityChange, rotationChange *[2]rl.Vector3) {
	*velocityChange = [2]rl.Vector3{}
	*rotationChange = [2]rl.Vector3{}
	if c.Bodies[0] == nil {
		return
	}

	var inverseInertia [2]mgl32.Mat3
	inverseInertia[0] = c.Bodies[0].InverseInertiaTensorWorld()
	if c.Bodies[1] != nil {
		inverseInertia[1] = c.Bodies[1].InverseInertiaTensorWorld()
	}

	var impulseContact rl.Vector3
	if c.Friction == 0 {
		impulseContact = c.frictionlessImpulse(inverseInertia)
	} else {
		impulseContact = c.frictionImpulse(inverseInertia)
	}
	impulse := transformVector(c.ContactToWorld, impulseContact)

	// Body 0 takes the impulse, body 1 the reaction
	torque := rl.Vector3CrossProduct(c.RelativeContactPosition[0], impulse)
	rotationChange[0] = transformVector(inverseInertia[0], torque)
	velocityChange[0] = rl.Vector3Scale(impulse, c.Bodies[0].InverseMass())
	c.Bodies[0].AddVelocity(velocityChange[0])
	c.Bodies[0].AddRotation(rotationChange[0])

	if c.Bodies[1] != nil {
		torque = rl.Vector3CrossProduct(impulse, c.RelativeContactPosition[1])
		rotationChange[1] = transformVector(inverseInertia[1], torque)
		velocityChange[1] = rl.Vector3Scale(impulse, -c.Bodies[1].InverseMass())
		c.Bodies[1].AddVelocity(velocityChange[1])
		c.Bodies[1].AddRotation(rotationChange[1])
	}
}

// frictionlessImpulse returns a contact-space impulse along the normal only.
func (c *Contact) frictionlessImpulse(inverseInertia [2]mgl32.Mat3) rl.Vector3 {
	deltaVelocity := c.normalVelocityPerImpulse(0, inverseInertia[0])
	if c.Bodies[1] != nil {
		deltaVelocity += c.normalVelocityPerImpulse(1, inverseInertia[1])
	}
	if deltaVelocity == 0 {
		return rl.Vector3{}
	}
	return rl.Vector3{X: c.DesiredDeltaVelocity / deltaVelocity}
}

// normalVelocityPerImpulse is the normal velocity change of body i for a unit impulse
// along the normal.
func (c *Contact) normalVelocityPerImpulse(i int, inverseInertia mgl32.Mat3) float32 {
	rel := c.RelativeContactPosition[i]
	deltaVelWorld := rl.Vector3CrossProduct(rel, c.ContactNormal)
	deltaVelWorld = transformVector(inverseInertia, deltaVelWorld)
	deltaVelWorld = rl.Vector3CrossProduct(deltaVelWorld, rel)
	return rl.Vector3DotProduct(deltaVelWorld, c.ContactNormal) + c.Bodies[i].InverseMass()
}

// frictionImpulse solves for the impulse that removes the normal velocity deficit and all
// sliding, then clamps the planar part to the friction cone.
func (c *Contact) frictionImpulse(inverseInertia [2]mgl32.Mat3) rl.Vector3 {
	inverseMass := c.Bodies[0].InverseMass()

	// Velocity per unit impulse in world space, through the skew (cross product) matrices
	impulseToTorque := skewSymmetric(c.RelativeContactPosition[0])
	deltaVelWorld := impulseToTorque.Mul3(inverseInertia[0]).Mul3(impulseToTorque).Mul(-1)

	if c.Bodies[1] != nil {
		impulseToTorque = skewSymmetric(c.RelativeContactPosition[1])
		deltaVelWorld = deltaVelWorld.Add(impulseToTorque.Mul3(inverseInertia[1]).Mul3(impulseToTorque).Mul(-1))
		inverseMass += c.Bodies[1].InverseMass()
	}

	// Into contact space, then add the linear part
	deltaVelocity := c.ContactToWorld.Transpose().Mul3(deltaVelWorld).Mul3(c.ContactToWorld)
	deltaVelocity.Set(0, 0, deltaVelocity.At(0, 0)+inverseMass)
	deltaVelocity.Set(1, 1, deltaVelocity.At(1, 1)+inverseMass)
	deltaVelocity.Set(2, 2, deltaVelocity.At(2, 2)+inverseMass)

	if deltaVelocity.Det() == 0 {
		return rl.Vector3{}
	}
	impulseMatrix := deltaVelocity.Inv()

	velKill := mgl32.Vec3{c.DesiredDeltaVelocity, -c.ContactVelocity.Y, -c.ContactVelocity.Z}
	impulseContact := fromVec3(impulseMatrix.Mul3x1(velKill))

	planarImpulse := sqrtf(impulseContact.Y*impulseContact.Y + impulseContact.Z*impulseContact.Z)
	if planarImpulse > impulseContact.X*c.Friction {
		// Dynamic friction: slide along the planar direction with the cone's maximum
		impulseContact.Y /= planarImpulse
		impulseContact.Z /= planarImpulse

		normalResponse := deltaVelocity.At(0, 0) +
			deltaVelocity.At(0, 1)*c.Friction*impulseContact.Y +
			deltaVelocity.At(0, 2)*c.Friction*impulseContact.Z
		if normalResponse == 0 {
			return rl.Vector3{}
		}
		impulseContact.X = c.DesiredDeltaVelocity / normalResponse
		impulseContact.Y *= c.Friction * impulseContact.X
		impulseContact.Z *= c.Friction * impulseContact.X
	}
	return impulseContact
}

// ApplyPositionChange resolves penetration by moving and turning the bodies in proportion to
// their inverse inertia, and reports each body's linear and angular change. Rotation is
// limited relative to the lever arm so contacts near the centre do not spin the body.
func (c *Contact) ApplyPositionChange(linearChange, angularChange *[2]rl.Vector3, penetration float32) {
	*linearChange = [2]rl.Vector3{}
	*angularChange = [2]rl.Vector3{}

	var linearInertia, angularInertia [2]float32
	var totalInertia float32

	for i := 0; i < 2; i++ {
		body := c.Bodies[i]
		if body == nil {
			continue
		}
		inverseInertia := body.InverseInertiaTensorWorld()

		angularInertiaWorld := rl.Vector3CrossProduct(c.RelativeContactPosition[i], c.ContactNormal)
		angularInertiaWorld = transformVector(inverseInertia, angularInertiaWorld)
		angularInertiaWorld = rl.Vector3CrossProduct(angularInertiaWorld, c.RelativeContactPosition[i])
		angularInertia[i] = rl.Vector3DotProduct(angularInertiaWorld, c.ContactNormal)

		linearInertia[i] = body.InverseMass()
		totalInertia += linearInertia[i] + angularInertia[i]
	}

	if totalInertia == 0 {
		return
	}

	for i := 0; i < 2; i++ {
		body := c.Bodies[i]
		if body == nil {
			continue
		}

		sign := float32(1)
		if i == 1 {
			sign = -1
		}
		angularMove := sign * penetration * (angularInertia[i] / totalInertia)
		linearMove := sign * penetration * (linearInertia[i] / totalInertia)

		// Limit the angular move to a fraction of the lever arm in the contact plane
		rel := c.RelativeContactPosition[i]
		projection := rl.Vector3Add(rel, rl.Vector3Scale(c.ContactNormal, -rl.Vector3DotProduct(rel, c.ContactNormal)))
		maxMagnitude := angularLimit * rl.Vector3Length(projection)

		if angularMove < -maxMagnitude {
			total := angularMove + linearMove
			angularMove = -maxMagnitude
			linearMove = total - angularMove
		} else if angularMove > maxMagnitude {
			total := angularMove + linearMove
			angularMove = maxMagnitude
			linearMove = total - angularMove
		}

		if angularMove != 0 && angularInertia[i] != 0 {
			target := rl.Vector3CrossProduct(rel, c.ContactNormal)
			perMove := transformVector(body.InverseInertiaTensorWorld(), target)
			angularChange[i] = rl.Vector3Scale(perMove, angularMove/angularInertia[i])
		}
		linearChange[i] = rl.Vector3Scale(c.ContactNormal, linearMove)

		body.Translate(linearChange[i])
		body.Rotate(angularChange[i])
		body.CalculateDerivedData()
	}
}
