package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Sleep thresholds
const (
	SleepEpsilon      = 0.3 // averaged squared speed below which a body falls asleep
	DefaultDamping    = 0.99
	motionCapMultiple = 10
)

// Body is what the contact resolver reads from and writes to.
type Body interface {
	Position() rl.Vector3
	Transform() rl.Matrix
	InverseMass() float32
	InverseInertiaTensorWorld() mgl32.Mat3
	Velocity() rl.Vector3
	Rotation() rl.Vector3
	LastFrameAcceleration() rl.Vector3

	// Translate moves the body; Rotate turns it by a scaled rotation vector.
	Translate(delta rl.Vector3)
	Rotate(delta rl.Vector3)
	AddVelocity(delta rl.Vector3)
	AddRotation(delta rl.Vector3)

	IsAwake() bool
	SetAwake(awake bool)
	CalculateDerivedData()

	Kind() BodyKind
	Reactor() ContactReactor
}

// RigidBody is a rigid body integrated with semi-implicit Euler.
type RigidBody struct {
	// Acceleration is constant acceleration applied every step on top of the world's gravity.
	Acceleration   rl.Vector3
	LinearDamping  float32 // fraction of velocity kept per second
	AngularDamping float32
	UseGravity     bool
	CanSleep       bool
	Name           string
	ContactReactor ContactReactor

	position    rl.Vector3
	orientation rl.Quaternion
	velocity    rl.Vector3
	rotation    rl.Vector3 // radians per second

	inverseMass               float32
	inverseInertiaTensor      mgl32.Mat3
	inverseInertiaTensorWorld mgl32.Mat3

	forceAccum            rl.Vector3
	torqueAccum           rl.Vector3
	lastFrameAcceleration rl.Vector3

	transform rl.Matrix
	kind      BodyKind

	awake  bool
	motion float32
}

// NewRigidBody creates an awake dynamic body of the given mass at position. The inertia
// tensor defaults to that of a unit sphere.
func NewRigidBody(mass float32, position rl.Vector3) *RigidBody {
	b := &RigidBody{
		LinearDamping:  DefaultDamping,
		AngularDamping: DefaultDamping,
		UseGravity:     true,
		CanSleep:       true,
		position:       position,
		orientation:    rl.QuaternionIdentity(),
		kind:           BodyDynamic,
	}
	b.SetMass(mass)
	b.SetInertiaTensor(SphereInertia(mass, 1))
	b.SetAwake(true)
	b.CalculateDerivedData()
	return b
}

// NewStaticBody creates an immovable body (infinite mass, no inertia).
func NewStaticBody(position rl.Vector3) *RigidBody {
	b := &RigidBody{
		position:    position,
		orientation: rl.QuaternionIdentity(),
		kind:        BodyStatic,
	}
	b.CalculateDerivedData()
	return b
}

func (b *RigidBody) Position() rl.Vector3 { return b.position }
func (b *RigidBody) Orientation() rl.Quaternion { return b.orientation }
func (b *RigidBody) Transform() rl.Matrix { return b.transform }
func (b *RigidBody) InverseMass() float32 { return b.inverseMass }
func (b *RigidBody) InverseInertiaTensorWorld() mgl32.Mat3 { return b.inverseInertiaTensorWorld }
func (b *RigidBody) Velocity() rl.Vector3 { return b.velocity }
func (b *RigidBody) Rotation() rl.Vector3 { return b.rotation }
func (b *RigidBody) LastFrameAcceleration() rl.Vector3 { return b.lastFrameAcceleration }
func (b *RigidBody) IsAwake() bool { return b.awake }
func (b *RigidBody) Kind() BodyKind { return b.kind }
func (b *RigidBody) Reactor() ContactReactor { return b.ContactReactor }
func (b *RigidBody) HasFiniteMass() bool { return b.inverseMass > 0 }
func (b *RigidBody) AddVelocity(delta rl.Vector3) { b.velocity = rl.Vector3Add(b.velocity, delta) }
func (b *RigidBody) AddRotation(delta rl.Vector3) { b.rotation = rl.Vector3Add(b.rotation, delta) }
func (b *RigidBody) SetVelocity(v rl.Vector3) { b.velocity = v }
func (b *RigidBody) SetRotation(r rl.Vector3) { b.rotation = r }
func (b *RigidBody) SetKind(kind BodyKind) { b.kind = kind }
func (b *RigidBody) SetInverseInertiaTensor(inv mgl32.Mat3) { b.inverseInertiaTensor = inv }

// SetMass sets the mass; zero or negative mass makes the body immovable.
func (b *RigidBody) SetMass(mass float32) {
	if mass <= 0 {
		b.inverseMass = 0
		return
	}
	b.inverseMass = 1 / mass
}

// Mass returns the body's mass, or 0 for an immovable body.
func (b *RigidBody) Mass() float32 {
	if b.inverseMass == 0 {
		return 0
	}
	return 1 / b.inverseMass
}

// SetInertiaTensor sets the body-space inertia tensor.
func (b *RigidBody) SetInertiaTensor(tensor mgl32.Mat3) {
	if tensor.Det() == 0 {
		b.inverseInertiaTensor = mgl32.Mat3{}
		return
	}
	b.inverseInertiaTensor = tensor.Inv()
}

// SetPosition moves the body and refreshes its transform.
func (b *RigidBody) SetPosition(p rl.Vector3) {
	b.position = p
	b.CalculateDerivedData()
}

// SetOrientation sets and normalizes the orientation.
func (b *RigidBody) SetOrientation(q rl.Quaternion) {
	b.orientation = q
	b.CalculateDerivedData()
}

// Translate implements Body.
func (b *RigidBody) Translate(delta rl.Vector3) {
	b.position = rl.Vector3Add(b.position, delta)
}

// Rotate implements Body.
func (b *RigidBody) Rotate(delta rl.Vector3) {
	b.orientation = addScaledVector(b.orientation, delta, 1)
}

// SetAwake wakes or puts the body to sleep. Sleeping bodies lose their velocity.
func (b *RigidBody) SetAwake(awake bool) {
	if awake {
		b.awake = true
		// Give the body a little motion so it does not fall straight back asleep
		b.motion = SleepEpsilon * 2
		return
	}
	b.awake = false
	b.velocity = rl.Vector3{}
	b.rotation = rl.Vector3{}
}

// AddForce applies a force through the centre of mass until the next Integrate.
func (b *RigidBody) AddForce(force rl.Vector3) {
	b.forceAccum = rl.Vector3Add(b.forceAccum, force)
	b.wake()
}

// AddForceAtPoint applies a world-space force at a world-space point.
func (b *RigidBody) AddForceAtPoint(force, point rl.Vector3) {
	arm := rl.Vector3Subtract(point, b.position)
	b.forceAccum = rl.Vector3Add(b.forceAccum, force)
	b.torqueAccum = rl.Vector3Add(b.torqueAccum, rl.Vector3CrossProduct(arm, force))
	b.wake()
}

// AddTorque applies a world-space torque until the next Integrate.
func (b *RigidBody) AddTorque(torque rl.Vector3) {
	b.torqueAccum = rl.Vector3Add(b.torqueAccum, torque)
	b.wake()
}

// ClearAccumulators drops pending forces and torques.
func (b *RigidBody) ClearAccumulators() {
	b.forceAccum = rl.Vector3{}
	b.torqueAccum = rl.Vector3{}
}

// CalculateDerivedData rebuilds the transform and world inverse inertia tensor.
func (b *RigidBody) CalculateDerivedData() {
	b.orientation = rl.QuaternionNormalize(b.orientation)
	b.transform = rl.MatrixMultiply(rl.QuaternionToMatrix(b.orientation), rl.MatrixTranslate(b.position.X, b.position.Y, b.position.Z))

	rot := rotationOf(b.transform)
	b.inverseInertiaTensorWorld = rot.Mul3(b.inverseInertiaTensor).Mul3(rot.Transpose())
}

// Integrate advances the body by duration seconds. Sleeping bodies are left alone.
func (b *RigidBody) Integrate(duration float32) {
	if !b.awake {
		return
	}

	// Linear and angular acceleration from accumulated forces
	b.lastFrameAcceleration = rl.Vector3Add(b.Acceleration, rl.Vector3Scale(b.forceAccum, b.inverseMass))
	angularAcceleration := transformVector(b.inverseInertiaTensorWorld, b.torqueAccum)

	b.velocity = rl.Vector3Add(b.velocity, rl.Vector3Scale(b.lastFrameAcceleration, duration))
	b.rotation = rl.Vector3Add(b.rotation, rl.Vector3Scale(angularAcceleration, duration))

	// Damping is per second so it stays framerate independent
	b.velocity = rl.Vector3Scale(b.velocity, powf(b.LinearDamping, duration))
	b.rotation = rl.Vector3Scale(b.rotation, powf(b.AngularDamping, duration))

	b.position = rl.Vector3Add(b.position, rl.Vector3Scale(b.velocity, duration))
	b.orientation = addScaledVector(b.orientation, b.rotation, duration)

	b.CalculateDerivedData()
	b.ClearAccumulators()

	if b.CanSleep {
		current := rl.Vector3DotProduct(b.velocity, b.velocity) + rl.Vector3DotProduct(b.rotation, b.rotation)
		bias := powf(0.5, duration)
		b.motion = bias*b.motion + (1-bias)*current

		if b.motion < SleepEpsilon {
			b.SetAwake(false)
		} else if b.motion > motionCapMultiple*SleepEpsilon {
			b.motion = motionCapMultiple * SleepEpsilon
		}
	}
}

func (b *RigidBody) wake() {
	if !b.awake {
		b.SetAwake(true)
	}
}

// addScaledVector turns q by the rotation vector v*scale.
func addScaledVector(q rl.Quaternion, v rl.Vector3, scale float32) rl.Quaternion {
	spin := rl.Quaternion{X: v.X * scale, Y: v.Y * scale, Z: v.Z * scale, W: 0}
	spin = rl.QuaternionMultiply(spin, q)
	return rl.Quaternion{
		X: q.X + spin.X*0.5,
		Y: q.Y + spin.Y*0.5,
		Z: q.Z + spin.Z*0.5,
		W: q.W + spin.W*0.5,
	}
}
