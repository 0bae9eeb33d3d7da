package physics

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func approx(a, b, tolerance float32) bool {
	return math.Abs(float64(a-b)) <= float64(tolerance)
}

func vecApprox(a, b rl.Vector3, tolerance float32) bool {
	return approx(a.X, b.X, tolerance) && approx(a.Y, b.Y, tolerance) && approx(a.Z, b.Z, tolerance)
}

// sphereBody creates a floating unit sphere with no gravity.
func sphereBody(x float32) (*RigidBody, *CollisionSphere) {
	body := NewRigidBody(1, rl.Vector3{X: x})
	body.UseGravity = false
	body.SetInertiaTensor(SphereInertia(1, 1))
	body.CalculateDerivedData()
	return body, NewCollisionSphere(body, 1)
}

// recordingObserver keeps the penetrations seen after each position step.
type recordingObserver struct {
	positionIndices []int
	penetrations    [][]float32
	velocityIndices []int
}

func (o *recordingObserver) PositionResolved(iteration, index int, contacts []Contact) {
	o.positionIndices = append(o.positionIndices, index)
	snapshot := make([]float32, len(contacts))
	for i := range contacts {
		snapshot[i] = contacts[i].Penetration
	}
	o.penetrations = append(o.penetrations, snapshot)
}

func (o *recordingObserver) VelocityResolved(iteration, index int, contacts []Contact) {
	o.velocityIndices = append(o.velocityIndices, index)
}

func TestResolverValid(t *testing.T) {
	tests := []struct {
		name     string
		resolver *ContactResolver
		want     bool
	}{
		{"defaults", NewDefaultContactResolver(), true},
		{"zero iterations", NewContactResolver(0, 0.01), false},
		{"negative epsilon", NewContactResolver(10, -1), false},
		{"zero epsilon", NewContactResolver(10, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resolver.Valid(); got != tt.want {
				t.Errorf("Expected Valid() %v, got %v", tt.want, got)
			}
		})
	}

	r := NewDefaultContactResolver()
	r.SetIterations(5, 0)
	if r.Valid() {
		t.Error("Expected zero position iterations to be invalid")
	}
}

func TestResolveContactsInvalidIsNoOp(t *testing.T) {
	a, sa := sphereBody(0)
	b, sb := sphereBody(1.5)
	buf := NewContactBuffer(4)
	SphereAndSphere(sa, sb, buf, 1)

	r := NewContactResolver(0, DefaultEpsilon)
	r.ResolveContacts(buf.Contacts(), 0.016)

	if a.Position().X != 0 || b.Position().X != 1.5 {
		t.Errorf("Expected bodies untouched, got %v and %v", a.Position(), b.Position())
	}
	if buf.Contacts()[0].Penetration != 0.5 {
		t.Errorf("Expected penetration 0.5, got %f", buf.Contacts()[0].Penetration)
	}
	if r.PositionIterationsUsed() != 0 || r.VelocityIterationsUsed() != 0 {
		t.Error("Expected no iterations used")
	}
}

func TestResolveContactsEmpty(t *testing.T) {
	r := NewDefaultContactResolver()
	r.ResolveContacts(nil, 0.016)
	if r.PositionIterationsUsed() != 0 {
		t.Errorf("Expected 0 iterations, got %d", r.PositionIterationsUsed())
	}
}

func TestSphereSphereSeparation(t *testing.T) {
	a, sa := sphereBody(0)
	b, sb := sphereBody(1.5)
	buf := NewContactBuffer(4)
	if n := SphereAndSphere(sa, sb, buf, 1); n != 1 {
		t.Fatalf("Expected 1 contact, got %d", n)
	}

	c := buf.Contacts()[0]
	if !vecApprox(c.ContactNormal, rl.Vector3{X: -1}, 1e-5) {
		t.Errorf("Expected normal (-1,0,0), got %v", c.ContactNormal)
	}
	if !approx(c.Penetration, 0.5, 1e-5) {
		t.Errorf("Expected penetration 0.5, got %f", c.Penetration)
	}

	r := NewDefaultContactResolver()
	r.ResolveContacts(buf.Contacts(), 0.016)

	if !approx(a.Position().X, -0.25, 1e-4) || !approx(b.Position().X, 1.75, 1e-4) {
		t.Errorf("Expected bodies at -0.25 and 1.75, got %f and %f", a.Position().X, b.Position().X)
	}
	if got := buf.Contacts()[0].Penetration; !approx(got, 0, 1e-4) {
		t.Errorf("Expected penetration resolved, got %f", got)
	}
	if r.PositionIterationsUsed() != 1 {
		t.Errorf("Expected 1 position iteration, got %d", r.PositionIterationsUsed())
	}

	// Equal masses with the contact on the centre line never rotate
	if !vecApprox(a.Rotation(), rl.Vector3{}, 1e-6) || !vecApprox(b.Rotation(), rl.Vector3{}, 1e-6) {
		t.Errorf("Expected no rotation, got %v and %v", a.Rotation(), b.Rotation())
	}
}

func TestHeadOnImpactHasNoTangentialVelocity(t *testing.T) {
	a, sa := sphereBody(0)
	b, sb := sphereBody(1.5)
	a.SetVelocity(rl.Vector3{X: 1})
	b.SetVelocity(rl.Vector3{X: -1})

	buf := NewContactBuffer(4)
	SphereAndSphere(sa, sb, buf, 1)

	r := NewDefaultContactResolver()
	r.ResolveContacts(buf.Contacts(), 0.016)

	// Closing speed 2 comes back as 2 * restitution
	want := float32(DefaultRestitution)
	if !approx(a.Velocity().X, -want, 1e-4) || !approx(b.Velocity().X, want, 1e-4) {
		t.Errorf("Expected velocities %f and %f, got %v and %v", -want, want, a.Velocity(), b.Velocity())
	}
	for _, v := range []rl.Vector3{a.Velocity(), b.Velocity()} {
		if !approx(v.Y, 0, 1e-5) || !approx(v.Z, 0, 1e-5) {
			t.Errorf("Expected no tangential velocity, got %v", v)
		}
	}
	if !vecApprox(a.Rotation(), rl.Vector3{}, 1e-5) || !vecApprox(b.Rotation(), rl.Vector3{}, 1e-5) {
		t.Errorf("Expected no spin, got %v and %v", a.Rotation(), b.Rotation())
	}
	if r.VelocityIterationsUsed() != 1 {
		t.Errorf("Expected 1 velocity iteration, got %d", r.VelocityIterationsUsed())
	}
}

func TestFrictionlessHeadOnImpact(t *testing.T) {
	a, sa := sphereBody(0)
	b, sb := sphereBody(1.5)
	a.SetVelocity(rl.Vector3{X: 1})

	buf := NewContactBuffer(4)
	buf.Friction = 0
	buf.Restitution = 1
	SphereAndSphere(sa, sb, buf, 1)

	NewDefaultContactResolver().ResolveContacts(buf.Contacts(), 0.016)

	// A perfectly elastic hit between equal masses swaps velocities
	if !approx(a.Velocity().X, 0, 1e-4) || !approx(b.Velocity().X, 1, 1e-4) {
		t.Errorf("Expected velocities 0 and 1, got %v and %v", a.Velocity(), b.Velocity())
	}
}

func TestPositionChangePropagates(t *testing.T) {
	a, sa := sphereBody(0)
	b, sb := sphereBody(1.8)
	c, sc := sphereBody(3.3)

	buf := NewContactBuffer(4)
	SphereAndSphere(sa, sb, buf, 1)
	SphereAndSphere(sb, sc, buf, 1)
	contacts := buf.Contacts()
	if len(contacts) != 2 {
		t.Fatalf("Expected 2 contacts, got %d", len(contacts))
	}
	if !approx(contacts[0].Penetration, 0.2, 1e-5) || !approx(contacts[1].Penetration, 0.5, 1e-5) {
		t.Fatalf("Unexpected penetrations %f and %f", contacts[0].Penetration, contacts[1].Penetration)
	}

	observer := &recordingObserver{}
	r := NewDefaultContactResolver()
	r.Observer = observer
	r.ResolveContacts(contacts, 0.016)

	if len(observer.positionIndices) == 0 || observer.positionIndices[0] != 1 {
		t.Fatalf("Expected the deeper contact first, got %v", observer.positionIndices)
	}
	first := observer.penetrations[0]
	// Pushing B out of C drives it further into A
	if !approx(first[0], 0.45, 1e-4) {
		t.Errorf("Expected first contact penetration 0.45 after one step, got %f", first[0])
	}
	if !approx(first[1], 0, 1e-4) {
		t.Errorf("Expected second contact resolved after one step, got %f", first[1])
	}

	if len(observer.positionIndices) < 3 {
		t.Errorf("Expected several iterations, got %d", len(observer.positionIndices))
	}
	if r.PositionIterationsUsed() != len(observer.positionIndices) {
		t.Errorf("Expected %d iterations, got %d", len(observer.positionIndices), r.PositionIterationsUsed())
	}
	for i := range contacts {
		if contacts[i].Penetration > r.PositionEpsilon {
			t.Errorf("Contact %d: expected penetration <= %f, got %f", i, r.PositionEpsilon, contacts[i].Penetration)
		}
	}
	if !(a.Position().X < 0 && c.Position().X > 3.3) {
		t.Errorf("Expected outer bodies pushed apart, got %v and %v", a.Position(), c.Position())
	}
	if len(observer.velocityIndices) != 0 {
		t.Errorf("Expected no velocity work for resting bodies, got %v", observer.velocityIndices)
	}
}

func TestIterationLimit(t *testing.T) {
	_, sa := sphereBody(0)
	_, sb := sphereBody(1.8)
	_, sc := sphereBody(3.3)

	buf := NewContactBuffer(4)
	SphereAndSphere(sa, sb, buf, 1)
	SphereAndSphere(sb, sc, buf, 1)

	r := NewContactResolver(1, DefaultEpsilon)
	r.ResolveContacts(buf.Contacts(), 0.016)

	if r.PositionIterationsUsed() != 1 {
		t.Errorf("Expected 1 position iteration, got %d", r.PositionIterationsUsed())
	}
	if got := buf.Contacts()[0].Penetration; !approx(got, 0.45, 1e-4) {
		t.Errorf("Expected unresolved penetration 0.45, got %f", got)
	}
}

func TestContactAgainstWorldGeometry(t *testing.T) {
	body, sphere := sphereBody(0)
	body.SetPosition(rl.Vector3{Y: 0.8})
	sphere.CalculateInternals()
	body.SetVelocity(rl.Vector3{Y: -2})
	ground := NewCollisionPlane(rl.Vector3{Y: 1}, 0)

	buf := NewContactBuffer(4)
	if n := Collide(sphere, ground, buf, 4); n != 1 {
		t.Fatalf("Expected 1 contact, got %d", n)
	}
	if buf.Contacts()[0].Bodies[1] != nil {
		t.Fatal("Expected no second body against a plane")
	}

	NewDefaultContactResolver().ResolveContacts(buf.Contacts(), 0.016)

	if !approx(body.Position().Y, 1, 1e-4) {
		t.Errorf("Expected body lifted to 1, got %f", body.Position().Y)
	}
	if body.Velocity().Y <= 0 {
		t.Errorf("Expected upward bounce, got %v", body.Velocity())
	}
}

func TestMatchAwakeState(t *testing.T) {
	a, _ := sphereBody(0)
	b, _ := sphereBody(1.5)
	b.SetAwake(false)

	c := Contact{}
	c.SetBodyData(a, b, 0, 0)
	c.MatchAwakeState()
	if !b.IsAwake() {
		t.Error("Expected sleeping body to be woken by an awake one")
	}

	// Static bodies never wake or are woken
	ground := NewStaticBody(rl.Vector3{})
	b.SetAwake(false)
	c.SetBodyData(ground, b, 0, 0)
	c.MatchAwakeState()
	if b.IsAwake() || ground.IsAwake() {
		t.Error("Expected contact with a static body to leave sleep state alone")
	}
}

func TestCalculateInternalsSwapsMissingFirstBody(t *testing.T) {
	body, _ := sphereBody(0)
	c := Contact{ContactNormal: rl.Vector3{Y: 1}, ContactPoint: rl.Vector3{Y: -1}}
	c.SetBodyData(nil, body, 0, 0)

	c.CalculateInternals(0.016)

	if c.Bodies[0] != Body(body) || c.Bodies[1] != nil {
		t.Fatalf("Expected body moved to slot 0, got %v", c.Bodies)
	}
	if !vecApprox(c.ContactNormal, rl.Vector3{Y: -1}, 1e-6) {
		t.Errorf("Expected flipped normal, got %v", c.ContactNormal)
	}
}
