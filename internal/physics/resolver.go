package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Resolver defaults
const (
	DefaultIterations = 2048
	DefaultEpsilon    = 0.01
)

// Observer is told about every contact the resolver settles, after the change has been
// propagated to the other contacts.
type Observer interface {
	PositionResolved(iteration, index int, contacts []Contact)
	VelocityResolved(iteration, index int, contacts []Contact)
}

// ContactResolver settles a batch of contacts. Each call first removes interpenetration,
// always working on the deepest contact, then removes closing velocity, always working on
// the contact with the largest velocity deficit. Every correction is pushed into the other
// contacts that share a body before the next pick.
type ContactResolver struct {
	VelocityIterations int
	PositionIterations int
	// Values at or below the epsilons count as resolved.
	VelocityEpsilon float32
	PositionEpsilon float32

	Observer Observer

	velocityIterationsUsed int
	positionIterationsUsed int
}

// NewContactResolver uses the same limits for both phases.
func NewContactResolver(iterations int, epsilon float32) *ContactResolver {
	return &ContactResolver{
		VelocityIterations: iterations,
		PositionIterations: iterations,
		VelocityEpsilon:    epsilon,
		PositionEpsilon:    epsilon,
	}
}

// NewDefaultContactResolver uses DefaultIterations and DefaultEpsilon.
func NewDefaultContactResolver() *ContactResolver {
	return NewContactResolver(DefaultIterations, DefaultEpsilon)
}

// SetIterations sets both iteration limits.
func (r *ContactResolver) SetIterations(velocity, position int) {
	r.VelocityIterations = velocity
	r.PositionIterations = position
}

// SetEpsilon sets both resolution thresholds.
func (r *ContactResolver) SetEpsilon(velocity, position float32) {
	r.VelocityEpsilon = velocity
	r.PositionEpsilon = position
}

// Valid reports whether the settings allow resolution.
func (r *ContactResolver) Valid() bool {
	return r.VelocityIterations > 0 &&
		r.PositionIterations > 0 &&
		r.VelocityEpsilon >= 0 &&
		r.PositionEpsilon >= 0
}

// PositionIterationsUsed is the number of position corrections made by the last call.
func (r *ContactResolver) PositionIterationsUsed() int { return r.positionIterationsUsed }

// VelocityIterationsUsed is the number of impulses applied by the last call.
func (r *ContactResolver) VelocityIterationsUsed() int { return r.velocityIterationsUsed }

// ResolveContacts resolves contacts in place and moves their bodies. Empty input or invalid
// settings do nothing.
func (r *ContactResolver) ResolveContacts(contacts []Contact, duration float32) {
	r.positionIterationsUsed = 0
	r.velocityIterationsUsed = 0
	if len(contacts) == 0 || !r.Valid() {
		return
	}

	r.PrepareContacts(contacts, duration)
	r.AdjustPositions(contacts, duration)
	r.AdjustVelocities(contacts, duration)
}

// PrepareContacts computes the per-contact caches.
func (r *ContactResolver) PrepareContacts(contacts []Contact, duration float32) {
	for i := range contacts {
		contacts[i].CalculateInternals(duration)
	}
}

// AdjustPositions runs the penetration phase.
func (r *ContactResolver) AdjustPositions(contacts []Contact, duration float32) {
	var linearChange, angularChange [2]rl.Vector3

	for r.positionIterationsUsed < r.PositionIterations {
		// Deepest contact; ties go to the lowest index
		index := -1
		max := r.PositionEpsilon
		for i := range contacts {
			if contacts[i].Penetration > max {
				max = contacts[i].Penetration
				index = i
			}
		}
		if index < 0 {
			break
		}

		resolved := &contacts[index]
		resolved.MatchAwakeState()
		resolved.ApplyPositionChange(&linearChange, &angularChange, max)

		// The bodies moved: refresh every contact that touches them, the resolved one included
		for i := range contacts {
			c := &contacts[i]
			for b := 0; b < 2; b++ {
				if c.Bodies[b] == nil {
					continue
				}
				for d := 0; d < 2; d++ {
					if c.Bodies[b] != resolved.Bodies[d] {
						continue
					}
					deltaPosition := rl.Vector3Add(linearChange[d],
						rl.Vector3CrossProduct(angularChange[d], c.RelativeContactPosition[b]))

					// Moving body 0 along the normal separates; moving body 1 closes
					sign := float32(1)
					if b == 0 {
						sign = -1
					}
					c.Penetration += rl.Vector3DotProduct(deltaPosition, c.ContactNormal) * sign
				}
			}
		}

		if r.Observer != nil {
			r.Observer.PositionResolved(r.positionIterationsUsed, index, contacts)
		}
		r.positionIterationsUsed++
	}
}

// AdjustVelocities runs the impulse phase.
func (r *ContactResolver) AdjustVelocities(contacts []Contact, duration float32) {
	var velocityChange, rotationChange [2]rl.Vector3

	for r.velocityIterationsUsed < r.VelocityIterations {
		// Largest velocity deficit; ties go to the lowest index
		index := -1
		max := r.VelocityEpsilon
		for i := range contacts {
			if contacts[i].DesiredDeltaVelocity > max {
				max = contacts[i].DesiredDeltaVelocity
				index = i
			}
		}
		if index < 0 {
			break
		}

		resolved := &contacts[index]
		resolved.MatchAwakeState()
		resolved.ApplyVelocityChange(&velocityChange, &rotationChange)

		for i := range contacts {
			c := &contacts[i]
			for b := 0; b < 2; b++ {
				if c.Bodies[b] == nil {
					continue
				}
				for d := 0; d < 2; d++ {
					if c.Bodies[b] != resolved.Bodies[d] {
						continue
					}
					deltaVel := rl.Vector3Add(velocityChange[d],
						rl.Vector3CrossProduct(rotationChange[d], c.RelativeContactPosition[b]))

					// Contact velocity is body 0 relative to body 1
					sign := float32(1)
					if b == 1 {
						sign = -1
					}
					c.ContactVelocity = rl.Vector3Add(c.ContactVelocity,
						rl.Vector3Scale(transformTranspose(c.ContactToWorld, deltaVel), sign))
					c.CalculateDesiredDeltaVelocity(duration)
				}
			}
		}

		if r.Observer != nil {
			r.Observer.VelocityResolved(r.velocityIterationsUsed, index, contacts)
		}
		r.velocityIterationsUsed++
	}
}
