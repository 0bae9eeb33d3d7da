package physics

import (
	"errors"
	"log"

	"contact3d/internal/compute"
	"contact3d/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// GPUBroadPhaseThreshold is the minimum bounded primitive count before the GPU broad-phase
// kicks in. Below this the CPU grid is faster due to GPU overhead.
const GPUBroadPhaseThreshold = 750

// MaxGPUBounds is the largest primitive count the GPU broad-phase is sized for.
const MaxGPUBounds = 50000

// World owns bodies and their collision primitives and runs the full
// integrate → detect → resolve cycle.
type World struct {
	Gravity    rl.Vector3
	Bodies     []*RigidBody
	Primitives []Primitive
	// Generators run after the primitive pairs, with whatever buffer space is left.
	Generators []ContactGenerator

	Resolver *ContactResolver
	Buffer   *ContactBuffer
	Grid     *SpatialGrid

	GPUThreshold int
	UseGPU       bool

	gpu     *compute.BroadPhase
	useGPU  bool
	tracker *contactTracker

	// Per-step scratch
	bounds    []geometry.Sphere
	bounded   []int
	unbounded []int
	gpuBounds []compute.Bound
}

func NewWorld() *World {
	return &World{
		Gravity:      rl.Vector3{X: 0, Y: -9.81, Z: 0},
		Resolver:     NewDefaultContactResolver(),
		Buffer:       NewContactBuffer(DefaultContactCapacity),
		Grid:         NewSpatialGrid(DefaultCellSize),
		GPUThreshold: GPUBroadPhaseThreshold,
		tracker:      newContactTracker(),
	}
}

// AddBody registers a body for integration.
func (w *World) AddBody(b *RigidBody) {
	w.Bodies = append(w.Bodies, b)
}

// AddPrimitive registers a collision shape.
func (w *World) AddPrimitive(p Primitive) {
	p.CalculateInternals()
	w.Primitives = append(w.Primitives, p)
}

// AddGenerator registers a custom contact generator.
func (w *World) AddGenerator(g ContactGenerator) {
	w.Generators = append(w.Generators, g)
}

// RemoveBody drops a body and every primitive attached to it. Returns false if the body was
// not in the world.
func (w *World) RemoveBody(b *RigidBody) bool {
	found := false
	for i, body := range w.Bodies {
		if body == b {
			w.Bodies = append(w.Bodies[:i], w.Bodies[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	kept := w.Primitives[:0]
	for _, p := range w.Primitives {
		if owner := p.Owner(); owner != nil && owner == Body(b) {
			continue
		}
		kept = append(kept, p)
	}
	clear(w.Primitives[len(kept):])
	w.Primitives = kept
	return true
}

// InitGPU sets up the GPU broad-phase. Call after compute.Open(); does nothing when no
// compute device is available.
func (w *World) InitGPU() {
	if w.gpu != nil {
		return
	}
	bp, err := compute.NewBroadPhase(MaxGPUBounds, MaxGPUBounds*20)
	if err != nil {
		log.Printf("Physics: GPU broad-phase unavailable: %v", err)
		return
	}
	if bp == nil {
		return
	}
	w.gpu = bp
	log.Printf("Physics: GPU broad-phase ready (threshold: %d primitives)", w.GPUThreshold)
}

// Release frees GPU resources.
func (w *World) Release() {
	if w.gpu != nil {
		w.gpu.Release()
		w.gpu = nil
	}
	w.useGPU = false
}

// UsingGPU reports whether the last step ran the GPU broad-phase.
func (w *World) UsingGPU() bool {
	return w.useGPU
}

// Contacts returns the contacts generated and resolved by the last step.
func (w *World) Contacts() []Contact {
	return w.Buffer.Contacts()
}

// ContactCount is the number of contacts in the last step.
func (w *World) ContactCount() int {
	return w.Buffer.Count()
}

// Step advances the world by duration seconds.
func (w *World) Step(duration float32) {
	if duration <= 0 {
		return
	}

	for _, b := range w.Bodies {
		// Sleeping bodies are skipped; AddForce would wake them
		if !b.IsAwake() {
			continue
		}
		if b.UseGravity && b.HasFiniteMass() {
			b.AddForce(rl.Vector3Scale(w.Gravity, b.Mass()))
		}
		b.Integrate(duration)
	}

	for _, p := range w.Primitives {
		p.CalculateInternals()
	}

	w.Buffer.Reset(0)
	w.generateContacts()
	RunGenerators(w.Buffer, w.Generators)

	contacts := w.Buffer.Contacts()
	w.Resolver.ResolveContacts(contacts, duration)

	for i := range contacts {
		if contacts[i].Penetration >= -w.Buffer.Tolerance {
			w.tracker.record(&contacts[i])
		}
	}
	w.tracker.retain(func(pair bodyPair) bool {
		return !simulated(pair.A) && !simulated(pair.B)
	})
	w.tracker.dispatch()
}

// generateContacts runs the broad-phase and fills the buffer from every candidate pair.
func (w *World) generateContacts() {
	w.collectBounds()

	for _, pair := range w.candidatePairs() {
		if !w.Buffer.HasFreeContacts() {
			return
		}
		w.collide(w.Primitives[w.bounded[pair.A]], w.Primitives[w.bounded[pair.B]])
	}

	// Unbounded shapes have no sphere for the broad-phase, so they meet everything
	for _, u := range w.unbounded {
		plane := w.Primitives[u]
		for _, other := range w.Primitives {
			if other == plane {
				continue
			}
			if !w.Buffer.HasFreeContacts() {
				return
			}
			w.collide(other, plane)
		}
	}
}

func (w *World) collectBounds() {
	w.bounds = w.bounds[:0]
	w.bounded = w.bounded[:0]
	w.unbounded = w.unbounded[:0]
	for i, p := range w.Primitives {
		s, ok := p.Bounds()
		if !ok {
			w.unbounded = append(w.unbounded, i)
			continue
		}
		w.bounds = append(w.bounds, s)
		w.bounded = append(w.bounded, i)
	}
}

// candidatePairs picks the GPU or the grid for this step and returns pairs of indices into
// w.bounds.
func (w *World) candidatePairs() []CandidatePair {
	wasUsingGPU := w.useGPU
	w.useGPU = w.UseGPU && w.gpu != nil && len(w.bounds) >= w.GPUThreshold &&
		len(w.bounds) <= w.gpu.MaxBounds()

	if w.useGPU && !wasUsingGPU {
		log.Printf("Physics: GPU broad-phase ON (%d primitives)", len(w.bounds))
	} else if !w.useGPU && wasUsingGPU {
		log.Printf("Physics: GPU broad-phase OFF (%d primitives)", len(w.bounds))
	}

	if w.useGPU {
		pairs, err := w.gpuPairs()
		if err == nil {
			return pairs
		}
		if !errors.Is(err, compute.ErrPairOverflow) {
			log.Printf("Physics: GPU broad-phase failed, falling back to grid: %v", err)
			w.Release()
		}
	}
	return w.Grid.Pairs(w.bounds)
}

func (w *World) gpuPairs() ([]CandidatePair, error) {
	w.gpuBounds = w.gpuBounds[:0]
	for _, s := range w.bounds {
		w.gpuBounds = append(w.gpuBounds, compute.Bound{
			X: s.Center.X, Y: s.Center.Y, Z: s.Center.Z, Radius: s.Radius,
		})
	}

	found, err := w.gpu.DetectPairs(w.gpuBounds)
	if err != nil {
		return nil, err
	}
	pairs := make([]CandidatePair, len(found))
	for i, p := range found {
		pairs[i] = CandidatePair{A: int(p.A), B: int(p.B)}
	}
	// The shader writes pairs in scheduling order
	sortPairs(pairs)
	return pairs, nil
}

// collide runs the detector for a and b unless nothing in the pair can move.
func (w *World) collide(a, b Primitive) {
	if !CanCollide(a.Shape(), b.Shape()) {
		return
	}
	ownerA, ownerB := a.Owner(), b.Owner()
	if ownerA != nil && ownerA == ownerB {
		return
	}
	if !simulated(ownerA) && !simulated(ownerB) {
		return
	}
	Collide(a, b, w.Buffer, w.Buffer.Remaining())
}

// simulated reports whether a body is awake and movable.
func simulated(b Body) bool {
	return b != nil && b.IsAwake() && b.InverseMass() > 0
}
