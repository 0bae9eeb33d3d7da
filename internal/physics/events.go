package physics

// BodyKind tags what a body represents so contact reactions can branch without
// inspecting concrete types.
type BodyKind int

const (
	BodyDynamic BodyKind = iota
	BodyStatic
	BodyVehicle
	BodyProjectile
)

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyStatic:
		return "static"
	case BodyVehicle:
		return "vehicle"
	case BodyProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// ContactReactor receives contact enter/exit notifications for the body that carries it.
// other is nil when the contact is against world geometry.
type ContactReactor interface {
	OnContactEnter(other Body, kind BodyKind)
	OnContactExit(other Body, kind BodyKind)
}

// ContactReactorFuncs adapts plain functions to ContactReactor. Nil fields are skipped.
type ContactReactorFuncs struct {
	Enter func(other Body, kind BodyKind)
	Exit  func(other Body, kind BodyKind)
}

func (f ContactReactorFuncs) OnContactEnter(other Body, kind BodyKind) {
	if f.Enter != nil {
		f.Enter(other, kind)
	}
}

func (f ContactReactorFuncs) OnContactExit(other Body, kind BodyKind) {
	if f.Exit != nil {
		f.Exit(other, kind)
	}
}

// bodyPair is an unordered pair of bodies touching this step.
type bodyPair struct {
	A, B Body
}

// contactTracker diffs the touching pairs of consecutive steps.
type contactTracker struct {
	order   []bodyPair
	active  map[bodyPair]bool
	current map[bodyPair]bool
}

func newContactTracker() *contactTracker {
	return &contactTracker{
		active:  make(map[bodyPair]bool),
		current: make(map[bodyPair]bool),
	}
}

// record marks the pair in a contact as touching this step. Pairs against world geometry
// are keyed with a nil second body.
func (t *contactTracker) record(c *Contact) {
	a, b := c.Bodies[0], c.Bodies[1]
	if a == nil {
		a, b = b, a
	}
	if a == nil {
		return
	}
	pair := bodyPair{A: a, B: b}
	if t.current[pair] {
		return
	}
	// Keep one orientation per pair so A-B and B-A collapse
	if b != nil && t.current[bodyPair{A: b, B: a}] {
		return
	}
	t.current[pair] = true
	t.order = append(t.order, pair)
}

// retain carries over last step's pairs that keep reports true even though no contact was
// generated for them. Resting bodies that fell asleep stay in contact this way.
func (t *contactTracker) retain(keep func(pair bodyPair) bool) {
	for pair := range t.active {
		if t.current[pair] || t.current[bodyPair{A: pair.B, B: pair.A}] {
			continue
		}
		if keep(pair) {
			t.current[pair] = true
		}
	}
}

// dispatch sends OnContactEnter/OnContactExit and swaps the frame sets.
func (t *contactTracker) dispatch() {
	// Enter in discovery order keeps callbacks deterministic
	for _, pair := range t.order {
		if !t.active[pair] && !t.active[bodyPair{A: pair.B, B: pair.A}] {
			notifyEnter(pair.A, pair.B)
			notifyEnter(pair.B, pair.A)
		}
	}

	for pair := range t.active {
		if !t.current[pair] && !t.current[bodyPair{A: pair.B, B: pair.A}] {
			notifyExit(pair.A, pair.B)
			notifyExit(pair.B, pair.A)
		}
	}

	t.active = t.current
	t.current = make(map[bodyPair]bool, len(t.active))
	t.order = t.order[:0]
}

func notifyEnter(body, other Body) {
	if body == nil {
		return
	}
	if r := body.Reactor(); r != nil {
		r.OnContactEnter(other, kindOf(other))
	}
}

func notifyExit(body, other Body) {
	if body == nil {
		return
	}
	if r := body.Reactor(); r != nil {
		r.OnContactExit(other, kindOf(other))
	}
}

// kindOf treats missing bodies as static world geometry.
func kindOf(b Body) BodyKind {
	if b == nil {
		return BodyStatic
	}
	return b.Kind()
}
