package physics

// DefaultContactCapacity is the number of contacts a buffer holds when no capacity is given.
const DefaultContactCapacity = 256

// Default surface parameters for new buffers.
const (
	DefaultFriction    = 0.9
	DefaultRestitution = 0.1
	DefaultTolerance   = 0.1
)

// ContactBuffer is the fixed-capacity, append-only contact store for one step. Generators
// fill the slot returned by Current and commit it with AddContact; a full buffer silently
// ignores further commits.
type ContactBuffer struct {
	Friction    float32
	Restitution float32
	// Tolerance is how close shapes may be and still count as touching.
	Tolerance float32

	contacts []Contact
	count    int
}

// NewContactBuffer allocates a buffer; capacity <= 0 uses DefaultContactCapacity.
func NewContactBuffer(capacity int) *ContactBuffer {
	if capacity <= 0 {
		capacity = DefaultContactCapacity
	}
	return &ContactBuffer{
		Friction:    DefaultFriction,
		Restitution: DefaultRestitution,
		Tolerance:   DefaultTolerance,
		contacts:    make([]Contact, capacity),
	}
}

// Reset empties the buffer. The backing array is reallocated only when capacity changes;
// capacity <= 0 keeps the current one.
func (b *ContactBuffer) Reset(capacity int) {
	if capacity > 0 && capacity != len(b.contacts) {
		b.contacts = make([]Contact, capacity)
	}
	if len(b.contacts) == 0 {
		b.contacts = make([]Contact, DefaultContactCapacity)
	}
	b.count = 0
}

// HasFreeContacts reports whether another contact can be committed.
func (b *ContactBuffer) HasFreeContacts() bool {
	return b.count < len(b.contacts)
}

// Current returns the slot the next contact is written to, or nil when full.
func (b *ContactBuffer) Current() *Contact {
	if !b.HasFreeContacts() {
		return nil
	}
	return &b.contacts[b.count]
}

// AddContact commits the current slot.
func (b *ContactBuffer) AddContact() {
	if b.HasFreeContacts() {
		b.count++
	}
}

// AddContacts commits n filled slots, stopping at capacity.
func (b *ContactBuffer) AddContacts(n int) {
	for i := 0; i < n; i++ {
		b.AddContact()
	}
}

// NewContact clears the current slot and stamps the bodies and the buffer's surface
// parameters. It returns nil when the buffer is full; the slot still has to be committed.
func (b *ContactBuffer) NewContact(one, two Body) *Contact {
	c := b.Current()
	if c == nil {
		return nil
	}
	*c = Contact{}
	c.SetBodyData(one, two, b.Friction, b.Restitution)
	return c
}

// Contacts returns the committed contacts. The slice aliases the buffer.
func (b *ContactBuffer) Contacts() []Contact {
	return b.contacts[:b.count]
}

func (b *ContactBuffer) Count() int     { return b.count }
func (b *ContactBuffer) Capacity() int  { return len(b.contacts) }
func (b *ContactBuffer) Remaining() int { return len(b.contacts) - b.count }
