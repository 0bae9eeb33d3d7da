package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// greedyGenerator writes contacts until it hits its limit or the buffer fills.
type greedyGenerator struct {
	calls  int
	limits []int
}

func (g *greedyGenerator) AddContact(data *ContactBuffer, limit int) int {
	g.calls++
	g.limits = append(g.limits, limit)
	written := 0
	for canWrite(data, written, limit) {
		c := data.NewContact(nil, nil)
		c.Penetration = float32(written)
		data.AddContact()
		written++
	}
	return written
}

func TestNewContactBufferDefaults(t *testing.T) {
	buf := NewContactBuffer(0)
	if buf.Capacity() != DefaultContactCapacity {
		t.Errorf("Expected capacity %d, got %d", DefaultContactCapacity, buf.Capacity())
	}
	if buf.Friction != DefaultFriction || buf.Restitution != DefaultRestitution || buf.Tolerance != DefaultTolerance {
		t.Errorf("Unexpected surface defaults: %+v", buf)
	}
	if buf.Count() != 0 || !buf.HasFreeContacts() {
		t.Error("Expected an empty buffer with free contacts")
	}
}

func TestContactBufferCapacity(t *testing.T) {
	buf := NewContactBuffer(3)

	for i := 0; i < 5; i++ {
		if c := buf.NewContact(nil, nil); c != nil {
			c.Penetration = float32(i)
		}
		buf.AddContact()
	}

	if buf.Count() != 3 {
		t.Fatalf("Expected count capped at 3, got %d", buf.Count())
	}
	if buf.HasFreeContacts() {
		t.Error("Expected full buffer")
	}
	if buf.Current() != nil {
		t.Error("Expected Current to be nil on a full buffer")
	}
	if buf.NewContact(nil, nil) != nil {
		t.Error("Expected NewContact to be nil on a full buffer")
	}
	for i, c := range buf.Contacts() {
		if c.Penetration != float32(i) {
			t.Errorf("Contact %d: expected penetration %d, got %f", i, i, c.Penetration)
		}
	}
}

func TestContactBufferAddContacts(t *testing.T) {
	buf := NewContactBuffer(4)
	buf.AddContacts(3)
	if buf.Remaining() != 1 {
		t.Errorf("Expected 1 remaining, got %d", buf.Remaining())
	}
	buf.AddContacts(10)
	if buf.Count() != 4 {
		t.Errorf("Expected count 4, got %d", buf.Count())
	}
}

func TestContactBufferNewContactStampsSurface(t *testing.T) {
	buf := NewContactBuffer(2)
	buf.Friction = 0.3
	buf.Restitution = 0.6
	body := NewRigidBody(1, rl.Vector3{})

	c := buf.NewContact(body, nil)
	c.Penetration = 5
	buf.AddContact()

	got := buf.Contacts()[0]
	if got.Bodies[0] != Body(body) || got.Bodies[1] != nil {
		t.Errorf("Expected bodies [body, nil], got %v", got.Bodies)
	}
	if got.Friction != 0.3 || got.Restitution != 0.6 {
		t.Errorf("Expected friction 0.3 and restitution 0.6, got %f and %f", got.Friction, got.Restitution)
	}

	// A reused slot starts clean
	buf.Reset(0)
	c = buf.NewContact(nil, nil)
	if c.Penetration != 0 {
		t.Errorf("Expected cleared slot, got penetration %f", c.Penetration)
	}
}

func TestContactBufferReset(t *testing.T) {
	buf := NewContactBuffer(4)
	buf.AddContacts(4)

	buf.Reset(0)
	if buf.Count() != 0 || buf.Capacity() != 4 {
		t.Errorf("Expected empty buffer of capacity 4, got count %d capacity %d", buf.Count(), buf.Capacity())
	}

	buf.Reset(8)
	if buf.Capacity() != 8 {
		t.Errorf("Expected capacity 8, got %d", buf.Capacity())
	}
}

func TestRunGeneratorsRespectsCapacity(t *testing.T) {
	buf := NewContactBuffer(5)
	first := &greedyGenerator{}
	second := &greedyGenerator{}
	third := &greedyGenerator{}

	total := RunGenerators(buf, []ContactGenerator{first, second, third})

	if total != 5 || buf.Count() != 5 {
		t.Fatalf("Expected 5 contacts, got total %d count %d", total, buf.Count())
	}
	if first.limits[0] != 5 {
		t.Errorf("Expected first generator limit 5, got %d", first.limits[0])
	}
	if second.calls != 0 || third.calls != 0 {
		t.Errorf("Expected later generators to be skipped, got %d and %d calls", second.calls, third.calls)
	}
}

func TestRunGeneratorsPassesRemaining(t *testing.T) {
	buf := NewContactBuffer(6)
	limited := ContactGeneratorFunc(func(data *ContactBuffer, limit int) int {
		// Writes two regardless of a larger limit
		n := 0
		for n < 2 && canWrite(data, n, limit) {
			data.NewContact(nil, nil)
			data.AddContact()
			n++
		}
		return n
	})
	greedy := &greedyGenerator{}

	total := RunGenerators(buf, []ContactGenerator{limited, greedy})

	if total != 6 {
		t.Errorf("Expected 6 contacts, got %d", total)
	}
	if len(greedy.limits) != 1 || greedy.limits[0] != 4 {
		t.Errorf("Expected greedy limit 4, got %v", greedy.limits)
	}
}

func TestDetectorsHonourLimit(t *testing.T) {
	body := NewRigidBody(1, rl.Vector3{X: 0, Y: 0.4, Z: 0})
	box := NewCollisionBox(body, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	ground := NewCollisionPlane(rl.Vector3{X: 0, Y: 1, Z: 0}, 0)

	buf := NewContactBuffer(10)
	if n := Collide(box, ground, buf, 2); n != 2 {
		t.Errorf("Expected 2 contacts with limit 2, got %d", n)
	}

	buf = NewContactBuffer(3)
	if n := Collide(box, ground, buf, 10); n != 3 {
		t.Errorf("Expected 3 contacts with capacity 3, got %d", n)
	}

	buf = NewContactBuffer(10)
	if n := Collide(box, ground, buf, 0); n != 0 || buf.Count() != 0 {
		t.Errorf("Expected nothing with limit 0, got %d", n)
	}
}
