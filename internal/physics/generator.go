package physics

// ContactGenerator appends at most limit contacts to data, never past its capacity, and
// returns how many it wrote.
type ContactGenerator interface {
	AddContact(data *ContactBuffer, limit int) int
}

// ContactGeneratorFunc adapts a function to ContactGenerator.
type ContactGeneratorFunc func(data *ContactBuffer, limit int) int

func (f ContactGeneratorFunc) AddContact(data *ContactBuffer, limit int) int {
	return f(data, limit)
}

// RunGenerators calls each generator with the buffer's remaining capacity and returns the
// total number of contacts written. Generators after the buffer fills are skipped.
func RunGenerators(data *ContactBuffer, generators []ContactGenerator) int {
	total := 0
	for _, g := range generators {
		remaining := data.Remaining()
		if remaining <= 0 {
			break
		}
		total += g.AddContact(data, remaining)
	}
	return total
}

// PairGenerator generates contacts between two primitives using the detector for their
// shape kinds.
type PairGenerator struct {
	A, B Primitive
}

func (g PairGenerator) AddContact(data *ContactBuffer, limit int) int {
	return Collide(g.A, g.B, data, limit)
}

// canWrite reports whether a detector that has written n contacts may write another.
func canWrite(data *ContactBuffer, n, limit int) bool {
	return n < limit && data.HasFreeContacts()
}
