package neat

// IdentitySource hands out strictly increasing identities. Identities are
// never reused, so two genes carrying the same identity descend from the same
// structural mutation.
type IdentitySource struct {
	next uint64
}

// NewIdentitySource returns a source whose first identity is start.
func NewIdentitySource(start uint64) *IdentitySource {
	return &IdentitySource{next: start}
}

// Next returns a fresh identity.
func (s *IdentitySource) Next() uint64 {
	id := s.next
	s.next++
	return id
}

// Peek returns the identity the next call to Next will hand out.
func (s *IdentitySource) Peek() uint64 {
	return s.next
}

// Reset rewinds the source. Only safe between independent experiments.
func (s *IdentitySource) Reset(start uint64) {
	s.next = start
}

// Innovations bundles the two identity sources an experiment needs: one for
// nodes and one for edge innovation numbers.
type Innovations struct {
	Nodes *IdentitySource
	Edges *IdentitySource
}

// NewInnovations returns fresh node and edge sources, both starting at 1.
func NewInnovations() *Innovations {
	return &Innovations{
		Nodes: NewIdentitySource(1),
		Edges: NewIdentitySource(1),
	}
}
