package neat

import (
	"fmt"
)

// --------------------------- Node ---------------------------

// Node is a neuron in the genome. ID is its historical marker; Incoming holds
// indices into the owning Network's Edges arena.
type Node struct {
	ID       uint64
	Incoming []int
}

// String returns a string representation of the Node.
func (n *Node) String() string {
	return fmt.Sprintf("Node(ID: %d, In: %d)", n.ID, len(n.Incoming))
}

// --------------------------- Edge ---------------------------

// Edge is a directed, weighted connection. ID is the innovation number used
// to align genes across genomes; Source and Target index into the owning
// Network's Nodes arena. Disabled edges are kept for historical continuity.
type Edge struct {
	ID      uint64
	Source  int
	Target  int
	Weight  float64
	Enabled bool
}

// String returns a string representation of the Edge.
func (e *Edge) String() string {
	return fmt.Sprintf("Edge(ID: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		e.ID, e.Source, e.Target, e.Weight, e.Enabled)
}
