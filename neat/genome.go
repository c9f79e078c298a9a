package neat

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	// ErrInvalidInput is returned when Feedforward receives the wrong number of inputs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyGraph is returned when a genome admits no further structural mutation.
	ErrEmptyGraph = errors.New("no eligible nodes or edges")
	// ErrIncompatibleParents is returned when crossover parents do not share their fixed nodes.
	ErrIncompatibleParents = errors.New("incompatible parents")
)

// Network is a genome: an arena of nodes and an arena of edges.
//
// Nodes are laid out in five contiguous ranges, in order: inputs,
// recurrent inputs, outputs, recurrent outputs, hidden. Edges are kept
// sorted by ascending innovation ID. An edge never targets an input or
// recurrent input and never starts at an output or recurrent output;
// recurrent inputs are fed from their paired recurrent output between ticks.
type Network struct {
	Nodes        []Node
	Edges        []Edge
	NumInputs    int
	NumOutputs   int
	NumRecurrent int
	FeedForward  bool // reject add_edge mutations that close a cycle

	// Activation is not serialized; checkpoints relink it from the config.
	Activation ActivationFunc

	values  []float64
	visited []bool
}

// NewNetwork creates a genome with numInputs+numOutputs+2*numRecurrent nodes
// and no edges. Node identities are drawn from ids.Nodes.
func NewNetwork(ids *Innovations, numInputs, numOutputs, numRecurrent int, activation ActivationFunc) *Network {
	n := newEmptyNetwork(numInputs, numOutputs, numRecurrent, activation)
	total := numInputs + numOutputs + 2*numRecurrent
	n.Nodes = make([]Node, total)
	for i := range n.Nodes {
		n.Nodes[i] = Node{ID: ids.Nodes.Next()}
	}
	return n
}

// newEmptyNetwork creates a genome with no nodes or edges, to be populated by the caller.
func newEmptyNetwork(numInputs, numOutputs, numRecurrent int, activation ActivationFunc) *Network {
	return &Network{
		Nodes:        []Node{},
		Edges:        []Edge{},
		NumInputs:    numInputs,
		NumOutputs:   numOutputs,
		NumRecurrent: numRecurrent,
		Activation:   activation,
	}
}

// --------------------------- Roles ---------------------------

func (n *Network) firstOutput() int          { return n.NumInputs + n.NumRecurrent }
func (n *Network) firstRecurrentOutput() int { return n.firstOutput() + n.NumOutputs }
func (n *Network) firstHidden() int          { return n.firstRecurrentOutput() + n.NumRecurrent }

// IsInput reports whether node i is an input node.
func (n *Network) IsInput(i int) bool { return i >= 0 && i < n.NumInputs }

// IsRecurrentInput reports whether node i is a recurrent input node.
func (n *Network) IsRecurrentInput(i int) bool {
	return i >= n.NumInputs && i < n.firstOutput()
}

// IsOutput reports whether node i is an output node.
func (n *Network) IsOutput(i int) bool {
	return i >= n.firstOutput() && i < n.firstRecurrentOutput()
}

// IsRecurrentOutput reports whether node i is a recurrent output node.
func (n *Network) IsRecurrentOutput(i int) bool {
	return i >= n.firstRecurrentOutput() && i < n.firstHidden()
}

// IsHidden reports whether node i is a hidden node.
func (n *Network) IsHidden(i int) bool { return i >= n.firstHidden() && i < len(n.Nodes) }

// NumHidden returns the number of hidden nodes.
func (n *Network) NumHidden() int { return len(n.Nodes) - n.firstHidden() }

// canSource reports whether an edge may start at node i.
func (n *Network) canSource(i int) bool {
	return n.IsInput(i) || n.IsRecurrentInput(i) || n.IsHidden(i)
}

// canTarget reports whether an edge may end at node i.
func (n *Network) canTarget(i int) bool {
	return n.IsOutput(i) || n.IsRecurrentOutput(i) || n.IsHidden(i)
}

// --------------------------- Structure ---------------------------

// Connect adds an enabled edge from node index from to node index to with a
// fresh innovation number and returns that number. It enforces the role rules
// but, unlike MutateAddEdge, allows parallel edges.
func (n *Network) Connect(ids *Innovations, from, to int, weight float64) (uint64, error) {
	if !n.canSource(from) {
		return 0, fmt.Errorf("node %d cannot be the source of an edge", from)
	}
	if !n.canTarget(to) {
		return 0, fmt.Errorf("node %d cannot be the target of an edge", to)
	}
	id := ids.Edges.Next()
	n.addEdge(from, to, id, weight, true)
	return id, nil
}

// addNode appends a hidden node and returns its index.
func (n *Network) addNode(id uint64) int {
	n.Nodes = append(n.Nodes, Node{ID: id})
	return len(n.Nodes) - 1
}

// addEdge inserts an edge keeping Edges sorted by ID and Incoming consistent.
func (n *Network) addEdge(from, to int, id uint64, weight float64, enabled bool) {
	ordered := len(n.Edges) == 0 || n.Edges[len(n.Edges)-1].ID < id
	n.Edges = append(n.Edges, Edge{ID: id, Source: from, Target: to, Weight: weight, Enabled: enabled})
	if ordered {
		n.Nodes[to].Incoming = append(n.Nodes[to].Incoming, len(n.Edges)-1)
		return
	}
	sort.SliceStable(n.Edges, func(i, j int) bool { return n.Edges[i].ID < n.Edges[j].ID })
	n.rebuildIncoming()
}

// rebuildIncoming recomputes every node's incoming edge list from the edge arena.
func (n *Network) rebuildIncoming() {
	for i := range n.Nodes {
		n.Nodes[i].Incoming = n.Nodes[i].Incoming[:0]
	}
	for i, e := range n.Edges {
		n.Nodes[e.Target].Incoming = append(n.Nodes[e.Target].Incoming, i)
	}
}

// hasEdge reports whether an edge (enabled or not) already runs from -> to.
func (n *Network) hasEdge(from, to int) bool {
	for _, ei := range n.Nodes[to].Incoming {
		if n.Edges[ei].Source == from {
			return true
		}
	}
	return false
}

// EnabledEdges returns the number of enabled edges.
func (n *Network) EnabledEdges() int {
	count := 0
	for _, e := range n.Edges {
		if e.Enabled {
			count++
		}
	}
	return count
}

// Copy returns a deep copy of the genome. The recurrent state is not copied.
func (n *Network) Copy() *Network {
	c := newEmptyNetwork(n.NumInputs, n.NumOutputs, n.NumRecurrent, n.Activation)
	c.FeedForward = n.FeedForward
	c.Nodes = make([]Node, len(n.Nodes))
	for i, node := range n.Nodes {
		c.Nodes[i] = Node{ID: node.ID, Incoming: append([]int(nil), node.Incoming...)}
	}
	c.Edges = append(c.Edges, n.Edges...)
	return c
}

// --------------------------- Checks ---------------------------

// Validate checks the structural invariants of the genome.
func (n *Network) Validate() error {
	if want := n.firstHidden(); len(n.Nodes) < want {
		return fmt.Errorf("genome has %d nodes, needs at least %d for its fixed roles", len(n.Nodes), want)
	}
	seen := make(map[uint64]bool, len(n.Nodes))
	for i, node := range n.Nodes {
		if seen[node.ID] {
			return fmt.Errorf("duplicate node id %d at index %d", node.ID, i)
		}
		seen[node.ID] = true
	}
	incoming := make([]int, len(n.Nodes))
	for i, e := range n.Edges {
		if i > 0 && n.Edges[i-1].ID >= e.ID {
			return fmt.Errorf("edges not sorted by innovation: %d follows %d", e.ID, n.Edges[i-1].ID)
		}
		if e.Source < 0 || e.Source >= len(n.Nodes) || e.Target < 0 || e.Target >= len(n.Nodes) {
			return fmt.Errorf("edge %d has an endpoint outside the node arena", e.ID)
		}
		if !n.canSource(e.Source) {
			return fmt.Errorf("edge %d starts at node %d, which cannot be a source", e.ID, e.Source)
		}
		if !n.canTarget(e.Target) {
			return fmt.Errorf("edge %d ends at node %d, which cannot be a target", e.ID, e.Target)
		}
		incoming[e.Target]++
	}
	for i, node := range n.Nodes {
		if len(node.Incoming) != incoming[i] {
			return fmt.Errorf("node %d lists %d incoming edges, arena has %d", node.ID, len(node.Incoming), incoming[i])
		}
		for _, ei := range node.Incoming {
			if ei < 0 || ei >= len(n.Edges) || n.Edges[ei].Target != i {
				return fmt.Errorf("node %d lists edge index %d which does not target it", node.ID, ei)
			}
		}
	}
	return nil
}

// enabledGraph builds a gonum directed graph over the enabled edges.
func (n *Network) enabledGraph() (*simple.DirectedGraph, bool) {
	g := simple.NewDirectedGraph()
	for i := range n.Nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	selfLoop := false
	for _, e := range n.Edges {
		if !e.Enabled {
			continue
		}
		if e.Source == e.Target {
			selfLoop = true
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(e.Source)), simple.Node(int64(e.Target))))
	}
	return g, selfLoop
}

// HasCycle reports whether the enabled edges form a cycle. The recurrent
// pairs are not edges, so only genuine feed-forward loops are reported; those
// are evaluated with the one-pass memoized approximation.
func (n *Network) HasCycle() bool {
	g, selfLoop := n.enabledGraph()
	if selfLoop {
		return true
	}
	_, err := topo.Sort(g)
	return err != nil
}

// closesCycle reports whether adding from -> to to g, the genome's enabled
// graph, would create a cycle.
func closesCycle(g *simple.DirectedGraph, from, to int) bool {
	if from == to {
		return true
	}
	return topo.PathExistsIn(g, simple.Node(int64(to)), simple.Node(int64(from)))
}

// String returns a short summary of the genome.
func (n *Network) String() string {
	return fmt.Sprintf("Network(in=%d out=%d recurrent=%d hidden=%d edges=%d/%d)",
		n.NumInputs, n.NumOutputs, n.NumRecurrent, n.NumHidden(), n.EnabledEdges(), len(n.Edges))
}
