package neat

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
)

// edgeSamplingRounds bounds rejection sampling in MutateAddEdge, as a multiple
// of the number of candidate pairs, before falling back to enumeration.
const edgeSamplingRounds = 4

// MutateAddEdge connects two previously unconnected nodes with a new edge.
//
// The source is drawn uniformly from inputs, recurrent inputs and hidden
// nodes; the target from outputs, recurrent outputs and hidden nodes. Draws
// that pick the same node twice or an already connected ordered pair are
// rejected and redrawn, as are pairs that would close a cycle when the genome
// is FeedForward. The weight is standard normal.
//
// If no valid pair exists, ErrEmptyGraph is returned and the genome is unchanged.
func (n *Network) MutateAddEdge(ids *Innovations, rng Rand) error {
	sources, targets := n.edgeCandidates()
	if len(sources) == 0 || len(targets) == 0 {
		return fmt.Errorf("add edge: %w", ErrEmptyGraph)
	}

	var g *simple.DirectedGraph
	if n.FeedForward {
		g, _ = n.enabledGraph()
	}

	attempts := edgeSamplingRounds * len(sources) * len(targets)
	for i := 0; i < attempts; i++ {
		from := sources[rng.IntN(len(sources))]
		to := targets[rng.IntN(len(targets))]
		if n.canConnect(g, from, to) {
			n.addEdge(from, to, ids.Edges.Next(), normal(1, rng), true)
			return nil
		}
	}

	// Dense genome: enumerate what is left so the draw stays uniform over valid pairs.
	var valid [][2]int
	for _, from := range sources {
		for _, to := range targets {
			if n.canConnect(g, from, to) {
				valid = append(valid, [2]int{from, to})
			}
		}
	}
	if len(valid) == 0 {
		return fmt.Errorf("add edge: genome is saturated: %w", ErrEmptyGraph)
	}
	pair := valid[rng.IntN(len(valid))]
	n.addEdge(pair[0], pair[1], ids.Edges.Next(), normal(1, rng), true)
	return nil
}

// MutateAddNode splits an enabled edge with a new hidden node.
//
// The split edge is disabled, never deleted. The incoming half inherits the
// old weight and the outgoing half gets weight 1. A genome without enabled
// edges gets an add_edge mutation instead.
func (n *Network) MutateAddNode(ids *Innovations, rng Rand) error {
	enabled := make([]int, 0, len(n.Edges))
	for i, e := range n.Edges {
		if e.Enabled {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		return n.MutateAddEdge(ids, rng)
	}

	split := &n.Edges[enabled[rng.IntN(len(enabled))]]
	split.Enabled = false
	from, to, weight := split.Source, split.Target, split.Weight

	hidden := n.addNode(ids.Nodes.Next())
	n.addEdge(from, hidden, ids.Edges.Next(), weight, true)
	n.addEdge(hidden, to, ids.Edges.Next(), 1.0, true)
	return nil
}

// edgeCandidates returns the node indices allowed at each end of a new edge.
func (n *Network) edgeCandidates() (sources, targets []int) {
	for i := range n.Nodes {
		if n.canSource(i) {
			sources = append(sources, i)
		}
		if n.canTarget(i) {
			targets = append(targets, i)
		}
	}
	return sources, targets
}

// canConnect reports whether from -> to is a valid new edge. g is the enabled
// graph, built once per mutation; it is only consulted for FeedForward genomes.
func (n *Network) canConnect(g *simple.DirectedGraph, from, to int) bool {
	if from == to || n.hasEdge(from, to) {
		return false
	}
	if g != nil && n.IsHidden(from) && n.IsHidden(to) && closesCycle(g, from, to) {
		return false
	}
	return true
}
