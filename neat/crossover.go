package neat

import (
	"errors"
	"fmt"
)

// Crossover merges two parent genomes into a new, fully independent child.
//
// The child's nodes are a's nodes followed by b's nodes that a lacks, matched
// by node identity. Edges are merged by walking both innovation-sorted lists:
// disjoint and excess genes come from whichever parent carries them, matching
// genes are copied from b. Each inherited edge is perturbed with probability
// EdgeMutationRate by N(0,1)*MutationStrength. The child then receives a
// binomially distributed number of add_node and add_edge mutations.
//
// Parents must share role counts and the identities of their non-hidden
// nodes, which holds for genomes descending from the same seed.
func Crossover(a, b *Network, ids *Innovations, rng Rand, cfg *GenomeConfig) (*Network, error) {
	if err := checkParents(a, b); err != nil {
		return nil, err
	}

	child := newEmptyNetwork(a.NumInputs, a.NumOutputs, a.NumRecurrent, a.Activation)
	child.FeedForward = a.FeedForward

	index := make(map[uint64]int, len(a.Nodes)+len(b.Nodes))
	for _, parent := range []*Network{a, b} {
		for _, node := range parent.Nodes {
			if _, ok := index[node.ID]; ok {
				continue
			}
			index[node.ID] = child.addNode(node.ID)
		}
	}

	i, j := 0, 0
	for i < len(a.Edges) || j < len(b.Edges) {
		var gene Edge
		var owner *Network
		switch {
		case i == len(a.Edges):
			gene, owner = b.Edges[j], b
			j++
		case j == len(b.Edges):
			gene, owner = a.Edges[i], a
			i++
		case a.Edges[i].ID < b.Edges[j].ID:
			gene, owner = a.Edges[i], a
			i++
		case a.Edges[i].ID > b.Edges[j].ID:
			gene, owner = b.Edges[j], b
			j++
		default:
			gene, owner = b.Edges[j], b
			i++
			j++
		}

		weight := gene.Weight
		if rng.Float64() < cfg.EdgeMutationRate {
			weight += normal(1, rng) * cfg.MutationStrength
		}
		from := index[owner.Nodes[gene.Source].ID]
		to := index[owner.Nodes[gene.Target].ID]
		child.addEdge(from, to, gene.ID, weight, gene.Enabled)
	}

	for k := binomialCount(cfg.AddNodeMutationNumber, cfg.AddNodeMutationRate, rng); k > 0; k-- {
		if err := child.MutateAddNode(ids, rng); err != nil && !errors.Is(err, ErrEmptyGraph) {
			return nil, fmt.Errorf("crossover add node: %w", err)
		}
	}
	for k := binomialCount(cfg.AddEdgeMutationNumber, cfg.AddEdgeMutationRate, rng); k > 0; k-- {
		if err := child.MutateAddEdge(ids, rng); err != nil && !errors.Is(err, ErrEmptyGraph) {
			return nil, fmt.Errorf("crossover add edge: %w", err)
		}
	}
	return child, nil
}

// checkParents verifies that a and b agree on their fixed (non-hidden) nodes.
func checkParents(a, b *Network) error {
	if a.NumInputs != b.NumInputs || a.NumOutputs != b.NumOutputs || a.NumRecurrent != b.NumRecurrent {
		return fmt.Errorf("%w: shapes %d/%d/%d and %d/%d/%d differ", ErrIncompatibleParents,
			a.NumInputs, a.NumOutputs, a.NumRecurrent, b.NumInputs, b.NumOutputs, b.NumRecurrent)
	}
	fixed := a.firstHidden()
	if len(a.Nodes) < fixed || len(b.Nodes) < fixed {
		return fmt.Errorf("%w: missing fixed nodes", ErrIncompatibleParents)
	}
	for i := 0; i < fixed; i++ {
		if a.Nodes[i].ID != b.Nodes[i].ID {
			return fmt.Errorf("%w: node %d has identity %d and %d", ErrIncompatibleParents, i, a.Nodes[i].ID, b.Nodes[i].ID)
		}
	}
	return nil
}
