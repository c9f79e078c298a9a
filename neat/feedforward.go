package neat

import (
	"fmt"
)

// Feedforward runs one discrete time step and returns the output values.
//
// Outputs are computed by a depth-first, memoized walk over enabled incoming
// edges: a node already visited this tick returns its cached value. That
// short-circuit is what lets recurrent inputs deliver the previous tick's
// recurrent outputs, and it also cuts true feed-forward cycles, which then
// see a partial value. The cut is a one-pass relaxation, not a fixed-point
// solve.
//
// After the outputs, the recurrent outputs are evaluated and copied into
// their paired recurrent inputs for the next call. On the first tick, and after
// ResetState, recurrent inputs read 0 rather than activation(0).
func (n *Network) Feedforward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.NumInputs {
		return nil, fmt.Errorf("%w: got %d values for %d input nodes", ErrInvalidInput, len(inputs), n.NumInputs)
	}
	n.ensureScratch()

	for i, v := range inputs {
		n.values[i] = v
		n.visited[i] = true
	}

	outputs := make([]float64, n.NumOutputs)
	first := n.firstOutput()
	for i := range outputs {
		outputs[i] = n.evalNode(first + i)
	}

	firstRec := n.firstRecurrentOutput()
	for i := 0; i < n.NumRecurrent; i++ {
		n.evalNode(firstRec + i)
	}
	for i := 0; i < n.NumRecurrent; i++ {
		n.values[n.NumInputs+i] = n.values[firstRec+i]
		n.visited[n.NumInputs+i] = true
	}

	// Reset the graph for the next tick; inputs and recurrent inputs keep their values.
	for i := n.firstOutput(); i < len(n.Nodes); i++ {
		n.values[i] = 0
		n.visited[i] = false
	}
	return outputs, nil
}

// evalNode returns the value of node idx for the current tick.
func (n *Network) evalNode(idx int) float64 {
	if n.visited[idx] {
		return n.values[idx]
	}
	n.visited[idx] = true

	// Accumulate in place so a cycle back into idx reads the partial sum.
	for _, ei := range n.Nodes[idx].Incoming {
		e := &n.Edges[ei]
		if e.Enabled {
			n.values[idx] += e.Weight * n.evalNode(e.Source)
		}
	}
	n.values[idx] = n.activate(n.values[idx])
	return n.values[idx]
}

func (n *Network) activate(x float64) float64 {
	if n.Activation == nil {
		return Tanh(x)
	}
	return n.Activation(x)
}

// ResetState clears the recurrent buffer so the next tick starts from zero.
func (n *Network) ResetState() {
	n.values = nil
	n.visited = nil
}

// ensureScratch sizes the per-node buffers to the current node count. Inputs
// and recurrent inputs are always treated as visited; growth keeps the
// recurrent buffer since the fixed roles form the arena prefix.
func (n *Network) ensureScratch() {
	if len(n.values) == len(n.Nodes) {
		return
	}
	values := make([]float64, len(n.Nodes))
	visited := make([]bool, len(n.Nodes))
	copy(values[:n.firstOutput()], n.values)
	for i := 0; i < n.firstOutput(); i++ {
		visited[i] = true
	}
	n.values = values
	n.visited = visited
}
