package neat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedforwardWithoutEdges(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 2, 3, 1, Sigmoid)

	for _, in := range [][]float64{{0, 0}, {1, -4}, {100, 3}} {
		out, err := net.Feedforward(in)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, 0.5, 0.5}, out)
	}
}

func TestFeedforwardSingleEdge(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 2, 1, 0, Identity)
	_, err := net.Connect(ids, 0, 2, 2.0)
	require.NoError(t, err)

	out, err := net.Feedforward([]float64{3.0, 5.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{6.0}, out)

	// scratch is reset between ticks
	out, err = net.Feedforward([]float64{3.0, 5.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{6.0}, out)
}

func TestFeedforwardSkipsDisabledEdges(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 2, 1, 0, Identity)
	_, err := net.Connect(ids, 0, 2, 2.0)
	require.NoError(t, err)
	_, err = net.Connect(ids, 1, 2, 1.0)
	require.NoError(t, err)
	net.Edges[1].Enabled = false

	out, err := net.Feedforward([]float64{3.0, 5.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{6.0}, out)
}

func TestFeedforwardInvalidInput(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 2, 1, 0, Identity)

	_, err := net.Feedforward([]float64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = net.Feedforward([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeedforwardRecurrentRoundTrip(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 1, 1, 1, Identity)
	// 0 input, 1 recurrent input, 2 output, 3 recurrent output
	_, err := net.Connect(ids, 0, 3, 1)
	require.NoError(t, err)
	_, err = net.Connect(ids, 1, 2, 1)
	require.NoError(t, err)

	var got []float64
	for _, x := range []float64{3, 5, 7} {
		out, err := net.Feedforward([]float64{x})
		require.NoError(t, err)
		got = append(got, out[0])
	}
	assert.Equal(t, []float64{0, 3, 5}, got)

	net.ResetState()
	out, err := net.Feedforward([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, out)
}

func TestFeedforwardRecurrentStateSurvivesGrowth(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 1, 1, 1, Identity)
	_, err := net.Connect(ids, 0, 3, 1)
	require.NoError(t, err)
	_, err = net.Connect(ids, 1, 2, 1)
	require.NoError(t, err)

	_, err = net.Feedforward([]float64{4})
	require.NoError(t, err)

	// Splitting the recurrent-input edge adds a node and resizes the scratch buffers.
	require.NoError(t, net.MutateAddNode(ids, &pickRand{Rand: NewRand(1), pick: 1}))
	require.Equal(t, 1, net.NumHidden())

	out, err := net.Feedforward([]float64{9})
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, out)
}

func TestFeedforwardCycleTerminates(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 1, 1, 0, Identity)
	h1 := net.addNode(ids.Nodes.Next())
	h2 := net.addNode(ids.Nodes.Next())
	for _, e := range [][2]int{{0, h1}, {h1, h2}, {h2, h1}, {h2, 1}} {
		_, err := net.Connect(ids, e[0], e[1], 1)
		require.NoError(t, err)
	}
	require.True(t, net.HasCycle())

	// h2 -> h1 reads h2's partial sum of 0, so the loop adds nothing.
	out, err := net.Feedforward([]float64{2})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, out)
}

// pickRand forces IntN to return pick when it is in range.
type pickRand struct {
	Rand
	pick int
}

func (r *pickRand) IntN(n int) int {
	if r.pick < n {
		return r.pick
	}
	return r.Rand.IntN(n)
}

func TestFeedforwardRecurrentInputStartsAtZero(t *testing.T) {
	ids := NewInnovations()
	net := NewNetwork(ids, 1, 1, 1, Sigmoid)
	_, err := net.Connect(ids, 1, 2, 2)
	require.NoError(t, err)

	// sigmoid(2*0), not sigmoid(2*sigmoid(0))
	out, err := net.Feedforward([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, out)

	net.ResetState()
	out, err = net.Feedforward([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, out)
}
