package env

import (
	"fmt"
	"math"

	"github.com/baldhumanity/neat-rnn/neat"
)

// SequenceRecall asks a network to repeat, at every tick, the bit it was shown
// on the previous tick. A network can only solve it by routing the input
// through a recurrent pair, so it exercises the one-tick delay.
//
// The sequences are fixed at construction so every genome sees the same data.
type SequenceRecall struct {
	Sequences [][]float64
}

// NewSequenceRecall builds count random bit sequences of the given length.
func NewSequenceRecall(count, length int, rng neat.Rand) *SequenceRecall {
	if rng == nil {
		rng = neat.NewRand(1)
	}
	seqs := make([][]float64, count)
	for i := range seqs {
		seqs[i] = make([]float64, length)
		for j := range seqs[i] {
			seqs[i][j] = float64(rng.IntN(2))
		}
	}
	return &SequenceRecall{Sequences: seqs}
}

// MaxFitness returns the fitness of a perfect network.
func (s *SequenceRecall) MaxFitness() float64 {
	total := 0
	for _, seq := range s.Sequences {
		total += max(0, len(seq)-1)
	}
	return float64(total)
}

// Evaluate implements neat.Evaluator. Each sequence starts from a cleared
// recurrent buffer; the first tick of each sequence is not scored.
func (s *SequenceRecall) Evaluate(net *neat.Network) (float64, error) {
	if net.NumInputs != 1 || net.NumOutputs < 1 {
		return 0, fmt.Errorf("sequence recall needs 1 input and 1 output, network has %d and %d", net.NumInputs, net.NumOutputs)
	}
	errSum := 0.0
	for _, seq := range s.Sequences {
		net.ResetState()
		for t, bit := range seq {
			out, err := net.Feedforward([]float64{bit})
			if err != nil {
				return 0, err
			}
			if t > 0 {
				errSum += math.Min(1, math.Abs(seq[t-1]-out[0]))
			}
		}
	}
	net.ResetState()
	return math.Max(0, s.MaxFitness()-errSum), nil
}

var (
	_ neat.Evaluator = XOR{}
	_ neat.Evaluator = (*SequenceRecall)(nil)
)
