// Package env provides fitness environments for neat populations.
package env

import (
	"fmt"
	"math"

	"github.com/baldhumanity/neat-rnn/neat"
)

// XORCases lists the four XOR inputs and their expected output.
var XORCases = []struct {
	Inputs   []float64
	Expected float64
}{
	{[]float64{0, 0}, 0},
	{[]float64{0, 1}, 1},
	{[]float64{1, 0}, 1},
	{[]float64{1, 1}, 0},
}

// XORMaxFitness is the fitness of a network that solves XOR exactly.
const XORMaxFitness = 4.0

// XOR scores a two-input, one-output network on the XOR truth table.
// Fitness is 4 minus the summed absolute error, floored at 0.
type XOR struct{}

// Evaluate implements neat.Evaluator.
func (XOR) Evaluate(net *neat.Network) (float64, error) {
	if net.NumInputs != 2 || net.NumOutputs < 1 {
		return 0, fmt.Errorf("xor needs 2 inputs and 1 output, network has %d and %d", net.NumInputs, net.NumOutputs)
	}
	errSum := 0.0
	for _, c := range XORCases {
		out, err := net.Feedforward(c.Inputs)
		if err != nil {
			return 0, err
		}
		errSum += math.Abs(c.Expected - out[0])
	}
	return math.Max(0, XORMaxFitness-errSum), nil
}
