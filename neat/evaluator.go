package neat

// Evaluator scores a genome. It is called once per genome per generation and
// may run Feedforward any number of times. It must not change the genome's
// structure; the recurrent buffer is reset before each call.
type Evaluator interface {
	Evaluate(net *Network) (float64, error)
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(net *Network) (float64, error)

// Evaluate calls f(net).
func (f EvaluatorFunc) Evaluate(net *Network) (float64, error) {
	return f(net)
}
