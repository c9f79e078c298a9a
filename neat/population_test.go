package neat

import (
	"errors"
	"math"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(popSize int) *Config {
	cfg := DefaultConfig()
	cfg.Neat.PopSize = popSize
	cfg.Neat.Seed = 1
	cfg.Genome.NumInputs = 2
	cfg.Genome.NumOutputs = 1
	cfg.Genome.Activation = "sigmoid"
	return cfg
}

func constant(v float64) Evaluator {
	return EvaluatorFunc(func(*Network) (float64, error) { return v, nil })
}

// xorScore is a local XOR evaluator; the env package cannot be imported here.
func xorScore(net *Network) (float64, error) {
	errSum := 0.0
	for _, c := range [][3]float64{{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0}} {
		out, err := net.Feedforward(c[:2])
		if err != nil {
			return 0, err
		}
		errSum += math.Abs(c[2] - out[0])
	}
	return math.Max(0, 4-errSum), nil
}

type recordingReporter struct {
	NoopReporter
	started []int
	extinct []int
}

func (r *recordingReporter) StartGeneration(generation int) {
	r.started = append(r.started, generation)
}

func (r *recordingReporter) SpeciesExtinct(_ int, s *Species) {
	r.extinct = append(r.extinct, s.ID)
}

func TestNewPopulation(t *testing.T) {
	p, err := NewPopulation(testConfig(20), constant(1))
	require.NoError(t, err)

	assert.Equal(t, 20, p.Size())
	require.Len(t, p.Species, 1, "copies of one seed share a species")
	assert.NotEqual(t, uuid.Nil, p.RunID)
	assert.Zero(t, p.Generation)

	first := p.Species[0].Members[0]
	for _, net := range p.Species[0].Members {
		require.NoError(t, net.Validate())
		assert.Equal(t, first.Nodes, net.Nodes)
		assert.NotNil(t, net.Activation)
	}
	assert.NotSame(t, first, p.Species[0].Members[1])
}

func TestNewPopulationRejectsBadInput(t *testing.T) {
	_, err := NewPopulation(nil, constant(1))
	assert.Error(t, err)

	_, err = NewPopulation(testConfig(10), nil)
	assert.Error(t, err)

	cfg := testConfig(10)
	cfg.Genome.NumOutputs = 0
	_, err = NewPopulation(cfg, constant(1))
	assert.Error(t, err)
}

func TestAddToPopulation(t *testing.T) {
	p, err := NewPopulation(testConfig(4), constant(1))
	require.NoError(t, err)

	same := p.AddToPopulation(p.Species[0].Members[0].Copy())
	assert.Same(t, p.Species[0], same)
	assert.Equal(t, 5, p.Size())

	far := p.Species[0].Members[0].Copy()
	_, err = far.Connect(p.Innovations, 0, 2, 1)
	require.NoError(t, err)
	founded := p.AddToPopulation(far)
	require.Len(t, p.Species, 2)
	assert.Same(t, p.Species[1], founded)
	assert.Equal(t, 1, founded.ID)
	assert.Equal(t, 1, founded.Size())
	assert.Len(t, founded.Fitness, 1)
}

func TestEvaluateNormalizesBySpeciesSize(t *testing.T) {
	calls := 0
	eval := EvaluatorFunc(func(*Network) (float64, error) {
		calls++
		return float64(calls), nil
	})
	p, err := NewPopulation(testConfig(10), eval)
	require.NoError(t, err)

	total, err := p.evaluate()
	require.NoError(t, err)

	s := p.Species[0]
	for i, f := range s.Fitness {
		assert.InDelta(t, float64(i+1)/10, f, 1e-12)
	}
	assert.InDelta(t, 5.5, s.FitnessSum, 1e-12)
	assert.InDelta(t, 5.5, total, 1e-12)
	assert.Equal(t, 10.0, p.BestFitness, "best is tracked by raw fitness")
	assert.Same(t, s.Members[9], p.Best)
}

func TestEvaluateResetsRecurrentState(t *testing.T) {
	cfg := testConfig(3)
	cfg.Genome.NumRecurrent = 1
	cfg.Genome.Activation = "identity"
	p, err := NewPopulation(cfg, constant(0))
	require.NoError(t, err)

	for _, net := range p.Species[0].Members {
		// input -> recurrent output, recurrent input -> output
		_, err := net.Connect(p.Innovations, 0, 4, 1)
		require.NoError(t, err)
		_, err = net.Connect(p.Innovations, 2, 3, 1)
		require.NoError(t, err)
		_, err = net.Feedforward([]float64{5, 0})
		require.NoError(t, err)
	}

	p.Evaluator = EvaluatorFunc(func(net *Network) (float64, error) {
		out, err := net.Feedforward([]float64{1, 0})
		return out[0], err
	})
	_, err = p.evaluate()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, p.Species[0].Fitness)
}

func TestRunGenerationGracePeriod(t *testing.T) {
	p, err := NewPopulation(testConfig(10), constant(0))
	require.NoError(t, err)

	winner, err := p.RunGeneration()
	require.NoError(t, err)
	assert.Nil(t, winner)

	// 10 - (10 - 0.05*100) survivors, plus the two children a young species is owed
	assert.Equal(t, 7, p.Size())
	assert.Equal(t, 1, p.Generation)
	assert.Equal(t, 0, p.Species[0].ID)
	assert.Equal(t, 1, p.Species[0].Age)
}

func TestRunGenerationExtinction(t *testing.T) {
	rep := &recordingReporter{}
	p, err := NewPopulation(testConfig(10), constant(0), WithReporter(rep))
	require.NoError(t, err)
	p.Species[0].Age = p.Config.Reproduction.GracePeriod

	winner, err := p.RunGeneration()
	assert.Nil(t, winner)
	require.ErrorIs(t, err, ErrExtinct)
	assert.Zero(t, p.Size())
	assert.Equal(t, []int{0}, rep.extinct)
	assert.Equal(t, []int{1}, rep.started)
}

func TestRunGenerationResetOnExtinction(t *testing.T) {
	cfg := testConfig(10)
	cfg.Neat.ResetOnExtinction = true
	p, err := NewPopulation(cfg, constant(0))
	require.NoError(t, err)
	p.Species[0].Age = cfg.Reproduction.GracePeriod

	_, err = p.RunGeneration()
	require.NoError(t, err)
	assert.Equal(t, 10, p.Size())
	require.Len(t, p.Species, 1)
	assert.Zero(t, p.Species[0].Age)
	assert.Equal(t, 1, p.Species[0].ID, "species ids are not reused")
}

func TestRunGenerationRemovesInReverseOrder(t *testing.T) {
	rep := &recordingReporter{}
	p, err := NewPopulation(testConfig(6), constant(0), WithReporter(rep))
	require.NoError(t, err)

	far := p.Species[0].Members[0].Copy()
	_, err = far.Connect(p.Innovations, 0, 2, 1)
	require.NoError(t, err)
	p.AddToPopulation(far)
	p.AddToPopulation(far.Copy())
	require.Len(t, p.Species, 2)
	for _, s := range p.Species {
		s.Age = p.Config.Reproduction.GracePeriod
	}

	_, err = p.RunGeneration()
	require.ErrorIs(t, err, ErrExtinct)
	assert.Equal(t, []int{1, 0}, rep.extinct)
}

func TestRunGenerationFitnessThreshold(t *testing.T) {
	cfg := testConfig(10)
	cfg.Neat.NoFitnessTermination = false
	cfg.Neat.FitnessThreshold = 4
	p, err := NewPopulation(cfg, constant(5))
	require.NoError(t, err)

	winner, err := p.RunGeneration()
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 5.0, p.BestFitness)
	assert.Equal(t, 10, p.Size(), "no reproduction after a winner")

	p, err = NewPopulation(cfg, constant(5))
	require.NoError(t, err)
	winner, err = p.Evolve(20)
	require.NoError(t, err)
	assert.NotNil(t, winner)
	assert.Equal(t, 1, p.Generation)
}

func TestRunGenerationEvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewPopulation(testConfig(5), EvaluatorFunc(func(*Network) (float64, error) {
		return 0, boom
	}))
	require.NoError(t, err)

	_, err = p.RunGeneration()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 5, p.Size())

	p.Evaluator = constant(math.NaN())
	_, err = p.RunGeneration()
	assert.Error(t, err)
}

func TestRunGenerationKeepsInvariants(t *testing.T) {
	cfg := testConfig(50)
	cfg.Neat.ResetOnExtinction = true
	cfg.Genome.AddEdgeMutationRate = 0.3
	cfg.Genome.AddNodeMutationRate = 0.1
	p, err := NewPopulation(cfg, EvaluatorFunc(xorScore), WithRand(NewRand(99)))
	require.NoError(t, err)

	for gen := 0; gen < 15; gen++ {
		young := 0
		for _, s := range p.Species {
			if s.Age < cfg.Reproduction.GracePeriod {
				young++
			}
		}
		before := p.Size()

		_, err := p.RunGeneration()
		require.NoError(t, err)
		require.Positive(t, p.Size())

		// survivors are at most the previous population; children at most
		// MaxPopulation plus the grace minimum of young species
		assert.LessOrEqual(t, p.Size(), before+cfg.Reproduction.MaxPopulation+2*young)

		seen := map[int]bool{}
		for _, s := range p.Species {
			assert.False(t, seen[s.ID])
			seen[s.ID] = true
			require.Len(t, s.Fitness, len(s.Members))
			for _, net := range s.Members {
				require.NoError(t, net.Validate())
			}
		}
	}
	assert.Equal(t, 15, p.Generation)
	assert.NotNil(t, p.Best)
}

func TestNegativeFitnessKeepsQuotaBounded(t *testing.T) {
	p, err := NewPopulation(testConfig(6), constant(0))
	require.NoError(t, err)

	// two more species: one fed from input 0, one from input 1
	for _, src := range []int{0, 1} {
		net := p.Species[0].Members[0].Copy()
		_, err := net.Connect(p.Innovations, src, 2, 1)
		require.NoError(t, err)
		p.AddToPopulation(net)
		p.AddToPopulation(net.Copy())
	}
	require.Len(t, p.Species, 3)
	for _, s := range p.Species {
		s.Age = p.Config.Reproduction.GracePeriod
	}

	// species sums 2, 2 and -3 before clamping
	p.Evaluator = EvaluatorFunc(func(net *Network) (float64, error) {
		if len(net.Edges) > 0 && net.Edges[0].Source == 1 {
			return -3, nil
		}
		return 2, nil
	})
	total, err := p.evaluate()
	require.NoError(t, err)
	assert.InDelta(t, 4.0, total, 1e-12)

	children := 0
	for _, s := range p.Species {
		for _, f := range s.Fitness {
			assert.GreaterOrEqual(t, f, 0.0)
		}
		children += offspringQuota(s.FitnessSum, total, s.Age, &p.Config.Reproduction)
	}
	assert.LessOrEqual(t, children, p.Config.Reproduction.MaxPopulation)
	assert.Equal(t, 2.0, p.BestFitness)

	before := p.Size()
	_, err = p.RunGeneration()
	require.NoError(t, err)
	assert.LessOrEqual(t, p.Size(), before+p.Config.Reproduction.MaxPopulation)
}
