package neat

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gofrs/uuid"
)

// ErrExtinct is returned when every species died out and ResetOnExtinction is off.
var ErrExtinct = errors.New("population extinct")

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config      *Config
	Species     []*Species // in creation order
	Evaluator   Evaluator
	Reporter    Reporter
	Innovations *Innovations
	Rand        Rand
	Generation  int
	Best        *Network // best genome found so far, by raw fitness
	BestFitness float64
	RunID       uuid.UUID

	activation    ActivationFunc
	nextSpeciesID int
}

// Option customizes a Population at construction.
type Option func(*Population)

// WithRand sets the random source. By default one is seeded from Config.Neat.Seed.
func WithRand(rng Rand) Option {
	return func(p *Population) { p.Rand = rng }
}

// WithReporter sets the progress reporter. The default reports nothing.
func WithReporter(r Reporter) Option {
	return func(p *Population) { p.Reporter = r }
}

// WithInnovations sets the identity sources shared by all genomes of the run.
func WithInnovations(ids *Innovations) Option {
	return func(p *Population) { p.Innovations = ids }
}

// NewPopulation creates a new Population instance.
// The first generation is one seed genome plus PopSize-1 copies of it, so
// every genome shares the identities of its fixed nodes.
func NewPopulation(config *Config, evaluator Evaluator, opts ...Option) (*Population, error) {
	p, err := newPopulation(config, evaluator, opts...)
	if err != nil {
		return nil, err
	}
	p.RunID = uuid.Must(uuid.NewV4())
	p.seed()
	return p, nil
}

func newPopulation(config *Config, evaluator Evaluator, opts ...Option) (*Population, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	activation, err := GetActivation(config.Genome.Activation)
	if err != nil {
		return nil, err
	}

	p := &Population{
		Config:     config,
		Species:    []*Species{},
		Evaluator:  evaluator,
		activation: activation,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Rand == nil {
		seed := config.Neat.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		p.Rand = NewRand(seed)
	}
	if p.Reporter == nil {
		p.Reporter = NoopReporter{}
	}
	if p.Innovations == nil {
		p.Innovations = NewInnovations()
	}
	return p, nil
}

// seed fills an empty population with copies of a fresh genome.
func (p *Population) seed() {
	g := &p.Config.Genome
	base := NewNetwork(p.Innovations, g.NumInputs, g.NumOutputs, g.NumRecurrent, p.activation)
	base.FeedForward = g.FeedForward
	p.AddToPopulation(base)
	for i := 1; i < p.Config.Neat.PopSize; i++ {
		p.AddToPopulation(base.Copy())
	}
}

// AddToPopulation places net in the first species whose average compatibility
// distance to net is below MaxSpeciesDiff, founding a new species otherwise.
// It returns the species net joined.
func (p *Population) AddToPopulation(net *Network) *Species {
	for _, s := range p.Species {
		if s.fits(net, &p.Config.SpeciesSet) {
			s.Add(net)
			return s
		}
	}
	s := NewSpecies(p.nextSpeciesID, net)
	p.nextSpeciesID++
	p.Species = append(p.Species, s)
	return s
}

// Size returns the number of genomes across all species.
func (p *Population) Size() int {
	total := 0
	for _, s := range p.Species {
		total += s.Size()
	}
	return total
}

// RunGeneration executes a single generation: evaluate, cull, reproduce.
// It returns the best genome once FitnessThreshold is reached (unless
// NoFitnessTermination is set), otherwise nil.
func (p *Population) RunGeneration() (*Network, error) {
	p.Generation++
	start := time.Now()
	p.Reporter.StartGeneration(p.Generation)

	if p.Size() == 0 {
		return p.extinct()
	}

	totalFitness, err := p.evaluate()
	if err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}
	p.Reporter.PostEvaluate(p.Generation, p.Species, p.Best, p.BestFitness)

	if !p.Config.Neat.NoFitnessTermination && p.Best != nil && p.BestFitness >= p.Config.Neat.FitnessThreshold {
		p.Reporter.EndGeneration(p.Generation, p.Species, time.Since(start))
		return p.Best, nil
	}

	p.cull()
	if err := p.reproduce(totalFitness); err != nil {
		return nil, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}
	if p.Size() == 0 {
		return p.extinct()
	}

	p.Reporter.EndGeneration(p.Generation, p.Species, time.Since(start))
	return nil, nil
}

// Evolve runs up to n generations and stops early at a winner or an error.
func (p *Population) Evolve(n int) (*Network, error) {
	for i := 0; i < n; i++ {
		winner, err := p.RunGeneration()
		if err != nil {
			return p.Best, err
		}
		if winner != nil {
			return winner, nil
		}
	}
	return nil, nil
}

// evaluate scores every genome, normalizes by species size, updates the
// per-species sums and returns the population total. Negative scores count
// as 0 toward the species share so offspring quotas stay proportional.
func (p *Population) evaluate() (float64, error) {
	total := 0.0
	for _, s := range p.Species {
		size := float64(s.Size())
		for i, net := range s.Members {
			net.ResetState()
			raw, err := p.Evaluator.Evaluate(net)
			if err != nil {
				return 0, fmt.Errorf("species %d member %d: %w", s.ID, i, err)
			}
			if math.IsNaN(raw) || math.IsInf(raw, 0) {
				return 0, fmt.Errorf("species %d member %d: fitness %v is not finite", s.ID, i, raw)
			}
			if p.Best == nil || raw > p.BestFitness {
				p.Best = net
				p.BestFitness = raw
			}
			s.Fitness[i] = math.Max(0, raw) / size
		}
		total += s.UpdateFitnessSum()
	}
	return total, nil
}

// extinct handles an empty population.
func (p *Population) extinct() (*Network, error) {
	if !p.Config.Neat.ResetOnExtinction {
		return nil, fmt.Errorf("generation %d: %w", p.Generation, ErrExtinct)
	}
	p.Species = []*Species{}
	p.seed()
	return nil, nil
}
