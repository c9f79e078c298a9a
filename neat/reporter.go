package neat

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gosuri/uitable"
	"gonum.org/v1/gonum/stat"
)

// Reporter receives progress events from a running Population.
type Reporter interface {
	StartGeneration(generation int)
	PostEvaluate(generation int, species []*Species, best *Network, bestFitness float64)
	SpeciesExtinct(generation int, s *Species)
	EndGeneration(generation int, species []*Species, elapsed time.Duration)
}

// NoopReporter discards every event.
type NoopReporter struct{}

// StartGeneration does nothing.
func (NoopReporter) StartGeneration(int) {}

// PostEvaluate does nothing.
func (NoopReporter) PostEvaluate(int, []*Species, *Network, float64) {}

// SpeciesExtinct does nothing.
func (NoopReporter) SpeciesExtinct(int, *Species) {}

// EndGeneration does nothing.
func (NoopReporter) EndGeneration(int, []*Species, time.Duration) {}

// StdOutReporter prints a per-generation summary and a species table.
type StdOutReporter struct {
	Out         io.Writer // defaults to os.Stdout
	ShowSpecies bool
}

// NewStdOutReporter returns a reporter writing to os.Stdout.
func NewStdOutReporter(showSpecies bool) *StdOutReporter {
	return &StdOutReporter{Out: os.Stdout, ShowSpecies: showSpecies}
}

func (r *StdOutReporter) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// StartGeneration prints the generation banner.
func (r *StdOutReporter) StartGeneration(generation int) {
	fmt.Fprintf(r.out(), "\n ****** Running generation %d ****** \n\n", generation)
}

// PostEvaluate prints the mean and spread of normalized fitness and the best genome so far.
func (r *StdOutReporter) PostEvaluate(generation int, species []*Species, best *Network, bestFitness float64) {
	var fitness []float64
	for _, s := range species {
		fitness = append(fitness, s.Fitness...)
	}
	mean, std := 0.0, 0.0
	if len(fitness) > 1 {
		mean, std = stat.MeanStdDev(fitness, nil)
	} else if len(fitness) == 1 {
		mean = fitness[0]
	}
	fmt.Fprintf(r.out(), "Population's average normalized fitness: %.5f stdev: %.5f\n", mean, std)
	if best != nil {
		fmt.Fprintf(r.out(), "Best fitness: %.5f - %s\n", bestFitness, best)
	}
}

// SpeciesExtinct reports a species removed for falling below two offspring.
func (r *StdOutReporter) SpeciesExtinct(generation int, s *Species) {
	fmt.Fprintf(r.out(), "Species %d went extinct in generation %d (age %d, size %d)\n", s.ID, generation, s.Age, s.Size())
}

// EndGeneration prints the population size and elapsed time. The species
// table is included when ShowSpecies is set.
func (r *StdOutReporter) EndGeneration(generation int, species []*Species, elapsed time.Duration) {
	members := 0
	for _, s := range species {
		members += s.Size()
	}
	fmt.Fprintf(r.out(), "Population of %d members in %d species:\n", members, len(species))
	if r.ShowSpecies && len(species) > 0 {
		table := uitable.New()
		table.MaxColWidth = 50
		table.AddRow("ID", "age", "size", "fitness sum", "avg edges")
		for _, s := range species {
			edges := 0
			for _, m := range s.Members {
				edges += len(m.Edges)
			}
			table.AddRow(s.ID, s.Age, s.Size(), fmt.Sprintf("%.4f", s.FitnessSum),
				fmt.Sprintf("%.1f", safeDiv(float64(edges), float64(s.Size()))))
		}
		fmt.Fprintln(r.out(), table)
	}
	fmt.Fprintf(r.out(), "Generation time: %.3f sec\n", elapsed.Seconds())
}
