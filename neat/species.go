package neat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Species represents a group of genetically similar genomes.
// Members and Fitness are index-aligned and always the same length.
type Species struct {
	ID         int        // Unique identifier for the species.
	Members    []*Network // Genomes belonging to this species.
	Fitness    []float64  // Size-normalized fitness of each member.
	Age        int        // Generations the species has been through.
	FitnessSum float64    // Sum of Fitness at the last evaluation.
}

// NewSpecies creates a new species founded by the given genomes.
func NewSpecies(id int, members ...*Network) *Species {
	s := &Species{
		ID:      id,
		Members: []*Network{},
		Fitness: []float64{},
	}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Size returns the number of members.
func (s *Species) Size() int {
	return len(s.Members)
}

// Add appends a member with zero fitness.
func (s *Species) Add(net *Network) {
	s.Members = append(s.Members, net)
	s.Fitness = append(s.Fitness, 0)
}

// UpdateFitnessSum recomputes FitnessSum from the members' fitness values.
func (s *Species) UpdateFitnessSum() float64 {
	s.FitnessSum = floats.Sum(s.Fitness)
	return s.FitnessSum
}

// String returns a string representation of the Species.
func (s *Species) String() string {
	return fmt.Sprintf("Species(ID: %d, Size: %d, Age: %d, FitnessSum: %.4f)", s.ID, s.Size(), s.Age, s.FitnessSum)
}

// eliminateWorstPerforming removes up to n of the lowest-fitness members,
// never leaving fewer than two. Survivors keep their relative order.
func (s *Species) eliminateWorstPerforming(n int) {
	n = min(n, s.Size()-2)
	if n <= 0 {
		return
	}
	keep := topIndices(s.Fitness, n)
	members := make([]*Network, len(keep))
	fitness := make([]float64, len(keep))
	for i, idx := range keep {
		members[i] = s.Members[idx]
		fitness[i] = s.Fitness[idx]
	}
	s.Members = members
	s.Fitness = fitness
}

// averageDistance returns the mean compatibility distance from net to the members.
func (s *Species) averageDistance(net *Network, cfg *SpeciesSetConfig) float64 {
	total := 0.0
	for _, m := range s.Members {
		total += CompatibilityDistance(net, m, cfg)
	}
	return safeDiv(total, float64(s.Size()))
}

// fits reports whether net is close enough to the species to join it.
func (s *Species) fits(net *Network, cfg *SpeciesSetConfig) bool {
	return s.averageDistance(net, cfg) < cfg.MaxSpeciesDiff
}

// --------------------------- Compatibility ---------------------------

// geneCounts is the outcome of aligning two genomes by innovation number.
type geneCounts struct {
	Excess     int
	Disjoint   int
	Matching   int
	WeightDiff float64 // sum of |wa - wb| over matching genes
}

// alignGenes walks both innovation-sorted edge lists in step, as crossover does.
func alignGenes(a, b *Network) geneCounts {
	var c geneCounts
	i, j := 0, 0
	for i < len(a.Edges) || j < len(b.Edges) {
		switch {
		case i == len(a.Edges):
			c.Excess++
			j++
		case j == len(b.Edges):
			c.Excess++
			i++
		case a.Edges[i].ID < b.Edges[j].ID:
			c.Disjoint++
			i++
		case a.Edges[i].ID > b.Edges[j].ID:
			c.Disjoint++
			j++
		default:
			c.WeightDiff += math.Abs(a.Edges[i].Weight - b.Edges[j].Weight)
			c.Matching++
			i++
			j++
		}
	}
	return c
}

// CompatibilityDistance measures how far apart two genomes are:
//
//	C3 * avgWeightDiff + (C1*E + C2*D) / N
//
// where N is the larger edge count. Both terms fall back to 0 on a zero
// denominator.
func CompatibilityDistance(a, b *Network, cfg *SpeciesSetConfig) float64 {
	c := alignGenes(a, b)
	n := float64(max(len(a.Edges), len(b.Edges)))
	avgWeight := safeDiv(c.WeightDiff, float64(c.Matching))
	structural := safeDiv(cfg.DistC1*float64(c.Excess)+cfg.DistC2*float64(c.Disjoint), n)
	return cfg.DistC3*avgWeight + structural
}
