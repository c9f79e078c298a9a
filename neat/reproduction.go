package neat

import (
	"fmt"
	"math"
)

// offspringQuota returns how many children a species with the given fitness
// sum and age may produce. A result below two means extinction and is
// reported as 0. Species younger than the grace period always get two.
func offspringQuota(fitnessSum, totalFitness float64, age int, cfg *ReproductionConfig) int {
	share := safeDiv(fitnessSum, totalFitness)
	children := int(math.Floor(share * float64(cfg.MaxPopulation)))
	children = max(0, min(children, cfg.MaxPopulation))
	if age < cfg.GracePeriod {
		children = max(children, 2)
	}
	if children < 2 {
		return 0
	}
	return children
}

// cull removes the lowest-fitness members of every species so that roughly
// ElitePercentage*MaxPopulation genomes survive, split in proportion to
// species size. No species drops below two members.
func (p *Population) cull() {
	current := float64(p.Size())
	cfg := &p.Config.Reproduction
	totalEliminate := current - cfg.ElitePercentage*float64(cfg.MaxPopulation)
	if totalEliminate <= 0 {
		return
	}
	for _, s := range p.Species {
		share := safeDiv(float64(s.Size()), current)
		s.eliminateWorstPerforming(int(math.Floor(share * totalEliminate)))
	}
}

// reproduce produces the next generation's children. Species are visited in
// reverse creation order; each draws parents with replacement from its own
// survivors and re-inserts every child through AddToPopulation, so a child
// may land in another species or found a new one.
func (p *Population) reproduce(totalFitness float64) error {
	existing := append([]*Species(nil), p.Species...)
	parents := make([][]*Network, len(existing))
	for i, s := range existing {
		parents[i] = append([]*Network(nil), s.Members...)
	}

	for i := len(existing) - 1; i >= 0; i-- {
		s := existing[i]
		numChildren := offspringQuota(s.FitnessSum, totalFitness, s.Age, &p.Config.Reproduction)
		if numChildren == 0 || len(parents[i]) == 0 {
			p.removeSpecies(s)
			p.Reporter.SpeciesExtinct(p.Generation, s)
			continue
		}
		pool := parents[i]
		for c := 0; c < numChildren; c++ {
			a := pool[p.Rand.IntN(len(pool))]
			b := pool[p.Rand.IntN(len(pool))]
			child, err := Crossover(a, b, p.Innovations, p.Rand, &p.Config.Genome)
			if err != nil {
				return fmt.Errorf("species %d: %w", s.ID, err)
			}
			p.AddToPopulation(child)
		}
		s.Age++
	}
	return nil
}

// removeSpecies drops s and its members from the population.
func (p *Population) removeSpecies(s *Species) {
	for i, other := range p.Species {
		if other == s {
			p.Species = append(p.Species[:i], p.Species[i+1:]...)
			return
		}
	}
}
