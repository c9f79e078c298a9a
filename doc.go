// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm
// with recurrent buffering.
//
// NEAT is a genetic algorithm for the generation of evolving artificial neural networks.
// It alters both the weighting parameters and structures of networks, attempting to find
// a balance between the fitness of evolved solutions and their diversity.
//
// Genomes are arenas of nodes and edges. Besides inputs, outputs and hidden nodes a genome
// may carry recurrent pairs: a recurrent output whose value is fed back, one tick later,
// through its paired recurrent input. This gives evolved networks memory without letting
// the evaluator recurse forever.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population scored by an Evaluator
//	pop, err := neat.NewPopulation(config, env.XOR{})
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations
//	for i := 0; i < 100; i++ {
//		winner, err := pop.RunGeneration()
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//
//		if winner != nil {
//			fmt.Println("Solution found!")
//			break
//		}
//	}
package neat
