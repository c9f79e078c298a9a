package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/gofrs/uuid"
)

// PopulationSaveData holds the parts of a Population written to a checkpoint.
// The Config is not saved; the caller supplies it again on load. Activation
// functions are relinked from Config.Genome.Activation. The random source is
// not saved, so a resumed run does not replay the original one.
type PopulationSaveData struct {
	RunID         uuid.UUID
	Generation    int
	Species       []*Species
	NextNodeID    uint64
	NextEdgeID    uint64
	NextSpeciesID int
	Best          *Network
	BestFitness   float64
}

// SaveCheckpoint saves the current state of the Population to a file.
// Uses gzip compression for smaller file size.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	saveData := PopulationSaveData{
		RunID:         p.RunID,
		Generation:    p.Generation,
		Species:       p.Species,
		NextNodeID:    p.Innovations.Nodes.Peek(),
		NextEdgeID:    p.Innovations.Edges.Peek(),
		NextSpeciesID: p.nextSpeciesID,
		Best:          p.Best,
		BestFitness:   p.BestFitness,
	}
	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}
	return file.Sync()
}

// LoadCheckpoint restores a Population from a checkpoint file written by
// SaveCheckpoint. The config must describe the same genome shape.
func LoadCheckpoint(checkpointPath string, config *Config, evaluator Evaluator, opts ...Option) (*Population, error) {
	p, err := newPopulation(config, evaluator, opts...)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := PopulationSaveData{}
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	for _, s := range saveData.Species {
		if len(s.Fitness) != len(s.Members) {
			s.Fitness = make([]float64, len(s.Members))
		}
		for _, net := range s.Members {
			if err := p.relink(net); err != nil {
				return nil, fmt.Errorf("species %d: %w", s.ID, err)
			}
		}
	}
	if saveData.Best != nil {
		if err := p.relink(saveData.Best); err != nil {
			return nil, fmt.Errorf("best genome: %w", err)
		}
	}

	p.RunID = saveData.RunID
	p.Generation = saveData.Generation
	p.Species = saveData.Species
	p.Best = saveData.Best
	p.BestFitness = saveData.BestFitness
	p.nextSpeciesID = saveData.NextSpeciesID
	p.Innovations.Nodes.Reset(saveData.NextNodeID)
	p.Innovations.Edges.Reset(saveData.NextEdgeID)
	if p.Species == nil {
		p.Species = []*Species{}
	}
	return p, nil
}

// relink restores the fields gob does not carry and checks the genome
// against the configured shape.
func (p *Population) relink(net *Network) error {
	g := &p.Config.Genome
	if net.NumInputs != g.NumInputs || net.NumOutputs != g.NumOutputs || net.NumRecurrent != g.NumRecurrent {
		return fmt.Errorf("genome shape %d/%d/%d does not match config %d/%d/%d",
			net.NumInputs, net.NumOutputs, net.NumRecurrent, g.NumInputs, g.NumOutputs, g.NumRecurrent)
	}
	if net.Edges == nil {
		net.Edges = []Edge{}
	}
	net.Activation = p.activation
	return net.Validate()
}
