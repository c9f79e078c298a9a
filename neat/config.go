package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Default values for the evolutionary constants.
const (
	DefaultEdgeMutationRate      = 0.05
	DefaultAddEdgeMutationRate   = 0.02
	DefaultAddNodeMutationRate   = 0.01
	DefaultMutationStrength      = 0.3
	DefaultAddNodeMutationNumber = 5
	DefaultAddEdgeMutationNumber = 5
	DefaultMaxSpeciesDiff        = 0.2
	DefaultDistC1                = 1.0
	DefaultDistC2                = 1.0
	DefaultDistC3                = 1.0
	DefaultElitePercentage       = 0.05
	DefaultMaxPopulation         = 100
	DefaultGracePeriod           = 5
)

// Config stores the configuration parameters for an experiment.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	SpeciesSet   SpeciesSetConfig
	Reproduction ReproductionConfig
}

// NeatConfig holds run-level parameters.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"` // initial population size
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
	Seed                 uint64  `ini:"seed"` // 0 picks a random seed
}

// GenomeConfig holds the shape of the genomes and the mutation parameters.
type GenomeConfig struct {
	NumInputs    int    `ini:"num_inputs"`
	NumOutputs   int    `ini:"num_outputs"`
	NumRecurrent int    `ini:"num_recurrent"`
	Activation   string `ini:"activation"`
	FeedForward  bool   `ini:"feed_forward"` // reject add_edge mutations that close a cycle

	EdgeMutationRate      float64 `ini:"edge_mutation_rate"`
	MutationStrength      float64 `ini:"mutation_strength"`
	AddEdgeMutationRate   float64 `ini:"add_edge_mutation_rate"`
	AddNodeMutationRate   float64 `ini:"add_node_mutation_rate"`
	AddEdgeMutationNumber int     `ini:"add_edge_mutation_number"`
	AddNodeMutationNumber int     `ini:"add_node_mutation_number"`
}

// SpeciesSetConfig holds the compatibility distance parameters.
type SpeciesSetConfig struct {
	MaxSpeciesDiff float64 `ini:"max_species_diff"`
	DistC1         float64 `ini:"dist_c1"` // excess coefficient
	DistC2         float64 `ini:"dist_c2"` // disjoint coefficient
	DistC3         float64 `ini:"dist_c3"` // weight coefficient
}

// ReproductionConfig holds culling and offspring allocation parameters.
type ReproductionConfig struct {
	ElitePercentage float64 `ini:"elite_percentage"`
	MaxPopulation   int     `ini:"max_population"`
	GracePeriod     int     `ini:"grace_period"`
}

// DefaultConfig returns a configuration populated with the standard constants.
// The genome shape still has to be filled in by the caller.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:              DefaultMaxPopulation,
			NoFitnessTermination: true,
		},
		Genome: GenomeConfig{
			Activation:            "tanh",
			EdgeMutationRate:      DefaultEdgeMutationRate,
			MutationStrength:      DefaultMutationStrength,
			AddEdgeMutationRate:   DefaultAddEdgeMutationRate,
			AddNodeMutationRate:   DefaultAddNodeMutationRate,
			AddEdgeMutationNumber: DefaultAddEdgeMutationNumber,
			AddNodeMutationNumber: DefaultAddNodeMutationNumber,
		},
		SpeciesSet: SpeciesSetConfig{
			MaxSpeciesDiff: DefaultMaxSpeciesDiff,
			DistC1:         DefaultDistC1,
			DistC2:         DefaultDistC2,
			DistC3:         DefaultDistC3,
		},
		Reproduction: ReproductionConfig{
			ElitePercentage: DefaultElitePercentage,
			MaxPopulation:   DefaultMaxPopulation,
			GracePeriod:     DefaultGracePeriod,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	config, err := parseConfig(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// parseConfig accepts any source ini.LoadSources understands (path, []byte, io.Reader).
func parseConfig(source interface{}) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()

	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
	}
	if err := cfg.Section("DefaultSpeciesSet").MapTo(&config.SpeciesSet); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultSpeciesSet] section: %w", err)
	}
	if err := cfg.Section("DefaultReproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultReproduction] section: %w", err)
	}

	config.Genome.Activation = cleanIniString(config.Genome.Activation)
	if config.Genome.Activation == "" {
		config.Genome.Activation = "tanh"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the algorithm cannot work with.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if c.Genome.NumRecurrent < 0 {
		return fmt.Errorf("config error: num_recurrent cannot be negative")
	}
	if _, err := GetActivation(c.Genome.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for name, p := range map[string]float64{
		"edge_mutation_rate":     c.Genome.EdgeMutationRate,
		"add_edge_mutation_rate": c.Genome.AddEdgeMutationRate,
		"add_node_mutation_rate": c.Genome.AddNodeMutationRate,
		"elite_percentage":       c.Reproduction.ElitePercentage,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if c.Genome.MutationStrength < 0 {
		return fmt.Errorf("config error: mutation_strength cannot be negative")
	}
	if c.Genome.AddEdgeMutationNumber < 0 || c.Genome.AddNodeMutationNumber < 0 {
		return fmt.Errorf("config error: mutation numbers cannot be negative")
	}
	if c.SpeciesSet.MaxSpeciesDiff < 0 {
		return fmt.Errorf("config error: max_species_diff cannot be negative")
	}
	if c.SpeciesSet.DistC1 < 0 || c.SpeciesSet.DistC2 < 0 || c.SpeciesSet.DistC3 < 0 {
		return fmt.Errorf("config error: distance coefficients cannot be negative")
	}
	if c.Reproduction.MaxPopulation <= 0 {
		return fmt.Errorf("config error: max_population must be positive")
	}
	if c.Reproduction.GracePeriod < 0 {
		return fmt.Errorf("config error: grace_period cannot be negative")
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
