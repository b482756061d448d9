package predictor

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config holds configuration for the perceptron branch predictor.
type Config struct {
	// NumPerceptrons is the number of entries in the perceptron table.
	// Must be a power of 2. Default is 1024.
	NumPerceptrons uint32 `json:"num_perceptrons"`

	// HistoryLength is the number of branch outcomes kept in the global
	// and path history registers, and therefore the number of non-bias
	// weights per perceptron. Default is 64.
	HistoryLength uint32 `json:"history_length"`

	// MaxWeight is the upper saturation bound for every weight.
	// Default is 127.
	MaxWeight int32 `json:"max_weight"`

	// MinWeight is the lower saturation bound for every weight.
	// Default is -128.
	MinWeight int32 `json:"min_weight"`

	// BTBSize is the number of entries in the branch target buffer.
	// Must be a power of 2. Default is 256. The BTB only matters for
	// traces that carry target addresses.
	BTBSize uint32 `json:"btb_size"`
}

// DefaultConfig returns a Config with the standard predictor geometry.
func DefaultConfig() Config {
	return Config{
		NumPerceptrons: 1024,
		HistoryLength:  64,
		MaxWeight:      127,
		MinWeight:      -128,
		BTBSize:        256,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, "failed to read predictor config file")
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(err, "failed to parse predictor config")
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize predictor config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write predictor config file")
	}

	return nil
}

// Validate checks the structural invariants the predictor relies on.
// Table indexing uses masking, so the table size must be a power of two.
func (c Config) Validate() error {
	if c.NumPerceptrons == 0 {
		return errors.New("num_perceptrons must be > 0")
	}
	if !isPowerOfTwo(c.NumPerceptrons) {
		return errors.Errorf("num_perceptrons must be a power of 2, got %d",
			c.NumPerceptrons)
	}
	if c.HistoryLength == 0 {
		return errors.New("history_length must be > 0")
	}
	if c.MinWeight >= c.MaxWeight {
		return errors.Errorf("min_weight (%d) must be < max_weight (%d)",
			c.MinWeight, c.MaxWeight)
	}
	if c.BTBSize != 0 {
		if !isPowerOfTwo(c.BTBSize) {
			return errors.Errorf("btb_size must be a power of 2, got %d", c.BTBSize)
		}
		if c.BTBSize < btbAssociativity {
			return errors.Errorf("btb_size must be at least %d (one full set), got %d",
				btbAssociativity, c.BTBSize)
		}
	}
	return nil
}

// Clone returns a copy of the Config.
func (c Config) Clone() Config {
	return c
}

func isPowerOfTwo(v uint32) bool {
	return v&(v-1) == 0
}
