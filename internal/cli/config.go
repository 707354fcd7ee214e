package cli

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full parameter surface of a compression run. Zero or negative
// numeric values fall back to the reference defaults when loaded.
type Config struct {
	Name             string `yaml:"name"`
	NumChunks        int    `yaml:"num_chunks"`
	InitialVocabSize int    `yaml:"initial_vocab_size"`
	MaxCodebookSize  int    `yaml:"max_codebook_size"`
	MaxSubtokens     int    `yaml:"max_subtokens"`
	MaxOutSeqLength  int    `yaml:"max_out_seq_length"`
	EOTTokenID       int    `yaml:"eot_token_id"`
	Workers          int    `yaml:"workers"`
}

// DefaultConfig carries the reference tool's defaults: GPT-2 vocabulary with
// its end-of-text token as the document marker.
func DefaultConfig() Config {
	return Config{
		Name:             "fineweb10B",
		NumChunks:        1,
		InitialVocabSize: 50257,
		MaxCodebookSize:  1024,
		MaxSubtokens:     4,
		MaxOutSeqLength:  1024,
		EOTTokenID:       50256,
		Workers:          1,
	}
}

// LoadConfig reads a yaml config file over the defaults. A missing file (or an
// empty path) is not an error; flags are expected to override the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.NumChunks < 0 {
		cfg.NumChunks = def.NumChunks
	}
	if cfg.InitialVocabSize <= 0 {
		cfg.InitialVocabSize = def.InitialVocabSize
	}
	if cfg.MaxCodebookSize <= 0 {
		cfg.MaxCodebookSize = def.MaxCodebookSize
	}
	if cfg.MaxSubtokens <= 0 {
		cfg.MaxSubtokens = def.MaxSubtokens
	}
	if cfg.MaxOutSeqLength <= 0 {
		cfg.MaxOutSeqLength = def.MaxOutSeqLength
	}
	if cfg.EOTTokenID < 0 {
		cfg.EOTTokenID = def.EOTTokenID
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return cfg, nil
}
