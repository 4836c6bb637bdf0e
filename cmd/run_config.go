package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/ppjets/sim"
)

// loadRunCard reads a YAML run card on top of the default configuration.
// Fields absent from the card keep their defaults; a "generator" list
// replaces the default setting lines. Unknown fields are rejected.
func loadRunCard(path string) (sim.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.RunConfig{}, fmt.Errorf("reading run card: %w", err)
	}
	return parseRunCard(data)
}

func parseRunCard(data []byte) (sim.RunConfig, error) {
	cfg := sim.DefaultRunConfig()
	cfg.Generator = nil

	// Parse YAML with strict field checking: typos must cause errors
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return sim.RunConfig{}, fmt.Errorf("parsing run card: %w", err)
	}
	if cfg.Generator == nil {
		cfg.Generator = append([]string(nil), sim.DefaultGeneratorSettings...)
	}
	return cfg, nil
}
