package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/load-planner/internal/packer"
)

// manifest is the YAML planning manifest read by the CLI.
type manifest struct {
	Container       *packer.Container `yaml:"container"`
	ContainerPreset string            `yaml:"container_preset"`
	TruckClass      string            `yaml:"truck_class"`
	WeightBudget    *float64          `yaml:"weight_budget"`
	Boxes           []packer.BoxType  `yaml:"boxes"`
}

// LoadManifest reads a planning request from a YAML file.
func LoadManifest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a planning request from YAML. Unknown keys are rejected
// so that a misspelled field does not silently fall back to a preset.
func ParseManifest(data []byte) (Request, error) {
	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return Request{}, errors.New("parse manifest: manifest is empty")
		}
		return Request{}, fmt.Errorf("parse manifest: %w", err)
	}

	return Request{
		Container:       m.Container,
		ContainerPreset: m.ContainerPreset,
		TruckClass:      m.TruckClass,
		WeightBudget:    m.WeightBudget,
		Boxes:           m.Boxes,
	}, nil
}
