// Package catalog holds the named container presets and truck classes that
// callers may resolve into packing inputs. The packer itself never reads it.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/eugenenazirov/load-planner/internal/packer"
)

// DefaultMaxGrossWeight is the assumed gross ceiling of a loaded container, in kilograms.
const DefaultMaxGrossWeight = 30000

var (
	// ErrUnknownContainer indicates no container preset matches the requested name.
	ErrUnknownContainer = errors.New("unknown container preset")
	// ErrUnknownTruck indicates no truck class matches the requested name.
	ErrUnknownTruck = errors.New("unknown truck class")
	// ErrInvalidCatalog indicates preset data violates validation rules.
	ErrInvalidCatalog = errors.New("invalid catalog entry")
)

// ContainerPreset describes a standard shipping container. Dimensions are
// interior centimetres, TareWeight is the empty weight in kilograms.
type ContainerPreset struct {
	Name       string  `json:"name" yaml:"name"`
	Label      string  `json:"label" yaml:"label"`
	Width      float64 `json:"width" yaml:"width"`
	Length     float64 `json:"length" yaml:"length"`
	Height     float64 `json:"height" yaml:"height"`
	TareWeight float64 `json:"tareWeight" yaml:"tare_weight"`
}

// Container returns the packing bounds of the preset.
func (p ContainerPreset) Container() packer.Container {
	return packer.Container{Width: p.Width, Length: p.Length, Height: p.Height}
}

// Payload returns how much cargo weight fits under maxGross once the tare is deducted.
func (p ContainerPreset) Payload(maxGross float64) float64 {
	return math.Max(0, maxGross-p.TareWeight)
}

// TruckClass is a truck category with its legal maximum load in kilograms.
type TruckClass struct {
	Name      string  `json:"name" yaml:"name"`
	Label     string  `json:"label" yaml:"label"`
	MaxWeight float64 `json:"maxWeight" yaml:"max_weight"`
}

var defaultContainers = []ContainerPreset{
	{Name: "20ft", Label: "20 ft standard", Width: 244, Length: 610, Height: 251, TareWeight: 2200},
	{Name: "40ft", Label: "40 ft standard", Width: 244, Length: 1219, Height: 251, TareWeight: 3800},
	{Name: "40ft-hc", Label: "40 ft High Cube", Width: 244, Length: 1219, Height: 290, TareWeight: 3900},
	{Name: "45ft", Label: "45 ft High Cube", Width: 244, Length: 1370, Height: 290, TareWeight: 4000},
}

var defaultTrucks = []TruckClass{
	{Name: "4-wheel", Label: "4-wheel truck", MaxWeight: 9500},
	{Name: "6-wheel", Label: "6-wheel truck", MaxWeight: 15000},
	{Name: "10-wheel", Label: "10-wheel truck", MaxWeight: 25000},
	{Name: "12-wheel", Label: "12-wheel truck", MaxWeight: 30000},
	{Name: "18-wheel-trailer", Label: "18-wheel trailer", MaxWeight: 47000},
	{Name: "24-wheel-trailer", Label: "22/24-wheel trailer", MaxWeight: 50500},
}

// DefaultContainers returns a copy of the built-in container presets.
func DefaultContainers() []ContainerPreset {
	return slices.Clone(defaultContainers)
}

// DefaultTrucks returns a copy of the built-in truck classes.
func DefaultTrucks() []TruckClass {
	return slices.Clone(defaultTrucks)
}

// Catalog provides access to presets used to build packing requests.
type Catalog interface {
	Containers() []ContainerPreset
	Trucks() []TruckClass
	Container(name string) (ContainerPreset, error)
	Truck(name string) (TruckClass, error)
	SetContainers(presets []ContainerPreset) error
	SetTrucks(trucks []TruckClass) error
	MaxGrossWeight() float64
}

// MemoryCatalog keeps presets in-memory and guards access with a RWMutex.
type MemoryCatalog struct {
	mu             sync.RWMutex
	containers     []ContainerPreset
	trucks         []TruckClass
	maxGrossWeight float64
}

// Option configures a MemoryCatalog.
type Option func(*MemoryCatalog)

// WithMaxGrossWeight overrides the gross ceiling used to derive container payloads.
func WithMaxGrossWeight(kg float64) Option {
	return func(c *MemoryCatalog) {
		if kg > 0 {
			c.maxGrossWeight = kg
		}
	}
}

// NewMemoryCatalog initialises a catalog with copies of the default presets.
func NewMemoryCatalog(opts ...Option) *MemoryCatalog {
	c := &MemoryCatalog{
		containers:     DefaultContainers(),
		trucks:         DefaultTrucks(),
		maxGrossWeight: DefaultMaxGrossWeight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Containers returns a copy of the configured container presets.
func (c *MemoryCatalog) Containers() []ContainerPreset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.containers)
}

// Trucks returns a copy of the configured truck classes.
func (c *MemoryCatalog) Trucks() []TruckClass {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.trucks)
}

// Container looks a preset up by name, ignoring case.
func (c *MemoryCatalog) Container(name string) (ContainerPreset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.containers {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return ContainerPreset{}, fmt.Errorf("%w: %q", ErrUnknownContainer, name)
}

// Truck looks a truck class up by name, ignoring case.
func (c *MemoryCatalog) Truck(name string) (TruckClass, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.trucks {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return TruckClass{}, fmt.Errorf("%w: %q", ErrUnknownTruck, name)
}

// SetContainers validates and replaces the container presets.
func (c *MemoryCatalog) SetContainers(presets []ContainerPreset) error {
	if err := ValidateContainers(presets); err != nil {
		return err
	}

	c.mu.Lock()
	c.containers = slices.Clone(presets)
	c.mu.Unlock()

	return nil
}

// SetTrucks validates and replaces the truck classes.
func (c *MemoryCatalog) SetTrucks(trucks []TruckClass) error {
	if err := ValidateTrucks(trucks); err != nil {
		return err
	}

	c.mu.Lock()
	c.trucks = slices.Clone(trucks)
	c.mu.Unlock()

	return nil
}

// MaxGrossWeight returns the gross ceiling used for container payloads.
func (c *MemoryCatalog) MaxGrossWeight() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxGrossWeight
}

// ValidateContainers checks presets for blank or duplicate names and non-positive dimensions.
func ValidateContainers(presets []ContainerPreset) error {
	if len(presets) == 0 {
		return fmt.Errorf("%w: at least one container preset is required", ErrInvalidCatalog)
	}

	seen := make(map[string]struct{}, len(presets))
	for i, p := range presets {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			return fmt.Errorf("%w: containers[%d].name is empty", ErrInvalidCatalog, i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate container preset %q", ErrInvalidCatalog, p.Name)
		}
		seen[key] = struct{}{}

		if !positive(p.Width) || !positive(p.Length) || !positive(p.Height) {
			return fmt.Errorf("%w: container preset %q needs finite, positive dimensions", ErrInvalidCatalog, p.Name)
		}
		if !nonNegative(p.TareWeight) {
			return fmt.Errorf("%w: container preset %q needs a finite, non-negative tare weight", ErrInvalidCatalog, p.Name)
		}
	}
	return nil
}

// ValidateTrucks checks truck classes for blank or duplicate names and negative weights.
func ValidateTrucks(trucks []TruckClass) error {
	if len(trucks) == 0 {
		return fmt.Errorf("%w: at least one truck class is required", ErrInvalidCatalog)
	}

	seen := make(map[string]struct{}, len(trucks))
	for i, t := range trucks {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return fmt.Errorf("%w: trucks[%d].name is empty", ErrInvalidCatalog, i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate truck class %q", ErrInvalidCatalog, t.Name)
		}
		seen[key] = struct{}{}

		if !nonNegative(t.MaxWeight) {
			return fmt.Errorf("%w: truck class %q needs a finite, non-negative max weight", ErrInvalidCatalog, t.Name)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
