package packer

import "math"

// BoxType is a requested kind of cargo item. Dimensions share the container's unit.
type BoxType struct {
	ID       string  `json:"id" yaml:"id"`
	Width    float64 `json:"width" yaml:"width"`
	Length   float64 `json:"length" yaml:"length"`
	Height   float64 `json:"height" yaml:"height"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Quantity int     `json:"quantity" yaml:"quantity"`
}

// Volume returns the volume of a single unit.
func (b BoxType) Volume() float64 {
	return b.Width * b.Length * b.Height
}

// Container is the destination volume.
type Container struct {
	Width  float64 `json:"width" yaml:"width"`
	Length float64 `json:"length" yaml:"length"`
	Height float64 `json:"height" yaml:"height"`
}

// Volume returns the interior volume in the container's unit cubed.
func (c Container) Volume() float64 {
	return c.Width * c.Length * c.Height
}

// VolumeCubicMeters converts a centimetre based volume to cubic metres.
func (c Container) VolumeCubicMeters() float64 {
	return c.Volume() / cubicCentimetersPerCubicMeter
}

const cubicCentimetersPerCubicMeter = 1_000_000

// Position is the corner of a placed unit nearest the container origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlacedBox is one physically placed unit.
type PlacedBox struct {
	BoxID    string   `json:"boxId"`
	Position Position `json:"position"`
	Width    float64  `json:"width"`
	Length   float64  `json:"length"`
	Height   float64  `json:"height"`
	Weight   float64  `json:"weight"`
}

// Volume returns the volume occupied by the placed unit.
func (p PlacedBox) Volume() float64 {
	return p.Width * p.Length * p.Height
}

// Result aggregates one packing run. Placements are kept in placement order.
type Result struct {
	Placements        []PlacedBox
	UsedVolume        float64
	UsedVolumePercent float64
	TotalWeight       float64
	WeightBudget      float64
}

// PlacedCount returns the number of units placed.
func (r Result) PlacedCount() int {
	return len(r.Placements)
}

// PlacedByBox counts placed units per box type identifier.
func (r Result) PlacedByBox() map[string]int {
	counts := make(map[string]int)
	for _, p := range r.Placements {
		counts[p.BoxID]++
	}
	return counts
}

// WeightLimitReached reports whether the accepted weight has hit the budget.
func (r Result) WeightLimitReached() bool {
	return r.TotalWeight >= r.WeightBudget
}

// RequestedUnits sums the quantities of all box types, saturating at math.MaxInt.
func RequestedUnits(boxes []BoxType) int {
	total := 0
	for _, b := range boxes {
		if b.Quantity <= 0 {
			continue
		}
		if total > math.MaxInt-b.Quantity {
			return math.MaxInt
		}
		total += b.Quantity
	}
	return total
}

// Packer describes the behaviour required from a placement engine.
type Packer interface {
	Pack(container Container, weightBudget float64, boxes []BoxType) (Result, error)
}
