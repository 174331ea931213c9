package packer

import (
	"cmp"
	"slices"
)

type shelfPacker struct{}

// placementHint bounds the initial placements capacity. Requested quantities
// are caller input and may be far larger than what the container can hold.
const placementHint = 1024

// New creates a Packer that fills the container with a single greedy
// shelf sweep: along X, then wrapping to the next Y row, then to the next Z layer.
func New() Packer {
	return &shelfPacker{}
}

// Pack places unit boxes largest-volume first. A box type stops being placed
// at the first unit that fails the fit or weight test; the remaining units of
// that type are dropped and the sweep continues with the next type.
func (p *shelfPacker) Pack(container Container, weightBudget float64, boxes []BoxType) (Result, error) {
	if err := validate(container, weightBudget, boxes); err != nil {
		return Result{}, err
	}

	s := shelf{
		container:  container,
		budget:     weightBudget,
		placements: make([]PlacedBox, 0, min(RequestedUnits(boxes), placementHint)),
	}

	for _, box := range sortByVolume(boxes) {
		for range box.Quantity {
			if !s.fits(box) || s.totalWeight+box.Weight > s.budget {
				break
			}
			s.commit(box)
		}
	}

	return Result{
		Placements:        s.placements,
		UsedVolume:        s.usedVolume,
		UsedVolumePercent: 100 * s.usedVolume / container.Volume(),
		TotalWeight:       s.totalWeight,
		WeightBudget:      weightBudget,
	}, nil
}

// shelf is the running state of one Pack call. The cursor is shared by every box type.
type shelf struct {
	container Container
	budget    float64

	x, y, z     float64
	layerHeight float64

	usedVolume  float64
	totalWeight float64
	placements  []PlacedBox
}

func (s *shelf) fits(b BoxType) bool {
	return s.x+b.Width <= s.container.Width &&
		s.y+b.Length <= s.container.Length &&
		s.z+b.Height <= s.container.Height
}

func (s *shelf) commit(b BoxType) {
	s.placements = append(s.placements, PlacedBox{
		BoxID:    b.ID,
		Position: Position{X: s.x, Y: s.y, Z: s.z},
		Width:    b.Width,
		Length:   b.Length,
		Height:   b.Height,
		Weight:   b.Weight,
	})
	s.usedVolume += b.Volume()
	s.totalWeight += b.Weight

	s.x += b.Width
	if s.x >= s.container.Width {
		s.x = 0
		s.y += b.Length
		if s.y >= s.container.Length {
			s.y = 0
			s.z += s.layerHeight
			s.layerHeight = 0
		}
	}
	// The committed unit counts toward the layer even right after a wrap.
	s.layerHeight = max(s.layerHeight, b.Height)
}

// sortByVolume returns a copy ordered by descending unit volume, keeping input order among ties.
func sortByVolume(boxes []BoxType) []BoxType {
	ordered := slices.Clone(boxes)
	slices.SortStableFunc(ordered, func(a, b BoxType) int {
		return cmp.Compare(b.Volume(), a.Volume())
	})
	return ordered
}
