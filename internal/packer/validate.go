package packer

import (
	"fmt"
	"math"
)

func validate(container Container, weightBudget float64, boxes []BoxType) error {
	if err := checkDimension("container.width", container.Width); err != nil {
		return err
	}
	if err := checkDimension("container.length", container.Length); err != nil {
		return err
	}
	if err := checkDimension("container.height", container.Height); err != nil {
		return err
	}
	if err := checkWeight("weightBudget", weightBudget); err != nil {
		return err
	}

	for i, b := range boxes {
		prefix := fmt.Sprintf("boxes[%d]", i)
		if err := checkDimension(prefix+".width", b.Width); err != nil {
			return err
		}
		if err := checkDimension(prefix+".length", b.Length); err != nil {
			return err
		}
		if err := checkDimension(prefix+".height", b.Height); err != nil {
			return err
		}
		if err := checkWeight(prefix+".weight", b.Weight); err != nil {
			return err
		}
		if b.Quantity < 0 {
			return invalid(prefix+".quantity", ErrInvalidQuantity)
		}
	}

	vol := container.Volume()
	if vol == 0 || math.IsInf(vol, 0) {
		return invalid("container", ErrUndefinedUtilization)
	}
	return nil
}

func checkDimension(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return invalid(field, ErrInvalidDimension)
	}
	return nil
}

func checkWeight(field string, v float64) error {
	if !(v >= 0) || math.IsInf(v, 1) {
		return invalid(field, ErrInvalidWeight)
	}
	return nil
}
