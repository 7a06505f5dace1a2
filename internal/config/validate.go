package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/knolbox/internal/domain"
)

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and then the cross-field box rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := domain.ParseStudyMode(c.Session.Mode); err != nil {
		return fmt.Errorf("%w: session.mode: %w", ErrInvalidConfig, err)
	}

	if err := c.Rules.validate(); err != nil {
		return fmt.Errorf("%w: rules: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (r *RulesConfig) validate() error {
	if len(r.Boxes) != r.NumberOfBoxes {
		return fmt.Errorf("boxes lists %d entries for %d boxes", len(r.Boxes), r.NumberOfBoxes)
	}
	seen := make(map[int]bool, len(r.Boxes))
	for _, b := range r.Boxes {
		if b.Box >= r.NumberOfBoxes {
			return fmt.Errorf("box %d out of range [0, %d)", b.Box, r.NumberOfBoxes)
		}
		if seen[b.Box] {
			return fmt.Errorf("box %d configured twice", b.Box)
		}
		seen[b.Box] = true
		if b.DemoteToBox >= r.NumberOfBoxes {
			return fmt.Errorf("box %d demotes to %d, out of range [0, %d)", b.Box, b.DemoteToBox, r.NumberOfBoxes)
		}
		if b.DemoteToBox > b.Box {
			return fmt.Errorf("box %d demotes upwards to box %d", b.Box, b.DemoteToBox)
		}
	}
	return nil
}
