package rula

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/selarassehat/rula/internal/posture"
)

// ErrInvalidOverrides is returned when an override set holds an out-of-range
// factor.
var ErrInvalidOverrides = errors.New("invalid overrides")

// Factors are the RULA inputs that cannot be observed from a side-view
// recording and are supplied by the operator.
type Factors struct {
	// WristTwist is 1 for mid-range, 2 at or near end of range.
	WristTwist int `json:"wrist_twist" yaml:"wrist_twist" mapstructure:"wrist_twist"`
	// Legs is 1 when supported and balanced, 2 otherwise.
	Legs int `json:"legs" yaml:"legs" mapstructure:"legs"`
	// MuscleUse is 1 for a static or repeated posture.
	MuscleUse int `json:"muscle_use" yaml:"muscle_use" mapstructure:"muscle_use"`
	// ForceLoad is 0 (none) to 3 (shock or rapid build-up).
	ForceLoad int `json:"force_load" yaml:"force_load" mapstructure:"force_load"`
}

// DefaultFactors assumes a mid-range wrist, supported legs and no extra load.
func DefaultFactors() Factors {
	return Factors{WristTwist: 1, Legs: 1}
}

// Overrides is an operator-supplied adjustment set applied uniformly to every
// frame of a series.
type Overrides struct {
	Flags   posture.Flags `json:"flags" yaml:"flags" mapstructure:"flags"`
	Factors Factors       `json:"factors" yaml:"factors" mapstructure:"factors"`
}

// DefaultOverrides returns all flags cleared with default factors.
func DefaultOverrides() Overrides {
	return Overrides{Factors: DefaultFactors()}
}

// Validate checks every factor against its allowed range.
func (o Overrides) Validate() error {
	f := o.Factors
	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{"wrist_twist", f.WristTwist, 1, 2},
		{"legs", f.Legs, 1, 2},
		{"muscle_use", f.MuscleUse, 0, 1},
		{"force_load", f.ForceLoad, 0, 3},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidOverrides, c.name, c.min, c.max, c.value)
		}
	}
	return nil
}

// DecodeOverrides converts a generic document (parsed YAML or JSON) into an
// Overrides value. Missing fields keep their defaults.
func DecodeOverrides(doc map[string]any) (Overrides, error) {
	o := DefaultOverrides()
	if doc == nil {
		return o, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return o, fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(doc); err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalidOverrides, err)
	}
	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}
