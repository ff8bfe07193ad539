// Package wizard collects operator adjustments through an interactive form.
package wizard

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/rula"
)

// answers holds the values bound to the form fields.
type answers struct {
	flags      []int // indices into posture.Flags.Values
	wristTwist int
	legs       int
	muscleUse  bool
	forceLoad  int
}

func answersFrom(o rula.Overrides) *answers {
	a := &answers{
		wristTwist: o.Factors.WristTwist,
		legs:       o.Factors.Legs,
		muscleUse:  o.Factors.MuscleUse == 1,
		forceLoad:  o.Factors.ForceLoad,
	}
	for i, set := range o.Flags.Values() {
		if set {
			a.flags = append(a.flags, i)
		}
	}
	return a
}

func (a *answers) overrides() rula.Overrides {
	var values [posture.NumFlags]bool
	for _, i := range a.flags {
		if i >= 0 && i < posture.NumFlags {
			values[i] = true
		}
	}
	o := rula.Overrides{
		Flags: posture.FlagsFromValues(values),
		Factors: rula.Factors{
			WristTwist: a.wristTwist,
			Legs:       a.legs,
			ForceLoad:  a.forceLoad,
		},
	}
	if a.muscleUse {
		o.Factors.MuscleUse = 1
	}
	return o
}

// runForm is a test hook for replacing the interactive run.
var runForm = func(form *huh.Form, _ *answers) error {
	return form.Run()
}

func newForm(a *answers, tag language.Tag) *huh.Form {
	p := risk.Printer(tag)

	flagOpts := make([]huh.Option[int], 0, posture.NumFlags)
	for i, key := range risk.FlagMessages {
		flagOpts = append(flagOpts, huh.NewOption(p.Sprintf(key), i).Selected(slices.Contains(a.flags, i)))
	}

	forceOpts := make([]huh.Option[int], 0, len(risk.ForceMessages))
	for level, key := range risk.ForceMessages {
		forceOpts = append(forceOpts, huh.NewOption(p.Sprintf(key), level))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title(p.Sprintf(risk.MsgAdjustments)).
				Description(p.Sprintf(risk.MsgAdjustHelp)).
				Options(flagOpts...).
				Value(&a.flags),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(p.Sprintf(risk.MsgWristTwist)).
				Options(
					huh.NewOption(p.Sprintf(risk.MsgWristTwistMid), 1),
					huh.NewOption(p.Sprintf(risk.MsgWristTwistExtreme), 2),
				).
				Value(&a.wristTwist),
			huh.NewSelect[int]().
				Title(p.Sprintf(risk.MsgLegs)).
				Options(
					huh.NewOption(p.Sprintf(risk.MsgLegsSupported), 1),
					huh.NewOption(p.Sprintf(risk.MsgLegsNotSupported), 2),
				).
				Value(&a.legs),
			huh.NewConfirm().
				Title(p.Sprintf(risk.MsgMuscle)).
				Description(p.Sprintf(risk.MsgMuscleStatic)).
				Value(&a.muscleUse),
			huh.NewSelect[int]().
				Title(p.Sprintf(risk.MsgForce)).
				Options(forceOpts...).
				Value(&a.forceLoad),
		),
	)
}

// RunAdjustmentWizard asks for the manual adjustments of a run, starting
// from initial (usually the suggested overrides). The answers are validated
// before being returned.
func RunAdjustmentWizard(in io.Reader, out io.Writer, initial rula.Overrides, tag language.Tag) (rula.Overrides, error) {
	a := answersFrom(initial)
	form := newForm(a, tag).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := runForm(form, a); err != nil {
		return rula.Overrides{}, fmt.Errorf("wizard failed: %w", err)
	}

	o := a.overrides()
	if err := o.Validate(); err != nil {
		return rula.Overrides{}, err
	}
	return o, nil
}

// MarshalOverrides renders o as a YAML overrides document.
func MarshalOverrides(o rula.Overrides) ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overrides: %w", err)
	}
	return data, nil
}
