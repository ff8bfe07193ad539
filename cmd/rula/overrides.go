package main

import (
	"github.com/spf13/cobra"

	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/validation"
)

// overrideFlags binds the inline adjustment flags shared by analyze and
// recalc. Only flags given on the command line replace the base overrides.
type overrideFlags struct {
	file string

	raised, abducted, midline, deviated   bool
	neckTwist, neckBend, trunkTwist, bend bool

	wristTwist, legs, force int
	muscle                  bool
}

var flagNames = []string{
	"raised", "abducted", "midline", "wrist-deviated",
	"neck-twisted", "neck-bent", "trunk-twisted", "trunk-bent",
	"wrist-twist", "legs", "muscle", "force",
}

func (f *overrideFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "overrides", "", "YAML or JSON overrides document")
	fs.BoolVar(&f.raised, "raised", false, "Shoulder raised")
	fs.BoolVar(&f.abducted, "abducted", false, "Upper arm abducted")
	fs.BoolVar(&f.midline, "midline", false, "Lower arm working across midline or out to side")
	fs.BoolVar(&f.deviated, "wrist-deviated", false, "Wrist bent from midline")
	fs.BoolVar(&f.neckTwist, "neck-twisted", false, "Neck twisted")
	fs.BoolVar(&f.neckBend, "neck-bent", false, "Neck side bent")
	fs.BoolVar(&f.trunkTwist, "trunk-twisted", false, "Trunk twisted")
	fs.BoolVar(&f.bend, "trunk-bent", false, "Trunk side bent")
	fs.IntVar(&f.wristTwist, "wrist-twist", 1, "Wrist twist: 1 mid-range, 2 end of range")
	fs.IntVar(&f.legs, "legs", 1, "Legs: 1 supported, 2 not supported")
	fs.BoolVar(&f.muscle, "muscle", false, "Static or repeated muscle use")
	fs.IntVar(&f.force, "force", 0, "Force/load: 0 none to 3 shock")
}

// given reports whether any adjustment was requested.
func (f *overrideFlags) given(cmd *cobra.Command) bool {
	if f.file != "" {
		return true
	}
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// resolve loads the overrides file, if any, and applies the inline flags on
// top of it.
func (f *overrideFlags) resolve(cmd *cobra.Command) (rula.Overrides, error) {
	o := rula.DefaultOverrides()
	if f.file != "" {
		loaded, err := validation.LoadOverrides(f.file)
		if err != nil {
			return o, err
		}
		o = loaded
	}

	changed := cmd.Flags().Changed
	setBool := func(name string, dst *bool, v bool) {
		if changed(name) {
			*dst = v
		}
	}
	setBool("raised", &o.Flags.ShoulderRaised, f.raised)
	setBool("abducted", &o.Flags.ArmAbducted, f.abducted)
	setBool("midline", &o.Flags.MidlineCross, f.midline)
	setBool("wrist-deviated", &o.Flags.WristDeviated, f.deviated)
	setBool("neck-twisted", &o.Flags.NeckTwisted, f.neckTwist)
	setBool("neck-bent", &o.Flags.NeckBent, f.neckBend)
	setBool("trunk-twisted", &o.Flags.TrunkTwisted, f.trunkTwist)
	setBool("trunk-bent", &o.Flags.TrunkBent, f.bend)

	if changed("wrist-twist") {
		o.Factors.WristTwist = f.wristTwist
	}
	if changed("legs") {
		o.Factors.Legs = f.legs
	}
	if changed("muscle") {
		o.Factors.MuscleUse = 0
		if f.muscle {
			o.Factors.MuscleUse = 1
		}
	}
	if changed("force") {
		o.Factors.ForceLoad = f.force
	}
	return o, o.Validate()
}
