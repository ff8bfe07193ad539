package posture

import (
	"errors"
	"fmt"
	"math"

	"github.com/selarassehat/rula/internal/geometry"
	"github.com/selarassehat/rula/internal/landmark"
)

// Flags are the postural qualifiers that add to the component scores.
type Flags struct {
	ShoulderRaised bool `json:"shoulder_raised" yaml:"shoulder_raised" mapstructure:"shoulder_raised"`
	ArmAbducted    bool `json:"arm_abducted" yaml:"arm_abducted" mapstructure:"arm_abducted"`
	MidlineCross   bool `json:"midline_cross" yaml:"midline_cross" mapstructure:"midline_cross"`
	WristDeviated  bool `json:"wrist_deviated" yaml:"wrist_deviated" mapstructure:"wrist_deviated"`
	NeckTwisted    bool `json:"neck_twisted" yaml:"neck_twisted" mapstructure:"neck_twisted"`
	NeckBent       bool `json:"neck_bent" yaml:"neck_bent" mapstructure:"neck_bent"`
	TrunkTwisted   bool `json:"trunk_twisted" yaml:"trunk_twisted" mapstructure:"trunk_twisted"`
	TrunkBent      bool `json:"trunk_bent" yaml:"trunk_bent" mapstructure:"trunk_bent"`
}

// Thresholds are the cut-offs of the qualifier heuristics, in normalized
// image units except TrunkTwistRatio, which is relative to hip width.
type Thresholds struct {
	ShoulderHipDistance float64 `yaml:"shoulder_hip_distance,omitempty" json:"shoulder_hip_distance"`
	ElbowOffset         float64 `yaml:"elbow_offset,omitempty" json:"elbow_offset"`
	WristReach          float64 `yaml:"wrist_reach,omitempty" json:"wrist_reach"`
	WristDeviationRatio float64 `yaml:"wrist_deviation_ratio,omitempty" json:"wrist_deviation_ratio"`
	NoseOffset          float64 `yaml:"nose_offset,omitempty" json:"nose_offset"`
	ShoulderTilt        float64 `yaml:"shoulder_tilt,omitempty" json:"shoulder_tilt"`
	TrunkTwistRatio     float64 `yaml:"trunk_twist_ratio,omitempty" json:"trunk_twist_ratio"`
	LateralShift        float64 `yaml:"lateral_shift,omitempty" json:"lateral_shift"`
}

// DefaultThresholds returns the empirically tuned cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ShoulderHipDistance: 0.25,
		ElbowOffset:         0.15,
		WristReach:          0.3,
		WristDeviationRatio: 0.3,
		NoseOffset:          0.05,
		ShoulderTilt:        0.08,
		TrunkTwistRatio:     0.3,
		LateralShift:        0.08,
	}
}

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Validate rejects non-positive or non-finite cut-offs.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"shoulder_hip_distance", t.ShoulderHipDistance},
		{"elbow_offset", t.ElbowOffset},
		{"wrist_reach", t.WristReach},
		{"wrist_deviation_ratio", t.WristDeviationRatio},
		{"nose_offset", t.NoseOffset},
		{"shoulder_tilt", t.ShoulderTilt},
		{"trunk_twist_ratio", t.TrunkTwistRatio},
		{"lateral_shift", t.LateralShift},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidThresholds, f.name, f.value)
		}
	}
	return nil
}

// DetectFlags runs every qualifier heuristic over the raw landmark
// coordinates of one frame.
func DetectFlags(set landmark.Set, t Thresholds) (Flags, error) {
	k, err := resolve(set)
	if err != nil {
		return Flags{}, err
	}
	return detect(k, t), nil
}

func detect(k keypoints, t Thresholds) Flags {
	return Flags{
		ShoulderRaised: shoulderRaised(k, t),
		ArmAbducted:    armAbducted(k, t),
		MidlineCross:   midlineCross(k, t),
		WristDeviated:  wristDeviated(k, t),
		NeckTwisted:    neckTwisted(k, t),
		NeckBent:       neckBent(k, t),
		TrunkTwisted:   trunkTwisted(k, t),
		TrunkBent:      trunkBent(k, t),
	}
}

// A short torso in the image means the shoulders are hunched up.
func shoulderRaised(k keypoints, t Thresholds) bool {
	return math.Abs(k.shoulderMid().Y-k.hipMid().Y) < t.ShoulderHipDistance
}

func armAbducted(k keypoints, t Thresholds) bool {
	return math.Abs(k.rightElbow.X-k.rightShoulder.X) > t.ElbowOffset
}

// The nose x-coordinate stands in for the body midline.
func midlineCross(k keypoints, t Thresholds) bool {
	shoulderSide := k.rightShoulder.X - k.nose.X
	wristSide := k.rightWrist.X - k.nose.X
	if shoulderSide*wristSide < 0 {
		return true
	}
	return math.Abs(k.rightWrist.X-k.rightShoulder.X) > t.WristReach
}

func wristDeviated(k keypoints, t Thresholds) bool {
	dx := math.Abs(k.rightElbow.X - k.rightWrist.X)
	dy := math.Abs(k.rightElbow.Y - k.rightWrist.Y)
	if dy <= 0 {
		return false
	}
	return dx/(dy+geometry.Epsilon) > t.WristDeviationRatio
}

func neckTwisted(k keypoints, t Thresholds) bool {
	return math.Abs(k.nose.X-k.shoulderMid().X) > t.NoseOffset
}

func neckBent(k keypoints, t Thresholds) bool {
	return math.Abs(k.leftShoulder.Y-k.rightShoulder.Y) > t.ShoulderTilt
}

func trunkTwisted(k keypoints, t Thresholds) bool {
	shoulderWidth := math.Abs(k.leftShoulder.X - k.rightShoulder.X)
	hipWidth := math.Abs(k.leftHip.X - k.rightHip.X)
	return math.Abs(shoulderWidth-hipWidth)/(hipWidth+geometry.Epsilon) > t.TrunkTwistRatio
}

func trunkBent(k keypoints, t Thresholds) bool {
	return math.Abs(k.shoulderMid().X-k.hipMid().X) > t.LateralShift
}

// NumFlags is the number of postural qualifiers.
const NumFlags = 8

// Values returns the flags in canonical order: shoulder raised, arm abducted,
// midline cross, wrist deviated, neck twisted, neck bent, trunk twisted,
// trunk bent.
func (f Flags) Values() [NumFlags]bool {
	return [NumFlags]bool{
		f.ShoulderRaised, f.ArmAbducted, f.MidlineCross, f.WristDeviated,
		f.NeckTwisted, f.NeckBent, f.TrunkTwisted, f.TrunkBent,
	}
}

// FlagsFromValues is the inverse of Flags.Values.
func FlagsFromValues(v [NumFlags]bool) Flags {
	return Flags{
		ShoulderRaised: v[0],
		ArmAbducted:    v[1],
		MidlineCross:   v[2],
		WristDeviated:  v[3],
		NeckTwisted:    v[4],
		NeckBent:       v[5],
		TrunkTwisted:   v[6],
		TrunkBent:      v[7],
	}
}

// Count returns the number of flags set.
func (f Flags) Count() int {
	n := 0
	for _, v := range f.Values() {
		if v {
			n++
		}
	}
	return n
}

// Analyze derives angles and flags from the same frame in one pass.
func Analyze(set landmark.Set, t Thresholds) (Angles, Flags, error) {
	k, err := resolve(set)
	if err != nil {
		return Angles{}, Flags{}, err
	}
	return estimate(k), detect(k, t), nil
}
