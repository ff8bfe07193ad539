// Package posture derives body-segment angles and postural qualifiers from a
// single frame of landmarks.
package posture

import (
	"errors"
	"fmt"
	"math"

	"github.com/selarassehat/rula/internal/geometry"
	"github.com/selarassehat/rula/internal/landmark"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMissingLandmark is wrapped by every MissingLandmarkError.
var ErrMissingLandmark = errors.New("missing landmark")

// MissingLandmarkError reports a required landmark absent from a frame.
type MissingLandmarkError struct {
	Index landmark.Index
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("%s: %s (index %d)", ErrMissingLandmark, e.Index, int(e.Index))
}

func (e *MissingLandmarkError) Unwrap() error {
	return ErrMissingLandmark
}

// Valid ranges of each derived angle, in degrees.
const (
	MaxUpperArm = 180.0
	MaxLowerArm = 180.0
	MaxWrist    = 90.0
	MinNeck     = -45.0
	MaxNeck     = 90.0
	MaxTrunk    = 90.0
)

// referenceOffset is the length of the synthetic vertical rays, in normalized
// image units.
const referenceOffset = 0.2

// forearmExtension scales the synthetic point placed past the wrist along the
// forearm direction.
const forearmExtension = 0.1

// Angles holds the five segment angles of one frame, in degrees.
type Angles struct {
	UpperArm float64 `json:"upper_arm"`
	LowerArm float64 `json:"lower_arm"`
	Wrist    float64 `json:"wrist"`
	// Neck is positive for flexion and negative for extension.
	Neck  float64 `json:"neck"`
	Trunk float64 `json:"trunk"`
}

// keypoints is the resolved subset of landmarks the estimator works with.
type keypoints struct {
	nose                        r3.Vec
	leftShoulder, rightShoulder r3.Vec
	rightElbow, rightWrist      r3.Vec
	leftHip, rightHip           r3.Vec
}

func resolve(set landmark.Set) (keypoints, error) {
	if missing := set.Missing(); len(missing) > 0 {
		return keypoints{}, &MissingLandmarkError{Index: missing[0]}
	}
	return keypoints{
		nose:          set[landmark.Nose].Vec(),
		leftShoulder:  set[landmark.LeftShoulder].Vec(),
		rightShoulder: set[landmark.RightShoulder].Vec(),
		rightElbow:    set[landmark.RightElbow].Vec(),
		rightWrist:    set[landmark.RightWrist].Vec(),
		leftHip:       set[landmark.LeftHip].Vec(),
		rightHip:      set[landmark.RightHip].Vec(),
	}, nil
}

func (k keypoints) shoulderMid() r3.Vec { return geometry.Midpoint(k.leftShoulder, k.rightShoulder) }
func (k keypoints) hipMid() r3.Vec      { return geometry.Midpoint(k.leftHip, k.rightHip) }

// EstimateAngles derives the segment angles from the right side of the body,
// assuming a side-view recording. It fails without a partial result when any
// required landmark is absent.
func EstimateAngles(set landmark.Set) (Angles, error) {
	k, err := resolve(set)
	if err != nil {
		return Angles{}, err
	}
	return estimate(k), nil
}

func estimate(k keypoints) Angles {
	shoulder, elbow, wrist := k.rightShoulder, k.rightElbow, k.rightWrist

	// Image y grows downwards, so +y is "below".
	below := r3.Add(shoulder, r3.Vec{Y: referenceOffset})
	upperArm := geometry.AngleBetween(below, shoulder, elbow)

	lowerArm := geometry.AngleBetween(shoulder, elbow, wrist)

	forearm := r3.Sub(wrist, elbow)
	beyond := r3.Vec{
		X: wrist.X + forearm.X*forearmExtension,
		Y: wrist.Y + forearm.Y*forearmExtension,
		Z: wrist.Z,
	}
	wristDeviation := math.Abs(geometry.AngleBetween(elbow, wrist, beyond) - 180)

	neckBase := k.shoulderMid()
	above := r3.Add(neckBase, r3.Vec{Y: -referenceOffset})
	neck := geometry.AngleBetween(above, neckBase, k.nose)
	if k.nose.Y <= neckBase.Y {
		neck = -neck
	}

	hips := k.hipMid()
	belowHips := r3.Add(hips, r3.Vec{Y: referenceOffset})
	trunk := geometry.AngleBetween(belowHips, hips, neckBase)

	return Angles{
		UpperArm: geometry.Clamp(upperArm, 0, MaxUpperArm),
		LowerArm: geometry.Clamp(lowerArm, 0, MaxLowerArm),
		Wrist:    geometry.Clamp(wristDeviation, 0, MaxWrist),
		Neck:     geometry.Clamp(neck, MinNeck, MaxNeck),
		Trunk:    geometry.Clamp(trunk, 0, MaxTrunk),
	}
}
