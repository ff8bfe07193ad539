// Package rula implements the RULA scoring method: component scores, the
// Table A/B/C lookups and the per-frame pipeline built on them.
package rula

import (
	"math"

	"github.com/selarassehat/rula/internal/posture"
)

// Components are the per-segment RULA scores.
type Components struct {
	UpperArm int `json:"upper_arm"`
	LowerArm int `json:"lower_arm"`
	Wrist    int `json:"wrist"`
	Neck     int `json:"neck"`
	Trunk    int `json:"trunk"`
}

// MaxWristScore caps the wrist component.
const MaxWristScore = 4

// UpperArmScore maps the shoulder flexion angle to 1–4, plus one each for a
// raised shoulder and an abducted arm.
func UpperArmScore(angle float64, raised, abducted bool) int {
	var score int
	switch {
	case angle < 20:
		score = 1
	case angle <= 45:
		score = 2
	case angle <= 90:
		score = 3
	default:
		score = 4
	}
	if raised {
		score++
	}
	if abducted {
		score++
	}
	return score
}

// LowerArmScore is 1 inside the 60–100° elbow band and 2 outside it, plus one
// when working across the midline.
func LowerArmScore(angle float64, midline bool) int {
	score := 2
	if angle >= 60 && angle <= 100 {
		score = 1
	}
	if midline {
		score++
	}
	return score
}

// WristScore maps deviation from straight to 1–2, plus one for radial/ulnar
// deviation, capped at MaxWristScore.
func WristScore(angle float64, deviated bool) int {
	score := 2
	if math.Abs(angle) <= 15 {
		score = 1
	}
	if deviated {
		score++
	}
	return min(score, MaxWristScore)
}

// NeckScore maps neck flexion to 1–3 and any extension to 4. Twist and side
// bend together add at most one.
func NeckScore(angle float64, twisted, bent bool) int {
	var score int
	switch {
	case angle >= 0 && angle < 10:
		score = 1
	case angle >= 10 && angle <= 20:
		score = 2
	case angle > 20:
		score = 3
	default:
		score = 4
	}
	if twisted || bent {
		score++
	}
	return score
}

// TrunkScore maps trunk flexion to 1–4. Twist and side bend together add at
// most one.
func TrunkScore(angle float64, twisted, bent bool) int {
	var score int
	switch {
	case angle >= 0 && angle < 10:
		score = 1
	case angle >= 10 && angle <= 20:
		score = 2
	case angle > 20 && angle <= 60:
		score = 3
	default:
		score = 4
	}
	if twisted || bent {
		score++
	}
	return score
}

// ComponentScores scores every segment of a frame.
func ComponentScores(a posture.Angles, f posture.Flags) Components {
	return Components{
		UpperArm: UpperArmScore(a.UpperArm, f.ShoulderRaised, f.ArmAbducted),
		LowerArm: LowerArmScore(a.LowerArm, f.MidlineCross),
		Wrist:    WristScore(a.Wrist, f.WristDeviated),
		Neck:     NeckScore(a.Neck, f.NeckTwisted, f.NeckBent),
		Trunk:    TrunkScore(a.Trunk, f.TrunkTwisted, f.TrunkBent),
	}
}
