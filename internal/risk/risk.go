// Package risk classifies RULA scores into action levels and renders the
// operator-facing text in the supported languages.
package risk

import "fmt"

// Level is a RULA action level, 1 (acceptable) to 4 (high risk).
type Level int

// Action levels.
const (
	Acceptable Level = iota + 1
	Low
	Medium
	High
)

// Bucket maps a score, typically the mean grand score of a series, to its
// action level.
func Bucket(score float64) Level {
	switch {
	case score <= 2:
		return Acceptable
	case score <= 4:
		return Low
	case score <= 6:
		return Medium
	default:
		return High
	}
}

func (l Level) String() string {
	switch l {
	case Acceptable:
		return "acceptable"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Valid reports whether l is one of the four action levels.
func (l Level) Valid() bool {
	return l >= Acceptable && l <= High
}
