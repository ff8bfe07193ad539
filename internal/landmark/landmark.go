// Package landmark models the per-frame body landmarks produced by the
// external pose-estimation engine and decodes its JSON Lines output.
package landmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Index is a topographic landmark position in the 33-point body model.
type Index int

// Landmark positions used by the scoring engine.
const (
	Nose          Index = 0
	LeftShoulder  Index = 11
	RightShoulder Index = 12
	LeftElbow     Index = 13
	RightElbow    Index = 14
	LeftWrist     Index = 15
	RightWrist    Index = 16
	LeftHip       Index = 23
	RightHip      Index = 24
)

// Count is the number of positions defined by the body model.
const Count = 33

// Required lists every index a frame must carry to be scored.
var Required = []Index{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
}

var names = map[Index]string{
	Nose:          "nose",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
}

func (i Index) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return "landmark_" + strconv.Itoa(int(i))
}

// Point is a landmark position in normalized image coordinates. X and Y are
// roughly in [0, 1] with Y growing downwards; Z is depth relative to the hips.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Vec returns the point as a gonum vector.
func (p Point) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Set holds the landmarks detected in a single frame.
type Set map[Index]Point

// Missing returns the required indices absent from the set, in ascending order.
func (s Set) Missing() []Index {
	var missing []Index
	for _, idx := range Required {
		if _, ok := s[idx]; !ok {
			missing = append(missing, idx)
		}
	}
	return missing
}

// UnmarshalJSON accepts either a positional array (null entries are skipped)
// or an object keyed by decimal index.
func (s *Set) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	out := Set{}
	if len(data) > 0 && data[0] == '[' {
		var points []*Point
		if err := json.Unmarshal(data, &points); err != nil {
			return err
		}
		if len(points) > Count {
			return fmt.Errorf("landmark array has %d entries, at most %d allowed", len(points), Count)
		}
		for i, p := range points {
			if p != nil {
				out[Index(i)] = *p
			}
		}
		*s = out
		return nil
	}

	var keyed map[string]Point
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	for k, p := range keyed {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 || n >= Count {
			return fmt.Errorf("invalid landmark index %q", k)
		}
		out[Index(n)] = p
	}
	*s = out
	return nil
}

// MarshalJSON writes the set as an object keyed by decimal index.
func (s Set) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	keys := make([]Index, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		p, err := json.Marshal(s[k])
		if err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(int(k))))
		buf.WriteByte(':')
		buf.Write(p)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record is one frame of pose-engine output. A record without landmarks is
// the engine's explicit "no detection this frame" marker.
type Record struct {
	Frame     int     `json:"frame"`
	Timestamp float64 `json:"timestamp"`
	Landmarks Set     `json:"landmarks"`
}

// Detected reports whether the pose engine found a body in this frame.
func (r Record) Detected() bool {
	return len(r.Landmarks) > 0
}
