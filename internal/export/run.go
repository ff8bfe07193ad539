package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/selarassehat/rula/internal/posture"
	"github.com/selarassehat/rula/internal/series"
)

// ErrInvalidRun is returned for a run file without a series.
var ErrInvalidRun = errors.New("invalid run file")

// Run is one analysed input as persisted in the results directory.
type Run struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	CreatedAt  time.Time          `json:"created_at"`
	FrameRate  float64            `json:"frame_rate"`
	Thresholds posture.Thresholds `json:"thresholds"`
	Series     *series.Series     `json:"series"`
	Adjusted   *series.Adjusted   `json:"adjusted,omitempty"`
}

// NewRun wraps a series in a run with a fresh id.
func NewRun(source string, frameRate float64, t posture.Thresholds, s *series.Series) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Source:     source,
		CreatedAt:  time.Now().UTC(),
		FrameRate:  frameRate,
		Thresholds: t,
		Series:     s,
	}
}

// Filename is the run's file name within a results directory.
func (r *Run) Filename() string {
	return r.ID + ".json"
}

// SaveRun writes r to dir, creating it if needed, and returns the file path.
func SaveRun(dir string, r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling run: %w", err)
	}
	path := filepath.Join(dir, r.Filename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run: %w", err)
	}
	return path, nil
}

// LoadRun reads a run file. A file without an id takes its name from the
// file name.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing run %s: %w", path, err)
	}
	if r.Series == nil {
		return nil, fmt.Errorf("%w: %s has no series", ErrInvalidRun, path)
	}
	if r.ID == "" {
		base := filepath.Base(path)
		r.ID = base[:len(base)-len(filepath.Ext(base))]
	}
	return &r, nil
}
