// Package projectconfig provides the ProjectConfig struct and loader for
// .rula.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/selarassehat/rula/internal/landmark"
	"github.com/selarassehat/rula/internal/posture"
)

// FileName is the configuration file looked up by Load.
const FileName = ".rula.yaml"

// maxDepth bounds the walk up from the start directory.
const maxDepth = 10

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultResultsDir = "results/"

	DefaultFPS      = landmark.DefaultFrameRate
	DefaultWorkers  = 4
	DefaultLanguage = "en"

	DefaultCacheDir = ".rula-cache"

	DefaultServerPort = 3000
)

// PathsConfig holds directory paths.
type PathsConfig struct {
	Results string `yaml:"results,omitempty"`
}

// AnalysisConfig holds analysis parameters.
type AnalysisConfig struct {
	FPS      float64 `yaml:"fps,omitempty"`
	Workers  int     `yaml:"workers,omitempty"`
	Language string  `yaml:"language,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .rula.yaml.
type ProjectConfig struct {
	Paths      PathsConfig        `yaml:"paths,omitempty"`
	Analysis   AnalysisConfig     `yaml:"analysis,omitempty"`
	Thresholds posture.Thresholds `yaml:"thresholds,omitempty"`
	Cache      CacheConfig        `yaml:"cache,omitempty"`
	Server     ServerConfig       `yaml:"server,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Results: DefaultResultsDir,
		},
		Analysis: AnalysisConfig{
			FPS:      DefaultFPS,
			Workers:  DefaultWorkers,
			Language: DefaultLanguage,
		},
		Thresholds: posture.DefaultThresholds(),
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
	}
}

// CacheEnabled reports whether result caching is switched on.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// Load finds .rula.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .rula.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxDepth {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Analysis
	if src.Analysis.FPS != 0 {
		dst.Analysis.FPS = src.Analysis.FPS
	}
	if src.Analysis.Workers != 0 {
		dst.Analysis.Workers = src.Analysis.Workers
	}
	if src.Analysis.Language != "" {
		dst.Analysis.Language = src.Analysis.Language
	}

	mergeThresholds(&dst.Thresholds, &src.Thresholds)

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
}

func mergeThresholds(dst, src *posture.Thresholds) {
	pairs := []struct {
		dst *float64
		src float64
	}{
		{&dst.ShoulderHipDistance, src.ShoulderHipDistance},
		{&dst.ElbowOffset, src.ElbowOffset},
		{&dst.WristReach, src.WristReach},
		{&dst.WristDeviationRatio, src.WristDeviationRatio},
		{&dst.NoseOffset, src.NoseOffset},
		{&dst.ShoulderTilt, src.ShoulderTilt},
		{&dst.TrunkTwistRatio, src.TrunkTwistRatio},
		{&dst.LateralShift, src.LateralShift},
	}
	for _, p := range pairs {
		if p.src != 0 {
			*p.dst = p.src
		}
	}
}

func boolPtr(b bool) *bool {
	return &b
}
