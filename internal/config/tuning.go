package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tracker tuning
// parameters. Fields are pointers so a partial JSON file only overrides
// what it names; the Get* accessors supply compiled-in defaults for the
// rest.
type TuningConfig struct {
	// Detection score thresholds
	HighScoreThreshold *float64 `json:"high_score_threshold,omitempty"`
	LowScoreThreshold  *float64 `json:"low_score_threshold,omitempty"`

	// Association IoU thresholds per matching pass
	IoUThresholdHigh *float64 `json:"iou_threshold_high,omitempty"`
	IoUThresholdLow  *float64 `json:"iou_threshold_low,omitempty"`

	// Lifecycle
	MinHits         *int `json:"min_hits,omitempty"`
	MaxAge          *int `json:"max_age,omitempty"`
	TentativeMaxAge *int `json:"tentative_max_age,omitempty"`

	// Motion model noise scale factors
	ProcessNoiseScale  *float64 `json:"process_noise_scale,omitempty"`
	VelocityNoiseScale *float64 `json:"velocity_noise_scale,omitempty"`

	// Output
	ReportLost  *bool   `json:"report_lost,omitempty"`
	Coordinates *string `json:"coordinates,omitempty"` // "pixel" or "normalized"
	MaxHistory  *int    `json:"max_history,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and be under the max file size. Fields omitted
// from the JSON retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into an empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories. Panics if the file cannot be loaded; intended for test
// setup and binaries that have already validated config availability.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.HighScoreThreshold != nil {
		if *c.HighScoreThreshold < 0 || *c.HighScoreThreshold > 1 {
			return fmt.Errorf("high_score_threshold must be between 0 and 1, got %f", *c.HighScoreThreshold)
		}
	}
	if c.LowScoreThreshold != nil {
		if *c.LowScoreThreshold < 0 || *c.LowScoreThreshold > 1 {
			return fmt.Errorf("low_score_threshold must be between 0 and 1, got %f", *c.LowScoreThreshold)
		}
	}
	if c.HighScoreThreshold != nil && c.LowScoreThreshold != nil {
		if *c.LowScoreThreshold > *c.HighScoreThreshold {
			return fmt.Errorf("low_score_threshold (%f) must not exceed high_score_threshold (%f)",
				*c.LowScoreThreshold, *c.HighScoreThreshold)
		}
	}
	if c.IoUThresholdHigh != nil {
		if *c.IoUThresholdHigh < 0 || *c.IoUThresholdHigh > 1 {
			return fmt.Errorf("iou_threshold_high must be between 0 and 1, got %f", *c.IoUThresholdHigh)
		}
	}
	if c.IoUThresholdLow != nil {
		if *c.IoUThresholdLow < 0 || *c.IoUThresholdLow > 1 {
			return fmt.Errorf("iou_threshold_low must be between 0 and 1, got %f", *c.IoUThresholdLow)
		}
	}
	if c.MinHits != nil && *c.MinHits < 1 {
		return fmt.Errorf("min_hits must be >= 1, got %d", *c.MinHits)
	}
	if c.MaxAge != nil && *c.MaxAge < 1 {
		return fmt.Errorf("max_age must be >= 1, got %d", *c.MaxAge)
	}
	if c.TentativeMaxAge != nil && *c.TentativeMaxAge < 0 {
		return fmt.Errorf("tentative_max_age must be >= 0, got %d", *c.TentativeMaxAge)
	}
	if c.ProcessNoiseScale != nil && *c.ProcessNoiseScale <= 0 {
		return fmt.Errorf("process_noise_scale must be positive, got %f", *c.ProcessNoiseScale)
	}
	if c.VelocityNoiseScale != nil && *c.VelocityNoiseScale <= 0 {
		return fmt.Errorf("velocity_noise_scale must be positive, got %f", *c.VelocityNoiseScale)
	}
	if c.Coordinates != nil {
		if *c.Coordinates != "pixel" && *c.Coordinates != "normalized" {
			return fmt.Errorf("coordinates must be %q or %q, got %q", "pixel", "normalized", *c.Coordinates)
		}
	}
	if c.MaxHistory != nil && *c.MaxHistory < 0 {
		return fmt.Errorf("max_history must be >= 0, got %d", *c.MaxHistory)
	}
	return nil
}

// Accessors. Each returns the configured value, or the compiled-in default
// when the field was absent from the JSON.

func (c *TuningConfig) GetHighScoreThreshold() float64 {
	if c.HighScoreThreshold != nil {
		return *c.HighScoreThreshold
	}
	return 0.5
}

func (c *TuningConfig) GetLowScoreThreshold() float64 {
	if c.LowScoreThreshold != nil {
		return *c.LowScoreThreshold
	}
	return 0.1
}

func (c *TuningConfig) GetIoUThresholdHigh() float64 {
	if c.IoUThresholdHigh != nil {
		return *c.IoUThresholdHigh
	}
	return 0.2
}

func (c *TuningConfig) GetIoUThresholdLow() float64 {
	if c.IoUThresholdLow != nil {
		return *c.IoUThresholdLow
	}
	return 0.2
}

func (c *TuningConfig) GetMinHits() int {
	if c.MinHits != nil {
		return *c.MinHits
	}
	return 2
}

func (c *TuningConfig) GetMaxAge() int {
	if c.MaxAge != nil {
		return *c.MaxAge
	}
	return 30
}

func (c *TuningConfig) GetTentativeMaxAge() int {
	if c.TentativeMaxAge != nil {
		return *c.TentativeMaxAge
	}
	return 3
}

func (c *TuningConfig) GetProcessNoiseScale() float64 {
	if c.ProcessNoiseScale != nil {
		return *c.ProcessNoiseScale
	}
	return 1.0 / 20
}

func (c *TuningConfig) GetVelocityNoiseScale() float64 {
	if c.VelocityNoiseScale != nil {
		return *c.VelocityNoiseScale
	}
	return 1.0 / 160
}

func (c *TuningConfig) GetReportLost() bool {
	if c.ReportLost != nil {
		return *c.ReportLost
	}
	return false
}

func (c *TuningConfig) GetCoordinates() string {
	if c.Coordinates != nil {
		return *c.Coordinates
	}
	return "pixel"
}

func (c *TuningConfig) GetMaxHistory() int {
	if c.MaxHistory != nil {
		return *c.MaxHistory
	}
	return 300
}
