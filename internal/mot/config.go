package mot

import (
	"github.com/banshee-data/visiontrack/internal/config"
)

// TrackerConfigFromTuning builds a TrackerConfig from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded;
// DefaultTrackerConfig carries the same compiled-in values for tests and
// callers that do not read a tuning file.
func TrackerConfigFromTuning(cfg *config.TuningConfig) TrackerConfig {
	return TrackerConfig{
		HighScoreThreshold: cfg.GetHighScoreThreshold(),
		LowScoreThreshold:  cfg.GetLowScoreThreshold(),
		IoUThresholdHigh:   cfg.GetIoUThresholdHigh(),
		IoUThresholdLow:    cfg.GetIoUThresholdLow(),
		MinHits:            cfg.GetMinHits(),
		MaxAge:             cfg.GetMaxAge(),
		TentativeMaxAge:    cfg.GetTentativeMaxAge(),
		ProcessNoiseScale:  cfg.GetProcessNoiseScale(),
		VelocityNoiseScale: cfg.GetVelocityNoiseScale(),
		MaxHistory:         cfg.GetMaxHistory(),
		ReportLost:         cfg.GetReportLost(),
		Coordinates:        CoordinateSpace(cfg.GetCoordinates()),
	}
}
