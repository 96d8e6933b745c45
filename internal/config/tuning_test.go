package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	// Getter methods fall back to compiled-in defaults when fields are nil.
	if cfg.GetHighScoreThreshold() != 0.5 {
		t.Errorf("GetHighScoreThreshold() = %f, want 0.5", cfg.GetHighScoreThreshold())
	}
	if cfg.GetLowScoreThreshold() != 0.1 {
		t.Errorf("GetLowScoreThreshold() = %f, want 0.1", cfg.GetLowScoreThreshold())
	}
	if cfg.GetIoUThresholdHigh() != 0.2 {
		t.Errorf("GetIoUThresholdHigh() = %f, want 0.2", cfg.GetIoUThresholdHigh())
	}
	if cfg.GetMinHits() != 2 {
		t.Errorf("GetMinHits() = %d, want 2", cfg.GetMinHits())
	}
	if cfg.GetMaxAge() != 30 {
		t.Errorf("GetMaxAge() = %d, want 30", cfg.GetMaxAge())
	}
	if cfg.GetTentativeMaxAge() != 3 {
		t.Errorf("GetTentativeMaxAge() = %d, want 3", cfg.GetTentativeMaxAge())
	}
	if cfg.GetProcessNoiseScale() != 1.0/20 {
		t.Errorf("GetProcessNoiseScale() = %f, want 0.05", cfg.GetProcessNoiseScale())
	}
	if cfg.GetVelocityNoiseScale() != 1.0/160 {
		t.Errorf("GetVelocityNoiseScale() = %f, want 0.00625", cfg.GetVelocityNoiseScale())
	}
	if cfg.GetReportLost() != false {
		t.Errorf("GetReportLost() = %v, want false", cfg.GetReportLost())
	}
	if cfg.GetCoordinates() != "pixel" {
		t.Errorf("GetCoordinates() = %q, want \"pixel\"", cfg.GetCoordinates())
	}
	if cfg.GetMaxHistory() != 300 {
		t.Errorf("GetMaxHistory() = %d, want 300", cfg.GetMaxHistory())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	// Partial config: unnamed fields retain their defaults.
	testJSON := `{
  "high_score_threshold": 0.6,
  "min_hits": 3,
  "report_lost": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if cfg.GetHighScoreThreshold() != 0.6 {
		t.Errorf("GetHighScoreThreshold() = %f, want 0.6", cfg.GetHighScoreThreshold())
	}
	if cfg.GetMinHits() != 3 {
		t.Errorf("GetMinHits() = %d, want 3", cfg.GetMinHits())
	}
	if cfg.GetReportLost() != true {
		t.Errorf("GetReportLost() = %v, want true", cfg.GetReportLost())
	}
	// Untouched fields keep defaults.
	if cfg.GetMaxAge() != 30 {
		t.Errorf("GetMaxAge() = %d, want default 30", cfg.GetMaxAge())
	}
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(tmpDir, "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected error for non-json extension")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(path, []byte(`{"high_score_threshold": 1.5}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected validation error for threshold > 1")
		}
	})

	t.Run("inverted thresholds", func(t *testing.T) {
		path := filepath.Join(tmpDir, "inverted.json")
		if err := os.WriteFile(path, []byte(`{"high_score_threshold": 0.3, "low_score_threshold": 0.6}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected validation error for low > high threshold")
		}
	})

	t.Run("bad coordinates value", func(t *testing.T) {
		path := filepath.Join(tmpDir, "coords.json")
		if err := os.WriteFile(path, []byte(`{"coordinates": "metric"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected validation error for unknown coordinate space")
		}
	})
}

func TestValidate_NilFieldsPass(t *testing.T) {
	if err := EmptyTuningConfig().Validate(); err != nil {
		t.Errorf("empty config should validate, got %v", err)
	}
}
