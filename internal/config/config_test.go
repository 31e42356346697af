package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/report"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults to load, got error: %v", err)
	}

	if cfg.Engine.From != 0.8 || cfg.Engine.To != 1.2 || cfg.Engine.Levels != 60 {
		t.Errorf("unexpected sweep defaults: %+v", cfg.Engine)
	}
	if cfg.Engine.Calendar != gex.CalendarWeekdays {
		t.Errorf("expected weekday calendar by default, got %q", cfg.Engine.Calendar)
	}
	if cfg.Engine.GammaSource != "model" {
		t.Errorf("expected model gamma by default, got %q", cfg.Engine.GammaSource)
	}
	if cfg.Batch.Workers != 3 {
		t.Errorf("expected 3 workers by default, got %d", cfg.Batch.Workers)
	}
	if cfg.Daemon.Timezone != "America/New_York" {
		t.Errorf("unexpected timezone %q", cfg.Daemon.Timezone)
	}
	if cfg.Notify.Enabled {
		t.Error("notifications should be disabled by default")
	}
	if cfg.ReportFormat() != report.FormatJSON {
		t.Errorf("expected json reports by default, got %q", cfg.ReportFormat())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GEXCALC_ENGINE_LEVELS", "30")
	t.Setenv("GEXCALC_ENGINE_CALENDAR", "xnys")
	t.Setenv("GEXCALC_OUTPUT_COMPRESS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.Levels != 30 {
		t.Errorf("expected levels 30 from env, got %d", cfg.Engine.Levels)
	}
	if cfg.Engine.Calendar != gex.CalendarXNYS {
		t.Errorf("expected xnys calendar from env, got %q", cfg.Engine.Calendar)
	}
	if cfg.ReportFormat() != report.FormatZstd {
		t.Errorf("expected zstd reports, got %q", cfg.ReportFormat())
	}

	opts := cfg.EngineOptions()
	if opts.Profile.Levels != 30 || opts.Calendar != gex.CalendarXNYS {
		t.Errorf("unexpected engine options %+v", opts)
	}
	if _, err := gex.NewEngine(opts, nil); err != nil {
		t.Errorf("engine options from config should be valid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	path := filepath.Join(tmpDir, "gexcalc.yaml")
	yaml := `
engine:
  from: 0.9
  to: 1.1
  gamma_source: vendor
input:
  directory: /srv/chains
  tickers: [spx, ndx]
notify:
  enabled: true
  topic: levels
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.From != 0.9 || cfg.Engine.To != 1.1 || cfg.Engine.Levels != 60 {
		t.Errorf("unexpected engine section %+v", cfg.Engine)
	}
	if cfg.EngineOptions().GammaSource != gex.GammaSourceVendor {
		t.Errorf("expected vendor gamma, got %q", cfg.Engine.GammaSource)
	}
	if cfg.Input.Directory != "/srv/chains" {
		t.Errorf("unexpected input directory %q", cfg.Input.Directory)
	}
	if len(cfg.Input.Tickers) != 2 || cfg.Input.Tickers[0] != "SPX" || cfg.Input.Tickers[1] != "NDX" {
		t.Errorf("expected upper-cased tickers, got %v", cfg.Input.Tickers)
	}
	if !cfg.Notify.Enabled || cfg.Notify.Topic != "levels" || cfg.Notify.Server != "https://ntfy.sh" {
		t.Errorf("unexpected notify section %+v", cfg.Notify)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("GEXCALC_ENGINE_LEVELS", "1")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for invalid levels")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "no-such-gexcalc.yaml")); err == nil {
		t.Error("expected error for explicit missing config file")
	}
}
