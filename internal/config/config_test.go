package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env file
	for _, k := range []string{"APP_NAME", "APP_VERSION", "LOG_LEVEL", "LOG_FORMAT", "REPORT_OUTPUT_DIR",
		"REPORT_LEGACY_COLUMN_DEFAULTS", "REPORT_HISTORY_DB"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Name != "employee-reports" || cfg.App.Version != "dev" {
		t.Errorf("App = %+v", cfg.App)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "auto" {
		t.Errorf("Logger = %+v", cfg.Logger)
	}
	if cfg.Report.OutputDir != "." || cfg.Report.LegacyColumnDefaults {
		t.Errorf("Report = %+v", cfg.Report)
	}
	if cfg.History.Enabled() {
		t.Error("history should be disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("REPORT_OUTPUT_DIR", "/tmp/reports")
	t.Setenv("REPORT_LEGACY_COLUMN_DEFAULTS", "true")
	t.Setenv("REPORT_HISTORY_DB", "runs.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "console" {
		t.Errorf("Logger = %+v", cfg.Logger)
	}
	if cfg.Report.OutputDir != "/tmp/reports" || !cfg.Report.LegacyColumnDefaults {
		t.Errorf("Report = %+v", cfg.Report)
	}
	if !cfg.History.Enabled() || cfg.History.DBPath != "runs.db" {
		t.Errorf("History = %+v", cfg.History)
	}
}

func TestGetEnvAsBoolFallsBackOnGarbage(t *testing.T) {
	t.Setenv("REPORT_TEST_BOOL", "maybe")
	if !getEnvAsBool("REPORT_TEST_BOOL", true) {
		t.Error("expected fallback true")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
