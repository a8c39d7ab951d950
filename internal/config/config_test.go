package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("default backend = %q", cfg.DataBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "csv")
	t.Setenv("CSV_DATA_DIR", "/tmp/keuangan")
	t.Setenv("SCHOOL_NAME", "SD Negeri 1")

	cfg := Load()
	if cfg.Port != "9000" || cfg.DataBackend != "csv" || cfg.CSVDataDir != "/tmp/keuangan" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.SchoolName != "SD Negeri 1" {
		t.Fatalf("school name = %q", cfg.SchoolName)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		Port:        "notaport",
		DataBackend: "oracle",
		AMQPURL:     "http://broker",
		SchoolName:  "X",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{"invalid port", "invalid data backend", "AMQP URL scheme"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateSqliteNeedsPath(t *testing.T) {
	cfg := &Config{Port: "8081", DataBackend: "sqlite", SchoolName: "X"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty sqlite path")
	}
}

func TestLoadLogoMissingFileIsNil(t *testing.T) {
	cfg := &Config{LogoPath: filepath.Join(t.TempDir(), "missing.png")}
	if got := cfg.LoadLogo(); got != nil {
		t.Fatalf("missing logo should yield nil, got %d bytes", len(got))
	}

	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.LogoPath = path
	if got := cfg.LoadLogo(); string(got) != "png-bytes" {
		t.Fatalf("logo bytes = %q", got)
	}
}
