package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()
	if s.Gas.CellSize != 20 {
		t.Fatalf("gas cell size = %v, want 20", s.Gas.CellSize)
	}
	if s.Gas.Center() != ([3]float64{10, 10, 10}) {
		t.Fatalf("gas center = %v, want cell midpoint", s.Gas.Center())
	}
	if s.AdSlab.MinXY != 4.5 {
		t.Fatalf("min_xy = %v, want 4.5", s.AdSlab.MinXY)
	}
	if s.Slab.Generator["min_slab_size"] != 7.0 {
		t.Fatalf("min_slab_size = %v, want 7", s.Slab.Generator["min_slab_size"])
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "gas:\n  cell_size: 15\nadslab:\n  min_xy: 6.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing settings: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if s.Gas.CellSize != 15 {
		t.Fatalf("gas cell size = %v, want 15", s.Gas.CellSize)
	}
	if s.AdSlab.MinXY != 6.0 {
		t.Fatalf("min_xy = %v, want 6", s.AdSlab.MinXY)
	}
	// Untouched sections keep their defaults.
	if s.Slab.Generator["min_vacuum_size"] != 20.0 {
		t.Fatalf("min_vacuum_size = %v, want default 20", s.Slab.Generator["min_vacuum_size"])
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("gas:\n  cell_size: -3\n"), 0o644); err != nil {
		t.Fatalf("writing settings: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() accepted a negative cell size")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load() accepted a missing file")
	}
}

func TestLoadCredentialsPrefersEnvironment(t *testing.T) {
	t.Setenv(EnvMatDBAPIKey, "from-env")
	t.Setenv(EnvMatDBEndpoint, "https://db.example")
	t.Setenv(EnvGeometryEndpoint, "http://localhost:8100")

	creds, err := LoadCredentials("")
	if err != nil {
		t.Fatalf("LoadCredentials() err=%v", err)
	}
	if creds.MatDBAPIKey != "from-env" || creds.MatDBEndpoint != "https://db.example" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
	if creds.GeometryEndpoint != "http://localhost:8100" {
		t.Fatalf("geometry endpoint = %q", creds.GeometryEndpoint)
	}
}

func TestLoadCredentialsSeedsFromEnvFile(t *testing.T) {
	t.Setenv(EnvMatDBAPIKey, "")
	os.Unsetenv(EnvMatDBAPIKey)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvMatDBAPIKey+"=from-file\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() err=%v", err)
	}
	if creds.MatDBAPIKey != "from-file" {
		t.Fatalf("api key = %q, want value from .env", creds.MatDBAPIKey)
	}
}

func TestLoadCredentialsMissingEnvFileIsFine(t *testing.T) {
	if _, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("LoadCredentials() err=%v for absent .env", err)
	}
}
