// Package config holds the pipeline's tunable settings.
//
// Settings come from a YAML file (with built-in defaults matching common
// surface-science practice); service endpoints and credentials come from the
// environment, optionally seeded from a .env file. Everything is passed
// explicitly to the components that need it.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"surfgen/internal/geometry"
)

// GasSettings controls gas-phase reference cells.
type GasSettings struct {
	// CellSize is the edge length (Angstroms) of the cubic periodic cell a
	// molecule is centered in.
	CellSize float64 `yaml:"cell_size"`
}

// Center returns the cell midpoint the molecule is translated to.
func (g GasSettings) Center() [3]float64 {
	h := g.CellSize / 2
	return [3]float64{h, h, h}
}

// SlabSettings controls surface enumeration.
type SlabSettings struct {
	// Generator configures how slabs are cut from the bulk.
	Generator geometry.Settings `yaml:"generator"`
	// Enumeration configures which terminations are kept.
	Enumeration geometry.Settings `yaml:"enumeration"`
}

// AdSlabSettings controls adsorption-site enumeration.
type AdSlabSettings struct {
	// MinXY is the minimum in-plane slab extent (Angstroms) before site
	// finding; smaller slabs are tiled up to it.
	MinXY float64 `yaml:"min_xy"`
}

// Settings is the full settings tree.
type Settings struct {
	Gas    GasSettings    `yaml:"gas"`
	Slab   SlabSettings   `yaml:"slab"`
	AdSlab AdSlabSettings `yaml:"adslab"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Gas: GasSettings{CellSize: 20},
		Slab: SlabSettings{
			Generator: geometry.Settings{
				"min_slab_size":     7.0,
				"min_vacuum_size":   20.0,
				"lll_reduce":        false,
				"center_slab":       true,
				"primitive":         true,
				"max_normal_search": 1,
			},
			Enumeration: geometry.Settings{
				"tol":              0.3,
				"max_broken_bonds": 0,
				"symmetrize":       false,
			},
		},
		AdSlab: AdSlabSettings{MinXY: 4.5},
	}
}

// Load reads a YAML settings file layered over the defaults. Absent keys
// keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if s.Gas.CellSize <= 0 {
		return Settings{}, fmt.Errorf("settings %s: gas.cell_size must be positive", path)
	}
	if s.AdSlab.MinXY <= 0 {
		return Settings{}, fmt.Errorf("settings %s: adslab.min_xy must be positive", path)
	}
	return s, nil
}

// Environment variable names for the external services.
const (
	EnvMatDBEndpoint    = "SURFGEN_MATDB_ENDPOINT"
	EnvMatDBAPIKey      = "SURFGEN_MATDB_API_KEY"
	EnvGeometryEndpoint = "SURFGEN_GEOMETRY_ENDPOINT"
)

// Credentials holds the endpoints and secrets read from the environment.
type Credentials struct {
	MatDBEndpoint    string
	MatDBAPIKey      string
	GeometryEndpoint string
}

// LoadCredentials reads the service environment, optionally seeding it from
// a .env file first. A missing .env file is not an error; variables already
// set in the environment win over file values.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return Credentials{
		MatDBEndpoint:    os.Getenv(EnvMatDBEndpoint),
		MatDBAPIKey:      os.Getenv(EnvMatDBAPIKey),
		GeometryEndpoint: os.Getenv(EnvGeometryEndpoint),
	}, nil
}
