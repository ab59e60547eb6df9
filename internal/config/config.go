// Package config loads the application configuration from file and
// environment, and installs the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Region     RegionConfig   `yaml:"region" mapstructure:"region"`
	Grid       GridConfig     `yaml:"grid" mapstructure:"grid"`
	Scoring    ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Boundary   BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Store      StoreConfig    `yaml:"store" mapstructure:"store"`
	Categories string         `yaml:"categories" mapstructure:"categories"`
	Log        LogConfig      `yaml:"log" mapstructure:"log"`
}

// RegionConfig is the fixed bounding region the grid is built over.
type RegionConfig struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLon float64 `yaml:"min_lon" mapstructure:"min_lon"`
	MaxLon float64 `yaml:"max_lon" mapstructure:"max_lon"`
}

// GridConfig configures cell size and scoring parallelism.
type GridConfig struct {
	CellKm  float64 `yaml:"cell_km" mapstructure:"cell_km"`
	Workers int     `yaml:"workers" mapstructure:"workers"`
}

// ScoringConfig configures the proximity decay.
type ScoringConfig struct {
	DecayKm float64 `yaml:"decay_km" mapstructure:"decay_km"`
}

// BoundaryConfig configures segment chaining.
type BoundaryConfig struct {
	ToleranceDeg float64 `yaml:"tolerance_deg" mapstructure:"tolerance_deg"`
}

// StoreConfig configures the business-record snapshot database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml (optional) and the GEODENSITY_*
// environment, applying defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEODENSITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("grid.cell_km", 0.5)
	v.SetDefault("grid.workers", 0)
	v.SetDefault("scoring.decay_km", 0.5)
	v.SetDefault("boundary.tolerance_deg", 1e-4)
	v.SetDefault("store.path", "geodensity.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration required by a command mode: "grid"
// requires a region and cell size, "boundary" requires a chaining tolerance,
// "import" requires a store path.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "grid":
		if c.Region.MinLat == 0 && c.Region.MaxLat == 0 && c.Region.MinLon == 0 && c.Region.MaxLon == 0 {
			missing = append(missing, "region is required")
		} else {
			if c.Region.MinLat >= c.Region.MaxLat {
				missing = append(missing, "region.min_lat must be below region.max_lat")
			}
			if c.Region.MinLon >= c.Region.MaxLon {
				missing = append(missing, "region.min_lon must be below region.max_lon")
			}
		}
		if c.Grid.CellKm <= 0 {
			missing = append(missing, "grid.cell_km must be positive")
		}
		if c.Scoring.DecayKm <= 0 {
			missing = append(missing, "scoring.decay_km must be positive")
		}
	case "boundary":
		if c.Boundary.ToleranceDeg <= 0 {
			missing = append(missing, "boundary.tolerance_deg must be positive")
		}
	case "import":
		if c.Store.Path == "" {
			missing = append(missing, "store.path is required")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
