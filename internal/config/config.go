// Package config loads application configuration from file and environment
// and owns global logger initialization.
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
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// EngineConfig tunes the aggregation engine.
type EngineConfig struct {
	CellSize          float64 `yaml:"cell_size_m" mapstructure:"cell_size_m"`
	CapacityFactor    float64 `yaml:"capacity_factor" mapstructure:"capacity_factor"`
	ActivityThreshold int     `yaml:"activity_threshold" mapstructure:"activity_threshold"`
	Workers           int     `yaml:"workers" mapstructure:"workers"`
}

// IngestConfig tunes CSV ingestion.
type IngestConfig struct {
	// RefLat anchors the planar projection; 0 derives it from the data.
	RefLat float64 `yaml:"ref_lat" mapstructure:"ref_lat"`
}

// GenerateConfig sets the synthetic data generator's city center.
type GenerateConfig struct {
	CenterLat float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLon float64 `yaml:"center_lon" mapstructure:"center_lon"`
	Count     int     `yaml:"count" mapstructure:"count"`
}

// ServerConfig configures the zone API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ZONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("engine.cell_size_m", 500.0)
	v.SetDefault("engine.capacity_factor", 2.0)
	v.SetDefault("engine.activity_threshold", 5)
	v.SetDefault("engine.workers", 0)
	v.SetDefault("ingest.ref_lat", 0.0)
	v.SetDefault("generate.center_lat", 37.7749)
	v.SetDefault("generate.center_lon", -122.4194)
	v.SetDefault("generate.count", 50000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 50.0)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})
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

// Validate checks that configuration required by the given mode is present
// and in range. Mode is the subcommand family: "aggregate", "generate",
// or "serve".
func Validate(cfg *Config, mode string) error {
	var problems []string

	// Engine settings are shared by every mode that aggregates.
	if mode == "aggregate" || mode == "serve" {
		if cfg.Engine.CellSize <= 0 {
			problems = append(problems, "engine.cell_size_m must be > 0")
		}
		if cfg.Engine.CapacityFactor <= 0 {
			problems = append(problems, "engine.capacity_factor must be > 0")
		}
		if cfg.Engine.ActivityThreshold < 1 {
			problems = append(problems, "engine.activity_threshold must be >= 1")
		}
		if cfg.Engine.Workers < 0 {
			problems = append(problems, "engine.workers must be >= 0")
		}
	}

	switch mode {
	case "aggregate":
	case "generate":
		if cfg.Generate.Count < 1 {
			problems = append(problems, "generate.count must be >= 1")
		}
		if cfg.Generate.CenterLat < -90 || cfg.Generate.CenterLat > 90 {
			problems = append(problems, "generate.center_lat must be in [-90,90]")
		}
	case "serve":
		if cfg.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if cfg.Server.RateLimit <= 0 {
			problems = append(problems, "server.rate_limit must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
