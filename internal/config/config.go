// Package config loads application configuration from file and environment
// and bootstraps the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/headwaters-lab/musselsim/internal/gravity"
	"github.com/headwaters-lab/musselsim/internal/habitability"
	"github.com/headwaters-lab/musselsim/internal/sim"
)

// Config holds the full application configuration.
type Config struct {
	Sim    SimConfig    `yaml:"sim" mapstructure:"sim"`
	Routes RoutesConfig `yaml:"routes" mapstructure:"routes"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SimConfig holds the simulation parameters.
type SimConfig struct {
	Alpha                   float64 `yaml:"alpha" mapstructure:"alpha"`
	PHThreshold             float64 `yaml:"ph_threshold" mapstructure:"ph_threshold"`
	CalciumThreshold        float64 `yaml:"calcium_threshold" mapstructure:"calcium_threshold"`
	SettleRisk              float64 `yaml:"settle_risk" mapstructure:"settle_risk"`
	DecontaminationFraction float64 `yaml:"decontamination_fraction" mapstructure:"decontamination_fraction"`
	TripsPerYear            int     `yaml:"trips_per_year" mapstructure:"trips_per_year"`
	Years                   int     `yaml:"years" mapstructure:"years"`
	Trials                  int     `yaml:"trials" mapstructure:"trials"`
	Seed                    uint64  `yaml:"seed" mapstructure:"seed"`
	Workers                 int     `yaml:"workers" mapstructure:"workers"`
}

// Params converts to the simulator's parameter struct.
func (c SimConfig) Params() sim.Params {
	return sim.Params{
		SettleRisk:      c.SettleRisk,
		Decontamination: c.DecontaminationFraction,
		TripsPerYear:    c.TripsPerYear,
		Years:           c.Years,
		Trials:          c.Trials,
		Seed:            c.Seed,
		Workers:         c.Workers,
	}
}

// RoutesConfig configures route retrieval and the cost provider.
type RoutesConfig struct {
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string  `yaml:"api_key" mapstructure:"api_key"`
	Profile  string  `yaml:"profile" mapstructure:"profile"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
	Fallback string  `yaml:"fallback" mapstructure:"fallback"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the results server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("MUSSEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sim.alpha", gravity.DefaultAlpha)
	v.SetDefault("sim.ph_threshold", habitability.DefaultPHThreshold)
	v.SetDefault("sim.calcium_threshold", habitability.DefaultCalciumThreshold)
	v.SetDefault("sim.settle_risk", 0.02)
	v.SetDefault("sim.decontamination_fraction", 0.0)
	v.SetDefault("sim.trips_per_year", 8)
	v.SetDefault("sim.years", 10)
	v.SetDefault("sim.trials", 100)
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.workers", 0)
	v.SetDefault("routes.base_url", "https://api.openrouteservice.org")
	v.SetDefault("routes.api_key", "")
	v.SetDefault("routes.profile", "driving-car")
	v.SetDefault("routes.rps", 0.6)
	v.SetDefault("routes.fallback", "greatcircle")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "musselsim.db")
	v.SetDefault("server.port", 8080)
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

// Validate checks every documented parameter range. Called before any
// simulation work starts; a violation is fatal to the run.
func (c *Config) Validate() error {
	if c.Sim.Alpha <= 0 {
		return eris.Errorf("config: sim.alpha must be positive, got %g", c.Sim.Alpha)
	}
	if c.Sim.CalciumThreshold < 0 {
		return eris.Errorf("config: sim.calcium_threshold must be non-negative, got %g", c.Sim.CalciumThreshold)
	}
	if c.Sim.PHThreshold < 0 || c.Sim.PHThreshold > 14 {
		return eris.Errorf("config: sim.ph_threshold %g not in [0,14]", c.Sim.PHThreshold)
	}
	if err := c.Sim.Params().Validate(); err != nil {
		return err
	}
	switch c.Routes.Fallback {
	case "greatcircle", "none":
	default:
		return eris.Errorf("config: routes.fallback must be greatcircle or none, got %q", c.Routes.Fallback)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: store.driver must be sqlite or postgres, got %q", c.Store.Driver)
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
