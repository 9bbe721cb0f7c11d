// Package config defines the application settings for budget-buckets and
// loads them from a file and the environment.
package config

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Settings holds all configuration for budget-buckets.
type Settings struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Solver  SolverConfig  `mapstructure:"solver"`
	YNAB    YNABConfig    `mapstructure:"ynab"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format     string `mapstructure:"format" default:"console" validate:"oneof=console json"`
	OutputFile string `mapstructure:"outputFile"`
}

// SolverConfig holds the default strategy and its tunables.
type SolverConfig struct {
	Strategy    string  `mapstructure:"strategy" default:"constrained" validate:"oneof=constrained unconstrained montecarlo"`
	StepSize    float64 `mapstructure:"stepSize" default:"0.01" validate:"gt=0"`
	Seed        int64   `mapstructure:"seed"`
	MaxAttempts int     `mapstructure:"maxAttempts" default:"10" validate:"gt=0"`
}

// YNABConfig holds the connection settings for the budgeting service. The
// token comes from the YNAB_API_KEY environment variable, never the file.
type YNABConfig struct {
	APIURL    string `mapstructure:"apiUrl" default:"https://api.youneedabudget.com/v1" validate:"url"`
	Token     string `mapstructure:"token"`
	Budget    string `mapstructure:"budget"`
	CachePath string `mapstructure:"cachePath" default:".budget-buckets/cache.db"`
}

var validate = validator.New()

// Load reads the settings file at path, overlaying environment variables.
// An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.AutomaticEnv()
	if err := v.BindEnv("ynab.token", "YNAB_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := defaults.Set(&settings); err != nil {
		return nil, err
	}
	if err := validate.Struct(&settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &settings, nil
}
