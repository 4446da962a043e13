// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/iwvelando/econloss/pkg/constants"
	"github.com/iwvelando/econloss/pkg/refdata"
)

// Configuration holds all configuration for econloss.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Data    DataConfig    `yaml:"data,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// DataConfig holds reference-data configuration: optional table file
// overrides, the live rate endpoint, and the documented fallback values
// injected into the data source at construction time.
type DataConfig struct {
	LifeTableFile     string `yaml:"lifeTableFile,omitempty"`
	WorklifeTableFile string `yaml:"worklifeTableFile,omitempty"`
	WageTableFile     string `yaml:"wageTableFile,omitempty"`
	TreasuryRateFile  string `yaml:"treasuryRateFile,omitempty"`

	// TreasuryURL, when set, layers a live 1-year treasury fetch over the
	// static rate table.
	TreasuryURL string `yaml:"treasuryURL,omitempty"`

	// LookupTimeout bounds each live reference-data fetch.
	LookupTimeout time.Duration `yaml:"lookupTimeout,omitempty"`

	FallbackDiscountRate   float64 `yaml:"fallbackDiscountRate,omitempty"`
	FallbackWageGrowthRate float64 `yaml:"fallbackWageGrowthRate,omitempty"`
	DefaultEducation       string  `yaml:"defaultEducation,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the
// YAML-formatted configuration there. A missing file yields the defaults;
// an unreadable or malformed file is an error.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetConfigType("yml")

	v.SetDefault("data.lookupTimeout", constants.DefaultLookupTimeout)
	v.SetDefault("data.fallbackDiscountRate", constants.DefaultFallbackDiscountRate)
	v.SetDefault("data.fallbackWageGrowthRate", constants.DefaultFallbackWageGrowthRate)
	v.SetDefault("data.defaultEducation", constants.DefaultEducationCategory)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			var configuration Configuration
			if err := v.Unmarshal(&configuration); err != nil {
				return nil, fmt.Errorf("unable to decode into struct, %s", err)
			}
			return &configuration, nil
		}
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// StaticConfig converts the data section into the static source's
// construction parameters.
func (c *Configuration) StaticConfig() refdata.StaticConfig {
	return refdata.StaticConfig{
		LifeTableFile:          c.Data.LifeTableFile,
		WorklifeTableFile:      c.Data.WorklifeTableFile,
		WageTableFile:          c.Data.WageTableFile,
		TreasuryRateFile:       c.Data.TreasuryRateFile,
		FallbackDiscountRate:   c.Data.FallbackDiscountRate,
		FallbackWageGrowthRate: c.Data.FallbackWageGrowthRate,
		DefaultEducation:       c.Data.DefaultEducation,
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Data.FallbackDiscountRate < 0 || c.Data.FallbackDiscountRate > 0.20 {
		warnings = append(warnings, fmt.Sprintf("fallback discount rate %.4f is outside the customary 0-20%% range",
			c.Data.FallbackDiscountRate))
	}
	if c.Data.FallbackWageGrowthRate < -0.05 || c.Data.FallbackWageGrowthRate > 0.15 {
		warnings = append(warnings, fmt.Sprintf("fallback wage growth rate %.4f is outside the customary -5-15%% range",
			c.Data.FallbackWageGrowthRate))
	}
	if c.Data.LookupTimeout <= 0 {
		warnings = append(warnings, "lookup timeout is not positive - live lookups will use the built-in default")
	}
	if c.Data.TreasuryURL != "" && c.Data.LookupTimeout > 30*time.Second {
		warnings = append(warnings, fmt.Sprintf("lookup timeout %s is long for a live rate fetch", c.Data.LookupTimeout))
	}

	return warnings
}
