// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/validate"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultLogFile is used when the config does not name a log file.
	defaultLogFile = "voi.log"
)

// Config represents the top-level application configuration.
type Config struct {
	Samples           int     `json:"samples" validate:"gt=0"`
	Seed              uint64  `json:"seed"`
	GridPoints        int     `json:"gridPoints" validate:"gte=3"`
	AttemptMultiplier int     `json:"attemptMultiplier" validate:"gte=1"`
	RejectionAdvisory float64 `json:"rejectionAdvisory" validate:"finite,gt=0,lte=1"`
	ForceSimulation   bool    `json:"forceSimulation"`
	JSONMode          bool    `json:"jsonMode"`
	Debug             bool    `json:"debug"`
	LogFile           string  `json:"logFile,omitempty"`
	ConfigPath        string  `json:"-"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Samples:           decision.DefaultSamples,
		GridPoints:        decision.DefaultGridPoints,
		AttemptMultiplier: decision.DefaultAttemptMultiplier,
		RejectionAdvisory: analysis.DefaultRejectionAdvisory,
	}
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// Validate checks the simulation settings.
func (c Config) Validate() error {
	return validate.Struct("config", c)
}

// AnalysisOptions converts the configuration into simulation options.
func (c Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		Samples:           c.Samples,
		AttemptMultiplier: c.AttemptMultiplier,
		GridPoints:        c.GridPoints,
		Seed:              c.Seed,
		ForceSimulation:   c.ForceSimulation,
		RejectionAdvisory: c.RejectionAdvisory,
	}
}

// Load reads the configuration at path over the defaults. A missing file at
// the default path yields the defaults; a missing explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if err := config.Validate(); err != nil {
			return Config{}, fmt.Errorf("config %q: %w", path, err)
		}
		config.ConfigPath = path
		return config, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		if !explicit {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}
	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config := Default()
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
