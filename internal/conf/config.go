// Package conf handles the configuration of the harvester. Settings are
// loaded once at startup from config.yaml plus environment overrides and
// passed to constructors as an explicit value.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/tphakala/reviewharvest-go/internal/errors"
	"gopkg.in/yaml.v3"
)

// credentialsEnv overrides the configured service account path when set.
const credentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"

// TrackedApp is one application whose reviews are harvested.
type TrackedApp struct {
	Name string `yaml:"name" mapstructure:"name"` // display name written to the store
	ID   string `yaml:"id" mapstructure:"id"`     // package id used for source queries
}

// SheetSettings locates the tabular store and its credentials.
type SheetSettings struct {
	SpreadsheetID   string `yaml:"spreadsheetid" mapstructure:"spreadsheetid"`
	WorksheetName   string `yaml:"worksheetname" mapstructure:"worksheetname"`
	CredentialsPath string `yaml:"credentialspath" mapstructure:"credentialspath"`
}

// ResolveCredentials returns the service account file path, honoring the
// environment override.
func (s *SheetSettings) ResolveCredentials() string {
	if p := os.Getenv(credentialsEnv); p != "" {
		return p
	}
	return s.CredentialsPath
}

// HarvestSettings controls the ingestion run.
type HarvestSettings struct {
	Apps          []TrackedApp  `yaml:"apps" mapstructure:"apps"`
	BackfillStart string        `yaml:"backfillstart" mapstructure:"backfillstart"` // fixed start date, YYYY-MM-DD, UTC
	LookbackDays  int           `yaml:"lookbackdays" mapstructure:"lookbackdays"`   // when > 0, overrides backfillstart with now-N days
	MinTextLength int           `yaml:"mintextlength" mapstructure:"mintextlength"` // reviews at or below this length are discarded
	MaxRows       int           `yaml:"maxrows" mapstructure:"maxrows"`             // store row ceiling, checked before each app
	PageSize      int           `yaml:"pagesize" mapstructure:"pagesize"`
	Language      string        `yaml:"language" mapstructure:"language"`
	Country       string        `yaml:"country" mapstructure:"country"`
	PageDelayMin  time.Duration `yaml:"pagedelaymin" mapstructure:"pagedelaymin"` // politeness delay between page fetches
	PageDelayMax  time.Duration `yaml:"pagedelaymax" mapstructure:"pagedelaymax"`
	RatePerSecond float64       `yaml:"ratepersecond" mapstructure:"ratepersecond"` // token bucket rate for source requests
	Burst         int           `yaml:"burst" mapstructure:"burst"`
}

// StartTime computes the absolute backfill start for a run. A positive
// LookbackDays wins over the fixed BackfillStart date; this is the daily
// mode that keeps scheduled runs cheap after the initial backfill.
func (h *HarvestSettings) StartTime(now time.Time) (time.Time, error) {
	if h.LookbackDays > 0 {
		return now.UTC().AddDate(0, 0, -h.LookbackDays), nil
	}
	start, err := time.ParseInLocation("2006-01-02", h.BackfillStart, time.UTC)
	if err != nil {
		return time.Time{}, errors.Newf("invalid backfill start date %q: %w", h.BackfillStart, err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return start, nil
}

// Settings contains all configuration for the harvester.
type Settings struct {
	Debug   bool            `yaml:"debug" mapstructure:"debug"`
	Sheet   SheetSettings   `yaml:"sheet" mapstructure:"sheet"`
	Harvest HarvestSettings `yaml:"harvest" mapstructure:"harvest"`
}

// Load reads the configuration file and environment variables into a new
// Settings value.
func Load() (*Settings, error) {
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the
// configuration file, creating a default one when none exists.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the default configuration to configDir so the
// first run leaves an editable file behind.
func createDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	out, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	header := []byte("# reviewharvest configuration\n# Generated with defaults; edit sheet.spreadsheetid before the first run.\n")
	if err := os.WriteFile(configPath, append(header, out...), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "reviewharvest"),
	}, nil
}
