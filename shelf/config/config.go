package config

import (
	"fmt"
	"strings"
	"time"

	internal "github.com/tukku56/studyshelf/shelf"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	DataDir        string         `mapstructure:"dataDir"`
	ExtractionRoot string         `mapstructure:"extractionRoot"`
	Database       DatabaseConfig `mapstructure:"database"`
	Scan           ScanConfig     `mapstructure:"scan"`
	Dispatch       DispatchConfig `mapstructure:"dispatch"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ScanConfig stores directory-scan behavior.
type ScanConfig struct {
	// ProgressInterval is the item count between progress notifications.
	ProgressInterval int `mapstructure:"progressInterval"`
	// ExtraSkipDirs is appended to the built-in directory exclusion set.
	ExtraSkipDirs []string `mapstructure:"extraSkipDirs"`
}

// DispatchConfig stores the result-delivery handshake parameters.
type DispatchConfig struct {
	MaxAttempts int           `mapstructure:"maxAttempts"`
	RetryDelay  time.Duration `mapstructure:"retryDelay"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("dataDir", internal.DefaultDataDir)
	viper.SetDefault("extractionRoot", internal.DefaultExtractionRoot)
	viper.SetDefault("database.dsn", internal.DefaultDatabaseDSN)
	viper.SetDefault("scan.progressInterval", 250)
	viper.SetDefault("dispatch.maxAttempts", 20)
	viper.SetDefault("dispatch.retryDelay", 250*time.Millisecond)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. database.dsn becomes DATABASE_DSN

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
