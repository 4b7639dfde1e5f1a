package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".esostore"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for esostore settings.
const envPrefix = "ESOSTORE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig resolves esostore settings. Later sources override earlier
// ones: built-in defaults, then the config file, then ESOSTORE_* variables
// (ESOSTORE_DATABASE_PATH sets database.path). Command-line flags are
// applied by the cli on top of the result.
//
// configPath comes from --config and must exist. Without it .esostore.yaml
// is looked up in the working directory and then in $HOME, and running
// without any config file is fine.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()
	locateConfigFile(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// locateConfigFile points v at the --config file, or at the search path.
// The first directory holding .esostore.yaml wins.
func locateConfigFile(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.SetConfigName(configName)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.driver", DefaultDriver)
	v.SetDefault("database.echo", false)
	v.SetDefault("database.busy_timeout", DefaultBusyTimeout)
	v.SetDefault("database.separator", DefaultSeparator)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("output.format", DefaultOutputFormat)
}
