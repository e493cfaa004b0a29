package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pets/internal/logging"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDataDir      = "data_dir"
	cfgKeyLogLevel     = "log_level"
	cfgKeyLogFormat    = "log_format"
	cfgKeyLogFile      = "log_file"
	cfgKeyLogMaxSizeMB = "log_max_size_mb"
	cfgKeyLogMaxFiles  = "log_max_files"

	envLogLevel = "PETS_LOG_LEVEL"
)

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, logging.FormatText)
	v.SetDefault(cfgKeyLogMaxSizeMB, logging.DefaultMaxSizeMB)
	v.SetDefault(cfgKeyLogMaxFiles, logging.DefaultMaxFiles)
	_ = v.BindEnv(cfgKeyLogLevel, envLogLevel)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
