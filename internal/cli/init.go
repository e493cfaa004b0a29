package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pets/internal/paths"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	DataDir      string `yaml:"data_dir,omitempty"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	LogFile      string `yaml:"log_file,omitempty"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`
	LogMaxFiles  int    `yaml:"log_max_files"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the pets catalog",
		Long:  "Create the configuration and data directories, write a default config.yaml, and create the database schema.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return sysError(fmt.Errorf("create config directory: %w", err))
			}

			// Only an explicit --data-dir is pinned in the new config.yaml.
			pinned := ""
			if a.flags.dataDir != "" {
				pinned = a.dataDir
			}
			configPath := paths.ConfigFile(a.configDir)
			written, err := writeConfigIfMissing(configPath, pinned, a)
			if err != nil {
				return sysError(fmt.Errorf("write config: %w", err))
			}

			gw, err := a.openGateway(cmd.Context())
			if err != nil {
				return err
			}
			if err := gw.Close(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, map[string]any{
					"config_file":    configPath,
					"config_written": written,
					"data_dir":       a.dataDir,
				})
			}
			if written {
				fmt.Fprintf(out, "Wrote %s\n", configPath)
			}
			success.Fprintf(out, "Pets catalog initialized in %s\n", a.dataDir)
			return nil
		},
	}
}

// writeConfigIfMissing creates config.yaml with the loaded settings if the
// file does not exist. It reports whether the file was written.
func writeConfigIfMissing(path, dataDir string, a *app) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		DataDir:      dataDir,
		LogLevel:     a.config.GetString(cfgKeyLogLevel),
		LogFormat:    a.config.GetString(cfgKeyLogFormat),
		LogFile:      a.config.GetString(cfgKeyLogFile),
		LogMaxSizeMB: a.config.GetInt(cfgKeyLogMaxSizeMB),
		LogMaxFiles:  a.config.GetInt(cfgKeyLogMaxFiles),
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
