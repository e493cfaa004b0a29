// Package cli implements the pets command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pets/internal/logging"
	"github.com/mesh-intelligence/pets/internal/paths"
	"github.com/mesh-intelligence/pets/pkg/sqlite"
	"github.com/mesh-intelligence/pets/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app is the state shared by the subcommands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	dataDir   string
	config    *viper.Viper
	logger    *slog.Logger
	logCloser io.Closer
}

// NewRootCmd creates the top-level "pets" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pets",
		Short: "A local catalog of pets",
		Long: `Pets keeps a small catalog of pet records (name, breed, gender, weight)
in an embedded SQLite database. Records are addressed by locator:
/pets for the whole catalog and /pets/{id} for one pet.`,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/pets)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/pets)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newSeedCmd(a))
	root.AddCommand(newTypeCmd(a))
	root.AddCommand(newMCPCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pets:", err)
		os.Exit(exitCode(err))
	}
}

// setup resolves directories, reads config.yaml and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	v, err := loadConfig(configDir)
	if err != nil {
		return userError(err)
	}
	a.config = v

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	a.dataDir = dataDir

	level := a.flags.logLevel
	if level == "" {
		level = v.GetString(cfgKeyLogLevel)
	}
	logger, closer, err := logging.New(logging.Config{
		Level:     level,
		Format:    v.GetString(cfgKeyLogFormat),
		File:      paths.LogFile(dataDir, v.GetString(cfgKeyLogFile)),
		MaxSizeMB: v.GetInt(cfgKeyLogMaxSizeMB),
		MaxFiles:  v.GetInt(cfgKeyLogMaxFiles),
		Stderr:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return userError(fmt.Errorf("configure logging: %w", err))
	}
	a.logger = logger
	a.logCloser = closer
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// openGateway opens the catalog in the resolved data directory. The caller
// must defer Close.
func (a *app) openGateway(ctx context.Context) (types.Gateway, error) {
	gw, err := sqlite.Open(ctx, types.Config{DataDir: a.dataDir}, sqlite.Options{
		Logger:   a.logger,
		Observer: a.logChange,
	})
	if err != nil {
		return nil, classify(fmt.Errorf("open catalog: %w", err))
	}
	return gw, nil
}

// logChange records every catalog mutation at info level.
func (a *app) logChange(c types.Change) {
	a.logger.Info("catalog changed",
		"change_id", c.ID.String(),
		"op", string(c.Op),
		"locator", c.Locator.String(),
		"rows", c.Rows)
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// classify maps gateway errors to exit codes: storage failures are system
// errors, everything else is the caller's.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	switch {
	case errors.Is(err, types.ErrStorage),
		errors.Is(err, types.ErrSchemaTooNew),
		errors.Is(err, types.ErrGatewayClosed):
		return sysError(err)
	default:
		return userError(err)
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var withExitCode interface{ ExitCode() int }
	if errors.As(err, &withExitCode) {
		return withExitCode.ExitCode()
	}
	return exitUserError
}
