// Package cli implements the namedseq command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/namedseq/internal/paths"
	"github.com/mesh-intelligence/namedseq/pkg/namedseq"
	"github.com/mesh-intelligence/namedseq/pkg/types"
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
	verbose   bool
}

// app carries state shared by the subcommands of one command tree.
type app struct {
	flags  rootFlags
	config *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "namedseq" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:     "namedseq",
		Short:   "Store and inspect named sequences",
		Long:    "namedseq keeps ordered sequences of JSON values, each value tagged with a name.\nCopies share their names until one of them is modified.",
		Version: namedseq.Version,
		// Errors are printed by Execute with the matching exit code.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.namedseq-db)")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return userError{err}
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newAppendCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newRenameCmd(a),
		newListCmd(a),
		newClearCmd(a),
		newReserveCmd(a),
		newCopyCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "namedseq:", err)
		os.Exit(exitCode(err))
	}
}

// setup loads configuration and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := a.resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.config = cfg

	level, err := a.logLevel()
	if err != nil {
		return userError{err}
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configuration loaded", "config_dir", configDir, "backend", cfg.GetString(cfgKeyBackend))
	return nil
}

// logLevel returns debug when --verbose is set, otherwise the configured level.
func (a *app) logLevel() (slog.Level, error) {
	if a.flags.verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.config.GetString(cfgKeyLogLevel))); err != nil {
		return 0, fmt.Errorf("invalid %s: %w", cfgKeyLogLevel, err)
	}
	return level, nil
}

// resolveConfigDir follows --config-dir flag > NAMEDSEQ_CONFIG_DIR env > platform default.
func (a *app) resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(a.flags.configDir)
}

// resolveDataDir follows --data-dir flag > config.yaml data_dir >
// NAMEDSEQ_DATA_DIR env > $(CWD)/.namedseq-db.
func (a *app) resolveDataDir() (string, error) {
	var configured string
	if a.config != nil {
		configured = a.config.GetString(cfgKeyDataDir)
	}
	return paths.ResolveDataDir(a.flags.dataDir, configured)
}

// userError marks errors caused by invalid input rather than system failure.
type userError struct {
	error
}

func (e userError) Unwrap() error { return e.error }

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue userError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, namedseq.ErrOutOfRange),
		errors.Is(err, namedseq.ErrNotFound),
		errors.Is(err, types.ErrSequenceNotFound),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, types.ErrInvalidValue):
		return exitUserError
	}
	return exitSysError
}
