// Package cli implements the garage command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/braude/garage/internal/logging"
	"github.com/braude/garage/internal/paths"
	"github.com/braude/garage/pkg/container"
	"github.com/braude/garage/pkg/garage"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configDir string
	jsonMode  bool

	cfg *viper.Viper
	log zerolog.Logger
	out io.Writer
}

// NewRootCmd creates the top-level "garage" command with its global flags
// and subcommands.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "garage",
		Short:         "Administer the clients, cars and car services of a garage",
		Version:       garage.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")
	pf.String("api-url", defaultAPIURL, "REST API root")
	pf.Duration("timeout", defaultTimeout, "per-request timeout")
	pf.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		a.out = cmd.OutOrStdout()
		return a.setup(cmd)
	}

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		clientsCmd(a),
		carsCmd(a),
		carServicesCmd(a),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(os.Stderr, "garage:", err)
	return exitCode(err)
}

// setup loads .env, the config file and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return sysError(fmt.Errorf("load .env: %w", err))
	}

	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = dir

	a.cfg, err = loadConfig(dir, cmd.Flags())
	if err != nil {
		return err
	}

	a.log, err = logging.New(logging.Config{
		Level:  a.cfg.GetString(cfgKeyLogLevel),
		Format: a.cfg.GetString(cfgKeyLogFormat),
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return userError(err)
	}
	return nil
}

// store builds a Store for the configured API.
func (a *app) store() (*garage.Store, error) {
	seq, err := container.ParseSequencing(a.cfg.GetString(cfgKeySequencing))
	if err != nil {
		return nil, userError(err)
	}
	return garage.New(a.cfg.GetString(cfgKeyAPIURL),
		garage.WithTimeout(a.cfg.GetDuration(cfgKeyTimeout)),
		garage.WithLogger(a.log),
		garage.WithSequencing(seq),
	), nil
}
