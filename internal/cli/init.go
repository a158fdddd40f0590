package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/braude/garage/internal/paths"
	"github.com/braude/garage/internal/sqlite"
	"github.com/braude/garage/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and prepare the dev server data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeConfigIfMissing(a.configDir)
			if err != nil {
				return sysError(err)
			}

			dataDir, err := a.dataDir()
			if err != nil {
				return err
			}
			backend := sqlite.NewBackend()
			if err := backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
				return sysError(fmt.Errorf("initialize storage: %w", err))
			}
			if err := backend.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			out := cmd.OutOrStdout()
			if written {
				fmt.Fprintln(out, "garage initialized")
			} else {
				fmt.Fprintln(out, "garage already initialized")
			}
			fmt.Fprintln(out, "  config:", a.configDir)
			fmt.Fprintln(out, "  data:  ", dataDir)
			return nil
		},
	}
	cmd.Flags().String("data-dir", "", "dev server data directory")
	return cmd
}

// dataDir resolves the dev server data directory from the data_dir setting,
// GARAGE_DATA_DIR or the platform default.
func (a *app) dataDir() (string, error) {
	dir, err := paths.ResolveDataDir("", a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return "", sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return dir, nil
}
