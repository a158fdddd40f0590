package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/braude/garage/internal/server"
	"github.com/braude/garage/internal/sqlite"
	"github.com/braude/garage/pkg/types"
)

func newServeCmd(a *app) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development REST server",
		Long: `Serve the clients, cars and car-services API from a local SQLite store.

Records are kept as JSONL files in the data directory and survive restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.dataDir()
			if err != nil {
				return err
			}
			backend := sqlite.NewBackend()
			if err := backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
				return sysError(fmt.Errorf("attach backend: %w", err))
			}
			defer func() { _ = backend.Detach() }()

			if seed {
				seeded, err := sqlite.Seed(backend)
				if err != nil {
					return sysError(fmt.Errorf("seed: %w", err))
				}
				a.log.Info().Bool("seeded", seeded).Str("data_dir", dataDir).Msg("demo data")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Backend:     backend,
				Log:         a.log,
				CORSOrigins: a.cfg.GetStringSlice(cfgKeyCORSOrigins),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on %s\n", dataDir, a.cfg.GetString(cfgKeyAddr))
			if err := srv.Run(ctx, a.cfg.GetString(cfgKeyAddr)); err != nil {
				return sysError(err)
			}
			return nil
		},
	}
	cmd.Flags().String("data-dir", "", "data directory (default: platform data dir)")
	cmd.Flags().String("addr", defaultAddr, "listen address")
	cmd.Flags().StringSlice("cors-origins", nil, "allowed browser origins")
	cmd.Flags().BoolVar(&seed, "seed", false, "fill an empty store with demo data")
	return cmd
}
