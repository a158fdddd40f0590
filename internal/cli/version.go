package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/braude/garage/pkg/garage"
)

const modulePath = "github.com/braude/garage"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the garage version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "garage v%s\nmodule: %s\n", garage.Version, modulePath)
			return nil
		},
	}
}
