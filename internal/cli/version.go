package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/namedseq"
)

const modulePath = "github.com/mesh-intelligence/namedseq"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the namedseq version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "namedseq v%s\nmodule: %s\n", namedseq.Version, modulePath)
			return nil
		},
	}
}
