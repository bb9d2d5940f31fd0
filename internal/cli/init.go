package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize namedseq storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The config directory and config.yaml are created by setup.
			configDir, err := a.resolveConfigDir()
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}

			if err := a.withStore(func(types.Store) error { return nil }); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "namedseq initialized successfully")
			fmt.Fprintln(out, "  config:", configDir)
			fmt.Fprintln(out, "  data:  ", dataDir)
			return nil
		},
	}
}
