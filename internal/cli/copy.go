package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <src> <dst>",
		Short: "Copy a sequence under a new name",
		Long: `Copy stores the contents of src under dst, replacing any existing dst.

Example:
  namedseq copy tasks tasks-backup`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(src)
				if err != nil {
					return err
				}
				defer seq.Release()

				info, err := store.Put(dst, seq)
				if err != nil {
					return fmt.Errorf("store sequence: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "copied %s -> %s (%d elements)\n", src, dst, info.Size)
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <seq>",
		Short: "Delete a sequence",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store) error {
				if err := store.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
