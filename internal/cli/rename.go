package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <seq> <index> <name>",
		Short: "Rename the element at a position",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqName, newName := args[0], args[2]
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}

			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(seqName)
				if err != nil {
					return err
				}
				defer seq.Release()

				ref, err := seq.Ref(i)
				if err != nil {
					return err
				}
				old := *ref.Name
				*ref.Name = newName

				if _, err := store.Put(seqName, seq); err != nil {
					return fmt.Errorf("store sequence: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s[%d] %q -> %q\n", seqName, i, old, newName)
				return nil
			})
		},
	}
}
