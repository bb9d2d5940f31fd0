package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <seq>",
		Short: "Remove every element from a sequence",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqName := args[0]
			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(seqName)
				if err != nil {
					return err
				}
				defer seq.Release()

				removed := seq.Len()
				seq.Clear()
				if _, err := store.Put(seqName, seq); err != nil {
					return fmt.Errorf("store sequence: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s (%d removed)\n", seqName, removed)
				return nil
			})
		},
	}
}

func newReserveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reserve <seq> <n>",
		Short: "Load a sequence with capacity for n elements and report it",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqName := args[0]
			n, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(seqName)
				if err != nil {
					return err
				}
				defer seq.Release()

				seq.Reserve(n)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: size %d, capacity %d\n", seqName, seq.Len(), seq.Cap())
				return nil
			})
		},
	}
}
