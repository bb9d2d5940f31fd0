package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [seq]",
		Short: "List sequences, or the elements of one sequence",
		Long: `Without arguments, list prints metadata for every stored sequence.
With a sequence name, it prints that sequence's elements in order.

Example:
  namedseq list
  namedseq list tasks`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.Store) error {
				if len(args) == 0 {
					infos, err := store.List()
					if err != nil {
						return err
					}
					return printJSON(cmd, infos)
				}

				seq, err := store.Get(args[0])
				if err != nil {
					return err
				}
				defer seq.Release()

				out := make([]entryOutput, 0, seq.Len())
				for i := range seq.Len() {
					e, err := seq.At(i)
					if err != nil {
						return err
					}
					out = append(out, entryOutput{Index: i, Name: e.Name, Value: e.Value})
				}
				return printJSON(cmd, out)
			})
		},
	}
}
