package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newAppendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "append <seq> <name> <value>",
		Short: "Append a named value to a sequence",
		Long: `Append adds a value under the given name at the end of a sequence,
creating the sequence if it does not exist. The value is parsed as JSON;
anything that is not valid JSON is stored as a string.

Example:
  namedseq append tasks build '{"cmd":"go build"}'
  namedseq append tasks test "go test"`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqName, entryName := args[0], args[1]
			value, err := parseValue(args[2])
			if err != nil {
				return err
			}

			return a.withStore(func(store types.Store) error {
				seq, err := getOrNew(store, seqName)
				if err != nil {
					return err
				}
				defer seq.Release()

				seq.Append(value, entryName)
				info, err := store.Put(seqName, seq)
				if err != nil {
					return fmt.Errorf("store sequence: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "appended %q to %s at index %d (size %d)\n",
					entryName, seqName, info.Size-1, info.Size)
				return nil
			})
		},
	}
}
