package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "get <seq> <index|name>",
		Short: "Get an element by position or name",
		Long: `Get prints the element at a position, or the first element with a name.
A key that parses as an integer is a position unless --by-name is given.

Example:
  namedseq get tasks 0
  namedseq get tasks build
  namedseq get tasks 2024 --by-name`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqName, key := args[0], args[1]

			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(seqName)
				if err != nil {
					return err
				}
				defer seq.Release()

				if i, ok := keyIsIndex(key, byName); ok {
					e, err := seq.At(i)
					if err != nil {
						return err
					}
					return printJSON(cmd, entryOutput{Index: i, Name: e.Name, Value: e.Value})
				}

				v, err := seq.Lookup(key)
				if err != nil {
					return err
				}
				return printJSON(cmd, v)
			})
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "treat the key as a name even if it is numeric")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "set <seq> <index|name> <value>",
		Short: "Replace an element's value by position or name",
		Long: `Set replaces the value of the element at a position, or of the first
element with a name. The name is unchanged.

Example:
  namedseq set tasks 0 '{"cmd":"make"}'
  namedseq set tasks build '{"cmd":"make"}'`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqName, key := args[0], args[1]
			value, err := parseValue(args[2])
			if err != nil {
				return err
			}

			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(seqName)
				if err != nil {
					return err
				}
				defer seq.Release()

				if i, ok := keyIsIndex(key, byName); ok {
					ref, err := seq.Ref(i)
					if err != nil {
						return err
					}
					*ref.Value = value
				} else {
					p, err := seq.LookupRef(key)
					if err != nil {
						return err
					}
					*p = value
				}

				if _, err := store.Put(seqName, seq); err != nil {
					return fmt.Errorf("store sequence: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s[%s]\n", seqName, key)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&byName, "by-name", false, "treat the key as a name even if it is numeric")
	return cmd
}
