package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

// Export formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// yamlEntry is the YAML form of one element.
type yamlEntry struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <seq>",
		Short: "Export a sequence as JSON or YAML",
		Long: `Export writes a sequence as an ordered list of name/value pairs.

Example:
  namedseq export tasks
  namedseq export tasks --format yaml`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatYAML {
				return userError{fmt.Errorf("unknown format %q (valid: %s, %s)", format, formatJSON, formatYAML)}
			}
			return a.withStore(func(store types.Store) error {
				seq, err := store.Get(args[0])
				if err != nil {
					return err
				}
				defer seq.Release()

				if format == formatJSON {
					return printJSON(cmd, seq)
				}
				return printYAML(cmd, seq)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")
	return cmd
}

// printYAML writes seq as a YAML list, decoding each JSON value so that it
// renders as native YAML.
func printYAML(cmd *cobra.Command, seq *types.Record) error {
	out := make([]yamlEntry, 0, seq.Len())
	for i := range seq.Len() {
		e, err := seq.At(i)
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return fmt.Errorf("decode element %d: %w", i, err)
		}
		out = append(out, yamlEntry{Name: e.Name, Value: v})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
