package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// parametersCommand creates the parameters command.
func (c *CLI) parametersCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "parameters",
		Aliases: []string{"params"},
		Short:   "List the parameter schema",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.loadSnapshot()
			if err != nil {
				return err
			}
			defs := snap.Schema.Definitions()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}
			writeParameters(cmd.OutOrStdout(), defs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
