package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/openspec/internal/convert"
)

var schemaCmd = &cobra.Command{
	Use:       "schema <spec|change>",
	Short:     "Print the JSON Schema of exported spec or change documents",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: convert.SchemaNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := convert.Schema(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
