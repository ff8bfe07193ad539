package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selarassehat/rula/internal/reporting"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the RULA lookup tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), reporting.FormatTables())
			return err
		},
	}
}
