package Commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long:  "Creates missing tables, converts legacy tables and seeds the chart of accounts. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.open(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated")
			return nil
		},
	}
}
