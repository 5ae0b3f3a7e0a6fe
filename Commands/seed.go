package Commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"CafePOS/Models"
)

type SeedOptions struct {
	*RootOptions
	File string
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalogue into an empty database",
		Long:  "Loads ingredients, products, recipes, employees and expenses from the built-in catalogue or a YAML/JSON5 file. Nothing happens when products already exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}

			catalog, err := Models.DefaultCatalog()
			if opts.File != "" {
				catalog, err = Models.LoadCatalog(opts.File)
			}
			if err != nil {
				return err
			}

			if err := Models.EnsureAdmin(db, opts.Config.Defaults.AdminName, opts.Config.Defaults.AdminPassword); err != nil {
				return err
			}
			if err := Models.Seed(db, catalog); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seed finished")
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "catalogue file (.yaml, .yml, .json5)")
	return cmd
}
