package Commands

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Models"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBDriver string
	DBDSN    string

	Config *Config.Config
}

// open connects and migrates without seeding anything.
func (o *RootOptions) open() (*gorm.DB, error) {
	db, err := Models.Open(o.Config.Database.Driver, o.Config.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := Models.Migrate(db); err != nil {
		return nil, err
	}
	Models.DB = db
	return db, nil
}

// NewRootCommand creates the root command. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cafe",
		Short:         "Cafe point of sale and back office",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Config = Config.LoadConfig()
			if opts.DBDriver != "" {
				opts.Config.Database.Driver = opts.DBDriver
			}
			if opts.DBDSN != "" {
				opts.Config.Database.DSN = opts.DBDSN
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBDriver, "db-driver", "", "database driver (sqlite|mysql|postgres), overrides DB_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.DBDSN, "db-dsn", "", "database DSN, overrides DB_DSN")

	serve := NewServeCommand(opts)
	cmd.RunE = serve.RunE

	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}
