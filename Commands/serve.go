package Commands

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"CafePOS/CronJobs"
	"CafePOS/FiberConfig"
	"CafePOS/Models"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := Models.Connect(opts.Config)
			if err != nil {
				return err
			}

			if opts.Config.Jobs.Enabled {
				scheduler := CronJobs.NewReportScheduler(db, opts.Config)
				if err := scheduler.Start(); err != nil {
					return err
				}
				defer scheduler.Stop()
			}

			app := FiberConfig.NewApp(db, opts.Config)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-quit
				log.Println("Shutting down server...")
				if err := app.Shutdown(); err != nil {
					log.Printf("Error shutting down: %v", err)
				}
			}()

			log.Printf("Server Up on :%s", opts.Config.Server.Port)
			return app.Listen(":" + opts.Config.Server.Port)
		},
	}
}
