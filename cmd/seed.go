package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ridegrid/ridegrid/app"
	"github.com/ridegrid/ridegrid/infra/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run the service with a pre-seeded sample world",
	Long: `Starts the simulation service like the root command, but seeds the
world with three sample drivers before serving.`,
	RunE: seed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("seed")
	for _, p := range [][2]int{{2, 2}, {15, 8}, {8, 15}} {
		d, err := svc.Engine.AddDriver(p[0], p[1])
		if err != nil {
			return err
		}
		logg.Infof("seeded %s at %s", d.ID, d.Pos)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
