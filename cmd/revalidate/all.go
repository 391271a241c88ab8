package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snow-ghost/validator/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Revalidate every stored practice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		obs, err := newObservability(viper.GetBool("verbose"))
		if err != nil {
			return err
		}
		defer obs.Shutdown(context.Background())

		svc, err := validator.NewService(config, obs)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := svc.Pipeline.RevalidateAll(ctx, svc.Storage)
		if err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("output"); dir != "" {
			path, err := saveSummary(dir, summary, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "results saved to %s\n", path)
		}
		return renderSummary(cmd.OutOrStdout(), summary, viper.GetString("format"))
	},
}

func init() {
	allCmd.Flags().StringP("output", "o", "", "Directory to save the run as revalidation_results_<timestamp>.json")
}
