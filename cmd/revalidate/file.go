package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fileCmd = &cobra.Command{
	Use:   "file <practice.json>",
	Short: "Validate a local practice record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		practice, err := readPractice(args[0])
		if err != nil {
			return err
		}

		// a local run never writes to the ledger
		config.LedgerDriver = validator.LedgerOff
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

		report, err := svc.Validator.Validate(context.Background(), practice)
		if err != nil {
			return err
		}
		return renderReport(cmd.OutOrStdout(), report, viper.GetString("format"))
	},
}

func readPractice(path string) (core.Practice, error) {
	var p core.Practice
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read practice: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse practice %s: %w", path, err)
	}
	return p, nil
}
