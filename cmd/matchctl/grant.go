package main

import (
	"github.com/spf13/cobra"
)

var grantDays int

var grantCmd = &cobra.Command{
	Use:   "grant <user-id>",
	Short: "Activate PRO for a user without a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		if err := openEntitlements(cmd.Context()); err != nil {
			return err
		}

		days := grantDays
		if days <= 0 {
			days = cfg.Payment.ProDurationDays
		}
		profile, err := entitlements.Grant(cmd.Context(), userID, days)
		if err != nil {
			return err
		}
		printProfile(profile)
		return nil
	},
}

func init() {
	grantCmd.Flags().IntVar(&grantDays, "days", 0, "PRO duration in days (default: payment.pro_duration_days)")
}
