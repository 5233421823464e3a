package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <user-id>",
	Short: "Re-check a user's pending orders with the payment gateway",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		if err := openEntitlements(cmd.Context()); err != nil {
			return err
		}

		report, err := entitlements.Verify(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if report.NothingPending {
			fmt.Println("no pending orders")
			return nil
		}
		for _, check := range report.Checks {
			line := fmt.Sprintf("%s\t%s", check.OrderID, check.Outcome)
			if check.Status != "" {
				line += "\t" + check.Status
			}
			if check.Err != nil {
				line += "\t" + check.Err.Error()
			}
			fmt.Println(line)
		}
		if report.Activated {
			fmt.Printf("activated until %s\n", report.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}
