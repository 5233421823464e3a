package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
)

var showCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user's profile and PRO status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		if err := openEntitlements(cmd.Context()); err != nil {
			return err
		}

		profile, err := store.Get(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("load profile %d: %w", userID, err)
		}
		printProfile(profile)
		return nil
	},
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}

type profileView struct {
	UserID        int64      `json:"user_id"`
	Username      string     `json:"username,omitempty"`
	Gender        string     `json:"gender"`
	Region        string     `json:"region"`
	Pro           bool       `json:"pro"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	PendingOrders []string   `json:"pending_orders"`
}

func printProfile(p model.Profile) {
	view := profileView{
		UserID:        p.UserID,
		Username:      p.Username,
		Gender:        string(p.Gender),
		Region:        p.Region,
		Pro:           entsvc.IsActive(p.Entitlement, time.Now().UTC()),
		ExpiresAt:     p.Entitlement.ExpiresAt,
		PendingOrders: p.PendingOrders,
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(view)
		return
	}

	expiry := "-"
	if view.ExpiresAt != nil {
		expiry = view.ExpiresAt.Format(time.RFC3339)
	}
	fmt.Printf("User:     %d\n", view.UserID)
	if view.Username != "" {
		fmt.Printf("Username: @%s\n", view.Username)
	}
	fmt.Printf("Gender:   %s\n", orDash(view.Gender))
	fmt.Printf("Region:   %s\n", orDash(view.Region))
	fmt.Printf("PRO:      %t (expires %s)\n", view.Pro, expiry)
	fmt.Printf("Pending:  %s\n", orDash(strings.Join(view.PendingOrders, ", ")))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
