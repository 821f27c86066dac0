package main

import (
	"fmt"
	"time"

	"resume-builder/identity"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local development",
	RunE:  runToken,
}

var (
	tokenUser  string
	tokenTier  string
	tokenAdmin bool
	tokenSuper bool
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User ID (random when empty)")
	tokenCmd.Flags().StringVarP(&tokenTier, "tier", "t", identity.TierFree, "Subscription tier (free, monthly, annual)")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "Grant admin")
	tokenCmd.Flags().BoolVar(&tokenSuper, "super-admin", false, "Grant super admin")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	userID := uuid.New()
	if tokenUser != "" {
		if userID, err = uuid.Parse(tokenUser); err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
	}
	tier := tokenTier
	switch tier {
	case identity.TierFree, identity.TierMonthly, identity.TierAnnual:
	default:
		return fmt.Errorf("invalid --tier %q", tokenTier)
	}

	ids, err := identity.NewService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return err
	}
	token, err := ids.Issue(identity.Entitlements{
		UserID:       userID,
		IsAdmin:      tokenAdmin,
		IsSuperAdmin: tokenSuper,
		Tier:         tier,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
