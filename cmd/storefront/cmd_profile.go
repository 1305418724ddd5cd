package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := app.api.GetProfile(cmd.Context())
		if err != nil {
			return err
		}
		printProfile(cmd, p)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd models.ProfileUpdate
		flags := cmd.Flags()
		for name, dst := range map[string]**string{
			"email":      &upd.Email,
			"first-name": &upd.FirstName,
			"last-name":  &upd.LastName,
			"phone":      &upd.Phone,
		} {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				*dst = &v
			}
		}

		p, err := app.api.UpdateProfile(cmd.Context(), upd)
		if err != nil {
			return err
		}
		printProfile(cmd, p)
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "View or change notification settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := app.api.GetNotificationPreferences(cmd.Context())
		if err != nil {
			return err
		}
		printPreferences(cmd, prefs)
		return nil
	},
}

var notificationsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Turn notification kinds on or off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd models.NotificationPreferencesUpdate
		flags := cmd.Flags()
		for name, dst := range map[string]**bool{
			"order-updates": &upd.OrderUpdates,
			"promotions":    &upd.Promotions,
			"newsletter":    &upd.Newsletter,
		} {
			if flags.Changed(name) {
				v, _ := flags.GetBool(name)
				*dst = &v
			}
		}

		prefs, err := app.api.UpdateNotificationPreferences(cmd.Context(), upd)
		if err != nil {
			return err
		}
		printPreferences(cmd, prefs)
		return nil
	},
}

func printProfile(cmd *cobra.Command, p *models.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Username:  %s\n", p.Username)
	fmt.Fprintf(out, "Name:      %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(out, "Email:     %s\n", p.Email)
	fmt.Fprintf(out, "Phone:     %s\n", p.Phone)
}

func printPreferences(cmd *cobra.Command, p *models.NotificationPreferences) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Order updates:  %t\n", p.OrderUpdates)
	fmt.Fprintf(out, "Promotions:     %t\n", p.Promotions)
	fmt.Fprintf(out, "Newsletter:     %t\n", p.Newsletter)
}

func init() {
	profileUpdateCmd.Flags().String("email", "", "email address")
	profileUpdateCmd.Flags().String("first-name", "", "first name")
	profileUpdateCmd.Flags().String("last-name", "", "last name")
	profileUpdateCmd.Flags().String("phone", "", "phone number")

	notificationsSetCmd.Flags().Bool("order-updates", false, "order status updates")
	notificationsSetCmd.Flags().Bool("promotions", false, "promotions and offers")
	notificationsSetCmd.Flags().Bool("newsletter", false, "newsletter")

	profileCmd.AddCommand(profileUpdateCmd)
	notificationsCmd.AddCommand(notificationsSetCmd)
	rootCmd.AddCommand(profileCmd, notificationsCmd)
}
