package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/client"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

var ordersOffline bool

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Order history and status",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show cart entries and placed orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !ordersOffline {
			if err := app.cart.Refresh(cmd.Context()); err != nil {
				if client.IsAuthError(err) {
					return err
				}
				fmt.Fprintf(out, "Could not refresh orders, showing saved list: %v\n", err)
			}
		}

		snap := app.cart.Snapshot()
		if len(snap.Entries) == 0 {
			fmt.Fprintln(out, "No orders yet")
			return nil
		}
		printOrders(out, snap.Entries, snap.Overrides)
		return nil
	},
}

var ordersMarkCmd = &cobra.Command{
	Use:   "mark <order-id> <status>",
	Short: "Show a status for an order on this device until cleared",
	Long: `Record a local status for an order. The marked status is shown instead of
the server status until it is cleared, pushed with "orders update", or the
server reports the same status.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, status := models.OrderID(args[0]), models.OrderStatus(args[1])
		if err := app.cart.ApplyStatusOverride(cmd.Context(), id, status); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s marked %s\n", id, status)
		return nil
	},
}

var ordersUnmarkCmd = &cobra.Command{
	Use:   "unmark <order-id>",
	Short: "Clear a local status mark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app.cart.ClearStatusOverride(cmd.Context(), models.OrderID(args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s unmarked\n", args[0])
		return nil
	},
}

var ordersUpdateCmd = &cobra.Command{
	Use:   "update <order-id> <status>",
	Short: "Change an order status on the server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := app.cart.UpdateStatus(cmd.Context(), models.OrderID(args[0]), models.OrderStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", order.ID, order.Status)
		return nil
	},
}

var ordersDeleteCmd = &cobra.Command{
	Use:   "delete <order-id>...",
	Short: "Delete orders or cart entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := app.cart.RemoveEntries(cmd.Context(), toOrderIDs(args)...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d\n", n, len(args))
		return nil
	},
}

func init() {
	ordersListCmd.Flags().BoolVar(&ordersOffline, "offline", false, "show the saved list without contacting the server")

	ordersCmd.AddCommand(ordersListCmd, ordersMarkCmd, ordersUnmarkCmd, ordersUpdateCmd, ordersDeleteCmd)
	rootCmd.AddCommand(ordersCmd)
}
