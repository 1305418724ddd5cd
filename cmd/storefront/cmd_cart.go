package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

var addQuantity int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the cart kept on this device",
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}
		p, _, err := app.catalog.GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}

		entry, err := app.cart.AddProduct(cmd.Context(), *p, addQuantity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s in cart: %d (%s)\n",
			p.Name, entry.Items[0].Quantity, entry.TotalPrice.StringFixed(2))
		fmt.Fprintf(cmd.OutOrStdout(), "Cart items: %d\n", app.cart.Snapshot().ItemCount)
		return nil
	},
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		local := app.cart.LoadLocalCart(cmd.Context())
		out := cmd.OutOrStdout()
		if len(local) == 0 {
			fmt.Fprintln(out, "Your cart is empty")
			return nil
		}
		printOrders(out, local, nil)
		fmt.Fprintf(out, "Cart items: %d\n", app.cart.Snapshot().ItemCount)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>...",
	Short: "Remove entries from the cart",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := app.cart.RemoveEntries(cmd.Context(), toOrderIDs(args)...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d\n", n)
		fmt.Fprintf(cmd.OutOrStdout(), "Cart items: %d\n", app.cart.Snapshot().ItemCount)
		return nil
	},
}

var cartSubmitCmd = &cobra.Command{
	Use:   "submit [entry-id...]",
	Short: "Place orders for cart entries (all when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := app.cart.Submit(cmd.Context(), toOrderIDs(args)...)
		for _, o := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "Placed order %s (%s)\n", o.ID, o.TotalPrice.StringFixed(2))
		}
		return err
	},
}

func toOrderIDs(args []string) []models.OrderID {
	ids := make([]models.OrderID, len(args))
	for i, a := range args {
		ids[i] = models.OrderID(a)
	}
	return ids
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "how many units to add")

	cartCmd.AddCommand(cartAddCmd, cartListCmd, cartRemoveCmd, cartSubmitCmd)
	rootCmd.AddCommand(cartCmd)
}
