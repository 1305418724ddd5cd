package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/client"
)

var productQuery client.ProductQuery

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, optionally filtered by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, cached, err := app.catalog.ListProducts(cmd.Context(), productQuery)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cached {
			fmt.Fprintln(out, "Offline: showing saved results")
		}
		printProducts(out, page.Results)
		fmt.Fprintf(out, "%d of %d products\n", len(page.Results), page.Count)
		if page.Next != nil {
			fmt.Fprintf(out, "More: --page %d\n", max(productQuery.Page, 1)+1)
		}
		return nil
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show product details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}
		p, cached, err := app.catalog.GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}

		if cached {
			fmt.Fprintln(cmd.OutOrStdout(), "Offline: showing saved details")
		}
		printProduct(cmd.OutOrStdout(), *p)
		return nil
	},
}

var productsShareCmd = &cobra.Command{
	Use:   "share <product-id>",
	Short: "Print a shareable text with the product link",
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
		fmt.Fprintln(cmd.OutOrStdout(), client.ShareText(*p, app.cfg.ShareBaseURL))
		return nil
	},
}

func parseProductID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func init() {
	productsListCmd.Flags().StringVarP(&productQuery.Search, "search", "s", "", "filter by name")
	productsListCmd.Flags().IntVar(&productQuery.Page, "page", 0, "page number")
	productsListCmd.Flags().IntVar(&productQuery.PageSize, "page-size", 0, "products per page")

	productsCmd.AddCommand(productsListCmd, productsShowCmd, productsShareCmd)
	rootCmd.AddCommand(productsCmd)
}
