package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProducts(w io.Writer, products []models.Product) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity)
	}
	tw.Flush()
}

func printProduct(w io.Writer, p models.Product) {
	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "Price:  %s\n", p.Price.StringFixed(2))
	fmt.Fprintf(w, "Stock:  %d\n", p.Quantity)
	if p.Description != "" {
		fmt.Fprintf(w, "About:  %s\n", p.Description)
	}
	for _, img := range p.Images {
		fmt.Fprintf(w, "Image:  %s\n", img)
	}
}

// printOrders lists entries the way the order history screen shows them.
func printOrders(w io.Writer, orders []models.Order, overrides map[models.OrderID]models.OrderStatus) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tITEMS\tTOTAL\tCREATED")
	for _, o := range orders {
		status := string(o.Status)
		if _, ok := overrides[o.ID]; ok {
			status += " (marked)"
		}
		if o.ID.IsLocal() {
			status = "in cart"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.ID, status, describeItems(o.Items), o.TotalPrice.StringFixed(2), o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func describeItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Product.Name))
	}
	return strings.Join(parts, ", ")
}
