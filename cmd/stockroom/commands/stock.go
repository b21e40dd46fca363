package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/cmd/stockroom/output"
	"github.com/mytheresa/stockroom/inventory"
	"github.com/mytheresa/stockroom/models"
)

func newDeliverCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		quantity int
		price    string
	)

	cmd := &cobra.Command{
		Use:   "deliver NAME",
		Short: "Register a delivery of a product",
		Long: `Register a delivery. When a product with exactly this name exists its
quantity is increased and its unit price replaced; otherwise it is created.

Examples:
  stockroom deliver Cable --category Electronics --qty 10 --price 2.50
  stockroom deliver Cable --category 1 --qty 5 --price 2.75`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := parsePrice(price)
			if err != nil {
				return err
			}

			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			categoryID, err := resolveCategory(cmd.Context(), d, category)
			if err != nil {
				return err
			}
			product, created, err := d.svc.RegisterDelivery(cmd.Context(), inventory.Delivery{
				Name:       args[0],
				CategoryID: categoryID,
				Quantity:   quantity,
				UnitPrice:  unitPrice,
			})
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return output.JSON(struct {
					Created bool            `json:"created"`
					Product catalog.Product `json:"product"`
				}{created, catalog.NewProduct(*product)})
			}
			if created {
				output.Success("Added %s: %d @ %s", product.Name, product.Quantity, product.UnitPrice.StringFixed(2))
			} else {
				output.Success("Restocked %s: +%d, now %d @ %s", product.Name, quantity, product.Quantity, product.UnitPrice.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	cmd.Flags().IntVarP(&quantity, "qty", "q", 0, "Delivered units (> 0)")
	cmd.Flags().StringVarP(&price, "price", "p", "", "Unit price, e.g. 2.50")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newIssueCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "issue PRODUCT_ID QTY",
		Short: "Withdraw units of a product from stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			product, err := d.svc.IssueStock(cmd.Context(), id, qty)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(catalog.NewProduct(*product))
			}
			output.Success("Issued %d x %s, %d left", qty, product.Name, product.Quantity)
			if product.Quantity < d.svc.LowStockThreshold() {
				output.Warning("%s is below %d units", product.Name, d.svc.LowStockThreshold())
			}
			return nil
		},
	}
}

// resolveCategory accepts an exact category name or a numeric id. Names win,
// so a category called "42" is found by name before id 42 is tried.
func resolveCategory(ctx context.Context, d *deps, ref string) (uint, error) {
	categories, err := d.svc.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range categories {
		if c.Name == ref {
			return c.ID, nil
		}
	}
	if id, err := parseID(ref); err == nil {
		return id, nil
	}
	return 0, models.ErrInvalidCategory
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	return p, nil
}
