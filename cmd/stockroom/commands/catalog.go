package commands

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/cmd/stockroom/output"
)

func newCategoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
		Long: `Manage product categories.

Subcommands:
  add     - Create a category
  list    - List categories
  delete  - Delete a category that has no products`,
	}

	var description string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			category, err := d.svc.CreateCategory(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(category)
			}
			output.Success("Created category %s (id %d)", category.Name, category.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			categories, err := d.svc.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(categories)
			}
			if len(categories) == 0 {
				output.Info("No categories")
				return nil
			}
			rows := make([][]string, len(categories))
			for i, c := range categories {
				rows[i] = []string{strconv.FormatUint(uint64(c.ID), 10), c.Name, c.Description}
			}
			output.Table([]string{"ID", "NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category that has no products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.svc.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}
			output.Success("Deleted category %d", id)
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, deleteCmd)
	return cmd
}

func newProductCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
		Long: `Manage products directly, outside of deliveries.

Subcommands:
  add     - Create a product (quantity may be 0)
  update  - Set quantity and optionally price
  delete  - Delete a product by id`,
	}

	var (
		category string
		quantity int
		price    string
	)
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a product",
		Args:  cobra.ExactArgs(1),
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
			product, err := d.svc.CreateProduct(cmd.Context(), args[0], quantity, unitPrice, categoryID)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(catalog.NewProduct(*product))
			}
			output.Success("Created product %s (id %d)", product.Name, product.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&category, "category", "c", "", "Category id or name")
	addCmd.Flags().IntVarP(&quantity, "qty", "q", 0, "Units on hand")
	addCmd.Flags().StringVarP(&price, "price", "p", "", "Unit price, e.g. 2.50")
	_ = addCmd.MarkFlagRequired("category")
	_ = addCmd.MarkFlagRequired("price")

	var (
		newQuantity int
		newPrice    string
	)
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Set the quantity and optionally the unit price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var pricePtr *decimal.Decimal
			if newPrice != "" {
				p, err := parsePrice(newPrice)
				if err != nil {
					return err
				}
				pricePtr = &p
			}
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			product, err := d.svc.UpdateProduct(cmd.Context(), id, newQuantity, pricePtr)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(catalog.NewProduct(*product))
			}
			output.Success("Updated %s: %d @ %s", product.Name, product.Quantity, product.UnitPrice.StringFixed(2))
			return nil
		},
	}
	updateCmd.Flags().IntVarP(&newQuantity, "qty", "q", 0, "New quantity (>= 0)")
	updateCmd.Flags().StringVarP(&newPrice, "price", "p", "", "New unit price")
	_ = updateCmd.MarkFlagRequired("qty")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.svc.DeleteProduct(cmd.Context(), id); err != nil {
				return err
			}
			output.Success("Deleted product %d", id)
			return nil
		},
	}

	cmd.AddCommand(addCmd, updateCmd, deleteCmd)
	return cmd
}
