package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mytheresa/stockroom/app/reports"
	"github.com/mytheresa/stockroom/cmd/stockroom/output"
	"github.com/mytheresa/stockroom/inventory"
)

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show stock totals and low-stock products",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			dash, err := d.svc.ComputeDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(reports.NewDashboardResponse(dash, d.svc.LowStockThreshold()))
			}

			output.Section("Stock overview")
			output.Metric("Products", dash.SKUCount)
			output.Metric("Units", dash.TotalUnits)
			output.Metric("Total value", dash.TotalValue.StringFixed(2))
			output.Metric("Average price", dash.AveragePrice.StringFixed(2))
			output.Muted("Low stock means fewer than %d units", d.svc.LowStockThreshold())

			if len(dash.LowStock) == 0 {
				output.Success("No products below %d units", d.svc.LowStockThreshold())
				return nil
			}
			output.Warning("%d product(s) below %d units", len(dash.LowStock), d.svc.LowStockThreshold())
			output.Table(productHeader, productRows(dash.LowStock))
			return nil
		},
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the value share of each category",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			shares, err := d.svc.ComputeCategoryReport(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(reports.NewCategoryShares(shares))
			}
			if len(shares) == 0 {
				output.Info("No products in stock")
				return nil
			}

			output.Section("Value by category")
			rows := make([][]string, len(shares))
			for i, s := range shares {
				rows[i] = []string{
					strconv.FormatUint(uint64(s.CategoryID), 10),
					s.CategoryName,
					strconv.Itoa(s.SKUCount),
					s.SumValue.StringFixed(2),
					fmt.Sprintf("%d%%", s.PercentShare),
				}
			}
			output.Table([]string{"ID", "CATEGORY", "PRODUCTS", "VALUE", "SHARE"}, rows)
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		outPath string
		query   searchFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export products as CSV",
		Long: `Export the product list, optionally filtered, as CSV.

Examples:
  stockroom export                     # Write to stdout
  stockroom export --out stock.csv     # Write to a file
  stockroom export --name cable --min-price 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			q, err := query.toQuery(cmd)
			if err != nil {
				return err
			}
			products, err := d.svc.Search(cmd.Context(), q)
			if err != nil {
				return err
			}

			var w io.Writer = output.Out
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			if err := inventory.WriteCSV(w, products); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			if outPath != "" {
				output.Success("Exported %d product(s) to %s", len(products), outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	query.register(cmd)
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var query searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List products matching a name and a minimum price",
		Long: `List products whose name contains --name (case-insensitive) and whose
unit price is at least --min-price. Both filters are optional.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			q, err := query.toQuery(cmd)
			if err != nil {
				return err
			}
			products, err := d.svc.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(productsJSON(products))
			}
			if len(products) == 0 {
				output.Info("No products found")
				return nil
			}
			output.Table(productHeader, productRows(products))
			return nil
		},
	}

	query.register(cmd)
	return cmd
}

type searchFlags struct {
	name     string
	minPrice float64
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Case-insensitive name substring")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "Inclusive minimum unit price")
}

func (f *searchFlags) toQuery(cmd *cobra.Command) (inventory.SearchQuery, error) {
	q := inventory.SearchQuery{Name: f.name}
	if cmd.Flags().Changed("min-price") {
		if f.minPrice < 0 {
			return q, fmt.Errorf("--min-price must not be negative")
		}
		minPrice := f.minPrice
		q.MinPrice = &minPrice
	}
	return q, nil
}
