package commands

import (
	"strconv"

	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/models"
)

var productHeader = []string{"ID", "NAME", "CATEGORY", "QTY", "PRICE", "VALUE"}

func productRows(products []models.Product) [][]string {
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			p.Category.Name,
			strconv.Itoa(p.Quantity),
			p.UnitPrice.StringFixed(2),
			p.Value().StringFixed(2),
		}
	}
	return rows
}

// productsJSON uses the same shape as the HTTP API.
func productsJSON(products []models.Product) []catalog.Product {
	out := make([]catalog.Product, len(products))
	for i, p := range products {
		out[i] = catalog.NewProduct(p)
	}
	return out
}
