package inventory

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/mytheresa/stockroom/models"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"id", "name", "category", "quantity", "unit_price", "value", "last_updated"}

// WriteCSV writes joined product rows as CSV. Money columns carry two decimal
// places and timestamps are RFC 3339 in UTC.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			p.Category.Name,
			strconv.Itoa(p.Quantity),
			p.UnitPrice.StringFixed(2),
			p.Value().StringFixed(2),
			p.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
