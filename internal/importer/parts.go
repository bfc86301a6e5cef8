// Package importer reads bulk catalog data.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"autoparts/internal/models"
)

var partColumns = []string{"part_number", "name", "details", "price", "quantity"}

// ParseParts reads a CSV with a header row naming at least the part columns,
// in any order. Extra columns are ignored. Row numbers in errors count the
// header as row 1.
func ParseParts(r io.Reader) ([]models.Part, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, models.Invalid("file", "empty CSV")
		}
		return nil, models.Invalid("file", err.Error())
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if missing := lo.Filter(partColumns, func(c string, _ int) bool { _, ok := index[c]; return !ok }); len(missing) > 0 {
		return nil, models.Invalid("file", "missing columns: "+strings.Join(missing, ", "))
	}

	var parts []models.Part
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.Invalid("file", err.Error())
		}
		field := func(name string) string { return strings.TrimSpace(rec[index[name]]) }

		price, err := decimal.NewFromString(field("price"))
		if err != nil {
			return nil, models.Invalid("price", fmt.Sprintf("row %d: not a number", row))
		}
		qty := 0
		if v := field("quantity"); v != "" {
			if qty, err = strconv.Atoi(v); err != nil {
				return nil, models.Invalid("quantity", fmt.Sprintf("row %d: not an integer", row))
			}
		}
		parts = append(parts, models.Part{
			PartNumber: field("part_number"),
			Name:       field("name"),
			Details:    field("details"),
			Price:      price,
			Quantity:   qty,
		})
	}
	return parts, nil
}
