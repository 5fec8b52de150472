package catalog

// row.go validates and normalizes tokenized CSV rows into ImportRow records.
//
// Header validation happens once per file and is fatal; row validation is
// per-row and rejects only the offending row. Both operate on lowercased
// column names so header casing never matters.

import (
	"fmt"
	"strconv"
	"strings"
)

// CSV column names. category, name and price_npr are required; the rest are
// optional. food_type is a legacy alias for is_veg.
const (
	colCategory     = "category"
	colSubcategory  = "subcategory"
	colName         = "name"
	colPrice        = "price_npr"
	colDescription  = "description"
	colImageURL     = "image_url"
	colIsVeg        = "is_veg"
	colFoodType     = "food_type"
	colVariantName  = "variant_name"
	colVariantPrice = "variant_price_npr"
	colVariantVeg   = "variant_is_veg"
)

// requiredColumns must all be present in the header or the import fails
// before any row is processed.
var requiredColumns = []string{colCategory, colName, colPrice}

// HeaderIndex maps lowercased column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// field returns the trimmed value of the named column, or "" when the column
// is absent or the row is short.
func (idx HeaderIndex) field(row []string, col string) string {
	pos, ok := idx[col]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// ValidateHeader checks the header row for the required columns.
// The returned error names the first missing column.
func ValidateHeader(header []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	return idx, nil
}

// ParseRow validates one data row and normalizes it into an ImportRow.
// A rejected row yields a RowError and is excluded from resolution; it never
// aborts the batch. vegDefault is used when the veg flag is absent or
// unrecognized.
func ParseRow(rowNo int, row []string, idx HeaderIndex, vegDefault bool) (*ImportRow, *RowError) {
	reject := func(msg string) (*ImportRow, *RowError) {
		return nil, &RowError{RowNo: rowNo, Message: msg}
	}

	category := idx.field(row, colCategory)
	if category == "" {
		return reject("Category is required.")
	}

	name := idx.field(row, colName)
	if name == "" {
		return reject("Item name is required.")
	}

	price, ok := parseNonNegativeInt(idx.field(row, colPrice))
	if !ok {
		return reject("price_npr must be a non-negative integer.")
	}

	vegRaw := idx.field(row, colIsVeg)
	if vegRaw == "" {
		vegRaw = idx.field(row, colFoodType)
	}

	ir := &ImportRow{
		RowNo:       rowNo,
		Category:    category,
		Subcategory: idx.field(row, colSubcategory),
		Name:        name,
		PriceNPR:    price,
		Description: idx.field(row, colDescription),
		ImageURL:    idx.field(row, colImageURL),
		IsVeg:       ParseVegFlag(vegRaw, vegDefault),
	}

	if vn := idx.field(row, colVariantName); vn != "" {
		vpRaw := idx.field(row, colVariantPrice)
		if vpRaw == "" {
			return reject("variant_price_npr is required when variant_name is set.")
		}
		vp, ok := parseNonNegativeInt(vpRaw)
		if !ok {
			return reject("variant_price_npr must be a non-negative integer.")
		}
		ir.VariantName = vn
		ir.VariantPrice = &vp

		// Empty means "inherit from the item", which must stay distinct
		// from an explicit false.
		if vv := idx.field(row, colVariantVeg); vv != "" {
			flag := ParseVegFlag(vv, true)
			ir.VariantIsVeg = &flag
		}
	}

	return ir, nil
}

// ParseVegFlag interprets the many spellings of a vegetarian flag found in
// real menu spreadsheets. Unrecognized tokens (and "") return fallback
// rather than an error.
func ParseVegFlag(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "veg", "vegetarian", "v", "true", "1", "yes", "y":
		return true
	case "non-veg", "non veg", "nonveg", "n", "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func parseNonNegativeInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
