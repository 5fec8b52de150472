package catalog

// duplicates.go flags rows that collide on the same logical catalog key
// within one file. Duplicates are advisory: every occurrence is still
// processed, and the last one wins for any shared item or variant key.

import (
	"fmt"
	"strings"
)

// rowKey builds the composite in-file identity of a row:
// category :: subcategory :: name :: variant_name, all lowercased.
func rowKey(r ImportRow) string {
	parts := []string{r.Category, r.Subcategory, r.Name, r.VariantName}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "::")
}

// DetectDuplicates returns one warning per key that appears more than once,
// listing all row numbers sharing it. Warnings are ordered by the first
// occurrence of each key.
func DetectDuplicates(rows []ImportRow) []Warning {
	seen := make(map[string][]int)
	var order []string

	for _, r := range rows {
		key := rowKey(r)
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], r.RowNo)
	}

	var warnings []Warning
	for _, key := range order {
		lines := seen[key]
		if len(lines) < 2 {
			continue
		}
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("rows %s repeat the same category/item/variant (%s); the last occurrence wins", joinInts(lines), key),
		})
	}
	return warnings
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
