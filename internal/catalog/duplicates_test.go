package catalog

import (
	"strings"
	"testing"
)

func TestDetectDuplicates(t *testing.T) {
	rows := []ImportRow{
		{RowNo: 2, Category: "Pizza", Subcategory: "Classic", Name: "Margherita", VariantName: "Small"},
		{RowNo: 3, Category: "Pizza", Subcategory: "Classic", Name: "Margherita", VariantName: "Large"},
		{RowNo: 4, Category: "pizza", Subcategory: "CLASSIC", Name: "margherita", VariantName: "small"},
		{RowNo: 5, Category: "Drinks", Name: "Lassi"},
	}

	warnings := DetectDuplicates(rows)
	if len(warnings) != 1 {
		t.Fatalf("DetectDuplicates() = %d warnings, want 1", len(warnings))
	}
	// Rows 2 and 4 collide case-insensitively; row 3 differs by variant.
	if !strings.Contains(warnings[0].Message, "2, 4") {
		t.Errorf("warning %q should list rows 2, 4", warnings[0].Message)
	}
}

func TestDetectDuplicates_NoCollisions(t *testing.T) {
	rows := []ImportRow{
		{RowNo: 2, Category: "Pizza", Name: "Margherita"},
		{RowNo: 3, Category: "Pizza", Name: "Pepperoni"},
	}

	if warnings := DetectDuplicates(rows); len(warnings) != 0 {
		t.Errorf("DetectDuplicates() = %v, want none", warnings)
	}
}
