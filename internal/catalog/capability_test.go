package catalog

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyProbeError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantPresent bool
		wantHard    bool
	}{
		{
			name:        "nil means present",
			err:         nil,
			wantPresent: true,
		},
		{
			name:        "no rows means present",
			err:         pgx.ErrNoRows,
			wantPresent: true,
		},
		{
			name: "undefined column means absent",
			err:  &pgconn.PgError{Code: "42703", Message: `column "is_veg" does not exist`},
		},
		{
			name: "undefined table means absent",
			err:  &pgconn.PgError{Code: "42P01", Message: `relation "menu_item_variants" does not exist`},
		},
		{
			name:     "permission denied is a hard error",
			err:      &pgconn.PgError{Code: "42501", Message: "permission denied for table menu_items"},
			wantHard: true,
		},
		{
			name: "message fallback for unknown column",
			err:  errors.New(`unknown column "is_veg" in field list`),
		},
		{
			name: "message fallback for unknown table",
			err:  errors.New("no such table: menu_item_variants"),
		},
		{
			name:     "network failure is a hard error",
			err:      errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			wantHard: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			present, err := classifyProbeError(tt.err)
			if present != tt.wantPresent {
				t.Errorf("present = %v, want %v", present, tt.wantPresent)
			}
			if (err != nil) != tt.wantHard {
				t.Errorf("hard error = %v, want hard=%v", err, tt.wantHard)
			}
		})
	}
}

func TestCapabilityWarnings(t *testing.T) {
	variantRow := ImportRow{RowNo: 2, Category: "Pizza", Name: "Margherita", VariantName: "Small"}
	veg := true
	vegVariantRow := ImportRow{RowNo: 3, Category: "Pizza", Name: "Margherita", VariantName: "Large", VariantIsVeg: &veg}

	tests := []struct {
		name string
		caps CapabilitySet
		rows []ImportRow
		want int
	}{
		{
			name: "everything supported",
			caps: CapabilitySet{ItemVeg: true, VariantVeg: true, VariantTable: true},
			rows: []ImportRow{variantRow},
			want: 0,
		},
		{
			name: "item veg missing always warns",
			caps: CapabilitySet{VariantVeg: true, VariantTable: true},
			rows: []ImportRow{{RowNo: 2, Category: "Pizza", Name: "Margherita"}},
			want: 1,
		},
		{
			name: "variant table missing warns only when rows carry variants",
			caps: CapabilitySet{ItemVeg: true},
			rows: []ImportRow{{RowNo: 2, Category: "Pizza", Name: "Margherita"}},
			want: 0,
		},
		{
			name: "variant table missing with variant rows",
			caps: CapabilitySet{ItemVeg: true},
			rows: []ImportRow{variantRow},
			want: 1,
		},
		{
			name: "variant veg missing with explicit variant flags",
			caps: CapabilitySet{ItemVeg: true, VariantTable: true},
			rows: []ImportRow{vegVariantRow},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capabilityWarnings(tt.caps, tt.rows); len(got) != tt.want {
				t.Errorf("capabilityWarnings() = %v, want %d warnings", got, tt.want)
			}
		})
	}
}
