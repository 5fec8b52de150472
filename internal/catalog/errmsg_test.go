package catalog

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "duplicate key",
			err:      errors.New(`ERROR: duplicate key value violates unique constraint "menu_items_pkey" (SQLSTATE 23505)`),
			wantCode: "DB001",
		},
		{
			name:     "unique constraint",
			err:      errors.New("unique constraint failed on menu_categories.name"),
			wantCode: "DB002",
		},
		{
			name:     "foreign key",
			err:      errors.New(`insert violates foreign key constraint "menu_items_category_id_fkey"`),
			wantCode: "DB003",
		},
		{
			name:     "permission denied",
			err:      errors.New("ERROR: permission denied for table menu_items"),
			wantCode: "SEC001",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "connection reset",
			err:      errors.New("read tcp: connection reset by peer"),
			wantCode: "DB005",
		},
		{
			name:     "timeout",
			err:      errors.New("context deadline exceeded: query timeout"),
			wantCode: "DB006",
		},
		{
			name:     "invalid input",
			err:      errors.New(`ERROR: invalid input syntax for type integer: "abc"`),
			wantCode: "VAL001",
		},
		{
			name:     "missing column",
			err:      errors.New(`ERROR: column "is_veg" does not exist`),
			wantCode: "CAP001",
		},
		{
			name:     "case insensitive match",
			err:      errors.New("DUPLICATE KEY detected"),
			wantCode: "DB001",
		},
		{
			name:     "unmatched falls back",
			err:      errors.New("something completely unexpected"),
			wantCode: "ERR000",
		},
		{
			name:     "nil error",
			err:      nil,
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.Message == "" {
				t.Error("MapError() returned empty message")
			}
		})
	}
}

func TestMapError_FirstMatchWins(t *testing.T) {
	// "duplicate key ... violates unique constraint" matches two patterns; the
	// more specific duplicate-key entry sits first in the list.
	got := MapError(errors.New("duplicate key value violates unique constraint"))
	if got.Code != "DB001" {
		t.Errorf("MapError() code = %s, want DB001", got.Code)
	}
}
