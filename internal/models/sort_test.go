package models

import "testing"

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"category", SortCategory},
		{"amount", SortAmount},
		{"description", SortDescription},
		{"date", SortDate},
		{"", SortNone},
		{"Amount", SortNone},
		{"price", SortNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseSortKey(tt.in); got != tt.want {
				t.Errorf("ParseSortKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortKeyDescending(t *testing.T) {
	if !SortAmount.Descending() {
		t.Error("amount should sort descending")
	}
	for _, k := range []SortKey{SortNone, SortCategory, SortDescription, SortDate} {
		if k.Descending() {
			t.Errorf("%q should not sort descending", k)
		}
	}
}
