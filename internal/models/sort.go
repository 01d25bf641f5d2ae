package models

// SortKey selects the ordering of a transaction listing.
type SortKey string

const (
	SortNone        SortKey = ""
	SortCategory    SortKey = "category"
	SortAmount      SortKey = "amount"
	SortDescription SortKey = "description"
	SortDate        SortKey = "date"
)

// ParseSortKey maps a sortBy query value to a SortKey. Unknown values fall
// back to SortNone (store's natural order) instead of failing.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortCategory, SortAmount, SortDescription, SortDate:
		return k
	default:
		return SortNone
	}
}

// Descending reports whether the key orders from largest to smallest.
// Only amount sorts descending.
func (k SortKey) Descending() bool {
	return k == SortAmount
}
