package domain

import "strings"

// SearchFilter holds the optional search criteria. Nil fields do not filter.
// All present criteria must match.
type SearchFilter struct {
	Query    *string  `json:"q"`
	MinPrice *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *float64 `json:"max_price" validate:"omitempty,gte=0"`
	Author   *string  `json:"author"`
}

func (f SearchFilter) Validate() error {
	return validateStruct(f)
}

// Matches reports whether ad satisfies every present criterion. The text query
// matches a substring of title or description, both lowered with
// strings.ToLower.
func (f SearchFilter) Matches(ad *Advertisement) bool {
	if f.Query != nil && *f.Query != "" {
		q := strings.ToLower(*f.Query)
		if !strings.Contains(strings.ToLower(ad.Title), q) &&
			!strings.Contains(strings.ToLower(ad.Description), q) {
			return false
		}
	}
	if f.MinPrice != nil && ad.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && ad.Price > *f.MaxPrice {
		return false
	}
	if f.Author != nil && ad.Author != *f.Author {
		return false
	}
	return true
}
