package list

import (
	"sort"
	"strings"
)

// StatusFilter selects products by bought state.
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusActive StatusFilter = "active"
	StatusBought StatusFilter = "bought"
)

// AllSupermarkets is the supermarket filter value that matches every product.
const AllSupermarkets = "all"

// Filter is the current product view selection. The zero value is not valid;
// use DefaultFilter.
type Filter struct {
	Search      string       `json:"search"`
	Supermarket string       `json:"supermarket"`
	Status      StatusFilter `json:"status"`
}

// DefaultFilter matches everything.
func DefaultFilter() Filter {
	return Filter{Search: "", Supermarket: AllSupermarkets, Status: StatusAll}
}

// Apply derives the visible product list: case-insensitive substring match on
// the name, exact market membership (or "all"), bought-status match, then
// unbought-before-bought ordering. Pure function of its inputs.
func (f Filter) Apply(products []Product) []Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if f.Supermarket != AllSupermarkets && !containsExact(p.Supermarkets, f.Supermarket) {
			continue
		}
		switch f.Status {
		case StatusActive:
			if p.IsBought {
				continue
			}
		case StatusBought:
			if !p.IsBought {
				continue
			}
		}
		out = append(out, p)
	}

	return SortProducts(out)
}

func containsExact(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}

// SortProducts orders unbought products before bought ones, keeping the
// relative order within each group. Returns a new slice.
func SortProducts(products []Product) []Product {
	out := append([]Product(nil), products...)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].IsBought && out[j].IsBought
	})
	return out
}
