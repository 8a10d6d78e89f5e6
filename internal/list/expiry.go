package list

import "time"

// Retention is how long a bought product survives before the sweep removes it.
const Retention = time.Hour

// IsExpired reports whether p is a bought product whose bought timestamp has
// aged past the retention window at the given instant. Unbought products never
// expire.
func IsExpired(p Product, now time.Time) bool {
	if !p.IsBought || p.BoughtAt == nil {
		return false
	}
	return now.Sub(*p.BoughtAt) >= Retention
}

// PruneExpired returns products with expired bought entries removed.
func PruneExpired(products []Product, now time.Time) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !IsExpired(p, now) {
			out = append(out, p)
		}
	}
	return out
}

// ExpiredIDs returns the ids of products due for removal.
func ExpiredIDs(products []Product, now time.Time) []string {
	var ids []string
	for _, p := range products {
		if IsExpired(p, now) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
