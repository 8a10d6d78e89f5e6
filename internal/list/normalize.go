package list

import "strings"

// SanitizeName trims surrounding whitespace from a display name.
func SanitizeName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeMarkets trims each supermarket name, drops empties, and collapses
// duplicates while preserving first-seen order.
func NormalizeMarkets(markets []string) []string {
	out := make([]string, 0, len(markets))
	seen := make(map[string]struct{}, len(markets))
	for _, m := range markets {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// EqualsIgnoreCase reports whether two names are equal under case folding.
func EqualsIgnoreCase(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ContainsIgnoreCase reports whether names contains target under case folding.
func ContainsIgnoreCase(names []string, target string) bool {
	for _, n := range names {
		if EqualsIgnoreCase(n, target) {
			return true
		}
	}
	return false
}

// RenameMarket replaces oldName with newName in a market list (case-insensitive
// match) and re-normalizes, since the rename may introduce a duplicate.
func RenameMarket(markets []string, oldName, newName string) []string {
	out := make([]string, len(markets))
	for i, m := range markets {
		if EqualsIgnoreCase(m, oldName) {
			out[i] = newName
		} else {
			out[i] = m
		}
	}
	return NormalizeMarkets(out)
}

// RemoveMarket strips every case-insensitive occurrence of name.
func RemoveMarket(markets []string, name string) []string {
	out := make([]string, 0, len(markets))
	for _, m := range markets {
		if !EqualsIgnoreCase(m, name) {
			out = append(out, m)
		}
	}
	return out
}
