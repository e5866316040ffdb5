package internal

import (
	"sort"

	"github.com/thomas-touhey/lscl/filters"
)

// SumValues returns the total plugin count across all names.
func SumValues(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// SortByCount orders keys by decreasing count, then by name.
func SortByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// PluginCounts counts filter invocations per plugin name, across branches.
func PluginCounts(f filters.Filters, counts map[string]int) {
	for _, node := range f {
		switch n := node.(type) {
		case filters.Filter:
			counts[n.Name]++
		case filters.Branching:
			for _, br := range n.Branches {
				PluginCounts(br.Body, counts)
			}
		}
	}
}
