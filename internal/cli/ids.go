package cli

import (
	"fmt"
	"strings"
)

// MatchID resolves a full id or a unique prefix of one. An unmatched input is
// returned unchanged so the caller reports it as not found.
func MatchID(input string, ids []string) (string, error) {
	input = strings.TrimSpace(input)
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return input, nil
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", input, len(matches))
}

// IDsOf collects the ids of items.
func IDsOf[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}
