// Package batching implements the join/split optimization used by generative
// providers that have no native batch endpoint: many strings ride in one
// prompt separated by a marker, and the single reply is split back apart.
package batching

import "strings"

// Delimiter separates joined parts. Chosen to survive translation untouched;
// a model that rewrites it trips the count check and the caller degrades to
// sequential per-item calls.
const Delimiter = "@@@"

// Join concatenates texts around the delimiter.
func Join(texts []string) string {
	return strings.Join(texts, "\n"+Delimiter+"\n")
}

// Split cuts a joined reply back into trimmed parts.
func Split(joined string) []string {
	parts := strings.Split(joined, Delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
