package database

import "strings"

// maxBatchParams bounds the number of values bound into a single IN clause.
// SQLite allows 999 bound parameters per statement; 900 leaves room for the
// other parameters of the query.
const maxBatchParams = 900

// forEachChunk invokes fn for consecutive slices of ids no larger than size.
func forEachChunk(ids []string, size int, fn func(chunk []string) error) error {
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		if err := fn(ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// args converts a string chunk to driver arguments, optionally prefixed.
func args(prefix []any, chunk []string) []any {
	out := make([]any, 0, len(prefix)+len(chunk))
	out = append(out, prefix...)
	for _, id := range chunk {
		out = append(out, id)
	}
	return out
}
