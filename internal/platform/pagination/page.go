package pagination

// Page cuts items, fetched with limit+1, down to limit and returns the cursor
// of the next page when the extra row was present.
func Page[T any](items []T, limit int, typ string, key func(T) Key) ([]T, string) {
	if limit <= 0 || len(items) <= limit {
		return items, ""
	}
	items = items[:limit]
	return items, key(items[limit-1]).Cursor(typ).Encode()
}
