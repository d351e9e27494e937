package catalog

// Page slices items for one result page and reports whether more follow.
// A non-positive size falls back to def.
func Page[T any](items []T, offset, size, def int) ([]T, bool) {
	if size <= 0 {
		size = def
	}
	if size <= 0 {
		size = 10
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}, false
	}
	end := len(items)
	if size < end-offset {
		end = offset + size
	}
	return items[offset:end], end < len(items)
}
