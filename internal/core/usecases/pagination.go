package usecases

// Paginate returns items[offset:offset+limit], truncated to the slice bounds.
// Negative arguments count as zero. The result is never nil.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	return items[offset:end]
}
