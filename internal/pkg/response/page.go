package response

// PageResponse is the wrapper for list endpoints. Total counts every row,
// TotalFiltered the rows matching the filters, DataCount the rows in Data.
type PageResponse[T any] struct {
	Total         int    `json:"total"`
	TotalFiltered int    `json:"total_filtered"`
	Limit         int    `json:"limit"`
	Page          int    `json:"page"`
	SortBy        string `json:"sortby"`
	Order         string `json:"order"`
	DataCount     int    `json:"data_count"`
	Data          []T    `json:"data"`
}

// PageMeta is everything in a PageResponse except the rows.
type PageMeta struct {
	Total         int
	TotalFiltered int
	Limit         int
	Page          int
	SortBy        string
	Order         string
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, meta PageMeta) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	return PageResponse[T]{
		Total:         meta.Total,
		TotalFiltered: meta.TotalFiltered,
		Limit:         meta.Limit,
		Page:          meta.Page,
		SortBy:        meta.SortBy,
		Order:         meta.Order,
		DataCount:     len(items),
		Data:          items,
	}
}
