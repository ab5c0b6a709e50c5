package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// DeleteRequest carries the query options of a delete.
type DeleteRequest struct {
	Force bool `form:"force"`
}
