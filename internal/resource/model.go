package resource

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/link-catalog-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyResource   = apperror.New(http.StatusBadRequest, "resource cannot be empty")
	ErrInvalidCategory = apperror.New(http.StatusBadRequest, "invalid category")
	ErrInvalidEmail    = apperror.New(http.StatusBadRequest, "invalid email")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, "price must be a finite number")
	ErrNoFields        = apperror.New(http.StatusBadRequest, "no fields to update")
	ErrDuplicate       = apperror.New(http.StatusConflict, "resource already has a provider")
)

// Resource is a catalogued website available for link placement.
type Resource struct {
	ID                int64
	Resource          string
	MainCategory      string
	OtherCategories   *string
	DA                *int64
	DR                *int64
	RD                *int64
	TR                *int64
	PA                *int64
	TF                *int64
	CF                *int64
	OrganicKeywords   *int64
	MetricsUpdateDate *time.Time
	SocialMedia       *string
	OtherInfo         *string
}

// Provider holds the commercial terms attached to exactly one Resource.
type Provider struct {
	ID            int64
	ResourceID    int64
	Email         string
	Currency      *string
	Price         float64
	CasinoPrice   *float64
	CBDPrice      *float64
	AdultPrice    *float64
	PaymentMethod *string
	Promotions    *string
	USDPrice      *float64
	Notes         *string
}

// Listing is one row of the provider/resource join.
type Listing struct {
	Provider Provider
	Resource Resource
}

// ListResult is a page of listings plus the counts the admin UI shows
// next to it ("10 of 500").
type ListResult struct {
	Total         int
	TotalFiltered int
	Limit         int
	Page          int
	SortBy        string
	Order         string
	Data          []*Listing
}

// DataCount is the number of rows in the returned page.
func (r *ListResult) DataCount() int {
	return len(r.Data)
}

// UpdateRequest carries a partial update. Nil fields are left untouched.
type UpdateRequest struct {
	// Resource fields
	Resource          *string
	MainCategory      *string
	OtherCategories   *string
	DA                *int64
	DR                *int64
	RD                *int64
	TR                *int64
	PA                *int64
	TF                *int64
	CF                *int64
	OrganicKeywords   *int64
	MetricsUpdateDate *time.Time
	SocialMedia       *string
	OtherInfo         *string

	// Provider fields
	Email         *string
	Currency      *string
	Price         *float64
	CasinoPrice   *float64
	CBDPrice      *float64
	AdultPrice    *float64
	PaymentMethod *string
	Promotions    *string
	USDPrice      *float64
	Notes         *string
}
