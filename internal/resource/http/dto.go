package http

import (
	"time"

	"github.com/nekogravitycat/link-catalog-backend/internal/resource"
)

// ListingResponse is one provider/resource row as the admin UI consumes it.
type ListingResponse struct {
	ID                int64    `json:"id"`
	Email             string   `json:"email"`
	Currency          *string  `json:"currency"`
	Price             float64  `json:"price"`
	CasinoPrice       *float64 `json:"casino_price"`
	CBDPrice          *float64 `json:"cbd_price"`
	AdultPrice        *float64 `json:"adult_price"`
	PaymentMethod     *string  `json:"payment_method"`
	Promotions        *string  `json:"promotions"`
	USDPrice          *float64 `json:"usd_price"`
	Notes             *string  `json:"notes"`
	ResourceID        int64    `json:"resource_id"`
	Resource          string   `json:"resource"`
	DA                *int64   `json:"da"`
	DR                *int64   `json:"dr"`
	RD                *int64   `json:"rd"`
	TR                *int64   `json:"tr"`
	PA                *int64   `json:"pa"`
	TF                *int64   `json:"tf"`
	CF                *int64   `json:"cf"`
	OrganicKeywords   *int64   `json:"organic_keywords"`
	MetricsUpdateDate *string  `json:"metrics_update_date"`
	SocialMedia       *string  `json:"social_media"`
	OtherInfo         *string  `json:"other_info"`
	MainCategory      string   `json:"main_category"`
	OtherCategories   *string  `json:"other_categories"`
}

func NewResponse(l *resource.Listing) ListingResponse {
	p, r := l.Provider, l.Resource
	return ListingResponse{
		ID:                p.ID,
		Email:             p.Email,
		Currency:          p.Currency,
		Price:             p.Price,
		CasinoPrice:       p.CasinoPrice,
		CBDPrice:          p.CBDPrice,
		AdultPrice:        p.AdultPrice,
		PaymentMethod:     p.PaymentMethod,
		Promotions:        p.Promotions,
		USDPrice:          p.USDPrice,
		Notes:             p.Notes,
		ResourceID:        r.ID,
		Resource:          r.Resource,
		DA:                r.DA,
		DR:                r.DR,
		RD:                r.RD,
		TR:                r.TR,
		PA:                r.PA,
		TF:                r.TF,
		CF:                r.CF,
		OrganicKeywords:   r.OrganicKeywords,
		MetricsUpdateDate: formatDate(r.MetricsUpdateDate),
		SocialMedia:       r.SocialMedia,
		OtherInfo:         r.OtherInfo,
		MainCategory:      r.MainCategory,
		OtherCategories:   r.OtherCategories,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(resource.DateLayout)
	return &s
}

// CreateRequest is the bulk create body: {"data": [{...}, ...]}.
type CreateRequest struct {
	Data []resource.RawRecord `json:"data"`
}

// BatchResponse is the envelope returned by bulk create.
type BatchResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewBatchResponse(r resource.BatchResult) BatchResponse {
	return BatchResponse{Status: r.Status, Code: r.Code, Message: r.Message}
}

// UpdateRequest is a partial update; omitted fields keep their value.
type UpdateRequest struct {
	Resource          *string  `json:"resource" binding:"omitempty"`
	MainCategory      *string  `json:"main_category" binding:"omitempty"`
	OtherCategories   *string  `json:"other_categories" binding:"omitempty"`
	DA                *int64   `json:"da" binding:"omitempty"`
	DR                *int64   `json:"dr" binding:"omitempty"`
	RD                *int64   `json:"rd" binding:"omitempty"`
	TR                *int64   `json:"tr" binding:"omitempty"`
	PA                *int64   `json:"pa" binding:"omitempty"`
	TF                *int64   `json:"tf" binding:"omitempty"`
	CF                *int64   `json:"cf" binding:"omitempty"`
	OrganicKeywords   *int64   `json:"organic_keywords" binding:"omitempty"`
	MetricsUpdateDate *string  `json:"metrics_update_date" binding:"omitempty,datetime=2006-01-02"`
	SocialMedia       *string  `json:"social_media" binding:"omitempty"`
	OtherInfo         *string  `json:"other_info" binding:"omitempty"`
	Email             *string  `json:"email" binding:"omitempty"`
	Currency          *string  `json:"currency" binding:"omitempty"`
	Price             *float64 `json:"price" binding:"omitempty"`
	CasinoPrice       *float64 `json:"casino_price" binding:"omitempty"`
	CBDPrice          *float64 `json:"cbd_price" binding:"omitempty"`
	AdultPrice        *float64 `json:"adult_price" binding:"omitempty"`
	PaymentMethod     *string  `json:"payment_method" binding:"omitempty"`
	Promotions        *string  `json:"promotions" binding:"omitempty"`
	USDPrice          *float64 `json:"usd_price" binding:"omitempty"`
	Notes             *string  `json:"notes" binding:"omitempty"`
}

// ToDomain converts the body into the service request.
func (r UpdateRequest) ToDomain() (resource.UpdateRequest, error) {
	req := resource.UpdateRequest{
		Resource:        r.Resource,
		MainCategory:    r.MainCategory,
		OtherCategories: r.OtherCategories,
		DA:              r.DA,
		DR:              r.DR,
		RD:              r.RD,
		TR:              r.TR,
		PA:              r.PA,
		TF:              r.TF,
		CF:              r.CF,
		OrganicKeywords: r.OrganicKeywords,
		SocialMedia:     r.SocialMedia,
		OtherInfo:       r.OtherInfo,
		Email:           r.Email,
		Currency:        r.Currency,
		Price:           r.Price,
		CasinoPrice:     r.CasinoPrice,
		CBDPrice:        r.CBDPrice,
		AdultPrice:      r.AdultPrice,
		PaymentMethod:   r.PaymentMethod,
		Promotions:      r.Promotions,
		USDPrice:        r.USDPrice,
		Notes:           r.Notes,
	}
	if r.MetricsUpdateDate != nil {
		t, err := time.Parse(resource.DateLayout, *r.MetricsUpdateDate)
		if err != nil {
			return resource.UpdateRequest{}, err
		}
		req.MetricsUpdateDate = &t
	}
	return req, nil
}

// CategoriesResponse lists the accepted category labels.
type CategoriesResponse struct {
	Items []string `json:"items"`
}
