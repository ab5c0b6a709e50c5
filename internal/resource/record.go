package resource

import (
	"strings"
	"time"
)

// DateLayout is the wire format of metrics_update_date.
const DateLayout = "2006-01-02"

// ToListing converts a record that passed ValidateBatch into the rows to insert.
// Optional fields that cannot be parsed are stored as NULL; the second return
// value lists them so the caller can report what was dropped.
func (r RawRecord) ToListing() (*Listing, []string) {
	var dropped []string

	optString := func(key string) *string {
		v, ok := r.Get(key)
		if !ok || v == "" {
			return nil
		}
		return &v
	}
	optInt := func(key string) *int64 {
		v, ok := r.Get(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, ok := parseInteger(v)
		if !ok {
			dropped = append(dropped, key)
			return nil
		}
		return &n
	}
	optDecimal := func(key string) *float64 {
		v, ok := r.Get(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		f, ok := parseDecimal(v)
		if !ok {
			dropped = append(dropped, key)
			return nil
		}
		return &f
	}
	optDate := func(key string) *time.Time {
		v, ok := r.Get(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		t, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			dropped = append(dropped, key)
			return nil
		}
		return &t
	}

	site, _ := r.Get("resource")
	mainCategory, _ := r.Get("main_category")
	email, _ := r.Get("email")
	priceStr, _ := r.Get("price")
	price, _ := parseDecimal(priceStr)

	l := &Listing{
		Resource: Resource{
			Resource:          NormalizeResourceURL(site),
			MainCategory:      mainCategory,
			OtherCategories:   optString("other_categories"),
			DA:                optInt("da"),
			DR:                optInt("dr"),
			RD:                optInt("rd"),
			TR:                optInt("tr"),
			PA:                optInt("pa"),
			TF:                optInt("tf"),
			CF:                optInt("cf"),
			OrganicKeywords:   optInt("organic_keywords"),
			MetricsUpdateDate: optDate("metrics_update_date"),
			SocialMedia:       optString("social_media"),
			OtherInfo:         optString("other_info"),
		},
		Provider: Provider{
			Email:         strings.TrimSpace(email),
			Currency:      optString("currency"),
			Price:         price,
			CasinoPrice:   optDecimal("casino_price"),
			CBDPrice:      optDecimal("cbd_price"),
			AdultPrice:    optDecimal("adult_price"),
			PaymentMethod: optString("payment_method"),
			Promotions:    optString("promotions"),
			USDPrice:      optDecimal("usd_price"),
			Notes:         optString("notes"),
		},
	}
	return l, dropped
}
