package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Masterminds/squirrel"
)

const (
	providersTable = "public.lbs_providers"
	resourcesTable = "public.lbs_resources"
)

// listingColumns maps each listing field name to its qualified column. The
// order is the SELECT order and must match Listing.scanDest.
var listingColumns = []struct {
	name   string
	column string
}{
	{"id", "p.id"},
	{"email", "p.email"},
	{"currency", "p.currency"},
	{"price", "p.price"},
	{"casino_price", "p.casino_price"},
	{"cbd_price", "p.cbd_price"},
	{"adult_price", "p.adult_price"},
	{"payment_method", "p.payment_method"},
	{"promotions", "p.promotions"},
	{"usd_price", "p.usd_price"},
	{"notes", "p.notes"},
	{"resource_id", "r.resource_id"},
	{"resource", "r.resource"},
	{"da", "r.da"},
	{"dr", "r.dr"},
	{"rd", "r.rd"},
	{"tr", "r.tr"},
	{"pa", "r.pa"},
	{"tf", "r.tf"},
	{"cf", "r.cf"},
	{"organic_keywords", "r.organic_keywords"},
	{"metrics_update_date", "r.metrics_update_date"},
	{"social_media", "r.social_media"},
	{"other_info", "r.other_info"},
	{"main_category", "r.main_category"},
	{"other_categories", "r.other_categories"},
}

// sortColumns is the sortby allow-list.
var sortColumns = func() map[string]string {
	m := make(map[string]string, len(listingColumns))
	for _, c := range listingColumns {
		m[c.name] = c.column
	}
	return m
}()

func selectColumns() []string {
	cols := make([]string, len(listingColumns))
	for i, c := range listingColumns {
		cols[i] = c.column
	}
	return cols
}

func (l *Listing) scanDest() []any {
	p, r := &l.Provider, &l.Resource
	return []any{
		&p.ID, &p.Email, &p.Currency, &p.Price, &p.CasinoPrice, &p.CBDPrice,
		&p.AdultPrice, &p.PaymentMethod, &p.Promotions, &p.USDPrice, &p.Notes,
		&r.ID, &r.Resource, &r.DA, &r.DR, &r.RD, &r.TR, &r.PA, &r.TF, &r.CF,
		&r.OrganicKeywords, &r.MetricsUpdateDate, &r.SocialMedia, &r.OtherInfo,
		&r.MainCategory, &r.OtherCategories,
	}
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// fromListings applies the provider/resource join restricted to live rows.
func fromListings(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	return b.From(providersTable + " p").
		Join(resourcesTable + " r ON p.resource_id = r.resource_id").
		Where("r.deleted_at IS NULL")
}

// ListQuery holds the statements needed to answer one list request.
type ListQuery struct {
	Params ListParams

	// Total counts every live listing, ignoring filters.
	Total squirrel.SelectBuilder
	// Filtered counts the listings matching every active filter.
	Filtered squirrel.SelectBuilder
	// Page selects one sorted page of the filtered listings.
	Page squirrel.SelectBuilder
}

// BuildListQuery composes the count and page statements for spec. All user
// input ends up in bound arguments; sort column and direction come from
// allow-lists.
func BuildListQuery(spec FilterSpec, maxLimit int) ListQuery {
	params := spec.Params(maxLimit)

	total := fromListings(psql().Select("COUNT(*)"))
	filtered := total
	page := fromListings(psql().Select(selectColumns()...))

	for _, pred := range spec.Predicates() {
		filtered = filtered.Where(pred)
		page = page.Where(pred)
	}

	page = page.
		OrderBy(sortColumns[params.SortBy]+" "+params.Order, "p.id ASC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset()))

	return ListQuery{
		Params:   params,
		Total:    total,
		Filtered: filtered,
		Page:     page,
	}
}

// Fingerprint identifies the result set of q. Two specs that normalize to the
// same statements and arguments share a fingerprint.
func (q ListQuery) Fingerprint() (string, error) {
	sql, args, err := q.Page.ToSql()
	if err != nil {
		return "", fmt.Errorf("build list query failed: %w", err)
	}
	h := sha256.New()
	fmt.Fprint(h, sql)
	for _, a := range args {
		fmt.Fprintf(h, "\x00%T:%v", a, a)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func getByIDQuery(resourceID int64) squirrel.SelectBuilder {
	return fromListings(psql().Select(selectColumns()...)).
		Where(squirrel.Eq{"r.resource_id": resourceID})
}
