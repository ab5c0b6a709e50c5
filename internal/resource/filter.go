package resource

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// FilterSpec is the sparse set of list filters sent by the admin UI, keyed by
// filter name ("email", "da", "page", ...). Unknown keys are ignored.
type FilterSpec map[string]string

const (
	DefaultPage   = 1
	DefaultLimit  = 50
	DefaultSortBy = "resource"

	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

const (
	rangeSeparator     = "-"
	dateRangeSeparator = " - "
)

type fieldKind int

const (
	kindSubstring fieldKind = iota
	kindIntRange
	kindDecimalRange
	kindDateRange
)

type filterField struct {
	name   string
	column string
	kind   fieldKind
}

// filterFields lists every filter the list endpoint understands, in the order
// their predicates are added to the query.
var filterFields = []filterField{
	{"email", "p.email", kindSubstring},
	{"currency", "p.currency", kindSubstring},
	{"payment_method", "p.payment_method", kindSubstring},
	{"promotions", "p.promotions", kindSubstring},
	{"notes", "p.notes", kindSubstring},
	{"other_info", "r.other_info", kindSubstring},
	{"social_media", "r.social_media", kindSubstring},
	{"main_category", "r.main_category", kindSubstring},
	{"other_categories", "r.other_categories", kindSubstring},

	{"price", "p.price", kindDecimalRange},
	{"casino_price", "p.casino_price", kindDecimalRange},
	{"adult_price", "p.adult_price", kindDecimalRange},
	{"usd_price", "p.usd_price", kindDecimalRange},

	{"da", "r.da", kindIntRange},
	{"dr", "r.dr", kindIntRange},
	{"rd", "r.rd", kindIntRange},
	{"tr", "r.tr", kindIntRange},
	{"pa", "r.pa", kindIntRange},
	{"tf", "r.tf", kindIntRange},
	{"cf", "r.cf", kindIntRange},
	{"organic_keywords", "r.organic_keywords", kindIntRange},

	{"metrics_update_date", "r.metrics_update_date", kindDateRange},
}

// ListParams are the normalized paging and sorting settings of a list call.
type ListParams struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Offset is the number of rows skipped before the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Params extracts paging and sorting from the filter set. Invalid or missing values
// fall back to the defaults; limit is capped at maxLimit when maxLimit > 0
// and page at the largest value whose offset still fits in an int.
func (s FilterSpec) Params(maxLimit int) ListParams {
	p := ListParams{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: DefaultSortBy,
		Order:  OrderAsc,
	}

	if n, err := strconv.Atoi(strings.TrimSpace(s["page"])); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s["limit"])); err == nil && n >= 1 {
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	// Keep (page-1)*limit within int so the offset never wraps.
	if maxPage := math.MaxInt/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}
	if _, ok := sortColumns[s["sortby"]]; ok {
		p.SortBy = s["sortby"]
	}
	if strings.EqualFold(strings.TrimSpace(s["order"]), OrderDesc) {
		p.Order = OrderDesc
	}
	return p
}

// Predicates returns one condition per active filter. Empty values and values
// that are neither a single value nor a two-sided range add nothing.
func (s FilterSpec) Predicates() []squirrel.Sqlizer {
	var preds []squirrel.Sqlizer
	for _, f := range filterFields {
		if pred := f.predicate(s[f.name]); pred != nil {
			preds = append(preds, pred)
		}
	}
	return preds
}

func (f filterField) predicate(raw string) squirrel.Sqlizer {
	if raw == "" {
		return nil
	}
	switch f.kind {
	case kindSubstring:
		return squirrel.Like{f.column: "%" + escapeLike(raw) + "%"}
	case kindIntRange:
		return rangePredicate(f.column, raw, func(s string) (any, bool) {
			return parseInteger(s)
		})
	case kindDecimalRange:
		return rangePredicate(f.column, raw, func(s string) (any, bool) {
			return parseDecimal(s)
		})
	case kindDateRange:
		return dateRangePredicate(f.column, raw)
	}
	return nil
}

// rangePredicate turns "lo-hi" into an inclusive range and "v" into equality.
func rangePredicate(column, raw string, parse func(string) (any, bool)) squirrel.Sqlizer {
	parts := strings.Split(raw, rangeSeparator)
	switch len(parts) {
	case 1:
		v, ok := parse(parts[0])
		if !ok {
			return nil
		}
		return squirrel.Eq{column: v}
	case 2:
		lo, okLo := parse(parts[0])
		hi, okHi := parse(parts[1])
		if !okLo || !okHi {
			return nil
		}
		return squirrel.And{
			squirrel.GtOrEq{column: lo},
			squirrel.LtOrEq{column: hi},
		}
	default:
		return nil
	}
}

// dateRangePredicate splits on " - " so that the hyphens inside ISO dates are
// left alone.
func dateRangePredicate(column, raw string) squirrel.Sqlizer {
	parts := strings.Split(raw, dateRangeSeparator)
	switch len(parts) {
	case 1:
		d, ok := parseDate(parts[0])
		if !ok {
			return nil
		}
		return squirrel.Eq{column: d}
	case 2:
		from, okFrom := parseDate(parts[0])
		to, okTo := parseDate(parts[1])
		if !okFrom || !okTo {
			return nil
		}
		return squirrel.Expr(column+" BETWEEN ? AND ?", from, to)
	default:
		return nil
	}
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE treat the user's text literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
