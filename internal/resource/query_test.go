package resource

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseFrom = "FROM public.lbs_providers p JOIN public.lbs_resources r ON p.resource_id = r.resource_id WHERE r.deleted_at IS NULL"

func toSQL(t *testing.T, q interface {
	ToSql() (string, []interface{}, error)
}) (string, []any) {
	t.Helper()
	sql, args, err := q.ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestBuildListQueryNoFilters(t *testing.T) {
	q := BuildListQuery(FilterSpec{}, 500)

	total, totalArgs := toSQL(t, q.Total)
	assert.Equal(t, "SELECT COUNT(*) "+baseFrom, total)
	assert.Empty(t, totalArgs)

	filtered, _ := toSQL(t, q.Filtered)
	assert.Equal(t, total, filtered)

	page, args := toSQL(t, q.Page)
	assert.True(t, strings.HasPrefix(page, "SELECT p.id, p.email, p.currency, p.price,"), page)
	assert.True(t, strings.HasSuffix(page, baseFrom+" ORDER BY r.resource ASC, p.id ASC LIMIT 50 OFFSET 0"), page)
	assert.Empty(t, args)

	assert.Equal(t, ListParams{Page: 1, Limit: 50, SortBy: "resource", Order: "ASC"}, q.Params)
}

func TestBuildListQueryPagination(t *testing.T) {
	q := BuildListQuery(FilterSpec{"page": "2", "limit": "10"}, 500)

	page, _ := toSQL(t, q.Page)
	assert.True(t, strings.HasSuffix(page, "LIMIT 10 OFFSET 10"), page)
	assert.Equal(t, 10, q.Params.Offset())
}

func TestBuildListQueryHugePageDoesNotWrap(t *testing.T) {
	for _, limit := range []string{"50", "7", "500"} {
		q := BuildListQuery(FilterSpec{"page": "9223372036854775807", "limit": limit}, 500)

		offset := q.Params.Offset()
		assert.GreaterOrEqual(t, offset, 0, limit)
		assert.Greater(t, offset, math.MaxInt-q.Params.Limit, limit)

		page, _ := toSQL(t, q.Page)
		assert.True(t, strings.HasSuffix(page, fmt.Sprintf("LIMIT %d OFFSET %d", q.Params.Limit, offset)), page)
	}

	q := BuildListQuery(FilterSpec{"page": "9223372036854775807", "limit": "50"}, 500)
	page, _ := toSQL(t, q.Page)
	assert.True(t, strings.HasSuffix(page, "LIMIT 50 OFFSET 9223372036854775800"), page)
}

func TestParamsNormalization(t *testing.T) {
	cases := []struct {
		name string
		spec FilterSpec
		want ListParams
	}{
		{"defaults", FilterSpec{}, ListParams{1, 50, "resource", "ASC"}},
		{"zero page", FilterSpec{"page": "0"}, ListParams{1, 50, "resource", "ASC"}},
		{"negative limit", FilterSpec{"limit": "-5"}, ListParams{1, 50, "resource", "ASC"}},
		{"text paging", FilterSpec{"page": "two", "limit": "ten"}, ListParams{1, 50, "resource", "ASC"}},
		{"limit capped", FilterSpec{"limit": "100000"}, ListParams{1, 500, "resource", "ASC"}},
		{"desc any case", FilterSpec{"order": "DeSc"}, ListParams{1, 50, "resource", "DESC"}},
		{"unknown order", FilterSpec{"order": "sideways"}, ListParams{1, 50, "resource", "ASC"}},
		{"known sort", FilterSpec{"sortby": "da"}, ListParams{1, 50, "da", "ASC"}},
		{"unknown sort", FilterSpec{"sortby": "password"}, ListParams{1, 50, "resource", "ASC"}},
		{"huge page", FilterSpec{"page": "9223372036854775807"}, ListParams{math.MaxInt/50 + 1, 50, "resource", "ASC"}},
		{"page beyond int", FilterSpec{"page": "99999999999999999999"}, ListParams{1, 50, "resource", "ASC"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.spec.Params(500))
		})
	}
}

func TestBuildListQuerySortInjectionFallsBack(t *testing.T) {
	q := BuildListQuery(FilterSpec{"sortby": "resource; DROP TABLE lbs_resources", "order": "asc; --"}, 500)

	page, _ := toSQL(t, q.Page)
	assert.Contains(t, page, "ORDER BY r.resource ASC, p.id ASC")
	assert.NotContains(t, page, "DROP")
}

func TestBuildListQuerySortByColumn(t *testing.T) {
	q := BuildListQuery(FilterSpec{"sortby": "price", "order": "desc"}, 500)

	page, _ := toSQL(t, q.Page)
	assert.Contains(t, page, "ORDER BY p.price DESC, p.id ASC")
}

func TestBuildListQuerySubstringFilter(t *testing.T) {
	q := BuildListQuery(FilterSpec{"email": "acme"}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Equal(t, "SELECT COUNT(*) "+baseFrom+" AND p.email LIKE $1", filtered)
	assert.Equal(t, []any{"%acme%"}, args)

	total, totalArgs := toSQL(t, q.Total)
	assert.NotContains(t, total, "LIKE")
	assert.Empty(t, totalArgs)

	page, pageArgs := toSQL(t, q.Page)
	assert.Contains(t, page, "WHERE r.deleted_at IS NULL AND p.email LIKE $1 ORDER BY")
	assert.Equal(t, []any{"%acme%"}, pageArgs)
}

func TestBuildListQueryEscapesLikeWildcards(t *testing.T) {
	q := BuildListQuery(FilterSpec{"notes": `50%_off\`}, 500)

	_, args := toSQL(t, q.Filtered)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestBuildListQueryIntegerRange(t *testing.T) {
	q := BuildListQuery(FilterSpec{"da": "10-20"}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Equal(t, "SELECT COUNT(*) "+baseFrom+" AND (r.da >= $1 AND r.da <= $2)", filtered)
	assert.Equal(t, []any{int64(10), int64(20)}, args)
}

func TestBuildListQuerySingleValueIsEquality(t *testing.T) {
	q := BuildListQuery(FilterSpec{"da": "30"}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Equal(t, "SELECT COUNT(*) "+baseFrom+" AND r.da = $1", filtered)
	assert.Equal(t, []any{int64(30)}, args)
}

func TestBuildListQueryDecimalRange(t *testing.T) {
	q := BuildListQuery(FilterSpec{"price": "9.5-100"}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Contains(t, filtered, "(p.price >= $1 AND p.price <= $2)")
	assert.Equal(t, []any{9.5, 100.0}, args)
}

func TestBuildListQueryMalformedRangesAreNoOps(t *testing.T) {
	for _, v := range []string{"1-2-3", "a-b", "10-", "-", "abc", " "} {
		t.Run(v, func(t *testing.T) {
			q := BuildListQuery(FilterSpec{"da": v, "usd_price": v}, 500)

			filtered, args := toSQL(t, q.Filtered)
			total, _ := toSQL(t, q.Total)
			assert.Equal(t, total, filtered)
			assert.Empty(t, args)
		})
	}
}

func TestBuildListQueryDateRange(t *testing.T) {
	q := BuildListQuery(FilterSpec{"metrics_update_date": "2024-01-01 - 2024-01-31"}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Equal(t, "SELECT COUNT(*) "+baseFrom+" AND r.metrics_update_date BETWEEN $1 AND $2", filtered)
	assert.Equal(t, []any{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}, args)
}

func TestBuildListQuerySingleDate(t *testing.T) {
	q := BuildListQuery(FilterSpec{"metrics_update_date": "2024-02-15"}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Contains(t, filtered, "AND r.metrics_update_date = $1")
	assert.Equal(t, []any{time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)}, args)
}

func TestBuildListQueryBadDatesAreNoOps(t *testing.T) {
	for _, v := range []string{"2024-01-01-2024-01-31", "yesterday", "2024-01-01 - soon", "a - b - c"} {
		q := BuildListQuery(FilterSpec{"metrics_update_date": v}, 500)
		_, args := toSQL(t, q.Filtered)
		assert.Empty(t, args, v)
	}
}

func TestBuildListQueryCombinesFiltersInFieldOrder(t *testing.T) {
	q := BuildListQuery(FilterSpec{
		"da":            "10-20",
		"email":         "acme",
		"main_category": "Tech",
		"unknown":       "ignored",
	}, 500)

	filtered, args := toSQL(t, q.Filtered)
	assert.Equal(t, "SELECT COUNT(*) "+baseFrom+
		" AND p.email LIKE $1 AND r.main_category LIKE $2 AND (r.da >= $3 AND r.da <= $4)", filtered)
	assert.Equal(t, []any{"%acme%", "%Tech%", int64(10), int64(20)}, args)

	page, pageArgs := toSQL(t, q.Page)
	assert.Contains(t, page, "LIMIT 50 OFFSET 0")
	assert.Equal(t, args, pageArgs)
}

func TestFingerprint(t *testing.T) {
	a, err := BuildListQuery(FilterSpec{"email": "acme", "page": "1"}, 500).Fingerprint()
	require.NoError(t, err)

	// defaults spelled out normalize to the same statement
	b, err := BuildListQuery(FilterSpec{"email": "acme", "limit": "50", "sortby": "bogus", "ignored": "x"}, 500).Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := BuildListQuery(FilterSpec{"email": "acme", "page": "2"}, 500).Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := BuildListQuery(FilterSpec{"email": "acm"}, 500).Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestGetByIDQuery(t *testing.T) {
	sql, args := toSQL(t, getByIDQuery(7))
	assert.True(t, strings.HasSuffix(sql, baseFrom+" AND r.resource_id = $1"), sql)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestScanDestMatchesColumns(t *testing.T) {
	var l Listing
	assert.Len(t, l.scanDest(), len(listingColumns))
}
