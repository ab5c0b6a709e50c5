package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nekogravitycat/link-catalog-backend/internal/metrics"
)

type Repository interface {
	// List runs the count and page statements of q.
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	// Rows runs only the page statement of q.
	Rows(ctx context.Context, q ListQuery) ([]*Listing, error)
	GetByID(ctx context.Context, id int64) (*Listing, error)
	// CreateBatch inserts every listing in one transaction and fills in the
	// generated ids.
	CreateBatch(ctx context.Context, listings []*Listing) error
	Update(ctx context.Context, id int64, req UpdateRequest) error
	// Delete marks the resource deleted, or removes its rows when force is set.
	Delete(ctx context.Context, id int64, force bool) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) List(ctx context.Context, q ListQuery) (res *ListResult, err error) {
	defer func(start time.Time) { metrics.ObserveStorage("list", start, err) }(time.Now())

	res = &ListResult{
		Limit:  q.Params.Limit,
		Page:   q.Params.Page,
		SortBy: q.Params.SortBy,
		Order:  q.Params.Order,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.count(gctx, q.Total, &res.Total)
	})
	g.Go(func() error {
		return r.count(gctx, q.Filtered, &res.TotalFiltered)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Data, err = r.queryListings(ctx, q.Page)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *pgxRepository) Rows(ctx context.Context, q ListQuery) (rows []*Listing, err error) {
	defer func(start time.Time) { metrics.ObserveStorage("rows", start, err) }(time.Now())
	return r.queryListings(ctx, q.Page)
}

func (r *pgxRepository) count(ctx context.Context, b squirrel.SelectBuilder, dst *int) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build count query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(dst); err != nil {
		return fmt.Errorf("count listings failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) queryListings(ctx context.Context, b squirrel.SelectBuilder) ([]*Listing, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings failed: %w", err)
	}
	defer rows.Close()

	result := make([]*Listing, 0)
	for rows.Next() {
		var l Listing
		if err := rows.Scan(l.scanDest()...); err != nil {
			return nil, fmt.Errorf("scan listing failed: %w", err)
		}
		l.Provider.ResourceID = l.Resource.ID
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (l *Listing, err error) {
	defer func(start time.Time) { metrics.ObserveStorage("get", start, err) }(time.Now())

	query, args, err := getByIDQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get listing query failed: %w", err)
	}

	l = &Listing{}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(l.scanDest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get listing failed: %w", err)
	}
	l.Provider.ResourceID = l.Resource.ID
	return l, nil
}

func (r *pgxRepository) CreateBatch(ctx context.Context, listings []*Listing) (err error) {
	defer func(start time.Time) { metrics.ObserveStorage("create_batch", start, err) }(time.Now())

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, l := range listings {
			if err := insertListing(ctx, tx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertListing(ctx context.Context, tx pgx.Tx, l *Listing) error {
	res := &l.Resource
	query, args, err := psql().Insert(resourcesTable).
		Columns(
			"resource", "main_category", "other_categories",
			"da", "dr", "rd", "tr", "pa", "tf", "cf", "organic_keywords",
			"metrics_update_date", "social_media", "other_info",
		).
		Values(
			res.Resource, res.MainCategory, res.OtherCategories,
			res.DA, res.DR, res.RD, res.TR, res.PA, res.TF, res.CF, res.OrganicKeywords,
			res.MetricsUpdateDate, res.SocialMedia, res.OtherInfo,
		).
		Suffix("RETURNING resource_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert resource query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&res.ID); err != nil {
		return mapWriteError("insert resource", err)
	}

	p := &l.Provider
	p.ResourceID = res.ID
	query, args, err = psql().Insert(providersTable).
		Columns(
			"resource_id", "email", "currency", "price", "casino_price", "cbd_price",
			"adult_price", "payment_method", "promotions", "usd_price", "notes",
		).
		Values(
			p.ResourceID, p.Email, p.Currency, p.Price, p.CasinoPrice, p.CBDPrice,
			p.AdultPrice, p.PaymentMethod, p.Promotions, p.USDPrice, p.Notes,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert provider query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&p.ID); err != nil {
		return mapWriteError("insert provider", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, id int64, req UpdateRequest) (err error) {
	defer func(start time.Time) { metrics.ObserveStorage("update", start, err) }(time.Now())

	resourceSet, providerSet := req.columns()
	if len(resourceSet) == 0 && len(providerSet) == 0 {
		return ErrNoFields
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql().Select("1").
			From(resourcesTable).
			Where(squirrel.Eq{"resource_id": id}).
			Where("deleted_at IS NULL").
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock resource query failed: %w", err)
		}
		var one int
		if err := tx.QueryRow(ctx, query, args...).Scan(&one); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock resource failed: %w", err)
		}

		if len(resourceSet) > 0 {
			if err := execUpdate(ctx, tx, resourcesTable, resourceSet, id); err != nil {
				return err
			}
		}
		if len(providerSet) > 0 {
			if err := execUpdate(ctx, tx, providersTable, providerSet, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func execUpdate(ctx context.Context, tx pgx.Tx, table string, set map[string]any, resourceID int64) error {
	query, args, err := psql().Update(table).
		SetMap(set).
		Where(squirrel.Eq{"resource_id": resourceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s query failed: %w", table, err)
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError("update "+table, err)
	}
	// A resource without its provider row is not a listing.
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64, force bool) (err error) {
	defer func(start time.Time) { metrics.ObserveStorage("delete", start, err) }(time.Now())

	if !force {
		query, args, err := psql().Update(resourcesTable).
			Set("deleted_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"resource_id": id}).
			Where("deleted_at IS NULL").
			ToSql()
		if err != nil {
			return fmt.Errorf("build soft delete query failed: %w", err)
		}
		ct, err := r.pool.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("soft delete resource failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql().Delete(providersTable).
			Where(squirrel.Eq{"resource_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete provider query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete provider failed: %w", err)
		}

		query, args, err = psql().Delete(resourcesTable).
			Where(squirrel.Eq{"resource_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete resource query failed: %w", err)
		}
		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete resource failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func mapWriteError(op string, err error) error {
	var e *pgconn.PgError
	if errors.As(err, &e) {
		switch e.Code {
		case pgerrcode.UniqueViolation:
			return ErrDuplicate
		case pgerrcode.ForeignKeyViolation:
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// columns splits the non-nil fields of req into per-table SET maps.
func (req UpdateRequest) columns() (resource, provider map[string]any) {
	resource = map[string]any{}
	provider = map[string]any{}

	setIf := func(m map[string]any, col string, present bool, v any) {
		if present {
			m[col] = v
		}
	}

	setIf(resource, "resource", req.Resource != nil, req.Resource)
	setIf(resource, "main_category", req.MainCategory != nil, req.MainCategory)
	setIf(resource, "other_categories", req.OtherCategories != nil, req.OtherCategories)
	setIf(resource, "da", req.DA != nil, req.DA)
	setIf(resource, "dr", req.DR != nil, req.DR)
	setIf(resource, "rd", req.RD != nil, req.RD)
	setIf(resource, "tr", req.TR != nil, req.TR)
	setIf(resource, "pa", req.PA != nil, req.PA)
	setIf(resource, "tf", req.TF != nil, req.TF)
	setIf(resource, "cf", req.CF != nil, req.CF)
	setIf(resource, "organic_keywords", req.OrganicKeywords != nil, req.OrganicKeywords)
	setIf(resource, "metrics_update_date", req.MetricsUpdateDate != nil, req.MetricsUpdateDate)
	setIf(resource, "social_media", req.SocialMedia != nil, req.SocialMedia)
	setIf(resource, "other_info", req.OtherInfo != nil, req.OtherInfo)

	setIf(provider, "email", req.Email != nil, req.Email)
	setIf(provider, "currency", req.Currency != nil, req.Currency)
	setIf(provider, "price", req.Price != nil, req.Price)
	setIf(provider, "casino_price", req.CasinoPrice != nil, req.CasinoPrice)
	setIf(provider, "cbd_price", req.CBDPrice != nil, req.CBDPrice)
	setIf(provider, "adult_price", req.AdultPrice != nil, req.AdultPrice)
	setIf(provider, "payment_method", req.PaymentMethod != nil, req.PaymentMethod)
	setIf(provider, "promotions", req.Promotions != nil, req.Promotions)
	setIf(provider, "usd_price", req.USDPrice != nil, req.USDPrice)
	setIf(provider, "notes", req.Notes != nil, req.Notes)

	return resource, provider
}
