package resource

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nekogravitycat/link-catalog-backend/internal/cache"
	"github.com/nekogravitycat/link-catalog-backend/internal/event"
	"github.com/nekogravitycat/link-catalog-backend/internal/metrics"
)

const (
	DefaultMaxLimit      = 500
	DefaultExportMaxRows = 10000
)

type Service interface {
	List(ctx context.Context, spec FilterSpec) (*ListResult, error)
	GetByID(ctx context.Context, id int64) (*Listing, error)
	// CreateBatch validates records and stores them only if all of them pass.
	// A rejected batch is reported through BatchResult, not the error.
	CreateBatch(ctx context.Context, records []RawRecord) (BatchResult, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Listing, error)
	Delete(ctx context.Context, id int64, force bool) error
	// Export returns every listing matching spec, up to the export row limit.
	Export(ctx context.Context, spec FilterSpec) ([]*Listing, error)
}

// Options tunes list and export limits. Zero values select the defaults.
type Options struct {
	MaxLimit      int
	ExportMaxRows int
}

type service struct {
	repo      Repository
	cache     cache.ListCache
	publisher event.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	opts      Options
}

func NewService(repo Repository, listCache cache.ListCache, publisher event.Publisher, logger *slog.Logger, opts Options) Service {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	if publisher == nil {
		publisher = event.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.ExportMaxRows <= 0 {
		opts.ExportMaxRows = DefaultExportMaxRows
	}
	return &service{
		repo:      repo,
		cache:     listCache,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer("link-catalog-backend/resource"),
		opts:      opts,
	}
}

func (s *service) List(ctx context.Context, spec FilterSpec) (res *ListResult, err error) {
	ctx, span := s.tracer.Start(ctx, "resource.List")
	defer func() { endSpan(span, err) }()

	q := BuildListQuery(spec, s.opts.MaxLimit)
	span.SetAttributes(
		attribute.Int("list.page", q.Params.Page),
		attribute.Int("list.limit", q.Params.Limit),
		attribute.String("list.sortby", q.Params.SortBy),
	)

	var slot cache.Slot
	if key, err := q.Fingerprint(); err == nil {
		var cached ListResult
		var found bool
		slot, found, err = s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "list cache read failed", "error", err)
		}
		if found {
			metrics.CacheHit()
			return &cached, nil
		}
		metrics.CacheMiss()
	}

	res, err = s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	// The slot was taken before the query, so a write committed meanwhile
	// leaves this result in a generation nobody reads.
	if err := s.cache.Set(ctx, slot, res); err != nil {
		s.logger.WarnContext(ctx, "list cache write failed", "error", err)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (l *Listing, err error) {
	ctx, span := s.tracer.Start(ctx, "resource.GetByID", trace.WithAttributes(attribute.Int64("resource.id", id)))
	defer func() { endSpan(span, err) }()

	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateBatch(ctx context.Context, records []RawRecord) (result BatchResult, err error) {
	ctx, span := s.tracer.Start(ctx, "resource.CreateBatch", trace.WithAttributes(attribute.Int("batch.size", len(records))))
	defer func() { endSpan(span, err) }()

	result = ValidateBatch(records)
	if !result.OK() {
		s.logger.InfoContext(ctx, "resource batch rejected", "message", result.Message, "size", len(records))
		return result, nil
	}
	if len(records) == 0 {
		return result, nil
	}

	listings := make([]*Listing, len(records))
	for i, rec := range records {
		l, dropped := rec.ToListing()
		if len(dropped) > 0 {
			s.logger.WarnContext(ctx, "unparseable optional fields stored as null",
				"index", i, "resource", l.Resource.Resource, "fields", dropped)
		}
		listings[i] = l
	}

	if err := s.repo.CreateBatch(ctx, listings); err != nil {
		return BatchResult{}, err
	}

	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.Resource.ID
	}
	s.changed(ctx, event.TypeResourcesCreated, map[string]any{"resource_ids": ids})
	return result, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (l *Listing, err error) {
	ctx, span := s.tracer.Start(ctx, "resource.Update", trace.WithAttributes(attribute.Int64("resource.id", id)))
	defer func() { endSpan(span, err) }()

	if rc, pc := req.columns(); len(rc) == 0 && len(pc) == 0 {
		return nil, ErrNoFields
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, err
	}

	s.changed(ctx, event.TypeResourcesUpdated, map[string]any{"resource_id": id})
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64, force bool) (err error) {
	ctx, span := s.tracer.Start(ctx, "resource.Delete", trace.WithAttributes(
		attribute.Int64("resource.id", id),
		attribute.Bool("delete.force", force),
	))
	defer func() { endSpan(span, err) }()

	if err := s.repo.Delete(ctx, id, force); err != nil {
		return err
	}

	s.changed(ctx, event.TypeResourcesDeleted, map[string]any{"resource_id": id, "force": force})
	return nil
}

func (s *service) Export(ctx context.Context, spec FilterSpec) (rows []*Listing, err error) {
	ctx, span := s.tracer.Start(ctx, "resource.Export")
	defer func() { endSpan(span, err) }()

	exportSpec := make(FilterSpec, len(spec)+2)
	for k, v := range spec {
		exportSpec[k] = v
	}
	exportSpec["page"] = "1"
	exportSpec["limit"] = strconv.Itoa(s.opts.ExportMaxRows)

	return s.repo.Rows(ctx, BuildListQuery(exportSpec, s.opts.ExportMaxRows))
}

// changed drops cached list pages and announces the write. Neither failure
// affects the already committed change.
func (s *service) changed(ctx context.Context, eventType string, payload any) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "list cache invalidation failed", "error", err)
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "type", eventType, "error", err)
	}
}

// normalize validates the fields being changed and rewrites the resource URL
// into its stored form.
func (req *UpdateRequest) normalize() error {
	if req.Resource != nil {
		v := NormalizeResourceURL(*req.Resource)
		if v == "" {
			return ErrEmptyResource
		}
		req.Resource = &v
	}
	if req.MainCategory != nil && !IsValidCategory(*req.MainCategory) {
		return ErrInvalidCategory
	}
	if req.OtherCategories != nil {
		if _, ok := ValidCategories(*req.OtherCategories); !ok {
			return ErrInvalidCategory
		}
	}
	if req.Email != nil {
		v := strings.TrimSpace(*req.Email)
		if !IsValidEmail(v) {
			return ErrInvalidEmail
		}
		req.Email = &v
	}
	for _, p := range []*float64{req.Price, req.CasinoPrice, req.CBDPrice, req.AdultPrice, req.USDPrice} {
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return ErrInvalidPrice
		}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
