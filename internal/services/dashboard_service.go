package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"influencerdash/internal/analytics"
	"influencerdash/internal/charts"
	"influencerdash/internal/dataset"
	"influencerdash/internal/exporter"
	"influencerdash/internal/infrastructure"
	"influencerdash/internal/session"
	"influencerdash/pkg/contracts/domain"
)

// View names used for memo keys and metrics
const (
	ViewOverview      = "overview"
	ViewTopPerformers = "top_performers"
)

// SessionInfo describes a session for the front end
type SessionInfo struct {
	ID        string                `json:"id"`
	Source    string                `json:"source"`
	Version   uint64                `json:"version"`
	LoadedAt  time.Time             `json:"loaded_at"`
	Selection domain.Selection      `json:"selection"`
	Options   domain.FilterOptions  `json:"options"`
	Counts    map[domain.Entity]int `json:"counts"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// TablePage is one page of a data preview
type TablePage struct {
	Entity  domain.Entity `json:"entity"`
	Columns []string      `json:"columns"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Rows    interface{}   `json:"rows"`
}

// IntegrityReport lists the violated dataset invariants of a session's tables
type IntegrityReport struct {
	Version uint64                  `json:"version"`
	Valid   bool                    `json:"valid"`
	Issues  []domain.IntegrityIssue `json:"issues"`
}

// DashboardOptions configures a DashboardService
type DashboardOptions struct {
	TopN         int
	RenderCharts bool
}

// DashboardService implements the dashboard operations
type DashboardService struct {
	cache    *dataset.Cache
	store    *session.Store
	memo     *session.ViewMemo
	charts   *charts.Renderer
	workbook *exporter.WorkbookExporter
	topN     int
	metrics  *infrastructure.DashboardMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service with injected dependencies
func NewDashboardService(cache *dataset.Cache, store *session.Store, memo *session.ViewMemo, opts DashboardOptions, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	return &DashboardService{
		cache:    cache,
		store:    store,
		memo:     memo,
		charts:   charts.NewRenderer(opts.RenderCharts),
		workbook: exporter.NewWorkbookExporter(),
		topN:     opts.TopN,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
		logger:   logger.With(slog.String("service", "dashboard")),
	}
}

// CreateSession starts a session over the default dataset, loading it on first use
func (s *DashboardService) CreateSession(ctx context.Context) (SessionInfo, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return SessionInfo{}, err
	}
	sess := s.store.Create(ctx, snap)
	return info(sess.State()), nil
}

// GetSession returns the state of a session
func (s *DashboardService) GetSession(ctx context.Context, id string) (SessionInfo, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return SessionInfo{}, err
	}
	return info(sess.State()), nil
}

// DeleteSession ends a session
func (s *DashboardService) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Session deleted", slog.String("session_id", id))
	return nil
}

// UpdateFilters replaces the selection of a session
func (s *DashboardService) UpdateFilters(ctx context.Context, id string, sel domain.Selection) (SessionInfo, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return SessionInfo{}, err
	}
	st := sess.SetSelection(sel)
	s.logger.DebugContext(ctx, "Filters updated",
		slog.String("session_id", id),
		slog.Int("platforms", len(sel.Platforms)),
		slog.Int("products", len(sel.Products)),
		slog.Int("influencers", len(sel.Influencers)))
	return info(st), nil
}

// ResetFilters restores the default selection of a session
func (s *DashboardService) ResetFilters(ctx context.Context, id string) (SessionInfo, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return SessionInfo{}, err
	}
	return info(sess.ResetSelection()), nil
}

// Overview computes the KPI view for the session's selection
func (s *DashboardService) Overview(ctx context.Context, id string) (*domain.OverviewView, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, ViewOverview, sess.State(), s.computeOverview)
	if err != nil {
		return nil, err
	}
	return v.(*domain.OverviewView), nil
}

// TopPerformers computes the ranking and ROAS view for the session's selection
func (s *DashboardService) TopPerformers(ctx context.Context, id string) (*domain.TopPerformersView, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, ViewTopPerformers, sess.State(), s.computeTopPerformers)
	if err != nil {
		return nil, err
	}
	return v.(*domain.TopPerformersView), nil
}

type computeFunc func(ctx context.Context, st session.State) (interface{}, error)

// view returns a memoized view or computes and stores it
func (s *DashboardService) view(ctx context.Context, name string, st session.State, compute computeFunc) (interface{}, error) {
	key := session.Key(name, st.Snapshot.Version, st.Selection)
	if v, ok := s.memo.Get(key); ok {
		s.metrics.RecordView(ctx, name, true, 0)
		return v, nil
	}

	ctx, span := s.tracer.Start(ctx, "view."+name, trace.WithAttributes(
		attribute.String("session.id", st.ID),
		attribute.Int64("dataset.version", int64(st.Snapshot.Version)),
	))
	defer span.End()

	start := time.Now()
	v, err := compute(ctx, st)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	s.metrics.RecordView(ctx, name, false, time.Since(start))
	s.memo.Add(key, v)
	return v, nil
}

func (s *DashboardService) computeOverview(ctx context.Context, st session.State) (interface{}, error) {
	t := st.Snapshot.Tables
	filtered := analytics.Filter(t, st.Selection)
	ov := analytics.ComputeOverview(filtered, t.Payouts)
	byPlatform := analytics.RevenueByPlatform(filtered)

	chart, err := s.charts.RevenueByPlatform(byPlatform)
	if err != nil {
		return nil, fmt.Errorf("failed to render revenue chart: %w", err)
	}

	return &domain.OverviewView{
		Overview:          ov,
		Display:           analytics.Display(ov),
		RevenueByPlatform: byPlatform,
		FilteredRows:      len(filtered),
		Chart:             chart,
	}, nil
}

func (s *DashboardService) computeTopPerformers(ctx context.Context, st session.State) (interface{}, error) {
	t := st.Snapshot.Tables
	filtered := analytics.Filter(t, st.Selection)
	top := analytics.TopInfluencers(filtered, t.Influencers, s.topN)
	roas := analytics.ROASByInfluencer(filtered, t.Payouts, t.Influencers)

	topChart, err := s.charts.TopInfluencers(top)
	if err != nil {
		return nil, fmt.Errorf("failed to render top influencers chart: %w", err)
	}
	distribution, err := s.charts.ROASDistribution(roas)
	if err != nil {
		return nil, fmt.Errorf("failed to render ROAS chart: %w", err)
	}

	return &domain.TopPerformersView{
		TopInfluencers:   top,
		ROAS:             roas,
		ROASSummary:      analytics.SummarizeROAS(roas),
		TopChart:         topChart,
		DistributionPlot: distribution,
	}, nil
}

// Table returns one page of a session table
func (s *DashboardService) Table(ctx context.Context, id string, entity string, limit, offset int) (TablePage, error) {
	e, err := domain.ParseEntity(entity)
	if err != nil {
		return TablePage{}, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	sess, err := s.store.Get(id)
	if err != nil {
		return TablePage{}, err
	}

	t := sess.State().Snapshot.Tables
	total := t.Len(e)
	lo, hi := pageBounds(total, limit, offset)

	page := TablePage{Entity: e, Columns: e.Columns(), Total: total, Limit: limit, Offset: offset}
	switch e {
	case domain.EntityInfluencers:
		page.Rows = t.Influencers[lo:hi]
	case domain.EntityPosts:
		page.Rows = t.Posts[lo:hi]
	case domain.EntityTracking:
		page.Rows = t.Tracking[lo:hi]
	case domain.EntityPayouts:
		page.Rows = t.Payouts[lo:hi]
	}
	return page, nil
}

func pageBounds(total, limit, offset int) (int, int) {
	lo := min(max(offset, 0), total)
	if limit <= 0 {
		return lo, total
	}
	return lo, min(lo+limit, total)
}

// ExportTable streams a session table as CSV
func (s *DashboardService) ExportTable(ctx context.Context, id string, entity string, w io.Writer) error {
	e, err := domain.ParseEntity(entity)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	return exporter.EncodeEntity(w, sess.State().Snapshot.Tables, e)
}

// Upload applies up to four uploaded files to a session
func (s *DashboardService) Upload(ctx context.Context, id string, parts map[domain.Entity]io.Reader, names map[domain.Entity]string) (session.UploadResult, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return session.UploadResult{}, err
	}

	result, err := sess.Upload(ctx, parts, names, s.metrics)
	if err != nil {
		s.logger.WarnContext(ctx, "Upload rejected",
			slog.String("session_id", id),
			slog.String("error", err.Error()))
		return result, err
	}

	s.logger.InfoContext(ctx, "Upload processed",
		slog.String("session_id", id),
		slog.String("outcome", result.Outcome),
		slog.Int("received", len(result.Received)),
		slog.Uint64("version", result.Version))
	return result, nil
}

// Integrity checks the session tables against the dataset invariants
func (s *DashboardService) Integrity(ctx context.Context, id string) (IntegrityReport, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return IntegrityReport{}, err
	}
	snap := sess.State().Snapshot
	issues := domain.CheckIntegrity(snap.Tables)
	if issues == nil {
		issues = []domain.IntegrityIssue{}
	}
	return IntegrityReport{Version: snap.Version, Valid: len(issues) == 0, Issues: issues}, nil
}

// ExportWorkbook writes the session tables and views as an xlsx workbook
func (s *DashboardService) ExportWorkbook(ctx context.Context, id string, w io.Writer) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	return s.exportWorkbook(ctx, sess.State(), w)
}

// exportWorkbook renders every sheet from one state so views and tables agree
func (s *DashboardService) exportWorkbook(ctx context.Context, st session.State, w io.Writer) error {
	overview, err := s.view(ctx, ViewOverview, st, s.computeOverview)
	if err != nil {
		return err
	}
	top, err := s.view(ctx, ViewTopPerformers, st, s.computeTopPerformers)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "export.workbook", trace.WithAttributes(
		attribute.String("session.id", st.ID),
		attribute.Int64("dataset.version", int64(st.Snapshot.Version)),
	))
	defer span.End()

	if err := s.workbook.Export(w, st.Snapshot.Tables, overview.(*domain.OverviewView), top.(*domain.TopPerformersView)); err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("failed to export workbook: %w", err)
	}
	return nil
}

// SessionCount returns the number of live sessions
func (s *DashboardService) SessionCount() int {
	return s.store.Len()
}

func info(st session.State) SessionInfo {
	t := st.Snapshot.Tables
	return SessionInfo{
		ID:        st.ID,
		Source:    st.Snapshot.Source,
		Version:   st.Snapshot.Version,
		LoadedAt:  st.Snapshot.LoadedAt,
		Selection: st.Selection,
		Options:   analytics.Options(t),
		Counts:    t.Counts(),
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}
