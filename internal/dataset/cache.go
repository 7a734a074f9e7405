package dataset

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"influencerdash/internal/infrastructure"
	"influencerdash/pkg/contracts/domain"
)

var versionCounter atomic.Uint64

// NextVersion returns a process-unique, increasing table version
func NextVersion() uint64 {
	return versionCounter.Add(1)
}

// Snapshot is an immutable loaded table set
type Snapshot struct {
	Tables   *domain.Tables
	Version  uint64
	Source   string
	LoadedAt time.Time
}

// NewSnapshot stamps tables with a fresh version
func NewSnapshot(tables *domain.Tables, source string) *Snapshot {
	return &Snapshot{
		Tables:   tables,
		Version:  NextVersion(),
		Source:   source,
		LoadedAt: time.Now(),
	}
}

// Cache loads the default dataset files at most once per process.
// Failed loads are not cached; the next Get tries again.
type Cache struct {
	files   map[domain.Entity]string
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
	tracer  trace.Tracer

	group    singleflight.Group
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewCache creates a cache over the given dataset files
func NewCache(files map[domain.Entity]string, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		files:   files,
		logger:  logger.With(slog.String("component", "dataset_cache")),
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
	}
}

// Get returns the cached default snapshot, loading it on first use.
// Concurrent first calls share one load, which outlives the caller's cancellation.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	v, err, shared := c.group.Do("default", func() (interface{}, error) {
		c.mu.RLock()
		snap := c.snapshot
		c.mu.RUnlock()
		if snap != nil {
			return snap, nil
		}
		return c.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Shared in-flight dataset load")
	}
	return v.(*Snapshot), nil
}

// Reload re-reads the default files and replaces the cached snapshot on success
func (c *Cache) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.group.Do("default", func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Loaded reports whether the default snapshot is cached
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil
}

func (c *Cache) load(ctx context.Context) (*Snapshot, error) {
	ctx, span := c.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.source", SourceDefault)))
	defer span.End()

	start := time.Now()
	tables, err := LoadFiles(ctx, c.files)
	duration := time.Since(start)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		c.metrics.RecordDatasetLoad(ctx, SourceDefault, duration, nil, err)
		c.logger.ErrorContext(ctx, "Failed to load default dataset",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, err
	}

	snap := NewSnapshot(tables, SourceDefault)
	c.metrics.RecordDatasetLoad(ctx, SourceDefault, duration, entityCounts(tables), nil)

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Default dataset loaded",
		slog.Uint64("version", snap.Version),
		slog.Int("influencers", len(tables.Influencers)),
		slog.Int("posts", len(tables.Posts)),
		slog.Int("tracking", len(tables.Tracking)),
		slog.Int("payouts", len(tables.Payouts)),
		slog.Duration("duration", duration))
	return snap, nil
}

// LoadUpload parses four uploaded files into a new snapshot
func LoadUpload(ctx context.Context, readers map[domain.Entity]io.Reader, names map[domain.Entity]string, metrics *infrastructure.DashboardMetrics) (*Snapshot, error) {
	ctx, span := otel.Tracer(infrastructure.MeterName).Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.source", SourceUpload)))
	defer span.End()

	start := time.Now()
	tables, err := LoadReaders(ctx, SourceUpload, readers, names)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		metrics.RecordDatasetLoad(ctx, SourceUpload, time.Since(start), nil, err)
		return nil, err
	}
	metrics.RecordDatasetLoad(ctx, SourceUpload, time.Since(start), entityCounts(tables), nil)
	return NewSnapshot(tables, SourceUpload), nil
}

func entityCounts(t *domain.Tables) map[string]int {
	counts := make(map[string]int, len(domain.Entities))
	for e, n := range t.Counts() {
		counts[string(e)] = n
	}
	return counts
}
