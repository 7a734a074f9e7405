package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"influencerdash/internal/dataset"
	"influencerdash/internal/infrastructure"
)

// ErrNotFound is returned for unknown or evicted sessions
var ErrNotFound = errors.New("session not found")

// Store holds the most recently used sessions. The least recently used
// session is evicted when the store is full.
type Store struct {
	sessions *lru.Cache
	logger   *slog.Logger
	metrics  *infrastructure.DashboardMetrics
}

// NewStore creates a store holding at most size sessions
func NewStore(size int, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:  logger.With(slog.String("component", "session_store")),
		metrics: metrics,
	}

	sessions, err := lru.NewWithEvict(size, func(key, value interface{}) {
		s.metrics.RecordSession(context.Background(), false)
		s.logger.Debug("Session evicted", slog.String("session_id", fmt.Sprint(key)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	s.sessions = sessions
	return s, nil
}

// Create starts a session over the snapshot
func (s *Store) Create(ctx context.Context, snap *dataset.Snapshot) *Session {
	sess := New(uuid.New().String(), snap)
	s.sessions.Add(sess.ID, sess)
	s.metrics.RecordSession(ctx, true)
	s.logger.InfoContext(ctx, "Session created",
		slog.String("session_id", sess.ID),
		slog.Uint64("version", snap.Version),
		slog.String("source", snap.Source))
	return sess
}

// Get returns a session and marks it recently used
func (s *Store) Get(id string) (*Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v.(*Session), nil
}

// Delete removes a session
func (s *Store) Delete(id string) error {
	if !s.sessions.Contains(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.sessions.Remove(id)
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.sessions.Len()
}
