// Package session keeps per-user dashboard state: the loaded tables and the
// current filter selection.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"influencerdash/internal/analytics"
	"influencerdash/internal/dataset"
	"influencerdash/internal/infrastructure"
	"influencerdash/pkg/contracts/domain"
)

// Upload outcomes
const (
	UploadReplaced = "replaced"
	UploadPartial  = "partial"
	UploadRejected = "rejected"
)

// Session is one dashboard user's state. Interactions on a session are serialised.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	snapshot  *dataset.Snapshot
	selection domain.Selection
	updatedAt time.Time
}

// State is a consistent copy of a session taken under its lock
type State struct {
	ID        string
	Snapshot  *dataset.Snapshot
	Selection domain.Selection
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a session over a snapshot with every option selected
func New(id string, snap *dataset.Snapshot) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		snapshot:  snap,
		selection: analytics.DefaultSelection(snap.Tables),
		updatedAt: now,
	}
}

// State returns the current tables and selection
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:        s.ID,
		Snapshot:  s.snapshot,
		Selection: copySelection(s.selection),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

// SetSelection replaces the filter selection
func (s *Session) SetSelection(sel domain.Selection) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = copySelection(sel)
	s.updatedAt = time.Now()
	return State{ID: s.ID, Snapshot: s.snapshot, Selection: copySelection(s.selection), CreatedAt: s.CreatedAt, UpdatedAt: s.updatedAt}
}

// ResetSelection restores the default selection of the current tables
func (s *Session) ResetSelection() State {
	s.mu.Lock()
	sel := analytics.DefaultSelection(s.snapshot.Tables)
	s.mu.Unlock()
	return s.SetSelection(sel)
}

// Replace swaps in new tables and recomputes the default selection
func (s *Session) Replace(snap *dataset.Snapshot) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.selection = analytics.DefaultSelection(snap.Tables)
	s.updatedAt = time.Now()
	return State{ID: s.ID, Snapshot: s.snapshot, Selection: copySelection(s.selection), CreatedAt: s.CreatedAt, UpdatedAt: s.updatedAt}
}

// UploadResult describes the outcome of an upload attempt
type UploadResult struct {
	Outcome  string                `json:"outcome"`
	Received []domain.Entity       `json:"received"`
	Missing  []domain.Entity       `json:"missing"`
	Version  uint64                `json:"version"`
	Counts   map[domain.Entity]int `json:"counts"`
}

// Upload replaces the session tables only when all four parts are present and
// parse cleanly. Otherwise the current tables stay active.
func (s *Session) Upload(ctx context.Context, parts map[domain.Entity]io.Reader, names map[domain.Entity]string, metrics *infrastructure.DashboardMetrics) (UploadResult, error) {
	result := UploadResult{Received: []domain.Entity{}, Missing: []domain.Entity{}}
	for _, e := range domain.Entities {
		if parts[e] != nil {
			result.Received = append(result.Received, e)
		} else {
			result.Missing = append(result.Missing, e)
		}
	}

	// held for the whole upload so a concurrent interaction sees old or new tables, never a mix
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(result.Missing) > 0 {
		result.Outcome = UploadPartial
		result.Version = s.snapshot.Version
		result.Counts = s.snapshot.Tables.Counts()
		metrics.RecordUpload(ctx, UploadPartial)
		return result, nil
	}

	snap, err := dataset.LoadUpload(ctx, parts, names, metrics)
	if err != nil {
		result.Outcome = UploadRejected
		result.Version = s.snapshot.Version
		metrics.RecordUpload(ctx, UploadRejected)
		return result, err
	}

	s.snapshot = snap
	s.selection = analytics.DefaultSelection(snap.Tables)
	s.updatedAt = time.Now()

	result.Outcome = UploadReplaced
	result.Version = snap.Version
	result.Counts = snap.Tables.Counts()
	metrics.RecordUpload(ctx, UploadReplaced)
	return result, nil
}

func copySelection(sel domain.Selection) domain.Selection {
	return domain.Selection{
		Platforms:   append([]string{}, sel.Platforms...),
		Products:    append([]string{}, sel.Products...),
		Influencers: append([]string{}, sel.Influencers...),
	}
}
