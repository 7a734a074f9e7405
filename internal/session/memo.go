package session

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"influencerdash/pkg/contracts/domain"
)

// ViewMemo caches computed views by table version and selection.
// Correctness never depends on a hit; the memo only skips recomputation.
type ViewMemo struct {
	views *lru.Cache
}

// NewViewMemo creates a memo holding at most size views
func NewViewMemo(size int) (*ViewMemo, error) {
	views, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create view memo: %w", err)
	}
	return &ViewMemo{views: views}, nil
}

// Key identifies a view of one table version under one selection.
// Selection order does not matter.
func Key(view string, version uint64, sel domain.Selection) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", view, version,
		canonical(sel.Platforms), canonical(sel.Products), canonical(sel.Influencers))
}

func canonical(values []string) string {
	sorted := append([]string{}, values...)
	sort.Strings(sorted)
	// drop duplicates so {a,a} and {a} share a key
	out := make([]string, 0, len(sorted))
	for _, v := range sorted {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return strings.Join(out, "\x1f")
}

// Get returns a memoized view
func (m *ViewMemo) Get(key string) (interface{}, bool) {
	return m.views.Get(key)
}

// Add stores a computed view
func (m *ViewMemo) Add(key string, view interface{}) {
	m.views.Add(key, view)
}

// Purge drops every memoized view
func (m *ViewMemo) Purge() {
	m.views.Purge()
}

// Len returns the number of memoized views
func (m *ViewMemo) Len() int {
	return m.views.Len()
}
