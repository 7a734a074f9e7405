// Package analytics filters tracking records and computes the dashboard metrics.
// Every function is pure; callers own the tables they pass in.
package analytics

import (
	"influencerdash/pkg/contracts/domain"
)

// Filter returns the tracking rows whose source, product and influencer name
// are all selected. An empty dimension selects nothing.
func Filter(t *domain.Tables, sel domain.Selection) []domain.TrackingRecord {
	if len(sel.Platforms) == 0 || len(sel.Products) == 0 || len(sel.Influencers) == 0 {
		return []domain.TrackingRecord{}
	}

	platforms := toSet(sel.Platforms)
	products := toSet(sel.Products)
	names := toSet(sel.Influencers)

	ids := make(map[int]bool)
	for _, inf := range t.Influencers {
		if names[inf.Name] {
			ids[inf.ID] = true
		}
	}

	out := make([]domain.TrackingRecord, 0)
	for _, r := range t.Tracking {
		if platforms[r.Source] && products[r.Product] && ids[r.InfluencerID] {
			out = append(out, r)
		}
	}
	return out
}

// Options lists the distinct values of each filter dimension.
// Platforms and products keep first-seen order; influencers keep table order.
func Options(t *domain.Tables) domain.FilterOptions {
	opts := domain.FilterOptions{
		Platforms:   []string{},
		Products:    []string{},
		Influencers: []string{},
	}

	seenPlatform := make(map[string]bool)
	seenProduct := make(map[string]bool)
	for _, r := range t.Tracking {
		if !seenPlatform[r.Source] {
			seenPlatform[r.Source] = true
			opts.Platforms = append(opts.Platforms, r.Source)
		}
		if !seenProduct[r.Product] {
			seenProduct[r.Product] = true
			opts.Products = append(opts.Products, r.Product)
		}
	}

	seenName := make(map[string]bool)
	for _, inf := range t.Influencers {
		if !seenName[inf.Name] {
			seenName[inf.Name] = true
			opts.Influencers = append(opts.Influencers, inf.Name)
		}
	}

	return opts
}

// DefaultSelection selects every option. It is a snapshot of the tables it was
// computed from and must be recomputed when the tables are replaced.
func DefaultSelection(t *domain.Tables) domain.Selection {
	opts := Options(t)
	return domain.Selection{
		Platforms:   opts.Platforms,
		Products:    opts.Products,
		Influencers: opts.Influencers,
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
