package analytics

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"influencerdash/pkg/contracts/domain"
)

// ErrDivisionByZero is returned by Ratio when the denominator is not positive
var ErrDivisionByZero = errors.New("division by zero")

// Ratio divides revenue by payout
func Ratio(revenue, payout float64) (float64, error) {
	if payout <= 0 {
		return 0, ErrDivisionByZero
	}
	return revenue / payout, nil
}

// guardedRatio applies the zero guard: an undefined ratio is reported as 0
func guardedRatio(revenue, payout float64) (float64, bool) {
	r, err := Ratio(revenue, payout)
	if err != nil {
		return 0, false
	}
	return r, true
}

// ComputeOverview sums filtered revenue and the payouts joined to each filtered
// row on influencer id. A payout counts once per joined row; influencers with
// no filtered rows contribute nothing.
func ComputeOverview(filtered []domain.TrackingRecord, payouts []domain.Payout) domain.Overview {
	payoutByID := make(map[int]float64, len(payouts))
	for _, p := range payouts {
		payoutByID[p.InfluencerID] += p.TotalPayout
	}

	var ov domain.Overview
	for _, r := range filtered {
		ov.TotalRevenue += r.Revenue
		ov.TotalPayout += payoutByID[r.InfluencerID]
	}

	ov.TotalRevenue = domain.RoundMoney(ov.TotalRevenue)
	ov.TotalPayout = domain.RoundMoney(ov.TotalPayout)
	ov.ROAS, _ = guardedRatio(ov.TotalRevenue, ov.TotalPayout)
	return ov
}

// RevenueByPlatform sums revenue per source, ordered by platform name
func RevenueByPlatform(filtered []domain.TrackingRecord) []domain.PlatformRevenue {
	sums := make(map[string]float64)
	for _, r := range filtered {
		sums[r.Source] += r.Revenue
	}

	out := make([]domain.PlatformRevenue, 0, len(sums))
	for platform, revenue := range sums {
		out = append(out, domain.PlatformRevenue{Platform: platform, Revenue: domain.RoundMoney(revenue)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

// TopInfluencers ranks influencer names by summed revenue, highest first.
// Ties are broken by name.
func TopInfluencers(filtered []domain.TrackingRecord, influencers []domain.Influencer, n int) []domain.InfluencerRevenue {
	byID := domain.InfluencerByID(influencers)

	sums := make(map[string]float64)
	for _, r := range filtered {
		inf, ok := byID[r.InfluencerID]
		if !ok {
			continue
		}
		sums[inf.Name] += r.Revenue
	}

	out := make([]domain.InfluencerRevenue, 0, len(sums))
	for name, revenue := range sums {
		out = append(out, domain.InfluencerRevenue{Name: name, Revenue: domain.RoundMoney(revenue)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ROASByInfluencer joins per-influencer revenue to payouts and influencers.
// Influencers without a payout row or an influencer row are dropped. A zero
// payout yields ROAS 0 with Defined false. Rows are ordered by influencer id.
func ROASByInfluencer(filtered []domain.TrackingRecord, payouts []domain.Payout, influencers []domain.Influencer) []domain.InfluencerROAS {
	revenue := make(map[int]float64)
	for _, r := range filtered {
		revenue[r.InfluencerID] += r.Revenue
	}

	byID := domain.InfluencerByID(influencers)

	out := make([]domain.InfluencerROAS, 0, len(revenue))
	for _, p := range payouts {
		rev, ok := revenue[p.InfluencerID]
		if !ok {
			continue
		}
		inf, ok := byID[p.InfluencerID]
		if !ok {
			continue
		}
		row := domain.InfluencerROAS{
			InfluencerID: p.InfluencerID,
			Name:         inf.Name,
			Followers:    inf.Followers,
			Revenue:      domain.RoundMoney(rev),
			TotalPayout:  p.TotalPayout,
		}
		row.ROAS, row.Defined = guardedRatio(row.Revenue, row.TotalPayout)
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].InfluencerID < out[j].InfluencerID })
	return out
}

// SummarizeROAS describes the spread of the defined ROAS values
func SummarizeROAS(rows []domain.InfluencerROAS) domain.ROASSummary {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Defined {
			values = append(values, r.ROAS)
		}
	}
	if len(values) == 0 {
		return domain.ROASSummary{}
	}

	sort.Float64s(values)
	return domain.ROASSummary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, values, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, values, nil),
		Min:    values[0],
		Max:    values[len(values)-1],
	}
}
