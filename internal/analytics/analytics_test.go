package analytics

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencerdash/internal/config"
	"influencerdash/internal/generator"
	"influencerdash/pkg/contracts/domain"
)

func influencer(id int, platform string) domain.Influencer {
	return domain.Influencer{ID: id, Name: fmt.Sprintf("Influencer_%d", id), Followers: id * 1000, Platform: platform}
}

func record(id int, platform, product string, revenue float64) domain.TrackingRecord {
	return domain.TrackingRecord{Source: platform, Product: product, InfluencerID: id, Orders: 1, Revenue: revenue}
}

// joinFixture: three rows for three influencers with payouts 50, 50 and 100
func joinFixture() *domain.Tables {
	return &domain.Tables{
		Influencers: []domain.Influencer{influencer(1, "Instagram"), influencer(2, "YouTube"), influencer(3, "Twitter"), influencer(4, "Facebook")},
		Tracking: []domain.TrackingRecord{
			record(1, "Instagram", "Gritzo Shake", 100),
			record(2, "YouTube", "HKVitals Omega", 200),
			record(3, "Twitter", "Gritzo Shake", 300),
		},
		Payouts: []domain.Payout{
			{InfluencerID: 1, Basis: domain.PayoutBasisPost, Rate: 50, TotalPayout: 50},
			{InfluencerID: 2, Basis: domain.PayoutBasisPost, Rate: 50, TotalPayout: 50},
			{InfluencerID: 3, Basis: domain.PayoutBasisOrder, Rate: 100, TotalPayout: 100},
			{InfluencerID: 4, Basis: domain.PayoutBasisOrder, Rate: 999, TotalPayout: 999},
		},
	}
}

func TestComputeOverview_InnerJoin(t *testing.T) {
	tables := joinFixture()
	filtered := Filter(tables, DefaultSelection(tables))
	require.Len(t, filtered, 3)

	ov := ComputeOverview(filtered, tables.Payouts)
	assert.Equal(t, 600.0, ov.TotalRevenue)
	assert.Equal(t, 200.0, ov.TotalPayout, "influencer 4 has no tracking rows and contributes nothing")
	assert.Equal(t, 3.0, ov.ROAS)
}

func TestComputeOverview_PayoutPerJoinedRow(t *testing.T) {
	tables := &domain.Tables{
		Influencers: []domain.Influencer{influencer(1, "Instagram"), influencer(2, "YouTube")},
		Tracking: []domain.TrackingRecord{
			record(1, "Instagram", "Gritzo Shake", 300),
			record(1, "Instagram", "HKVitals Omega", 300),
			record(2, "YouTube", "Gritzo Shake", 150),
		},
		Payouts: []domain.Payout{
			{InfluencerID: 1, Basis: domain.PayoutBasisPost, Rate: 100, TotalPayout: 100},
			{InfluencerID: 2, Basis: domain.PayoutBasisPost, Rate: 50, TotalPayout: 50},
		},
	}

	ov := ComputeOverview(Filter(tables, DefaultSelection(tables)), tables.Payouts)
	assert.Equal(t, 750.0, ov.TotalRevenue)
	assert.Equal(t, 250.0, ov.TotalPayout, "influencer 1 payout counts for both of its rows")
	assert.Equal(t, 3.0, ov.ROAS)

	onlyFirst := ComputeOverview(tables.Tracking[:2], tables.Payouts)
	assert.Equal(t, 200.0, onlyFirst.TotalPayout)
	assert.Equal(t, 3.0, onlyFirst.ROAS)
}

func TestFilter_EmptyPlatformsSelectNothing(t *testing.T) {
	tables := joinFixture()
	sel := DefaultSelection(tables)
	sel.Platforms = []string{}

	filtered := Filter(tables, sel)
	assert.Empty(t, filtered)

	ov := ComputeOverview(filtered, tables.Payouts)
	assert.Equal(t, domain.Overview{}, ov)
}

func TestTopInfluencers_LimitsToTen(t *testing.T) {
	tables := &domain.Tables{}
	for id := 1; id <= 15; id++ {
		tables.Influencers = append(tables.Influencers, influencer(id, "Instagram"))
		tables.Tracking = append(tables.Tracking,
			record(id, "Instagram", "Gritzo Shake", float64(id*100)),
			record(id, "Instagram", "HKVitals Omega", float64(id)))
	}

	top := TopInfluencers(Filter(tables, DefaultSelection(tables)), tables.Influencers, 10)
	require.Len(t, top, 10)
	assert.Equal(t, "Influencer_15", top[0].Name)
	assert.Equal(t, 1515.0, top[0].Revenue)
	for i := 1; i < len(top); i++ {
		assert.Greater(t, top[i-1].Revenue, top[i].Revenue)
	}
}

func TestEmptySelectionLaw(t *testing.T) {
	tables := generator.Generate(config.GeneratorSeed)
	full := DefaultSelection(tables)

	dims := map[string]func(*domain.Selection){
		"platforms":   func(s *domain.Selection) { s.Platforms = nil },
		"products":    func(s *domain.Selection) { s.Products = []string{} },
		"influencers": func(s *domain.Selection) { s.Influencers = nil },
	}
	for name, clear := range dims {
		t.Run(name, func(t *testing.T) {
			sel := full
			clear(&sel)
			filtered := Filter(tables, sel)
			assert.NotNil(t, filtered)
			assert.Empty(t, filtered)
		})
	}

	assert.Len(t, Filter(tables, full), len(tables.Tracking), "the default selection keeps every row")
}

func TestFilterClosure(t *testing.T) {
	tables := generator.Generate(config.GeneratorSeed)
	opts := Options(tables)
	rng := rand.New(rand.NewPCG(7, 7))

	subset := func(values []string) []string {
		var out []string
		for _, v := range values {
			if rng.IntN(2) == 0 {
				out = append(out, v)
			}
		}
		return out
	}

	names := make(map[int]string)
	for _, inf := range tables.Influencers {
		names[inf.ID] = inf.Name
	}

	for i := 0; i < 50; i++ {
		sel := domain.Selection{
			Platforms:   subset(opts.Platforms),
			Products:    subset(opts.Products),
			Influencers: subset(opts.Influencers),
		}
		filtered := Filter(tables, sel)
		assert.LessOrEqual(t, len(filtered), len(tables.Tracking))

		expected := 0
		for _, r := range tables.Tracking {
			if contains(sel.Platforms, r.Source) && contains(sel.Products, r.Product) && contains(sel.Influencers, names[r.InfluencerID]) {
				expected++
			}
		}
		assert.Len(t, filtered, expected)

		for _, r := range filtered {
			assert.Contains(t, sel.Platforms, r.Source)
			assert.Contains(t, sel.Products, r.Product)
			assert.Contains(t, sel.Influencers, names[r.InfluencerID])
		}
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func TestFilter_UnknownNamesSelectNothing(t *testing.T) {
	tables := joinFixture()
	sel := DefaultSelection(tables)
	sel.Influencers = []string{"Nobody"}
	assert.Empty(t, Filter(tables, sel))
}

func TestOptions_Order(t *testing.T) {
	tables := joinFixture()
	opts := Options(tables)

	assert.Equal(t, []string{"Instagram", "YouTube", "Twitter"}, opts.Platforms)
	assert.Equal(t, []string{"Gritzo Shake", "HKVitals Omega"}, opts.Products)
	assert.Equal(t, []string{"Influencer_1", "Influencer_2", "Influencer_3", "Influencer_4"}, opts.Influencers)

	empty := Options(&domain.Tables{})
	assert.NotNil(t, empty.Platforms)
	assert.Empty(t, empty.Platforms)
}

func TestOverviewZeroGuard(t *testing.T) {
	filtered := []domain.TrackingRecord{record(1, "Instagram", "Gritzo Shake", 500)}
	payouts := []domain.Payout{{InfluencerID: 1, TotalPayout: 0}}

	ov := ComputeOverview(filtered, payouts)
	assert.Equal(t, 500.0, ov.TotalRevenue)
	assert.Equal(t, 0.0, ov.ROAS)
}

func TestRevenueByPlatform(t *testing.T) {
	filtered := []domain.TrackingRecord{
		record(1, "YouTube", "A", 10.1),
		record(2, "Instagram", "A", 5),
		record(3, "YouTube", "B", 20.2),
	}
	got := RevenueByPlatform(filtered)
	assert.Equal(t, []domain.PlatformRevenue{
		{Platform: "Instagram", Revenue: 5},
		{Platform: "YouTube", Revenue: 30.3},
	}, got)

	assert.Empty(t, RevenueByPlatform(nil))
}

func TestTopInfluencers_TieBreakAndLimit(t *testing.T) {
	influencers := []domain.Influencer{influencer(1, "X"), influencer(2, "X"), influencer(3, "X")}
	filtered := []domain.TrackingRecord{
		record(2, "X", "A", 100),
		record(1, "X", "A", 100),
		record(3, "X", "A", 50),
		record(99, "X", "A", 1000),
	}

	top := TopInfluencers(filtered, influencers, 2)
	assert.Equal(t, []domain.InfluencerRevenue{
		{Name: "Influencer_1", Revenue: 100},
		{Name: "Influencer_2", Revenue: 100},
	}, top)
}

func TestROASByInfluencer(t *testing.T) {
	influencers := []domain.Influencer{influencer(1, "X"), influencer(2, "X"), influencer(3, "X")}
	filtered := []domain.TrackingRecord{
		record(2, "X", "A", 300),
		record(1, "X", "A", 100),
		record(1, "X", "B", 50),
		record(3, "X", "A", 80),
	}
	payouts := []domain.Payout{
		{InfluencerID: 1, TotalPayout: 50},
		{InfluencerID: 2, TotalPayout: 0},
	}

	rows := ROASByInfluencer(filtered, payouts, influencers)
	require.Len(t, rows, 2, "influencer 3 has no payout row")

	assert.Equal(t, domain.InfluencerROAS{
		InfluencerID: 1, Name: "Influencer_1", Followers: 1000, Revenue: 150, TotalPayout: 50, ROAS: 3, Defined: true,
	}, rows[0])
	assert.Equal(t, 2, rows[1].InfluencerID)
	assert.Equal(t, 0.0, rows[1].ROAS)
	assert.False(t, rows[1].Defined)
}

func TestRatio(t *testing.T) {
	r, err := Ratio(10, 4)
	require.NoError(t, err)
	assert.Equal(t, 2.5, r)

	_, err = Ratio(10, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSummarizeROAS(t *testing.T) {
	rows := []domain.InfluencerROAS{
		{ROAS: 4, Defined: true},
		{ROAS: 1, Defined: true},
		{ROAS: 0, Defined: false},
		{ROAS: 2, Defined: true},
		{ROAS: 3, Defined: true},
	}
	s := SummarizeROAS(rows)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 4.0, s.P90)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)

	assert.Equal(t, domain.ROASSummary{}, SummarizeROAS(nil))
}

func TestDisplay(t *testing.T) {
	d := Display(domain.Overview{TotalRevenue: 1234567.891, TotalPayout: 0, ROAS: 3})
	assert.Equal(t, "₹1,234,567.89", d.TotalRevenue)
	assert.Equal(t, "₹0.00", d.TotalPayout)
	assert.Equal(t, "3.00x", d.ROAS)

	assert.Equal(t, "-₹12.50", FormatCurrency(-12.5))
}

func TestGeneratedDatasetOverview(t *testing.T) {
	tables := generator.Generate(config.GeneratorSeed)
	filtered := Filter(tables, DefaultSelection(tables))
	ov := ComputeOverview(filtered, tables.Payouts)

	var revenue float64
	for _, r := range tables.Tracking {
		revenue += r.Revenue
	}
	assert.InDelta(t, revenue, ov.TotalRevenue, 0.01)
	assert.Greater(t, ov.TotalPayout, 0.0)
	assert.InDelta(t, ov.TotalRevenue/ov.TotalPayout, ov.ROAS, 1e-9)
}
