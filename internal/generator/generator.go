// Package generator fabricates a synthetic, internally consistent campaign dataset.
package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"influencerdash/pkg/contracts/domain"
)

var (
	categories = []string{"Fitness", "Nutrition", "Wellness", "Lifestyle"}
	genders    = []string{"Male", "Female"}
	products   = []string{"MuscleBlaze Whey", "HKVitals Omega", "Gritzo Shake"}
	campaigns  = []string{"Campaign_A", "Campaign_B", "Campaign_C"}
	bases      = []domain.PayoutBasis{domain.PayoutBasisPost, domain.PayoutBasisOrder}
)

// Options controls the size and date window of a generated dataset
type Options struct {
	Seed        uint64
	Influencers int
	Posts       int
	Tracking    int
	Start       domain.Date
	End         domain.Date // inclusive
}

// DefaultOptions returns the fixed dataset shape: 20 influencers, 200 posts
// and 1000 tracking records dated 2024-01-01 through 2024-06-30.
func DefaultOptions(seed uint64) Options {
	return Options{
		Seed:        seed,
		Influencers: 20,
		Posts:       200,
		Tracking:    1000,
		Start:       domain.NewDate(2024, time.January, 1),
		End:         domain.NewDate(2024, time.June, 30),
	}
}

// Generate builds the default-shaped dataset for a seed
func Generate(seed uint64) *domain.Tables {
	tables, _ := GenerateWith(DefaultOptions(seed))
	return tables
}

// GenerateWith builds a dataset. The same options always yield the same tables.
func GenerateWith(opts Options) (*domain.Tables, error) {
	if opts.Influencers <= 0 {
		return nil, fmt.Errorf("influencer count must be positive, got %d", opts.Influencers)
	}
	if opts.Posts < 0 || opts.Tracking < 0 {
		return nil, fmt.Errorf("row counts must not be negative")
	}
	days := int(opts.End.Sub(opts.Start.Time).Hours()/24) + 1
	if days <= 0 {
		return nil, fmt.Errorf("date window %s..%s is empty", opts.Start, opts.End)
	}

	g := &gen{
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		start: opts.Start,
		days:  days,
	}

	t := &domain.Tables{}
	t.Influencers = g.influencers(opts.Influencers)
	t.Posts = g.posts(t.Influencers, opts.Posts)
	t.Tracking = g.tracking(t.Influencers, opts.Tracking)
	t.Payouts = g.payouts(t.Influencers, t.Posts, t.Tracking)
	return t, nil
}

type gen struct {
	rng   *rand.Rand
	start domain.Date
	days  int
}

// between returns an integer in [lo, hi]
func (g *gen) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// uniform returns a real in [lo, hi)
func (g *gen) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *gen) date() domain.Date {
	return domain.Date{Time: g.start.AddDate(0, 0, g.rng.IntN(g.days))}
}

func pick[T any](g *gen, values []T) T {
	return values[g.rng.IntN(len(values))]
}

func (g *gen) influencers(n int) []domain.Influencer {
	out := make([]domain.Influencer, n)
	for i := range out {
		id := i + 1
		out[i] = domain.Influencer{
			ID:        id,
			Name:      fmt.Sprintf("Influencer_%d", id),
			Category:  pick(g, categories),
			Gender:    pick(g, genders),
			Followers: g.between(5000, 499999),
			Platform:  pick(g, domain.Platforms),
		}
	}
	return out
}

func (g *gen) posts(influencers []domain.Influencer, n int) []domain.Post {
	out := make([]domain.Post, n)
	for i := range out {
		inf := pick(g, influencers)
		out[i] = domain.Post{
			InfluencerID: inf.ID,
			Platform:     inf.Platform,
			Date:         g.date(),
			URL:          fmt.Sprintf("https://platform.com/post/%d", g.between(1000, 9999)),
			Caption:      fmt.Sprintf("Check out our latest product #%d", g.between(1, 50)),
			Reach:        g.between(1000, 100000),
			Likes:        g.between(100, 5000),
			Comments:     g.between(5, 500),
		}
	}
	return out
}

func (g *gen) tracking(influencers []domain.Influencer, n int) []domain.TrackingRecord {
	out := make([]domain.TrackingRecord, n)
	for i := range out {
		inf := pick(g, influencers)
		orders := g.between(1, 3)
		out[i] = domain.TrackingRecord{
			Source:       inf.Platform,
			Campaign:     pick(g, campaigns),
			InfluencerID: inf.ID,
			UserID:       g.between(1000, 9999),
			Product:      pick(g, products),
			Date:         g.date(),
			Orders:       orders,
			Revenue:      domain.RoundMoney(float64(orders) * g.uniform(300, 2000)),
		}
	}
	return out
}

// payouts derives one payout per influencer from the generated posts and orders
func (g *gen) payouts(influencers []domain.Influencer, posts []domain.Post, tracking []domain.TrackingRecord) []domain.Payout {
	postCounts := make(map[int]int)
	for _, p := range posts {
		postCounts[p.InfluencerID]++
	}
	orderSums := make(map[int]int)
	for _, r := range tracking {
		orderSums[r.InfluencerID] += r.Orders
	}

	out := make([]domain.Payout, len(influencers))
	for i, inf := range influencers {
		basis := pick(g, bases)
		rate := domain.RoundMoney(g.uniform(300, 1500))
		count := orderSums[inf.ID]
		if basis == domain.PayoutBasisPost {
			count = postCounts[inf.ID]
		}
		out[i] = domain.Payout{
			InfluencerID: inf.ID,
			Basis:        basis,
			Rate:         rate,
			Orders:       orderSums[inf.ID],
			TotalPayout:  domain.RoundMoney(rate * float64(count)),
		}
	}
	return out
}
