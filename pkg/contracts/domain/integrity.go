package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// payoutTolerance absorbs one-cent differences from producers that round half-even.
const payoutTolerance = 0.01 + 1e-9

// RoundMoney rounds a currency amount to two decimals, half away from zero
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// IntegrityIssue describes one violated dataset invariant
type IntegrityIssue struct {
	Entity  Entity `json:"entity"`
	Row     int    `json:"row"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

const (
	RuleUnknownInfluencer = "unknown_influencer"
	RulePlatformMismatch  = "platform_mismatch"
	RulePayoutDerivation  = "payout_derivation"
	RuleDuplicatePayout   = "duplicate_payout"
	RuleDuplicateID       = "duplicate_id"
)

// CheckIntegrity verifies foreign keys, copied platforms and payout derivation.
// Rows are reported 1-based, excluding the header.
func CheckIntegrity(t *Tables) []IntegrityIssue {
	var issues []IntegrityIssue
	add := func(e Entity, row int, rule, format string, args ...interface{}) {
		issues = append(issues, IntegrityIssue{Entity: e, Row: row + 1, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	byID := make(map[int]Influencer, len(t.Influencers))
	for i, inf := range t.Influencers {
		if _, dup := byID[inf.ID]; dup {
			add(EntityInfluencers, i, RuleDuplicateID, "influencer id %d appears more than once", inf.ID)
			continue
		}
		byID[inf.ID] = inf
	}

	postCounts := make(map[int]int)
	for i, p := range t.Posts {
		inf, ok := byID[p.InfluencerID]
		if !ok {
			add(EntityPosts, i, RuleUnknownInfluencer, "influencer_id %d does not exist", p.InfluencerID)
			continue
		}
		if p.Platform != inf.Platform {
			add(EntityPosts, i, RulePlatformMismatch, "platform %q differs from influencer platform %q", p.Platform, inf.Platform)
		}
		postCounts[p.InfluencerID]++
	}

	orderSums := make(map[int]int)
	for i, r := range t.Tracking {
		inf, ok := byID[r.InfluencerID]
		if !ok {
			add(EntityTracking, i, RuleUnknownInfluencer, "influencer_id %d does not exist", r.InfluencerID)
			continue
		}
		if r.Source != inf.Platform {
			add(EntityTracking, i, RulePlatformMismatch, "source %q differs from influencer platform %q", r.Source, inf.Platform)
		}
		orderSums[r.InfluencerID] += r.Orders
	}

	seen := make(map[int]bool, len(t.Payouts))
	for i, p := range t.Payouts {
		if _, ok := byID[p.InfluencerID]; !ok {
			add(EntityPayouts, i, RuleUnknownInfluencer, "influencer_id %d does not exist", p.InfluencerID)
			continue
		}
		if seen[p.InfluencerID] {
			add(EntityPayouts, i, RuleDuplicatePayout, "influencer_id %d has more than one payout", p.InfluencerID)
			continue
		}
		seen[p.InfluencerID] = true

		count := orderSums[p.InfluencerID]
		if p.Basis == PayoutBasisPost {
			count = postCounts[p.InfluencerID]
		}
		expected := RoundMoney(p.Rate * float64(count))
		if math.Abs(expected-p.TotalPayout) > payoutTolerance {
			add(EntityPayouts, i, RulePayoutDerivation, "total_payout %.2f, expected %.2f (%s basis, count %d)", p.TotalPayout, expected, p.Basis, count)
		}
	}

	return issues
}
