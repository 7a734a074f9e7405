package exporter

import (
	"strconv"

	"influencerdash/pkg/contracts/domain"
)

// formatFloat formats a currency amount with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(domain.RoundMoney(f), 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// EntityRecords renders one table as CSV records in column order
func EntityRecords(t *domain.Tables, e domain.Entity) [][]string {
	var records [][]string

	switch e {
	case domain.EntityInfluencers:
		records = make([][]string, 0, len(t.Influencers))
		for _, inf := range t.Influencers {
			records = append(records, []string{
				formatInt(inf.ID), inf.Name, inf.Category, inf.Gender, formatInt(inf.Followers), inf.Platform,
			})
		}
	case domain.EntityPosts:
		records = make([][]string, 0, len(t.Posts))
		for _, p := range t.Posts {
			records = append(records, []string{
				formatInt(p.InfluencerID), p.Platform, p.Date.String(), p.URL, p.Caption,
				formatInt(p.Reach), formatInt(p.Likes), formatInt(p.Comments),
			})
		}
	case domain.EntityTracking:
		records = make([][]string, 0, len(t.Tracking))
		for _, r := range t.Tracking {
			records = append(records, []string{
				r.Source, r.Campaign, formatInt(r.InfluencerID), formatInt(r.UserID), r.Product,
				r.Date.String(), formatInt(r.Orders), formatFloat(r.Revenue),
			})
		}
	case domain.EntityPayouts:
		records = make([][]string, 0, len(t.Payouts))
		for _, p := range t.Payouts {
			records = append(records, []string{
				formatInt(p.InfluencerID), string(p.Basis), formatFloat(p.Rate),
				formatInt(p.Orders), formatFloat(p.TotalPayout),
			})
		}
	}

	return records
}
