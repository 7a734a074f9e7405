package generator

import (
	"context"
	"fmt"
	"log/slog"

	"influencerdash/internal/config"
	"influencerdash/internal/exporter"
	"influencerdash/pkg/contracts/domain"
)

// Summary describes a generated dataset for logging
type Summary struct {
	Counts       map[domain.Entity]int
	TotalRevenue float64
	TotalPayout  float64
}

// Summarize computes row counts and money totals
func Summarize(t *domain.Tables) Summary {
	s := Summary{Counts: t.Counts()}
	for _, r := range t.Tracking {
		s.TotalRevenue += r.Revenue
	}
	for _, p := range t.Payouts {
		s.TotalPayout += p.TotalPayout
	}
	s.TotalRevenue = domain.RoundMoney(s.TotalRevenue)
	s.TotalPayout = domain.RoundMoney(s.TotalPayout)
	return s
}

// WriteDataset verifies the tables and writes the four CSV files into the data directory
func WriteDataset(ctx context.Context, paths *config.Paths, tables *domain.Tables, logger *slog.Logger) error {
	if issues := domain.CheckIntegrity(tables); len(issues) > 0 {
		for _, issue := range issues {
			logger.ErrorContext(ctx, "Integrity violation",
				slog.String("entity", string(issue.Entity)),
				slog.Int("row", issue.Row),
				slog.String("rule", issue.Rule),
				slog.String("message", issue.Message))
		}
		return fmt.Errorf("generated dataset has %d integrity violations", len(issues))
	}

	if err := exporter.NewCSVWriter(paths).WriteTables(tables); err != nil {
		return err
	}

	s := Summarize(tables)
	logger.InfoContext(ctx, config.MsgDatasetGenerated,
		slog.String("data_dir", paths.DataDir),
		slog.Int("influencers", s.Counts[domain.EntityInfluencers]),
		slog.Int("posts", s.Counts[domain.EntityPosts]),
		slog.Int("tracking", s.Counts[domain.EntityTracking]),
		slog.Int("payouts", s.Counts[domain.EntityPayouts]),
		slog.Float64("total_revenue", s.TotalRevenue),
		slog.Float64("total_payout", s.TotalPayout))
	return nil
}
