package analytics

import (
	"github.com/dustin/go-humanize"

	"influencerdash/internal/config"
	"influencerdash/pkg/contracts/domain"
)

// FormatCurrency renders an amount like ₹1,234.56
func FormatCurrency(v float64) string {
	v = domain.RoundMoney(v)
	if v < 0 {
		return "-" + config.CurrencySymbol + humanize.FormatFloat("#,###.##", -v)
	}
	return config.CurrencySymbol + humanize.FormatFloat("#,###.##", v)
}

// FormatROAS renders a ratio like 3.00x
func FormatROAS(v float64) string {
	return humanize.FormatFloat("#,###.##", v) + "x"
}

// Display formats the overview KPIs for the cards
func Display(ov domain.Overview) domain.OverviewDisplay {
	return domain.OverviewDisplay{
		TotalRevenue: FormatCurrency(ov.TotalRevenue),
		TotalPayout:  FormatCurrency(ov.TotalPayout),
		ROAS:         FormatROAS(ov.ROAS),
	}
}
