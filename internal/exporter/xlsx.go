package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"influencerdash/pkg/contracts/domain"
)

const (
	SheetOverview      = "Overview"
	SheetTopPerformers = "Top Performers"
	SheetROAS          = "ROAS"
	defaultSheet       = "Sheet1"
)

// sheetNames maps each dataset table to its worksheet
var sheetNames = map[domain.Entity]string{
	domain.EntityInfluencers: "Influencers",
	domain.EntityPosts:       "Posts",
	domain.EntityTracking:    "Tracking",
	domain.EntityPayouts:     "Payouts",
}

// WorkbookExporter renders the dashboard state as an xlsx workbook
type WorkbookExporter struct{}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// Export writes the view sheets followed by one sheet per dataset table
func (x *WorkbookExporter) Export(w io.Writer, tables *domain.Tables, overview *domain.OverviewView, top *domain.TopPerformersView) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{f: f, headerStyle: header}

	if overview != nil {
		rows := [][]interface{}{
			{"Total Revenue", overview.Overview.TotalRevenue},
			{"Total Payout", overview.Overview.TotalPayout},
			{"ROAS", overview.Overview.ROAS},
			{"Filtered Rows", overview.FilteredRows},
			{},
			{"Platform", "Revenue"},
		}
		for _, pr := range overview.RevenueByPlatform {
			rows = append(rows, []interface{}{pr.Platform, pr.Revenue})
		}
		if err := sw.write(SheetOverview, []string{"Metric", "Value"}, rows); err != nil {
			return err
		}
	}

	if top != nil {
		rows := make([][]interface{}, 0, len(top.TopInfluencers))
		for i, ir := range top.TopInfluencers {
			rows = append(rows, []interface{}{i + 1, ir.Name, ir.Revenue})
		}
		if err := sw.write(SheetTopPerformers, []string{"Rank", "Influencer", "Revenue"}, rows); err != nil {
			return err
		}

		rows = make([][]interface{}, 0, len(top.ROAS))
		for _, r := range top.ROAS {
			rows = append(rows, []interface{}{r.InfluencerID, r.Name, r.Followers, r.Revenue, r.TotalPayout, r.ROAS, r.Defined})
		}
		if err := sw.write(SheetROAS, []string{"Influencer ID", "Name", "Followers", "Revenue", "Total Payout", "ROAS", "Defined"}, rows); err != nil {
			return err
		}
	}

	if tables != nil {
		for _, e := range domain.Entities {
			records := EntityRecords(tables, e)
			rows := make([][]interface{}, len(records))
			for i, rec := range records {
				row := make([]interface{}, len(rec))
				for j, v := range rec {
					row[j] = v
				}
				rows[i] = row
			}
			if err := sw.write(sheetNames[e], e.Columns(), rows); err != nil {
				return err
			}
		}
	}

	if !sw.wrote {
		return fmt.Errorf("nothing to export")
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	wrote       bool
}

func (s *sheetWriter) write(sheet string, headers []string, rows [][]interface{}) error {
	if _, err := s.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := s.f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := s.f.SetRowStyle(sheet, 1, 1, s.headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := s.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := s.f.SetColWidth(sheet, "A", last, 18); err != nil {
		return err
	}

	s.wrote = true
	return nil
}
