package http

import (
	"context"
	"io"

	"influencerdash/internal/services"
	"influencerdash/internal/session"
	"influencerdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations used by the handler
type DashboardServiceInterface interface {
	CreateSession(ctx context.Context) (services.SessionInfo, error)
	GetSession(ctx context.Context, id string) (services.SessionInfo, error)
	DeleteSession(ctx context.Context, id string) error
	UpdateFilters(ctx context.Context, id string, sel domain.Selection) (services.SessionInfo, error)
	ResetFilters(ctx context.Context, id string) (services.SessionInfo, error)
	Overview(ctx context.Context, id string) (*domain.OverviewView, error)
	TopPerformers(ctx context.Context, id string) (*domain.TopPerformersView, error)
	Table(ctx context.Context, id string, entity string, limit, offset int) (services.TablePage, error)
	ExportTable(ctx context.Context, id string, entity string, w io.Writer) error
	Upload(ctx context.Context, id string, parts map[domain.Entity]io.Reader, names map[domain.Entity]string) (session.UploadResult, error)
	Integrity(ctx context.Context, id string) (services.IntegrityReport, error)
	ExportWorkbook(ctx context.Context, id string, w io.Writer) error
}
