package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "influencerdash/internal/errors"
	"influencerdash/internal/infrastructure"
	appmiddleware "influencerdash/internal/middleware"
	"influencerdash/pkg/contracts/domain"
)

// Table preview paging limits
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 10000
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipart parts above this size spill to temporary files
	uploadMemoryBytes = 8 << 20
)

// filterRequest is the body of PUT /filters. Each list must be present;
// an empty list selects nothing.
type filterRequest struct {
	Platforms   []string `json:"platforms" validate:"required,dive,notblank"`
	Products    []string `json:"products" validate:"required,dive,notblank"`
	Influencers []string `json:"influencers" validate:"required,dive,notblank"`
}

// DashboardHandler handles the session-scoped dashboard routes
type DashboardHandler struct {
	service        DashboardServiceInterface
	validator      *appmiddleware.Validator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDashboardHandler creates a dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		validator:      appmiddleware.NewValidator(logger),
		logger:         logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the session routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Use(h.SessionCtx)

		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)

		r.With(appmiddleware.ContentTypeValidator(h.errorHandler, "application/json")).
			Put("/filters", h.UpdateFilters)
		r.Post("/filters/reset", h.ResetFilters)

		r.Get("/views/overview", h.Overview)
		r.Get("/views/top-performers", h.TopPerformers)

		r.Get("/tables/{entity}", h.Table)
		r.With(appmiddleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
			Post("/upload", h.Upload)
		r.Get("/integrity", h.Integrity)
		r.Get("/export", h.Export)
	})

	return r
}

// SessionCtx tags the request context with the session ID for log correlation
func (h *DashboardHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if id == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sessionID", "session ID is required"))
			return
		}
		ctx := infrastructure.WithSessionID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CreateSession handles POST /api/sessions
func (h *DashboardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "session created",
		slog.String("session_id", info.ID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	w.Header().Set("Location", "/api/sessions/"+info.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// GetSession handles GET /api/sessions/{sessionID}
func (h *DashboardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetSession(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// DeleteSession handles DELETE /api/sessions/{sessionID}
func (h *DashboardHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), sessionID(r)); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFilters handles PUT /api/sessions/{sessionID}/filters
func (h *DashboardHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	info, err := h.service.UpdateFilters(r.Context(), sessionID(r), domain.Selection{
		Platforms:   req.Platforms,
		Products:    req.Products,
		Influencers: req.Influencers,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// ResetFilters handles POST /api/sessions/{sessionID}/filters/reset
func (h *DashboardHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.ResetFilters(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// Overview handles GET /api/sessions/{sessionID}/views/overview
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Overview(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// TopPerformers handles GET /api/sessions/{sessionID}/views/top-performers
func (h *DashboardHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.TopPerformers(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// Table handles GET /api/sessions/{sessionID}/tables/{entity}
func (h *DashboardHandler) Table(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	entity := chi.URLParam(r, "entity")
	q := appmiddleware.Query(r)

	format, err := q.Enum("format", []string{"json", "csv"}, "json")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == "csv" {
		var buf bytes.Buffer
		if err := h.service.ExportTable(r.Context(), id, entity, &buf); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		writeAttachment(w, contentTypeCSV, entity+".csv", buf.Bytes())
		return
	}

	limit, err := q.Int("limit", 1, MaxPageLimit, DefaultPageLimit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	offset, err := q.Int("offset", 0, math.MaxInt32, 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Table(r.Context(), id, entity, limit, offset)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// Upload handles POST /api/sessions/{sessionID}/upload. Parts are named after
// the entities; absent parts leave the current tables in place.
func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, maxBytesErr)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := make(map[domain.Entity]io.Reader, len(domain.Entities))
	names := make(map[domain.Entity]string, len(domain.Entities))
	for _, e := range domain.Entities {
		file, header, err := r.FormFile(string(e))
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		defer closePart(file)
		parts[e] = file
		names[e] = header.Filename
	}

	result, err := h.service.Upload(ctx, sessionID(r), parts, names)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "upload handled",
		slog.String("outcome", result.Outcome),
		slog.Int("parts", len(parts)),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)
	render.JSON(w, r, result)
}

// Integrity handles GET /api/sessions/{sessionID}/integrity
func (h *DashboardHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Integrity(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Export handles GET /api/sessions/{sessionID}/export. The workbook is
// buffered so a failure can still be reported as a problem response.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(r.Context(), id, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	writeAttachment(w, contentTypeXLSX, fmt.Sprintf("influencer-dashboard-%s.xlsx", shortID(id)), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func closePart(f multipart.File) {
	_ = f.Close()
}
