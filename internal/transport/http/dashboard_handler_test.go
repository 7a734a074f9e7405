package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"influencerdash/internal/dataset"
	apierrors "influencerdash/internal/errors"
	"influencerdash/internal/services"
	"influencerdash/internal/session"
	"influencerdash/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) CreateSession(ctx context.Context) (services.SessionInfo, error) {
	args := m.Called()
	return args.Get(0).(services.SessionInfo), args.Error(1)
}

func (m *MockDashboardService) GetSession(ctx context.Context, id string) (services.SessionInfo, error) {
	args := m.Called(id)
	return args.Get(0).(services.SessionInfo), args.Error(1)
}

func (m *MockDashboardService) DeleteSession(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockDashboardService) UpdateFilters(ctx context.Context, id string, sel domain.Selection) (services.SessionInfo, error) {
	args := m.Called(id, sel)
	return args.Get(0).(services.SessionInfo), args.Error(1)
}

func (m *MockDashboardService) ResetFilters(ctx context.Context, id string) (services.SessionInfo, error) {
	args := m.Called(id)
	return args.Get(0).(services.SessionInfo), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context, id string) (*domain.OverviewView, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverviewView), args.Error(1)
}

func (m *MockDashboardService) TopPerformers(ctx context.Context, id string) (*domain.TopPerformersView, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopPerformersView), args.Error(1)
}

func (m *MockDashboardService) Table(ctx context.Context, id string, entity string, limit, offset int) (services.TablePage, error) {
	args := m.Called(id, entity, limit, offset)
	return args.Get(0).(services.TablePage), args.Error(1)
}

func (m *MockDashboardService) ExportTable(ctx context.Context, id string, entity string, w io.Writer) error {
	args := m.Called(id, entity)
	if args.Error(0) == nil {
		io.WriteString(w, "id,name\n1,Asha\n")
	}
	return args.Error(0)
}

func (m *MockDashboardService) Upload(ctx context.Context, id string, parts map[domain.Entity]io.Reader, names map[domain.Entity]string) (session.UploadResult, error) {
	received := make([]string, 0, len(parts))
	for _, e := range domain.Entities {
		if r, ok := parts[e]; ok {
			data, _ := io.ReadAll(r)
			received = append(received, fmt.Sprintf("%s=%s:%s", e, names[e], data))
		}
	}
	args := m.Called(id, received)
	return args.Get(0).(session.UploadResult), args.Error(1)
}

func (m *MockDashboardService) Integrity(ctx context.Context, id string) (services.IntegrityReport, error) {
	args := m.Called(id)
	return args.Get(0).(services.IntegrityReport), args.Error(1)
}

func (m *MockDashboardService) ExportWorkbook(ctx context.Context, id string, w io.Writer) error {
	args := m.Called(id)
	if args.Error(0) == nil {
		w.Write([]byte("PK\x03\x04"))
	} else {
		w.Write([]byte("partial"))
	}
	return args.Error(0)
}

func newTestRouter(svc *MockDashboardService, maxUpload int64) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	h := NewDashboardHandler(svc, maxUpload, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/sessions", h.Routes())
	return r
}

func problemType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	typ, _ := body["type"].(string)
	return typ
}

func TestDashboardHandler_CreateSession(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("CreateSession").Return(services.SessionInfo{ID: "abc", Source: dataset.SourceDefault}, nil)

		rec := httptest.NewRecorder()
		newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/sessions/abc", rec.Header().Get("Location"))
		assert.Contains(t, rec.Body.String(), `"id":"abc"`)
		svc.AssertExpectations(t)
	})

	t.Run("default dataset unavailable", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("CreateSession").Return(services.SessionInfo{}, &dataset.DataLoadError{
			Entity: domain.EntityTracking,
			Source: dataset.SourceDefault,
			Err:    dataset.ErrMissingFile,
		})

		rec := httptest.NewRecorder()
		newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, apierrors.TypeDataUnavailable, problemType(t, rec))
	})
}

func TestDashboardHandler_SessionLifecycle(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("GetSession", "abc").Return(services.SessionInfo{ID: "abc"}, nil)
	svc.On("GetSession", "gone").Return(services.SessionInfo{}, services.ErrSessionNotFound)
	svc.On("DeleteSession", "abc").Return(nil)
	router := newTestRouter(svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/gone", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeSessionNotFound, problemType(t, rec))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	svc.AssertExpectations(t)
}

func TestDashboardHandler_UpdateFilters(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockDashboardService)
		wantStatus int
	}{
		{
			name: "valid selection",
			body: `{"platforms":["Instagram"],"products":["Protein"],"influencers":["Asha"]}`,
			setupMock: func(m *MockDashboardService) {
				m.On("UpdateFilters", "abc", domain.Selection{
					Platforms:   []string{"Instagram"},
					Products:    []string{"Protein"},
					Influencers: []string{"Asha"},
				}).Return(services.SessionInfo{ID: "abc"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "empty lists are an empty selection",
			body: `{"platforms":[],"products":[],"influencers":[]}`,
			setupMock: func(m *MockDashboardService) {
				m.On("UpdateFilters", "abc", domain.Selection{
					Platforms:   []string{},
					Products:    []string{},
					Influencers: []string{},
				}).Return(services.SessionInfo{ID: "abc"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing dimension",
			body:       `{"platforms":["Instagram"],"products":["Protein"]}`,
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"platforms":`,
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/sessions/abc/filters", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newTestRouter(svc, 0).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_UpdateFiltersRequiresJSON(t *testing.T) {
	svc := new(MockDashboardService)

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/abc/filters", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	newTestRouter(svc, 0).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	svc.AssertNotCalled(t, "UpdateFilters", mock.Anything, mock.Anything)
}

func TestDashboardHandler_ResetFilters(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("ResetFilters", "abc").Return(services.SessionInfo{ID: "abc"}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/abc/filters/reset", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Views(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Overview", "abc").Return(&domain.OverviewView{
		Overview: domain.Overview{TotalRevenue: 1000, TotalPayout: 250, ROAS: 4},
		Display:  domain.OverviewDisplay{TotalRevenue: "₹1,000.00", TotalPayout: "₹250.00", ROAS: "4.00x"},
	}, nil)
	svc.On("TopPerformers", "abc").Return(&domain.TopPerformersView{
		TopInfluencers: []domain.InfluencerRevenue{{Name: "Asha", Revenue: 1000}},
	}, nil)
	router := newTestRouter(svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc/views/overview", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"roas":"4.00x"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc/views/top-performers", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Asha"`)

	svc.AssertExpectations(t)
}

func TestDashboardHandler_Table(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setupMock  func(*MockDashboardService)
		wantStatus int
		wantBody   string
		wantType   string
	}{
		{
			name: "default paging",
			path: "/api/sessions/abc/tables/influencers",
			setupMock: func(m *MockDashboardService) {
				m.On("Table", "abc", "influencers", DefaultPageLimit, 0).
					Return(services.TablePage{Entity: domain.EntityInfluencers, Total: 20, Limit: DefaultPageLimit}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"total":20`,
		},
		{
			name: "explicit paging",
			path: "/api/sessions/abc/tables/posts?limit=10&offset=30",
			setupMock: func(m *MockDashboardService) {
				m.On("Table", "abc", "posts", 10, 30).
					Return(services.TablePage{Entity: domain.EntityPosts, Total: 200, Limit: 10, Offset: 30}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"offset":30`,
		},
		{
			name:       "invalid limit",
			path:       "/api/sessions/abc/tables/posts?limit=0",
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "unknown entity",
			path: "/api/sessions/abc/tables/campaigns",
			setupMock: func(m *MockDashboardService) {
				m.On("Table", "abc", "campaigns", DefaultPageLimit, 0).
					Return(services.TablePage{}, fmt.Errorf("%w: campaigns", services.ErrUnknownEntity))
			},
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeUnknownEntity,
		},
		{
			name:       "invalid format",
			path:       "/api/sessions/abc/tables/posts?format=xml",
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, problemType(t, rec))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_TableCSV(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("ExportTable", "abc", "influencers").Return(nil)

	rec := httptest.NewRecorder()
	newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc/tables/influencers?format=csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="influencers.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id,name\n1,Asha\n", rec.Body.String())
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, e := range domain.Entities {
		content, ok := files[string(e)]
		if !ok {
			continue
		}
		part, err := mw.CreateFormFile(string(e), string(e)+".csv")
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDashboardHandler_Upload(t *testing.T) {
	t.Run("partial upload", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Upload", "abc", []string{"influencers=influencers.csv:id\n"}).Return(session.UploadResult{
			Outcome:  session.UploadPartial,
			Received: []domain.Entity{domain.EntityInfluencers},
			Missing:  []domain.Entity{domain.EntityPosts, domain.EntityTracking, domain.EntityPayouts},
		}, nil)

		body, contentType := multipartBody(t, map[string]string{"influencers": "id\n"})
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/abc/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestRouter(svc, 1<<20).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"outcome":"partial"`)
		svc.AssertExpectations(t)
	})

	t.Run("rejected upload", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Upload", "abc", mock.Anything).Return(session.UploadResult{Outcome: session.UploadRejected}, &dataset.DataLoadError{
			Entity: domain.EntityPayouts,
			Source: dataset.SourceUpload,
			Err:    &dataset.SchemaMismatchError{Entity: domain.EntityPayouts, Missing: []string{"basis"}},
		})

		body, contentType := multipartBody(t, map[string]string{
			"influencers": "a", "posts": "b", "tracking": "c", "payouts": "d",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/abc/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestRouter(svc, 1<<20).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, apierrors.TypeSchemaMismatch, problemType(t, rec))
	})

	t.Run("body too large", func(t *testing.T) {
		svc := new(MockDashboardService)

		body, contentType := multipartBody(t, map[string]string{"influencers": strings.Repeat("x", 4096)})
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/abc/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestRouter(svc, 512).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, apierrors.TypePayloadTooLarge, problemType(t, rec))
		svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})
}

func TestDashboardHandler_Integrity(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Integrity", "abc").Return(services.IntegrityReport{Version: 3, Valid: true, Issues: []domain.IntegrityIssue{}}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc/integrity", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":true`)
}

func TestDashboardHandler_Export(t *testing.T) {
	t.Run("workbook", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ExportWorkbook", "0123456789abcdef").Return(nil)

		rec := httptest.NewRecorder()
		newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/0123456789abcdef/export", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "influencer-dashboard-01234567.xlsx")
		assert.Equal(t, "PK\x03\x04", rec.Body.String())
	})

	t.Run("failure is a problem response", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ExportWorkbook", "abc").Return(errors.New("disk full"))

		rec := httptest.NewRecorder()
		newTestRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc/export", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "partial")
		assert.Equal(t, apierrors.TypeInternal, problemType(t, rec))
	})
}
