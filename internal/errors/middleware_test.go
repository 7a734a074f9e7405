package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMiddleware_LogsByStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success", http.StatusOK, `"level":"INFO"`},
		{"client error", http.StatusBadRequest, `"level":"WARN"`},
		{"server error", http.StatusServiceUnavailable, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, logs := newTestHandler(t, false)
			mw := NewErrorMiddleware(h, h.logger)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			w := httptest.NewRecorder()
			mw.Handler(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health?x=1", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, logs.String(), tt.wantLevel)
			assert.Contains(t, logs.String(), `"query":"x=1"`)
		})
	}
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	h, logs := newTestHandler(t, false)
	mw := NewErrorMiddleware(h, h.logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	w := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"status":500`)
}

func TestErrorMiddleware_AbortHandlerRepanics(t *testing.T) {
	h, _ := newTestHandler(t, false)
	mw := NewErrorMiddleware(h, h.logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		mw.Handler(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
