// Package http implements the HTTP handlers of the dashboard API.
// Handlers stay thin: they parse and validate requests, call the service
// layer, and format responses. Business logic lives in internal/services.
//
// # Routes
//
// Session routes are mounted under /api/sessions:
//
//	POST   /                          create a session over the default dataset
//	GET    /{id}                      session state, selection and filter options
//	DELETE /{id}                      end a session
//	PUT    /{id}/filters              replace the selection
//	POST   /{id}/filters/reset        restore the full selection
//	GET    /{id}/views/overview       KPIs and revenue by platform
//	GET    /{id}/views/top-performers ranking, ROAS rows and charts
//	GET    /{id}/tables/{entity}      paged preview, or CSV with format=csv
//	POST   /{id}/upload               multipart upload of the four tables
//	GET    /{id}/integrity            dataset invariant check
//	GET    /{id}/export               xlsx workbook
//
// # Error Handling
//
// Every error response is an RFC 7807 problem produced by
// internal/errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/schema-mismatch",
//	    "title": "Schema Mismatch",
//	    "status": 422,
//	    "detail": "payouts schema mismatch (missing columns: basis)",
//	    "instance": "/api/sessions/5f1c.../upload",
//	    "missing": ["basis"],
//	    "unexpected": [],
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of the service.
package http
