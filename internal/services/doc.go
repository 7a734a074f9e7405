// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the dataset, analytics and session
// packages.
//
// # Services
//
// DashboardService owns the session store and the default dataset cache. It
// creates sessions, applies filter selections and uploads, and computes the
// overview and top performers views. Views are memoized per table version and
// selection.
//
// HealthService reports liveness, readiness and runtime statistics.
//
// # Conventions
//
// Every method takes a context.Context first. Errors wrap the sentinels in
// errors.go or the typed errors of the dataset package so the HTTP layer can
// map them with errors.Is and errors.As.
package services
