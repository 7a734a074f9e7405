// Package app wires the dashboard server together and manages its lifecycle.
//
// NewApplication loads configuration, initializes logging and OpenTelemetry,
// builds the dataset cache, session store and services, and mounts the HTTP
// routes. Run serves until SIGINT or SIGTERM, then shuts the server down and
// flushes telemetry. Initialization errors are returned; the app never calls
// os.Exit itself.
package app
