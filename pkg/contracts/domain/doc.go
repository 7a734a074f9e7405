// Package domain contains the campaign tables, the dashboard views and the
// integrity rules shared by every layer of the dashboard.
package domain
