package scheduler

// Package scheduler runs the background jobs for the alert backend:
// - Alert evaluation every minute during exchange trading hours
// - Daily dividend feed refresh after the exchange publishes updates
// - Hourly IPO listing-date check
// - Hourly eviction of expired cache entries
// - Weekly cleanup of old triggered alerts and journal rows
//
// The jobs are defined in jobs.go
