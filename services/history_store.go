package services

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stock-alert-backend/models"
)

// HistoryStore journals triggered alerts to a local SQLite file so the
// trigger log survives restarts independently of the main database.
type HistoryStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Global history store
var GlobalHistoryStore *HistoryStore

// InitHistoryStore opens (or creates) the trigger journal
func InitHistoryStore(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping history db: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.createTables(); err != nil {
		return fmt.Errorf("failed to create history tables: %w", err)
	}

	GlobalHistoryStore = store
	log.Printf("Alert history store opened at %s", path)
	return nil
}

func (h *HistoryStore) createTables() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS triggered_alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alert_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			stock_symbol TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			price REAL,
			yield REAL,
			triggered_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_triggered_alerts_user
			ON triggered_alerts(user_id, triggered_at);
	`)
	return err
}

// RecordTrigger appends one trigger event to the journal
func (h *HistoryStore) RecordTrigger(ev *models.TriggeredAlertEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(`
		INSERT INTO triggered_alerts (alert_id, user_id, stock_symbol, alert_type, price, yield, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.AlertID, ev.UserID, ev.StockSymbol, ev.AlertType, ev.Price, ev.Yield, ev.TriggeredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record trigger: %w", err)
	}
	return nil
}

// RecentTriggers returns the latest trigger events for a user, newest first
func (h *HistoryStore) RecentTriggers(userID string, limit int) ([]models.TriggeredAlertEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := h.db.Query(`
		SELECT alert_id, user_id, stock_symbol, alert_type, price, yield, triggered_at
		FROM triggered_alerts
		WHERE user_id = ?
		ORDER BY triggered_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query triggers: %w", err)
	}
	defer rows.Close()

	events := make([]models.TriggeredAlertEvent, 0, limit)
	for rows.Next() {
		var ev models.TriggeredAlertEvent
		if err := rows.Scan(&ev.AlertID, &ev.UserID, &ev.StockSymbol, &ev.AlertType, &ev.Price, &ev.Yield, &ev.TriggeredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PruneOlderThan deletes journal rows older than the cutoff and returns
// the number removed
func (h *HistoryStore) PruneOlderThan(cutoff time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.Exec(`DELETE FROM triggered_alerts WHERE triggered_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune triggers: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database
func (h *HistoryStore) Close() error {
	return h.db.Close()
}
