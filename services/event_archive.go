package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stock-alert-backend/models"
)

// EventArchive mirrors trigger events into MongoDB for long-term analytics.
// It is optional: when MONGODB_URI is unset the archive is disabled and
// every call becomes a no-op.
type EventArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Global event archive
var GlobalEventArchive *EventArchive

// InitEventArchive connects to MongoDB if a URI is configured
func InitEventArchive(uri string) error {
	if uri == "" {
		GlobalEventArchive = &EventArchive{}
		log.Println("MongoDB not configured, event archive disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}

	GlobalEventArchive = &EventArchive{
		client:     client,
		collection: client.Database("stock_alerts").Collection("trigger_events"),
	}
	log.Println("MongoDB event archive connected")
	return nil
}

// Enabled reports whether the archive has a live connection
func (a *EventArchive) Enabled() bool {
	return a != nil && a.collection != nil
}

// ArchiveTrigger stores one trigger event. Failures are logged, not
// returned: archiving must never block the alert path.
func (a *EventArchive) ArchiveTrigger(ev *models.TriggeredAlertEvent) {
	if !a.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := a.collection.InsertOne(ctx, ev); err != nil {
		log.Printf("Failed to archive trigger event for alert %s: %v", ev.AlertID, err)
	}
}

// RecentTriggers returns archived events for a symbol, newest first
func (a *EventArchive) RecentTriggers(symbol string, limit int64) ([]models.TriggeredAlertEvent, error) {
	if !a.Enabled() {
		return nil, fmt.Errorf("event archive not configured")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "triggered_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := a.collection.Find(ctx, bson.M{"stock_symbol": symbol}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.TriggeredAlertEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Close disconnects from MongoDB
func (a *EventArchive) Close() {
	if !a.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
