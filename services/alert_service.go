package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-alert-backend/models"
	"stock-alert-backend/services/cache"
)

// AlertService owns the alert lifecycle: create/read/update/delete,
// the periodic evaluation pass, and the trigger side effects (journal,
// archive, email). List reads are memoized in the shared cache; every
// mutation clears the full alert-list key before returning so readers
// never see a stale list after a write.
type AlertService struct {
	db       *gorm.DB
	cache    *cache.Cache
	market   *MarketService
	dividend *DividendService
}

// Global alert service
var GlobalAlertService *AlertService

// InitAlertService initializes the global alert service
func InitAlertService(db *gorm.DB, c *cache.Cache, market *MarketService, dividend *DividendService) error {
	GlobalAlertService = &AlertService{
		db:       db,
		cache:    c,
		market:   market,
		dividend: dividend,
	}
	log.Println("Alert service initialized")
	return nil
}

// alertListKey builds the cache key for a user's filtered alert list,
// using the literal "all" for missing filters. The user id rides as the
// final, most specific segment.
func alertListKey(status, symbol, userID string) string {
	if status == "" {
		status = "all"
	}
	if symbol == "" {
		symbol = "all"
	}
	return fmt.Sprintf("alerts:%s:%s:%s", status, symbol, userID)
}

// invalidateAlertCache clears the owner's cached alert lists. The full
// list key is always cleared; filtered keys for the touched alert go with
// it. Coarse by design: any mutation drops the whole list rather than
// patching entries.
func (s *AlertService) invalidateAlertCache(alert *models.Alert) {
	if alert == nil {
		return
	}
	for _, status := range []string{"", models.AlertStatusActive, models.AlertStatusTriggered, models.AlertStatusPaused} {
		s.cache.Delete(alertListKey(status, "", alert.UserID))
		s.cache.Delete(alertListKey(status, alert.StockSymbol, alert.UserID))
	}
}

// CreateAlert validates and stores a new alert for the user
func (s *AlertService) CreateAlert(userID string, req *models.CreateAlertRequest) (*models.Alert, error) {
	alertType := models.AlertType(req.AlertType)
	if !alertType.Valid() {
		return nil, fmt.Errorf("invalid alert type %q", req.AlertType)
	}

	alert := &models.Alert{
		ID:          uuid.New().String(),
		UserID:      userID,
		StockSymbol: req.StockSymbol,
		StockName:   req.StockName,
		AlertType:   alertType,
		Status:      models.AlertStatusActive,
	}
	if req.ThresholdPrice != nil {
		alert.ThresholdPrice = decimal.NewFromFloat(*req.ThresholdPrice)
	}
	if req.ThresholdYield != nil {
		alert.ThresholdYield = decimal.NewFromFloat(*req.ThresholdYield)
	}
	if req.TargetYield != nil {
		alert.TargetYield = decimal.NewFromFloat(*req.TargetYield)
	}
	if req.YieldChangeThreshold != nil {
		alert.YieldChangeThreshold = decimal.NewFromFloat(*req.YieldChangeThreshold)
	}
	if err := validateAlertThresholds(alert); err != nil {
		return nil, err
	}

	// Snapshot current market state for display
	if stock, err := s.market.GetStock(req.StockSymbol); err == nil {
		alert.CurrentPrice = decimal.NewFromFloat(stock.CurrentPrice)
		if alert.StockName == "" {
			alert.StockName = stock.Name
		}
	}
	if alertType.IsYieldBased() {
		if y, err := s.dividend.GetCurrentYield(req.StockSymbol); err == nil {
			alert.CurrentYield = decimal.NewFromFloat(y)
			alert.LastYield = alert.CurrentYield
		}
	}

	if err := s.db.Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.invalidateAlertCache(alert)
	return alert, nil
}

// validateAlertThresholds checks that the alert carries the threshold its
// type evaluates against. A zero threshold would leave an alert that can
// never fire.
func validateAlertThresholds(alert *models.Alert) error {
	switch alert.AlertType {
	case models.AlertTypePriceThreshold:
		if alert.ThresholdPrice.IsZero() {
			return fmt.Errorf("threshold_price is required for price_threshold alerts")
		}
	case models.AlertTypeHighDividendYield:
		if alert.ThresholdYield.IsZero() {
			return fmt.Errorf("threshold_yield is required for high_dividend_yield alerts")
		}
	case models.AlertTypeTargetDividendYield:
		if alert.TargetYield.IsZero() {
			return fmt.Errorf("target_yield is required for target_dividend_yield alerts")
		}
	case models.AlertTypeDividendYieldChange:
		if alert.YieldChangeThreshold.IsZero() {
			return fmt.Errorf("yield_change_threshold is required for dividend_yield_change alerts")
		}
	}
	return nil
}

// GetUserAlerts lists a user's alerts with optional status/symbol filters,
// served from cache within the TTL window
func (s *AlertService) GetUserAlerts(userID, status, symbol string) ([]models.Alert, error) {
	key := alertListKey(status, symbol, userID)

	v, err := s.cache.Fetch(key, cache.TTLAlertList, func() (interface{}, error) {
		query := s.db.Where("user_id = ?", userID)
		if status != "" {
			query = query.Where("status = ?", status)
		}
		if symbol != "" {
			query = query.Where("stock_symbol = ?", symbol)
		}

		var alerts []models.Alert
		if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
			return nil, fmt.Errorf("failed to list alerts: %w", err)
		}
		return alerts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Alert), nil
}

// GetAlert fetches one alert, enforcing ownership
func (s *AlertService) GetAlert(alertID, userID string) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.Where("id = ?", alertID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert not found")
		}
		return nil, fmt.Errorf("failed to fetch alert: %w", err)
	}
	if alert.UserID != userID {
		return nil, fmt.Errorf("alert not found")
	}
	return &alert, nil
}

// UpdateAlert applies the non-nil fields of the request
func (s *AlertService) UpdateAlert(alertID, userID string, req *models.UpdateAlertRequest) (*models.Alert, error) {
	alert, err := s.GetAlert(alertID, userID)
	if err != nil {
		return nil, err
	}

	if req.AlertType != nil {
		t := models.AlertType(*req.AlertType)
		if !t.Valid() {
			return nil, fmt.Errorf("invalid alert type %q", *req.AlertType)
		}
		alert.AlertType = t
	}
	if req.ThresholdPrice != nil {
		alert.ThresholdPrice = decimal.NewFromFloat(*req.ThresholdPrice)
	}
	if req.ThresholdYield != nil {
		alert.ThresholdYield = decimal.NewFromFloat(*req.ThresholdYield)
	}
	if req.TargetYield != nil {
		alert.TargetYield = decimal.NewFromFloat(*req.TargetYield)
	}
	if req.YieldChangeThreshold != nil {
		alert.YieldChangeThreshold = decimal.NewFromFloat(*req.YieldChangeThreshold)
	}
	if req.Status != nil {
		switch *req.Status {
		case models.AlertStatusActive, models.AlertStatusPaused:
			alert.Status = *req.Status
			alert.TriggeredAt = nil
		default:
			return nil, fmt.Errorf("invalid status %q", *req.Status)
		}
	}

	// A type switch must land with the new type's threshold in place
	if err := validateAlertThresholds(alert); err != nil {
		return nil, err
	}

	if err := s.db.Save(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	s.invalidateAlertCache(alert)
	return alert, nil
}

// DeleteAlert removes an alert, enforcing ownership
func (s *AlertService) DeleteAlert(alertID, userID string) error {
	alert, err := s.GetAlert(alertID, userID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(alert).Error; err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	s.invalidateAlertCache(alert)
	return nil
}

// CheckAlerts evaluates every active alert against current market data and
// triggers the ones whose condition holds. Returns the number triggered.
func (s *AlertService) CheckAlerts() (int, error) {
	var alerts []models.Alert
	if err := s.db.Where("status = ?", models.AlertStatusActive).Find(&alerts).Error; err != nil {
		return 0, fmt.Errorf("failed to load active alerts: %w", err)
	}

	triggered := 0
	for i := range alerts {
		alert := &alerts[i]

		price := 0.0
		if stock, err := s.market.GetStock(alert.StockSymbol); err == nil {
			price = stock.CurrentPrice
		}

		yield := 0.0
		if alert.AlertType.IsYieldBased() {
			if y, err := s.dividend.GetCurrentYield(alert.StockSymbol); err == nil {
				yield = y
			}
		}

		if !ShouldTrigger(alert, price, yield) {
			// Keep yield-change baselines current even when not firing
			if alert.AlertType == models.AlertTypeDividendYieldChange && yield > 0 {
				s.db.Model(alert).Update("last_yield", decimal.NewFromFloat(yield))
			}
			continue
		}

		if err := s.triggerAlert(alert, price, yield); err != nil {
			log.Printf("Failed to trigger alert %s: %v", alert.ID, err)
			continue
		}
		triggered++
	}

	if triggered > 0 {
		log.Printf("Alert check complete: %d of %d active alerts triggered", triggered, len(alerts))
	}
	return triggered, nil
}

// ShouldTrigger reports whether an alert's condition holds for the given
// price and dividend yield. Zero market values never fire an alert.
func ShouldTrigger(alert *models.Alert, price, yield float64) bool {
	switch alert.AlertType {
	case models.AlertTypePriceThreshold:
		if price <= 0 || alert.ThresholdPrice.IsZero() {
			return false
		}
		return decimal.NewFromFloat(price).GreaterThanOrEqual(alert.ThresholdPrice)

	case models.AlertTypeHighDividendYield:
		if yield <= 0 || alert.ThresholdYield.IsZero() {
			return false
		}
		return decimal.NewFromFloat(yield).GreaterThanOrEqual(alert.ThresholdYield)

	case models.AlertTypeTargetDividendYield:
		if yield <= 0 || alert.TargetYield.IsZero() {
			return false
		}
		// Within 0.25 percentage points of the target counts as reached
		diff := decimal.NewFromFloat(yield).Sub(alert.TargetYield).Abs()
		return diff.LessThanOrEqual(decimal.NewFromFloat(0.25))

	case models.AlertTypeDividendYieldChange:
		if yield <= 0 || alert.LastYield.IsZero() || alert.YieldChangeThreshold.IsZero() {
			return false
		}
		change := decimal.NewFromFloat(yield).Sub(alert.LastYield).Abs()
		return change.GreaterThanOrEqual(alert.YieldChangeThreshold)
	}

	// ipo_alert and dividend_announcement fire from feed events, not the
	// periodic market check
	return false
}

// TriggerFeedAlerts fires every active alert of the given type for a
// symbol. IPO and dividend-announcement alerts have no threshold to poll,
// they trigger when the corresponding feed event arrives. An empty symbol
// fires the type for every watched symbol.
func (s *AlertService) TriggerFeedAlerts(symbol string, alertType models.AlertType, price float64) (int, error) {
	query := s.db.Where("status = ? AND alert_type = ?", models.AlertStatusActive, alertType)
	if symbol != "" {
		query = query.Where("stock_symbol = ?", symbol)
	}

	var alerts []models.Alert
	if err := query.Find(&alerts).Error; err != nil {
		return 0, fmt.Errorf("failed to load %s alerts: %w", alertType, err)
	}

	triggered := 0
	for i := range alerts {
		if err := s.triggerAlert(&alerts[i], price, 0); err != nil {
			log.Printf("Failed to trigger alert %s: %v", alerts[i].ID, err)
			continue
		}
		triggered++
	}
	return triggered, nil
}

// triggerAlert marks the alert triggered and runs the notification side
// effects: journal row, archive document, email.
func (s *AlertService) triggerAlert(alert *models.Alert, price, yield float64) error {
	now := time.Now()
	alert.Status = models.AlertStatusTriggered
	alert.TriggeredAt = &now
	alert.CurrentPrice = decimal.NewFromFloat(price)
	if yield > 0 {
		alert.CurrentYield = decimal.NewFromFloat(yield)
	}

	if err := s.db.Save(alert).Error; err != nil {
		return fmt.Errorf("failed to mark alert triggered: %w", err)
	}
	s.invalidateAlertCache(alert)

	ev := &models.TriggeredAlertEvent{
		AlertID:     alert.ID,
		UserID:      alert.UserID,
		StockSymbol: alert.StockSymbol,
		AlertType:   alert.AlertType.String(),
		Price:       price,
		Yield:       yield,
		TriggeredAt: now,
	}

	if GlobalHistoryStore != nil {
		if err := GlobalHistoryStore.RecordTrigger(ev); err != nil {
			log.Printf("Failed to journal trigger for alert %s: %v", alert.ID, err)
		}
	}
	if GlobalEventArchive != nil {
		GlobalEventArchive.ArchiveTrigger(ev)
	}

	s.notifyUser(alert)

	log.Printf("Alert triggered: %s %s for %s (price=%.2f yield=%.2f)",
		alert.AlertType, alert.ID, alert.StockSymbol, price, yield)
	return nil
}

// notifyUser emails the alert owner if their preferences allow it
func (s *AlertService) notifyUser(alert *models.Alert) {
	if GlobalEmailService == nil || !GlobalEmailService.Configured() {
		return
	}

	var user models.User
	if err := s.db.Preload("Preferences").Where("id = ?", alert.UserID).First(&user).Error; err != nil {
		log.Printf("Failed to load user %s for notification: %v", alert.UserID, err)
		return
	}
	if user.Preferences != nil && !user.Preferences.EmailNotifications {
		return
	}

	if err := GlobalEmailService.SendAlertEmail(&user, alert); err != nil {
		log.Printf("Failed to email user %s: %v", user.Email, err)
	}
}

// CleanupTriggeredAlerts deletes triggered alerts older than the retention
// window and prunes the journal to match
func (s *AlertService) CleanupTriggeredAlerts(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)

	res := s.db.Where("status = ? AND triggered_at < ?", models.AlertStatusTriggered, cutoff).
		Delete(&models.Alert{})
	if res.Error != nil {
		return fmt.Errorf("failed to clean up alerts: %w", res.Error)
	}

	if GlobalHistoryStore != nil {
		if pruned, err := GlobalHistoryStore.PruneOlderThan(cutoff); err == nil && pruned > 0 {
			log.Printf("Pruned %d journal rows", pruned)
		}
	}

	if res.RowsAffected > 0 {
		// Cached lists age out within the 1 minute TTL, no need to chase
		// every affected user's keys here
		log.Printf("Cleaned up %d triggered alerts", res.RowsAffected)
	}
	return nil
}
