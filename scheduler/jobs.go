package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"stock-alert-backend/services"
)

// Triggered alerts older than this are removed by the weekly cleanup
const triggeredAlertRetention = 30 * 24 * time.Hour

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: gocron.NewScheduler(time.UTC),
	}
}

// Start starts all scheduled jobs
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	// Evaluate active alerts every minute during trading hours
	s.cron.Every(1).Minute().Do(func() {
		if isMarketOpen() {
			s.checkAlerts()
		}
	})

	// Refresh the dividend feed daily after the exchange updates it
	s.cron.Every(1).Day().At("08:30").Do(func() {
		s.refreshDividends()
	})

	// Promote announced IPOs whose listing date has passed, hourly
	s.cron.Every(1).Hour().Do(func() {
		s.checkIPOListings()
	})

	// Evict expired cache entries hourly
	s.cron.Every(1).Hour().Do(func() {
		s.pruneCache()
	})

	// Cleanup old triggered alerts weekly on Sunday at 01:00
	s.cron.Every(1).Week().Sunday().At("01:00").Do(func() {
		s.cleanupTriggeredAlerts()
	})

	s.cron.StartAsync()
	log.Println("Scheduler started successfully")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// checkAlerts runs one evaluation pass over every active alert
func (s *Scheduler) checkAlerts() {
	if services.GlobalAlertService == nil {
		return
	}

	triggered, err := services.GlobalAlertService.CheckAlerts()
	if err != nil {
		log.Printf("Alert check failed: %v", err)
		return
	}
	if triggered > 0 {
		log.Printf("Scheduled alert check triggered %d alerts", triggered)
	}
}

// refreshDividends repopulates the dividend yield cache
func (s *Scheduler) refreshDividends() {
	if services.GlobalDividendService == nil {
		return
	}
	services.GlobalDividendService.RefreshYields()
}

// checkIPOListings moves due IPOs to listed and fires their alerts
func (s *Scheduler) checkIPOListings() {
	if services.GlobalIPOService == nil {
		return
	}

	listed, err := services.GlobalIPOService.CheckListings()
	if err != nil {
		log.Printf("IPO listing check failed: %v", err)
		return
	}
	if listed > 0 {
		log.Printf("IPO listing check marked %d IPOs listed", listed)
	}
}

// pruneCache evicts expired entries so idle keys don't accumulate
func (s *Scheduler) pruneCache() {
	if services.GlobalMarketService == nil {
		return
	}

	if pruned := services.GlobalMarketService.Cache().PruneExpired(); pruned > 0 {
		log.Printf("Pruned %d expired cache entries", pruned)
	}
}

// cleanupTriggeredAlerts removes stale triggered alerts and journal rows
func (s *Scheduler) cleanupTriggeredAlerts() {
	if services.GlobalAlertService == nil {
		return
	}

	if err := services.GlobalAlertService.CleanupTriggeredAlerts(triggeredAlertRetention); err != nil {
		log.Printf("Triggered alert cleanup failed: %v", err)
	}
}

// isMarketOpen checks if the Ghana Stock Exchange is currently open.
// Trading runs weekdays 10:00 - 15:00 GMT.
func isMarketOpen() bool {
	return isMarketOpenAt(time.Now().UTC())
}

func isMarketOpenAt(now time.Time) bool {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return false
	}

	hour := now.Hour()
	return hour >= 10 && hour < 15
}
