package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-alert-backend/models"
)

// IPOService tracks stock listing announcements and fires ipo_alert
// subscriptions when a new IPO is announced or an announced one lists.
type IPOService struct {
	db     *gorm.DB
	alerts *AlertService
}

// Global IPO service
var GlobalIPOService *IPOService

// InitIPOService initializes the global IPO service
func InitIPOService(db *gorm.DB, alerts *AlertService) error {
	GlobalIPOService = &IPOService{db: db, alerts: alerts}
	log.Println("IPO service initialized")
	return nil
}

// CreateAnnouncement records a new IPO and fires every active ipo_alert
func (s *IPOService) CreateAnnouncement(req *models.CreateIPORequest) (*models.IPOAnnouncement, error) {
	listingDate, err := time.Parse("2006-01-02", req.ListingDate)
	if err != nil {
		return nil, fmt.Errorf("listing_date must be YYYY-MM-DD")
	}

	ipo := &models.IPOAnnouncement{
		ID:          uuid.New().String(),
		CompanyName: req.CompanyName,
		Symbol:      strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Sector:      req.Sector,
		OfferPrice:  decimal.NewFromFloat(req.OfferPrice),
		ListingDate: listingDate,
		Status:      models.IPOStatusAnnounced,
	}
	if err := s.db.Create(ipo).Error; err != nil {
		return nil, fmt.Errorf("failed to record IPO announcement: %w", err)
	}

	s.fireIPOAlerts(ipo)

	if GlobalStreamService != nil {
		GlobalStreamService.BroadcastMessage("ipo_announcement", ipo)
	}

	log.Printf("IPO announced: %s (%s), listing %s",
		ipo.CompanyName, ipo.Symbol, ipo.ListingDate.Format("2006-01-02"))
	return ipo, nil
}

// GetAll returns every recorded IPO, newest listing first
func (s *IPOService) GetAll() ([]models.IPOAnnouncement, error) {
	var ipos []models.IPOAnnouncement
	if err := s.db.Order("listing_date DESC").Find(&ipos).Error; err != nil {
		return nil, fmt.Errorf("failed to list IPOs: %w", err)
	}
	return ipos, nil
}

// GetUpcoming returns announced IPOs whose listing date has not passed
func (s *IPOService) GetUpcoming() ([]models.IPOAnnouncement, error) {
	var ipos []models.IPOAnnouncement
	err := s.db.Where("status = ? AND listing_date >= ?", models.IPOStatusAnnounced, time.Now()).
		Order("listing_date").Find(&ipos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming IPOs: %w", err)
	}
	return ipos, nil
}

// CheckListings promotes announced IPOs whose listing date has passed to
// listed and fires ipo_alert subscriptions for each. Returns the number
// of IPOs that went live.
func (s *IPOService) CheckListings() (int, error) {
	var ipos []models.IPOAnnouncement
	if err := s.db.Where("status = ?", models.IPOStatusAnnounced).Find(&ipos).Error; err != nil {
		return 0, fmt.Errorf("failed to load announced IPOs: %w", err)
	}

	now := time.Now()
	listed := 0
	for i := range ipos {
		ipo := &ipos[i]
		if !listingDue(ipo, now) {
			continue
		}

		ipo.Status = models.IPOStatusListed
		if err := s.db.Save(ipo).Error; err != nil {
			log.Printf("Failed to mark IPO %s listed: %v", ipo.Symbol, err)
			continue
		}

		s.fireIPOAlerts(ipo)

		if GlobalStreamService != nil {
			GlobalStreamService.BroadcastMessage("ipo_listed", ipo)
		}

		log.Printf("IPO listed: %s (%s)", ipo.CompanyName, ipo.Symbol)
		listed++
	}
	return listed, nil
}

// listingDue reports whether an announced IPO's listing date has passed
func listingDue(ipo *models.IPOAnnouncement, now time.Time) bool {
	return ipo.Status == models.IPOStatusAnnounced && ipo.ListingDate.Before(now)
}

// fireIPOAlerts triggers every active ipo_alert subscription. IPO alerts
// are general interest, an event for any company notifies all of them.
func (s *IPOService) fireIPOAlerts(ipo *models.IPOAnnouncement) {
	price, _ := ipo.OfferPrice.Float64()

	triggered, err := s.alerts.TriggerFeedAlerts("", models.AlertTypeIPO, price)
	if err != nil {
		log.Printf("Failed to fire IPO alerts for %s: %v", ipo.Symbol, err)
		return
	}
	if triggered > 0 {
		log.Printf("IPO event for %s triggered %d alerts", ipo.Symbol, triggered)
	}
}
