package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"stock-alert-backend/models"
)

func priceAlert(threshold float64) *models.Alert {
	return &models.Alert{
		AlertType:      models.AlertTypePriceThreshold,
		ThresholdPrice: decimal.NewFromFloat(threshold),
	}
}

func TestShouldTriggerPriceThreshold(t *testing.T) {
	alert := priceAlert(5.00)

	if !ShouldTrigger(alert, 5.00, 0) {
		t.Error("expected trigger at exactly the threshold")
	}
	if !ShouldTrigger(alert, 5.50, 0) {
		t.Error("expected trigger above the threshold")
	}
	if ShouldTrigger(alert, 4.99, 0) {
		t.Error("expected no trigger below the threshold")
	}
}

func TestShouldTriggerIgnoresZeroPrice(t *testing.T) {
	alert := priceAlert(5.00)

	if ShouldTrigger(alert, 0, 0) {
		t.Error("zero price must never fire an alert")
	}
	if ShouldTrigger(alert, -1, 0) {
		t.Error("negative price must never fire an alert")
	}
}

func TestShouldTriggerZeroThresholdNeverFires(t *testing.T) {
	alert := &models.Alert{AlertType: models.AlertTypePriceThreshold}

	if ShouldTrigger(alert, 100, 0) {
		t.Error("unset threshold must never fire")
	}
}

func TestShouldTriggerHighDividendYield(t *testing.T) {
	alert := &models.Alert{
		AlertType:      models.AlertTypeHighDividendYield,
		ThresholdYield: decimal.NewFromFloat(8.0),
	}

	if !ShouldTrigger(alert, 0, 8.0) {
		t.Error("expected trigger at the yield threshold")
	}
	if !ShouldTrigger(alert, 0, 9.5) {
		t.Error("expected trigger above the yield threshold")
	}
	if ShouldTrigger(alert, 0, 7.9) {
		t.Error("expected no trigger below the yield threshold")
	}
	if ShouldTrigger(alert, 0, 0) {
		t.Error("zero yield must never fire")
	}
}

func TestShouldTriggerTargetDividendYield(t *testing.T) {
	alert := &models.Alert{
		AlertType:   models.AlertTypeTargetDividendYield,
		TargetYield: decimal.NewFromFloat(6.0),
	}

	// Within 0.25 percentage points counts as reached
	for _, yield := range []float64{6.0, 5.80, 6.25, 5.75} {
		if !ShouldTrigger(alert, 0, yield) {
			t.Errorf("expected trigger at yield %.2f near target 6.0", yield)
		}
	}
	for _, yield := range []float64{5.5, 6.5, 10.0} {
		if ShouldTrigger(alert, 0, yield) {
			t.Errorf("expected no trigger at yield %.2f away from target 6.0", yield)
		}
	}
}

func TestShouldTriggerDividendYieldChange(t *testing.T) {
	alert := &models.Alert{
		AlertType:            models.AlertTypeDividendYieldChange,
		LastYield:            decimal.NewFromFloat(5.0),
		YieldChangeThreshold: decimal.NewFromFloat(1.0),
	}

	if !ShouldTrigger(alert, 0, 6.0) {
		t.Error("expected trigger on +1.0 yield move")
	}
	if !ShouldTrigger(alert, 0, 3.5) {
		t.Error("expected trigger on -1.5 yield move")
	}
	if ShouldTrigger(alert, 0, 5.5) {
		t.Error("expected no trigger on +0.5 yield move")
	}
}

func TestShouldTriggerYieldChangeWithoutBaseline(t *testing.T) {
	alert := &models.Alert{
		AlertType:            models.AlertTypeDividendYieldChange,
		YieldChangeThreshold: decimal.NewFromFloat(1.0),
	}

	if ShouldTrigger(alert, 0, 10.0) {
		t.Error("yield change alert without a baseline must never fire")
	}
}

func TestShouldTriggerFeedEventTypes(t *testing.T) {
	// IPO and announcement alerts fire from feed events, never from the
	// periodic market check
	for _, alertType := range []models.AlertType{
		models.AlertTypeIPO,
		models.AlertTypeDividendAnnouncement,
	} {
		alert := &models.Alert{AlertType: alertType}
		if ShouldTrigger(alert, 100, 100) {
			t.Errorf("%s must not fire from the market check", alertType)
		}
	}
}

func TestValidateAlertThresholdsRequiresTypeField(t *testing.T) {
	cases := []struct {
		alertType models.AlertType
		field     string
	}{
		{models.AlertTypePriceThreshold, "threshold_price"},
		{models.AlertTypeHighDividendYield, "threshold_yield"},
		{models.AlertTypeTargetDividendYield, "target_yield"},
		{models.AlertTypeDividendYieldChange, "yield_change_threshold"},
	}

	for _, tc := range cases {
		// A bare alert of this type, as left by a type switch that didn't
		// bring the matching threshold along, must be rejected
		alert := &models.Alert{AlertType: tc.alertType}
		if err := validateAlertThresholds(alert); err == nil {
			t.Errorf("%s without %s should be invalid", tc.alertType, tc.field)
		}
	}
}

func TestValidateAlertThresholdsAcceptsCompleteAlerts(t *testing.T) {
	complete := []*models.Alert{
		{AlertType: models.AlertTypePriceThreshold, ThresholdPrice: decimal.NewFromFloat(5)},
		{AlertType: models.AlertTypeHighDividendYield, ThresholdYield: decimal.NewFromFloat(8)},
		{AlertType: models.AlertTypeTargetDividendYield, TargetYield: decimal.NewFromFloat(6)},
		{AlertType: models.AlertTypeDividendYieldChange, YieldChangeThreshold: decimal.NewFromFloat(1)},
		// Feed-driven types carry no threshold
		{AlertType: models.AlertTypeIPO},
		{AlertType: models.AlertTypeDividendAnnouncement},
	}

	for _, alert := range complete {
		if err := validateAlertThresholds(alert); err != nil {
			t.Errorf("%s unexpectedly invalid: %v", alert.AlertType, err)
		}
	}
}

func TestAlertListKey(t *testing.T) {
	cases := []struct {
		status, symbol, userID string
		want                   string
	}{
		{"", "", "u1", "alerts:all:all:u1"},
		{"active", "", "u1", "alerts:active:all:u1"},
		{"", "GCB", "u2", "alerts:all:GCB:u2"},
		{"triggered", "MTNGH", "u3", "alerts:triggered:MTNGH:u3"},
	}

	for _, tc := range cases {
		if got := alertListKey(tc.status, tc.symbol, tc.userID); got != tc.want {
			t.Errorf("alertListKey(%q, %q, %q) = %q, want %q",
				tc.status, tc.symbol, tc.userID, got, tc.want)
		}
	}
}
