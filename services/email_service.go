package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"stock-alert-backend/config"
	"stock-alert-backend/models"
)

// EmailService sends alert notifications over SMTP
type EmailService struct {
	cfg *config.Config
}

// Global email service
var GlobalEmailService *EmailService

// InitEmailService initializes the global email service
func InitEmailService(cfg *config.Config) error {
	GlobalEmailService = &EmailService{cfg: cfg}
	if cfg.SMTPUser == "" {
		log.Println("Email service initialized without SMTP credentials, notifications disabled")
	} else {
		log.Println("Email service initialized")
	}
	return nil
}

// Configured reports whether SMTP credentials are present
func (s *EmailService) Configured() bool {
	return s.cfg.SMTPUser != "" && s.cfg.SMTPPassword != ""
}

var alertEmailTmpl = template.Must(template.New("alert").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>Stock Alert Triggered</h2>
  <p>Hi {{.UserName}},</p>
  <p>Your <strong>{{.AlertType}}</strong> alert for
     <strong>{{.StockName}} ({{.StockSymbol}})</strong> just fired.</p>
  <table>
    {{if .ThresholdPrice}}<tr><td>Threshold price</td><td>{{printf "%.2f" .ThresholdPrice}}</td></tr>{{end}}
    {{if .CurrentPrice}}<tr><td>Current price</td><td>{{printf "%.2f" .CurrentPrice}}</td></tr>{{end}}
    {{if .CurrentYield}}<tr><td>Current yield</td><td>{{printf "%.2f" .CurrentYield}}%</td></tr>{{end}}
  </table>
  <p>Manage your alerts from the dashboard.</p>
</body>
</html>`))

// AlertEmailData feeds the alert notification template
type AlertEmailData struct {
	UserName       string
	StockSymbol    string
	StockName      string
	AlertType      string
	ThresholdPrice float64
	CurrentPrice   float64
	CurrentYield   float64
}

// SendAlertEmail notifies a user that their alert fired
func (s *EmailService) SendAlertEmail(user *models.User, alert *models.Alert) error {
	if !s.Configured() {
		return fmt.Errorf("email service not configured")
	}

	data := AlertEmailData{
		UserName:    user.Name,
		StockSymbol: alert.StockSymbol,
		StockName:   alert.StockName,
		AlertType:   alert.AlertType.String(),
	}
	data.ThresholdPrice, _ = alert.ThresholdPrice.Float64()
	data.CurrentPrice, _ = alert.CurrentPrice.Float64()
	data.CurrentYield, _ = alert.CurrentYield.Float64()

	var body bytes.Buffer
	if err := alertEmailTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render alert email: %w", err)
	}

	subject := fmt.Sprintf("Stock Alert: %s (%s)", alert.StockName, alert.StockSymbol)
	return s.send(user.Email, subject, body.String())
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailService) SendWelcomeEmail(user *models.User) error {
	if !s.Configured() {
		return fmt.Errorf("email service not configured")
	}

	body := fmt.Sprintf(`<html><body style="font-family: sans-serif;">
<h2>Welcome, %s!</h2>
<p>Your stock alert account is ready. Add stocks to your watchlist and
set up price or dividend alerts to get notified.</p>
</body></html>`, template.HTMLEscapeString(user.Name))

	return s.send(user.Email, "Welcome to Stock Alerts", body)
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.EmailFrom, to, subject, htmlBody)

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.cfg.EmailFrom, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("Sent email to %s: %s", to, subject)
	return nil
}
