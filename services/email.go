package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/utils"
)

// EmailService sends the two notification emails the tracker produces.
type EmailService interface {
	SendBudgetAlert(to string, budget models.Budget) error
	SendGoalCompleted(to, firstname string, goal models.Goal) error
}

// NewEmailService selects a provider from EMAIL_PROVIDER: "mailgun",
// "resend", or anything else for a logging mock.
func NewEmailService() EmailService {
	provider := strings.ToLower(os.Getenv("EMAIL_PROVIDER"))

	switch provider {
	case "mailgun":
		domain := os.Getenv("MAILGUN_DOMAIN")
		apiKey := os.Getenv("MAILGUN_PRIVATE_API_KEY")
		sender := os.Getenv("SENDER_EMAIL")
		if domain == "" || apiKey == "" || sender == "" {
			log.Println("⚠️ Mailgun configuration incomplete, falling back to mock email service")
			return &MockEmailService{}
		}
		return &MailgunEmailService{
			mg:     mailgun.NewMailgun(domain, apiKey),
			sender: sender,
		}
	case "resend":
		apiKey := os.Getenv("RESEND_API_KEY")
		sender := os.Getenv("SENDER_EMAIL")
		if apiKey == "" || sender == "" {
			log.Println("⚠️ Resend configuration incomplete, falling back to mock email service")
			return &MockEmailService{}
		}
		return &ResendEmailService{apiKey: apiKey, sender: sender}
	default:
		return &MockEmailService{}
	}
}

// ============================================================================
// EMAIL BODIES
// ============================================================================

func budgetAlertContent(budget models.Budget) (subject, text, html string) {
	today := time.Now().Format("01/02/2006")
	subject = "Budget Alert: Your remaining budget is exhausted or exceeded!"

	text = fmt.Sprintf(`Dear User,

We wanted to notify you that your budget for the category "%s" has been exhausted or exceeded.

Category: %s
Currency: %s
Budget: %.2f
Remaining Budget: %.2f
From: %s
To: %s
Budget Exceeded Date: %s

Please review your budget allocation and adjust accordingly.

Best regards,
Finance Tracker`,
		budget.Category, budget.Category, budget.Currency, budget.Budget, budget.RemainingBudget,
		budget.StartDate.Format("01/02/2006"), budget.EndDate.Format("01/02/2006"), today)

	html = fmt.Sprintf(`<h2>Dear User,</h2>
<p>We wanted to notify you that your budget for the category <strong>"%s"</strong> has been exhausted or exceeded.</p>
<ul>
  <li><strong>Category:</strong> %s</li>
  <li><strong>Currency:</strong> %s</li>
  <li><strong>Budget:</strong> %.2f</li>
  <li><strong>Remaining Budget:</strong> %.2f</li>
  <li><strong>Budget Allocated From:</strong> %s</li>
  <li><strong>Budget Allocated To:</strong> %s</li>
  <li><strong>Budget Exceeded Date:</strong> %s</li>
</ul>
<p>Please review your budget allocation and adjust accordingly.</p>
<p>Best regards,<br>Finance Tracker</p>`,
		budget.Category, budget.Category, budget.Currency, budget.Budget, budget.RemainingBudget,
		budget.StartDate.Format("01/02/2006"), budget.EndDate.Format("01/02/2006"), today)

	return subject, text, html
}

func goalCompletedContent(firstname string, goal models.Goal) (subject, text, html string) {
	completed := "N/A"
	if goal.CompletedAt != nil {
		completed = goal.CompletedAt.Format("01/02/2006")
	}
	subject = fmt.Sprintf("Congratulations on Completing Your Goal %q!", goal.Title)

	text = fmt.Sprintf(`Dear %s,

Congratulations! You have successfully completed your goal %q.

Title: %s
Currency: %s
Target Value: %.2f
Saved Value: %.2f
Created On: %s
Completed On: %s

Keep up the great work and continue saving!`,
		firstname, goal.Title, goal.Title, goal.Currency, goal.TargetValue, goal.SavedValue,
		goal.CreatedAt.Format("01/02/2006"), completed)

	html = fmt.Sprintf(`<h2>Congratulations %s!</h2>
<p>You've successfully completed your goal <strong>%q</strong>!</p>
<ul>
  <li><strong>Title:</strong> %s</li>
  <li><strong>Currency:</strong> %s</li>
  <li><strong>Target Value:</strong> %.2f</li>
  <li><strong>Saved Value:</strong> %.2f</li>
  <li><strong>Created On:</strong> %s</li>
  <li><strong>Completed On:</strong> %s</li>
</ul>
<p>Keep up the great work and continue saving!</p>`,
		firstname, goal.Title, goal.Title, goal.Currency, goal.TargetValue, goal.SavedValue,
		goal.CreatedAt.Format("01/02/2006"), completed)

	return subject, text, html
}

// ============================================================================
// MAILGUN
// ============================================================================

type MailgunEmailService struct {
	mg     mailgun.Mailgun
	sender string
}

func (s *MailgunEmailService) send(to, subject, text, html string) error {
	message := s.mg.NewMessage(s.sender, subject, text, to)
	message.SetHtml(html)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, _, err := s.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	utils.SafeLog("✅ Email sent to %s: %s", to, subject)
	return nil
}

func (s *MailgunEmailService) SendBudgetAlert(to string, budget models.Budget) error {
	subject, text, html := budgetAlertContent(budget)
	return s.send(to, subject, text, html)
}

func (s *MailgunEmailService) SendGoalCompleted(to, firstname string, goal models.Goal) error {
	subject, text, html := goalCompletedContent(firstname, goal)
	return s.send(to, subject, text, html)
}

// ============================================================================
// RESEND
// ============================================================================

type ResendEmailService struct {
	apiKey string
	sender string
}

func (s *ResendEmailService) send(to, subject, html string) error {
	payload := map[string]interface{}{
		"from":    fmt.Sprintf("Finance Tracker <%s>", s.sender),
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API returned status %d", resp.StatusCode)
	}

	utils.SafeLog("✅ Email sent to %s: %s", to, subject)
	return nil
}

func (s *ResendEmailService) SendBudgetAlert(to string, budget models.Budget) error {
	subject, _, html := budgetAlertContent(budget)
	return s.send(to, subject, html)
}

func (s *ResendEmailService) SendGoalCompleted(to, firstname string, goal models.Goal) error {
	subject, _, html := goalCompletedContent(firstname, goal)
	return s.send(to, subject, html)
}

// ============================================================================
// MOCK
// ============================================================================

// MockEmailService logs instead of sending. Used in development and tests.
type MockEmailService struct{}

func (s *MockEmailService) SendBudgetAlert(to string, budget models.Budget) error {
	utils.SafeLog("📧 [mock] budget alert for %s to %s", budget.Category, to)
	return nil
}

func (s *MockEmailService) SendGoalCompleted(to, firstname string, goal models.Goal) error {
	utils.SafeLog("📧 [mock] goal completed %q to %s", goal.Title, to)
	return nil
}
