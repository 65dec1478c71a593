package services

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer is the outbound mail transport consumed by the reminder service
type Mailer interface {
	Send(to, subject, plainContent, htmlContent string) error
}

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService builds the SendGrid transport from the environment.
// A missing API key is tolerated: sends become logged no-ops so the rest of
// the app keeps working in environments without mail credentials.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	if fromEmail == "" {
		fromEmail = "reminders@quiethours.app"
	}
	if fromName == "" {
		fromName = "Quiet Hours"
	}

	var client *sendgrid.Client
	if apiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set, reminder emails will be logged but not sent")
	} else {
		client = sendgrid.NewSendClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send delivers a single email through SendGrid
func (s *EmailService) Send(to, subject, plainContent, htmlContent string) error {
	if s.client == nil {
		log.Printf("Warning: email service not configured, skipping send to %s (%s)", to, subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainContent, htmlContent)

	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", to, response.StatusCode)
	}
	return nil
}

// BlockReminderContent builds the subject and bodies for a study block
// reminder. Times arrive pre-formatted in the reference display timezone.
func BlockReminderContent(title, startTime, endTime string) (subject, plainContent, htmlContent string) {
	subject = fmt.Sprintf("Quiet Hours Reminder: %s", title)

	plainContent = fmt.Sprintf("Your quiet study block '%s' starts in 10 minutes (%s - %s). Time to focus!",
		title, startTime, endTime)

	htmlContent = fmt.Sprintf("<p>Your quiet study block <strong>%s</strong> starts in <strong>10 minutes</strong>.</p><p>%s &rarr; %s</p><p>Time to focus and get into your study zone!</p>",
		title, startTime, endTime)

	return subject, plainContent, htmlContent
}
