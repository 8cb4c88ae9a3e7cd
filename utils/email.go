// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// AppBaseURL returns the public base URL used when building links in emails.
func AppBaseURL() string {
	if base := os.Getenv("APP_BASE_URL"); base != "" {
		return base
	}
	return "http://localhost:3000"
}

// InvitationLink builds the link an invitee follows to accept or decline.
func InvitationLink(token string) string {
	return fmt.Sprintf("%s/invitations?token=%s", AppBaseURL(), token)
}

// SendInvitationEmail emails a project invitation to the invitee. Failures
// are logged and returned, but callers treat email as best-effort.
func SendInvitationEmail(toEmail, inviterName, projectName, token string) error {
	subject := fmt.Sprintf("%s invited you to %s", inviterName, projectName)
	body := fmt.Sprintf("Hi,\n\n%s has invited you to collaborate on the project %q.\n\nOpen the link below to accept or decline the invitation:\n%s\n\nThe invitation expires automatically if it is not answered.\n\nBest regards,\nThe Project Management Team", inviterName, projectName, InvitationLink(token))

	// Send email using gomail
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	if smtpHost == "" {
		log.Printf("SMTP_HOST not set, skipping invitation email to %s", toEmail)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send invitation email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	return nil
}
