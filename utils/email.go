package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"time"
)

// ======================
// SMTP Configuration
// ======================
var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
	smtpTimeout   = 10 * time.Second
)

// sendEmail delivers a plain-text mail over STARTTLS.
func sendEmail(to, subject, body string) error {
	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	if smtpFromEmail == "" {
		smtpFromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(smtpFromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := smtpFromName
	if from == "" {
		from = smtpFromEmail
	} else {
		from = fmt.Sprintf("%s <%s>", smtpFromName, smtpFromEmail)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body))

	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		fmt.Printf("⚠️ QUIT command error (non-critical): %v\n", err)
	}
	return nil
}

// ======================
// Booking Emails
// ======================

func SendBookingConfirmationEmail(toEmail, fullName, activityName string, people int, total float64) {
	subject := fmt.Sprintf("Booking confirmed: %s", activityName)
	body := fmt.Sprintf("Hello %s, your booking for \"%s\" (%d people, total %.2f) is confirmed. See you there!",
		fullName, activityName, people, total)
	go func() {
		if err := sendEmail(toEmail, subject, body); err != nil {
			fmt.Printf("❌ Failed to send booking confirmation to %s: %v\n", toEmail, err)
		}
	}()
}

func SendBookingCancellationEmail(toEmail, fullName, activityName string) {
	subject := fmt.Sprintf("Booking cancelled: %s", activityName)
	body := fmt.Sprintf("Hello %s, your booking for \"%s\" has been cancelled. Any settled payment will be refunded.",
		fullName, activityName)
	go func() {
		if err := sendEmail(toEmail, subject, body); err != nil {
			fmt.Printf("❌ Failed to send cancellation email to %s: %v\n", toEmail, err)
		}
	}()
}

func SendActivityCancelledEmail(toEmail, fullName, activityName string) {
	subject := fmt.Sprintf("Activity cancelled: %s", activityName)
	body := fmt.Sprintf("Hello %s, the activity \"%s\" you booked has been cancelled by the provider.",
		fullName, activityName)
	go func() {
		if err := sendEmail(toEmail, subject, body); err != nil {
			fmt.Printf("❌ Failed to send activity cancellation email to %s: %v\n", toEmail, err)
		}
	}()
}
