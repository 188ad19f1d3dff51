package utils

import (
	"eduhub/config"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers an HTML email through SendGrid. Without an API key the
// message is only logged, which is what local runs and tests rely on.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.SendGridAPIKey == "" {
		log.Printf("[EMAIL] (console) To: %s <%s> Subject: %s", toName, toEmail, subject)
		return nil
	}

	from := sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, "["+cfg.EmailSenderName+"] "+subject, to, "", htmlBody)

	res, err := sendgrid.NewSendClient(cfg.SendGridAPIKey).Send(message)
	if err != nil {
		ReportError(err, map[string]interface{}{"area": "email", "to": toEmail, "subject": subject})
		return err
	}
	if res.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
		ReportError(err, map[string]interface{}{"area": "email", "to": toEmail, "subject": subject})
		return err
	}

	log.Printf("[EMAIL] Sent %q to %s", subject, toEmail)
	return nil
}

var pending sync.WaitGroup

func sendAsync(toEmail, toName, subject, htmlBody string) {
	pending.Add(1)
	go func() {
		defer pending.Done()
		SendEmail(toEmail, toName, subject, htmlBody)
	}()
}

// WaitForEmails blocks until queued emails are sent
func WaitForEmails() {
	pending.Wait()
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F6FB; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A8A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.footer { background-color: #F4F6FB; padding: 20px; text-align: center; font-size: 12px; color: #6B7280; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2563EB; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #EFF6FF; padding: 15px; border-radius: 4px; border-left: 4px solid #2563EB; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>EDUHUB</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; %d EduHub. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent, time.Now().Year())
}

func frontendLink(path string) string {
	base := "http://localhost:5173"
	if config.AppConfig != nil && config.AppConfig.FrontendURL != "" {
		base = config.AppConfig.FrontendURL
	}
	return base + path
}

// --- Triggers ---

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>EduHub</strong>! Your account has been created.</p>
		<p>Browse the catalogue and start learning today.</p>
		<a href="%s" class="btn">Explore courses</a>
	`, name, frontendLink("/courses"))

	sendAsync(email, name, "Welcome to EduHub", getEmailTemplate("Welcome Onboard!", body))
}

func SendEnrollmentEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<p>Complete every lesson and required quiz to earn your certificate.</p>
	`, name, courseTitle)

	sendAsync(email, name, "Enrollment confirmed: "+courseTitle, getEmailTemplate("Enrollment Successful", body))
}

func SendPaymentReceiptEmail(email, name, description string, amount int64, currency string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received your payment for <strong>%s</strong>.</p>
		<div class="info-box"><strong>Amount:</strong> %s</div>
	`, name, description, FormatAmount(amount, currency))

	sendAsync(email, name, "Payment receipt", getEmailTemplate("Payment Received", body))
}

func SendCertificateEmail(email, name, courseTitle, certificateNumber string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<div class="info-box">Your certificate number is <strong>%s</strong>.</div>
		<a href="%s" class="btn">Verify certificate</a>
	`, name, courseTitle, certificateNumber, frontendLink("/certificates/"+certificateNumber))

	sendAsync(email, name, "Your certificate for "+courseTitle, getEmailTemplate("Certificate of Completion", body))
}

func SendCertificateRejectedEmail(email, name, courseTitle, reason string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate request for <strong>%s</strong> was not approved.</p>
		<div class="info-box">Reason: %s</div>
	`, name, courseTitle, reason)

	sendAsync(email, name, "Certificate request update", getEmailTemplate("Certificate Request", body))
}

func SendAnnouncementEmail(email, name, courseTitle, title, message string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>A new announcement was posted in <strong>%s</strong>.</p>
		<div class="info-box"><strong>%s</strong><br>%s</div>
	`, name, courseTitle, title, message)

	sendAsync(email, name, "New announcement: "+title, getEmailTemplate("Course Announcement", body))
}

func SendMeetingReminderEmail(email, name, meetingTitle, joinURL string, startsAt time.Time) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> starts at %s.</p>
		<a href="%s" class="btn">Join meeting</a>
	`, name, meetingTitle, startsAt.UTC().Format("Jan 2, 2006 15:04 MST"), joinURL)

	sendAsync(email, name, "Starting soon: "+meetingTitle, getEmailTemplate("Live Session Reminder", body))
}

func SendSubscriptionEndingEmail(email, name, planName string, endsAt time.Time) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> subscription ends on <strong>%s</strong> and will not renew.</p>
		<a href="%s" class="btn">Renew now</a>
	`, name, planName, endsAt.Format("January 2, 2006"), frontendLink("/pricing"))

	sendAsync(email, name, "Your subscription is ending soon", getEmailTemplate("Subscription Ending", body))
}

func SendTicketReplyEmail(email, name, subject, reply, status string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Our team replied to your ticket <strong>%s</strong> (status: %s).</p>
		<div class="info-box">%s</div>
	`, name, subject, status, reply)

	sendAsync(email, name, "Re: "+subject, getEmailTemplate("Support Reply", body))
}

func SendPasswordResetEmail(email, name, code string, validFor time.Duration) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Use the code below to reset your EduHub password.</p>
		<div class="info-box"><strong>%s</strong></div>
		<p>The code expires in %d minutes. If you did not ask for a reset, ignore this email.</p>
	`, name, code, int(validFor.Minutes()))

	sendAsync(email, name, "Your password reset code", getEmailTemplate("Password Reset", body))
}
