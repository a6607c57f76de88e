package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "Safar"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1e88e5; margin: 0;">Safar</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 Safar. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "Safar-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

func verificationEmailBody(otp string) string {
	return fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Verify Your Email</h1>
					<p>Hello,</p>
					<p>Welcome to Safar! Use the code below to verify your email address:</p>
					<div style="text-align: center; margin: 30px 0;">
						<span style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #1e88e5;">%s</span>
					</div>
					<p>This code expires in 15 minutes. If you did not create a Safar account, you can ignore this email.</p>
					<p>Best regards,<br>The Safar Team</p>
				</div>`+emailFooter,
		otp)
}

func SendEmailVerificationOTP(email, otp string) error {
	subject := "Verify Your Email - Safar"
	return sendEmail([]string{email}, subject, verificationEmailBody(otp))
}

func passwordResetEmailBody(otp string) string {
	return fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Password Reset</h1>
					<p>Hello,</p>
					<p>We received a request to reset your Safar password. Use the code below:</p>
					<div style="text-align: center; margin: 30px 0;">
						<span style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #1e88e5;">%s</span>
					</div>
					<p>This code expires in 15 minutes. If you did not request a reset, you can ignore this email.</p>
					<p>Best regards,<br>The Safar Team</p>
				</div>`+emailFooter,
		otp)
}

func SendPasswordResetEmail(email, otp string) error {
	subject := "Password Reset Code - Safar"
	return sendEmail([]string{email}, subject, passwordResetEmailBody(otp))
}

func bookingCancelledEmailBody(fromCity, toCity string) string {
	return fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Ride Cancelled</h1>
					<p>Hello,</p>
					<p>Unfortunately, the ride <strong>%s → %s</strong> you booked has been cancelled by the driver.</p>
					<p>Don't worry! You can find another ride on the same route.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/rides" style="background-color: #1e88e5; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Find Another Ride</a>
					</div>
					<p>Best regards,<br>The Safar Team</p>
				</div>`+emailFooter,
		fromCity, toCity, baseURL)
}

func SendBookingCancelledEmail(passengerEmail, fromCity, toCity string) error {
	subject := "Ride Cancelled - Safar"
	return sendEmail([]string{passengerEmail}, subject, bookingCancelledEmailBody(fromCity, toCity))
}
