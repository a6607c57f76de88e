package utils

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var (
	smsAPIBase  = os.Getenv("ESKIZ_API_URL")
	smsAPIToken = os.Getenv("ESKIZ_API_TOKEN")
	smsFrom     = os.Getenv("ESKIZ_SENDER")
)

func sendSMS(message string, recipients []string) error {
	if smsAPIToken == "" {
		return fmt.Errorf("SMS API token not set")
	}

	baseURL := smsAPIBase
	if baseURL == "" {
		baseURL = "https://notify.eskiz.uz/api/message/sms/send"
	}

	for _, to := range recipients {
		// Prepare the form data
		data := url.Values{}
		data.Set("mobile_phone", strings.TrimPrefix(to, "+"))
		data.Set("message", message)
		if smsFrom != "" {
			data.Set("from", smsFrom)
		}

		req, err := http.NewRequest("POST", baseURL, strings.NewReader(data.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %v", err)
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+smsAPIToken)
		req.Header.Set("Accept", "application/json")

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
		}

		log.Printf("Successfully sent SMS to %s", to)
	}

	return nil
}

func SendPasswordResetSMS(phone, otp string) error {
	msg := fmt.Sprintf("Safar: your password reset code is %s. It expires in 15 minutes.", otp)
	return sendSMS(msg, []string{phone})
}

func SendBookingConfirmedSMS(passengerPhone, driverName, carPlate string) error {
	msg := fmt.Sprintf("Safar: your booking has been confirmed by driver %s (car %s).",
		driverName, carPlate)
	return sendSMS(msg, []string{passengerPhone})
}

func SendRideCancelledSMS(passengerPhone, fromCity, toCity string) error {
	msg := fmt.Sprintf("Safar: the ride %s - %s you booked has been cancelled. Open the app to find another ride.",
		fromCity, toCity)
	return sendSMS(msg, []string{passengerPhone})
}
