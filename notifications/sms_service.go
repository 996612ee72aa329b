package notifications

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/anjiri1684/fundipay/configs"
)

type AfricasTalkingService struct {
	APIKey   string
	Username string
	SenderID string
}

var SMSClient *AfricasTalkingService

const atMessagingURL = "https://api.africastalking.com/version1/messaging"

func InitSMSService() {
	apiKey := config.Config("AT_API_KEY")
	username := config.Config("AT_USERNAME")
	senderID := config.Config("AT_SENDER_ID")

	if apiKey == "" || username == "" {
		log.Println("⚠️ SMS service not configured. Missing API Key or Username.")
		SMSClient = nil
		return
	}

	SMSClient = &AfricasTalkingService{
		APIKey:   apiKey,
		Username: username,
		SenderID: senderID,
	}
	log.Println("✅ SMS service initialized successfully.")
}

func (s *AfricasTalkingService) send(phone, message string) error {
	form := url.Values{}
	form.Set("username", s.Username)
	form.Set("to", "+"+phone)
	form.Set("message", message)
	if s.SenderID != "" {
		form.Set("from", s.SenderID)
	}

	req, err := http.NewRequest("POST", atMessagingURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("apiKey", s.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		log.Printf("Africa's Talking API error: Status %d, Body: %s", resp.StatusCode, string(body))
		return nil
	}

	return nil
}

// SendSMS is fire-and-forget: a delivery failure is logged and dropped,
// it never blocks or fails a payment state transition.
func SendSMS(phone, message string) {
	if SMSClient == nil {
		log.Println("SMS client not initialized, skipping SMS send.")
		return
	}

	if err := SMSClient.send(phone, message); err != nil {
		log.Printf("🔥 Failed to send SMS to %s: %v", phone, err)
		return
	}

	log.Printf("✅ SMS sent successfully to %s", phone)
}
