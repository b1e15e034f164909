package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeremiapane/photobooth-app/config"
	"github.com/yeremiapane/photobooth-app/utils"
)

// SMSService mengirim SMS lewat Twilio REST API. Tanpa kredensial, service berjalan
// dalam mode simulasi dan setiap pesan dianggap terkirim.
type SMSService struct {
	config     config.TwilioConfig
	httpClient *http.Client
	simulated  bool
}

type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewSMSService(cfg config.TwilioConfig) *SMSService {
	simulated := cfg.AccountSID == "" || cfg.AuthToken == ""
	if simulated {
		utils.InfoLogger.Warn("SMS service not configured, running in simulation mode")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}

	return &SMSService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		simulated: simulated,
	}
}

func (s *SMSService) Simulated() bool {
	return s.simulated
}

func (s *SMSService) Send(ctx context.Context, to, text string) (DeliveryResult, error) {
	if s.simulated {
		utils.InfoLogger.Printf("[SIMULATED SMS] to=%s message=%q", to, text)
		return DeliveryResult{Success: true, Simulated: true}, nil
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.config.BaseURL, "/"), url.PathEscape(s.config.AccountSID))

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.config.PhoneNumber)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.config.AccountSID, s.config.AuthToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("error reading response: %w", err)
	}

	var result twilioMessageResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			utils.ErrorLogger.Printf("Unexpected Twilio response: %s", string(body))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		utils.ErrorLogger.Printf("Twilio error (status %d): %s", resp.StatusCode, result.Message)
		return DeliveryResult{Success: false}, fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, result.Message)
	}

	utils.InfoLogger.Printf("SMS sent to %s: %s", to, result.SID)
	return DeliveryResult{Success: true, ProviderID: result.SID}, nil
}

// SendWelcome mengirim SMS sambutan setelah registrasi.
func (s *SMSService) SendWelcome(ctx context.Context, to, userName string) (DeliveryResult, error) {
	return s.Send(ctx, to, FormatWelcomeSMS(userName))
}
