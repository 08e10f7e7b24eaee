package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DialogGateway implements SMS sending via Dialog eSMS API
type DialogGateway struct {
	apiURL   string
	username string
	password string
	mask     string
	client   *http.Client

	// Token management
	token       string
	tokenMutex  sync.RWMutex
	tokenExpiry time.Time
}

// DialogConfig holds configuration for Dialog SMS Gateway
type DialogConfig struct {
	APIURL   string
	Username string
	Password string
	Mask     string
}

// NewDialogGateway creates a new Dialog SMS Gateway client
func NewDialogGateway(config DialogConfig) *DialogGateway {
	return &DialogGateway{
		apiURL:   config.APIURL,
		username: config.Username,
		password: config.Password,
		mask:     config.Mask,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoginRequest represents the login request structure
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response structure
type LoginResponse struct {
	Status     string `json:"status"`
	Comment    string `json:"comment"`
	Token      string `json:"token"`
	Expiration int    `json:"expiration"` // Token expiry in seconds
	ErrCode    string `json:"errCode"`
}

// SMSRecipient represents a single SMS recipient
type SMSRecipient struct {
	Mobile string `json:"mobile"`
}

// SendSMSRequest represents the SMS sending request structure
type SendSMSRequest struct {
	MSISDN        []SMSRecipient `json:"msisdn"`
	Message       string         `json:"message"`
	SourceAddress string         `json:"sourceAddress,omitempty"`
	TransactionID int64          `json:"transaction_id"`
	PaymentMethod int            `json:"payment_method,omitempty"` // 0 = wallet, 4 = package
}

// SendSMSResponse represents the SMS sending response structure
type SendSMSResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Data    struct {
		CampaignID     int     `json:"campaignId"`
		CampaignCost   float64 `json:"campaignCost"`
		WalletBalance  float64 `json:"walletBalance"`
		InvalidNumbers int     `json:"invalidNumbers"`
	} `json:"data"`
	ErrCode string `json:"errCode"`
}

// getAccessToken logs in and retrieves an access token
func (d *DialogGateway) getAccessToken() error {
	loginReq := LoginRequest{
		Username: d.username,
		Password: d.password,
	}

	jsonData, err := json.Marshal(loginReq)
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	url := fmt.Sprintf("%s/login", d.apiURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	if loginResp.Status != "success" {
		return fmt.Errorf("login failed: %s (error code: %s)", loginResp.Comment, loginResp.ErrCode)
	}

	d.tokenMutex.Lock()
	d.token = loginResp.Token
	d.tokenExpiry = time.Now().Add(time.Duration(loginResp.Expiration) * time.Second)
	d.tokenMutex.Unlock()

	return nil
}

// isTokenValid checks if the current token is still valid
func (d *DialogGateway) isTokenValid() bool {
	d.tokenMutex.RLock()
	defer d.tokenMutex.RUnlock()

	if d.token == "" {
		return false
	}

	// Consider token invalid 5 minutes before actual expiry
	return time.Now().Before(d.tokenExpiry.Add(-5 * time.Minute))
}

// ensureValidToken ensures we have a valid access token
func (d *DialogGateway) ensureValidToken() error {
	if d.isTokenValid() {
		return nil
	}

	return d.getAccessToken()
}

// FormatPhoneForDialog converts phone number to Dialog's 9-digit format
// Input: "0771234567" (10 digits) or "94771234567" (11 digits) or "+94771234567"
// Output: "771234567" (9 digits without prefix)
func FormatPhoneForDialog(phone string) (string, error) {
	// Remove all non-digits
	re := regexp.MustCompile(`[^0-9]`)
	phone = re.ReplaceAllString(phone, "")

	// Remove country code if present
	if strings.HasPrefix(phone, "94") && len(phone) == 11 {
		phone = phone[2:]
	}

	// Remove leading 0 if present
	if strings.HasPrefix(phone, "0") && len(phone) == 10 {
		phone = phone[1:]
	}

	if len(phone) != 9 {
		return "", fmt.Errorf("invalid phone number length after formatting: %d digits (expected 9)", len(phone))
	}

	// Validate Sri Lankan mobile prefix (07X)
	if !strings.HasPrefix(phone, "7") {
		return "", fmt.Errorf("invalid Sri Lankan mobile prefix: must start with 7")
	}

	return phone, nil
}

// SendMessage sends a text message to a single phone number
func (d *DialogGateway) SendMessage(phone string, message string) (int64, error) {
	if err := d.ensureValidToken(); err != nil {
		return 0, fmt.Errorf("failed to get access token: %w", err)
	}

	formattedPhone, err := FormatPhoneForDialog(phone)
	if err != nil {
		return 0, fmt.Errorf("failed to format phone number: %w", err)
	}

	return d.send([]SMSRecipient{{Mobile: formattedPhone}}, message)
}

// SendBulk sends a message to multiple recipients (max 1000 recommended).
// Invalid numbers are skipped.
func (d *DialogGateway) SendBulk(phones []string, message string) (int64, error) {
	if err := d.ensureValidToken(); err != nil {
		return 0, fmt.Errorf("failed to get access token: %w", err)
	}

	recipients := make([]SMSRecipient, 0, len(phones))
	for _, phone := range phones {
		formattedPhone, err := FormatPhoneForDialog(phone)
		if err != nil {
			continue
		}
		recipients = append(recipients, SMSRecipient{Mobile: formattedPhone})
	}

	if len(recipients) == 0 {
		return 0, fmt.Errorf("no valid recipients after formatting")
	}

	return d.send(recipients, message)
}

// send dispatches a campaign to the Dialog API
func (d *DialogGateway) send(recipients []SMSRecipient, message string) (int64, error) {
	// Transaction ID is the timestamp in microseconds
	transactionID := time.Now().UnixMicro()

	smsReq := SendSMSRequest{
		MSISDN:        recipients,
		Message:       message,
		SourceAddress: d.mask,
		TransactionID: transactionID,
		PaymentMethod: 0,
	}

	jsonData, err := json.Marshal(smsReq)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	url := fmt.Sprintf("%s/sms", d.apiURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("failed to create SMS request: %w", err)
	}

	d.tokenMutex.RLock()
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", d.token))
	d.tokenMutex.RUnlock()
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read SMS response: %w", err)
	}

	var smsResp SendSMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		return 0, fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status != "success" {
		return 0, fmt.Errorf("SMS sending failed: %s (error code: %s)", smsResp.Comment, smsResp.ErrCode)
	}

	return transactionID, nil
}

// GetName returns the name of this SMS gateway
func (d *DialogGateway) GetName() string {
	return "Dialog API v2 Gateway"
}
