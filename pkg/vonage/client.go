package vonage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the working Verify endpoint. The old api.nexmo.com
	// host still works while api.vonage.com returns 403 for this API.
	DefaultBaseURL = "https://api.nexmo.com"

	verifyPath = "/verify/json"
	checkPath  = "/verify/check/json"

	// The Verify API has no dedicated code for the concurrent-verification
	// case; it is only distinguishable by this substring in error_text.
	concurrentVerificationsText = "Concurrent verifications"

	// statusInvalidNumber is returned for undeliverable numbers. The
	// credentials check sends a dummy number on purpose, so this status
	// still proves the key and secret are accepted.
	statusInvalidNumber = "3"

	// testNumber is the dummy destination used by CheckCredentials. No SMS
	// is ever delivered to it.
	testNumber = "1234567890"

	DefaultTimeout     = 30 * time.Second
	credentialsTimeout = 10 * time.Second

	userAgent = "simple-verify/1.0"
)

// Config holds the credentials and request settings for the Verify API.
type Config struct {
	APIKey    string
	APISecret string
	// Brand is the display name shown in the SMS/voice message.
	Brand   string
	BaseURL string
	Timeout time.Duration
}

// ChallengeOutcomeKind classifies the result of a StartVerification call.
type ChallengeOutcomeKind string

const (
	ChallengeStarted           ChallengeOutcomeKind = "started"
	ChallengeAlreadyInProgress ChallengeOutcomeKind = "already_in_progress"
	ChallengeRejected          ChallengeOutcomeKind = "rejected"
	ChallengeProviderError     ChallengeOutcomeKind = "provider_error"
)

// ChallengeOutcome is the typed result of starting a verification.
type ChallengeOutcome struct {
	Kind ChallengeOutcomeKind
	// RequestID identifies the outstanding verification. Always set for
	// ChallengeStarted; set for ChallengeAlreadyInProgress only when the
	// provider includes the existing request id in the error response.
	RequestID string
	// Reason carries provider error text or transport failure detail.
	Reason string
}

// CodeCheckOutcomeKind classifies the result of a CheckCode call.
type CodeCheckOutcomeKind string

const (
	CodeConfirmed     CodeCheckOutcomeKind = "confirmed"
	CodeIncorrect     CodeCheckOutcomeKind = "incorrect"
	CodeProviderError CodeCheckOutcomeKind = "provider_error"
)

// CodeCheckOutcome is the typed result of checking a submitted code.
type CodeCheckOutcome struct {
	Kind   CodeCheckOutcomeKind
	Reason string
}

// Client calls the Vonage Verify REST API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a Verify API client. Zero-value BaseURL and Timeout
// fall back to DefaultBaseURL and DefaultTimeout.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// verifyResponse is the wire shape shared by both Verify endpoints. Status
// is a pointer so a response missing the field is distinguishable from "".
type verifyResponse struct {
	Status    *string `json:"status"`
	RequestID string  `json:"request_id"`
	ErrorText string  `json:"error_text"`
}

// StartVerification asks the provider to send a verification code to the
// given number. The number must already be normalized to digits only.
func (c *Client) StartVerification(ctx context.Context, number string) ChallengeOutcome {
	form := url.Values{
		"api_key":    {c.config.APIKey},
		"api_secret": {c.config.APISecret},
		"number":     {number},
		"brand":      {c.config.Brand},
	}

	resp, err := c.post(ctx, verifyPath, form)
	if err != nil {
		slog.Error("Verify request failed", "err", err)
		return ChallengeOutcome{Kind: ChallengeProviderError, Reason: err.Error()}
	}

	if *resp.Status == "0" {
		slog.Info("Verification started", "requestId", resp.RequestID)
		return ChallengeOutcome{Kind: ChallengeStarted, RequestID: resp.RequestID}
	}

	errorText := resp.ErrorText
	if errorText == "" {
		errorText = "Unknown error"
	}

	if strings.Contains(errorText, concurrentVerificationsText) {
		// A code is already on its way to this number. The provider
		// sometimes includes the existing request_id in the error
		// response, which lets the caller resume that challenge.
		slog.Info("Verification already in progress", "requestId", resp.RequestID)
		return ChallengeOutcome{Kind: ChallengeAlreadyInProgress, RequestID: resp.RequestID, Reason: errorText}
	}

	slog.Warn("Verification rejected", "status", *resp.Status, "errorText", errorText)
	return ChallengeOutcome{Kind: ChallengeRejected, Reason: errorText}
}

// CheckCode verifies a user-submitted code against an outstanding request.
func (c *Client) CheckCode(ctx context.Context, requestID, code string) CodeCheckOutcome {
	form := url.Values{
		"api_key":    {c.config.APIKey},
		"api_secret": {c.config.APISecret},
		"request_id": {requestID},
		"code":       {code},
	}

	resp, err := c.post(ctx, checkPath, form)
	if err != nil {
		slog.Error("Verify check request failed", "err", err, "requestId", requestID)
		return CodeCheckOutcome{Kind: CodeProviderError, Reason: err.Error()}
	}

	if *resp.Status == "0" {
		return CodeCheckOutcome{Kind: CodeConfirmed}
	}

	errorText := resp.ErrorText
	if errorText == "" {
		errorText = "Invalid code"
	}
	slog.Info("Code check failed", "status", *resp.Status, "requestId", requestID)
	return CodeCheckOutcome{Kind: CodeIncorrect, Reason: errorText}
}

// CheckCredentials performs a connectivity test with a dummy number. The
// provider answering with success or invalid-number proves the key and
// secret are accepted; anything else is reported as an error. Uses a
// shorter timeout than real verification calls.
func (c *Client) CheckCredentials(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, credentialsTimeout)
	defer cancel()

	form := url.Values{
		"api_key":    {c.config.APIKey},
		"api_secret": {c.config.APISecret},
		"number":     {testNumber},
		"brand":      {c.config.Brand},
	}

	resp, err := c.post(ctx, verifyPath, form)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if *resp.Status == "0" || *resp.Status == statusInvalidNumber {
		return nil
	}

	errorText := resp.ErrorText
	if errorText == "" {
		errorText = "Unknown error"
	}
	return fmt.Errorf("API error: %s", errorText)
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*verifyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from verification service: %w", err)
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("invalid response from verification service: missing status")
	}

	return &resp, nil
}
