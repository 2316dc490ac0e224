// internal/carrier/telnyx.go
package carrier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Carrier sends one SMS and returns the carrier's message id.
type Carrier interface {
	Send(from, to, text string) (messageID string, err error)
}

// TelnyxClient talks to the Telnyx messages API with bearer auth.
type TelnyxClient struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewTelnyxClient(apiKey string) *TelnyxClient {
	return &TelnyxClient{
		APIKey:  apiKey,
		BaseURL: "https://api.telnyx.com",
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type telnyxRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type telnyxResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (c *TelnyxClient) Send(from, to, text string) (string, error) {
	body, err := json.Marshal(telnyxRequest{From: from, To: to, Text: text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v2/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed telnyxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode carrier response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if len(parsed.Errors) > 0 {
			return "", fmt.Errorf("carrier error: %s", parsed.Errors[0].Detail)
		}
		return "", fmt.Errorf("carrier error: status %d", resp.StatusCode)
	}

	return parsed.Data.ID, nil
}
