// Package push delivers notifications through the Expo push service.
package push

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultURL is Expo's push send endpoint.
const DefaultURL = "https://exp.host/--/api/v2/push/send"

// ErrInvalidToken is returned for destinations failing IsExpoPushToken.
var ErrInvalidToken = errors.New("push: invalid expo push token")

// Message is one notification for one device.
type Message struct {
	To    string `json:"to"`
	Sound string `json:"sound,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// Ticket is Expo's immediate answer for one message.
type Ticket struct {
	ID      string         `json:"id,omitempty"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type sendResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Client posts messages to Expo.
type Client struct {
	url         string
	accessToken string
	http        *http.Client
}

// NewClient creates a Client. An empty url uses DefaultURL.
func NewClient(url, accessToken string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: url, accessToken: accessToken, http: &http.Client{Timeout: timeout}}
}

// Send delivers msg and returns its ticket. Receipts are not followed up.
func (c *Client) Send(ctx context.Context, msg Message) (Ticket, error) {
	if !IsExpoPushToken(msg.To) {
		return Ticket{}, fmt.Errorf("%w: %q", ErrInvalidToken, msg.To)
	}

	body, err := json.Marshal([]Message{msg})
	if err != nil {
		return Ticket{}, fmt.Errorf("push: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Ticket{}, fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Ticket{}, fmt.Errorf("push: send: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Ticket{}, fmt.Errorf("push: read response: %w", err)
	}

	var out sendResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Ticket{}, fmt.Errorf("push: decode response (status %d): %w", resp.StatusCode, err)
	}
	if len(out.Errors) > 0 {
		return Ticket{}, fmt.Errorf("push: expo %s: %s", out.Errors[0].Code, out.Errors[0].Message)
	}
	if resp.StatusCode/100 != 2 {
		return Ticket{}, fmt.Errorf("push: expo returned status %d", resp.StatusCode)
	}
	if len(out.Data) == 0 {
		return Ticket{}, errors.New("push: expo returned no ticket")
	}

	ticket := out.Data[0]
	if ticket.Status == "error" {
		return ticket, fmt.Errorf("push: ticket error: %s", ticket.Message)
	}
	return ticket, nil
}
