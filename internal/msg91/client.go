// Package msg91 talks to the MSG91 OTP API.
package msg91

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pathakanu/muditam/internal/otp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client sends and verifies OTPs through MSG91.
type Client struct {
	baseURL    string
	authKey    string
	templateID string
	sender     string
	http       *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	AuthKey    string
	TemplateID string
	Sender     string
	Timeout    time.Duration
}

// New creates a Client with a keep-alive transport shared by all calls.
func New(opts Options) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 50
	transport.MaxConnsPerHost = 50

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		authKey:    opts.AuthKey,
		templateID: opts.TemplateID,
		sender:     opts.Sender,
		http:       &http.Client{Transport: transport, Timeout: timeout},
	}
}

type sendRequest struct {
	Mobile     string `json:"mobile"`
	Sender     string `json:"sender"`
	TemplateID string `json:"template_id"`
	OTPLength  string `json:"otp_length"`
	OTPExpiry  string `json:"otp_expiry"`
}

// SendOTP asks MSG91 to text a fresh 6 digit code to mobile.
func (c *Client) SendOTP(ctx context.Context, mobile string) (otp.Result, error) {
	body, err := json.Marshal(sendRequest{
		Mobile:     mobile,
		Sender:     c.sender,
		TemplateID: c.templateID,
		OTPLength:  "6",
		OTPExpiry:  "120",
	})
	if err != nil {
		return otp.Result{}, fmt.Errorf("msg91: encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v5/otp", bytes.NewReader(body))
	if err != nil {
		return otp.Result{}, fmt.Errorf("msg91: build send request: %w", err)
	}
	return c.do(req)
}

// VerifyOTP checks code against the last code sent to mobile.
func (c *Client) VerifyOTP(ctx context.Context, mobile, code string) (otp.Result, error) {
	q := url.Values{}
	q.Set("otp", code)
	q.Set("mobile", mobile)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v5/otp/verify?"+q.Encode(), nil)
	if err != nil {
		return otp.Result{}, fmt.Errorf("msg91: build verify request: %w", err)
	}
	return c.do(req)
}

// do executes req and decodes the body whatever the status code; MSG91 reports
// failures in the body, so only transport and decoding problems are errors.
func (c *Client) do(req *http.Request) (otp.Result, error) {
	req.Header.Set("authkey", c.authKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return otp.Result{}, fmt.Errorf("msg91: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return otp.Result{}, fmt.Errorf("msg91: read response: %w", err)
	}

	raw := map[string]any{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return otp.Result{}, fmt.Errorf("msg91: decode response (status %d): %w", resp.StatusCode, err)
		}
	}

	res := otp.Result{Raw: raw}
	res.Type, _ = raw["type"].(string)
	res.Message, _ = raw["message"].(string)
	return res, nil
}
