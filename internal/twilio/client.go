package twilio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pathakanu/muditam/internal/otp"
	twilio "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

// Twilio error code for a verification that no longer exists (approved, expired or cancelled).
const codeNotFound = 20404

// verifyAPI is the subset of the Verify v2 service used here.
type verifyAPI interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
	CreateVerificationCheck(serviceSid string, params *verify.CreateVerificationCheckParams) (*verify.VerifyV2VerificationCheck, error)
}

// Client wraps Twilio Verify so it can act as an OTP provider.
type Client struct {
	api        verifyAPI
	serviceSID string
}

// New creates a Twilio Verify client bound to the configured Verify service.
func New(accountSID, authToken, serviceSID string) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	return &Client{api: rest.VerifyV2, serviceSID: serviceSID}
}

// SendOTP starts an SMS verification for mobile.
func (c *Client) SendOTP(ctx context.Context, mobile string) (otp.Result, error) {
	params := &verify.CreateVerificationParams{}
	params.SetTo(e164(mobile))
	params.SetChannel("sms")

	return call(ctx, func() (otp.Result, error) {
		resp, err := c.api.CreateVerification(c.serviceSID, params)
		if err != nil {
			return restErrorResult(err)
		}
		return statusResult(resp.Status, "pending"), nil
	})
}

// VerifyOTP checks code against the pending verification of mobile.
func (c *Client) VerifyOTP(ctx context.Context, mobile, code string) (otp.Result, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(e164(mobile))
	params.SetCode(code)

	return call(ctx, func() (otp.Result, error) {
		resp, err := c.api.CreateVerificationCheck(c.serviceSID, params)
		if err != nil {
			return restErrorResult(err)
		}
		return statusResult(resp.Status, "approved"), nil
	})
}

// call runs fn, giving up when ctx ends first. The SDK takes no context, so an
// abandoned call finishes in the background under the SDK's own HTTP timeout.
func call(ctx context.Context, fn func() (otp.Result, error)) (otp.Result, error) {
	type outcome struct {
		res otp.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := fn()
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return otp.Result{}, fmt.Errorf("twilio verify: %w", ctx.Err())
	case out := <-done:
		return out.res, out.err
	}
}

func statusResult(status *string, want string) otp.Result {
	got := ""
	if status != nil {
		got = *status
	}
	raw := map[string]any{"status": got}
	if got == want {
		return otp.Result{Type: "success", Message: got, Raw: raw}
	}
	return otp.Result{Type: "error", Message: "verification " + got, Raw: raw}
}

// restErrorResult turns Twilio API errors into vendor results; anything else is a transport error.
func restErrorResult(err error) (otp.Result, error) {
	var restErr *twclient.TwilioRestError
	if !errors.As(err, &restErr) {
		return otp.Result{}, fmt.Errorf("twilio verify: %w", err)
	}
	raw := map[string]any{"code": restErr.Code, "status": restErr.Status, "message": restErr.Message}
	message := restErr.Message
	if restErr.Code == codeNotFound {
		message = "otp expired or not found"
	}
	return otp.Result{Type: "error", Message: message, Raw: raw}, nil
}

func e164(number string) string {
	trimmed := strings.TrimSpace(number)
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + trimmed
}
