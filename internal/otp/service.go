package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrPhoneRequired is returned when a request carries no phone number.
	ErrPhoneRequired = errors.New("phone required")
	// ErrCodeRequired is returned when a verify request carries no code.
	ErrCodeRequired = errors.New("phone and otp required")
	// ErrSendFailed wraps transport failures while requesting an OTP.
	ErrSendFailed = errors.New("otp_send_failed")
	// ErrVerifyFailed wraps transport failures while checking an OTP.
	ErrVerifyFailed = errors.New("verify_failed")
)

const alreadyVerifiedMarker = "already verified"

// Result is the vendor's answer to a send or verify call.
type Result struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Raw     map[string]any `json:"-"`
}

// Success reports whether the vendor accepted the call.
func (r Result) Success() bool {
	return r.Type == "success"
}

// AlreadyVerified reports whether the vendor said the code was consumed before.
func (r Result) AlreadyVerified() bool {
	return IsAlreadyVerified(r.Message)
}

// IsAlreadyVerified checks a vendor message for the "already verified" signal, ignoring case.
func IsAlreadyVerified(message string) bool {
	return strings.Contains(strings.ToLower(message), alreadyVerifiedMarker)
}

// Provider is an OTP vendor. Mobile numbers are country-code prefixed.
// A non-success answer is a Result, only transport failures are errors.
type Provider interface {
	SendOTP(ctx context.Context, mobile string) (Result, error)
	VerifyOTP(ctx context.Context, mobile, code string) (Result, error)
}

// Options configures a Service.
type Options struct {
	CountryCode string
	Timeout     time.Duration
	TestPhone   string
	TestCode    string
}

// SendOutcome is the answer to a send request.
type SendOutcome struct {
	OK      bool
	Status  string
	Test    bool
	Message string
	Raw     map[string]any
}

// VerifyOutcome is the answer to a verify request.
type VerifyOutcome struct {
	OK      bool
	Status  Status
	Cached  bool
	Test    bool
	Message string
	Raw     map[string]any
}

// Service runs the send/verify protocol in front of an OTP vendor.
type Service struct {
	provider Provider
	gate     *Gate
	opts     Options
	logger   *zap.SugaredLogger
}

// NewService builds a Service around provider and gate.
func NewService(provider Provider, gate *Gate, opts Options, logger *zap.SugaredLogger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Service{provider: provider, gate: gate, opts: opts, logger: logger}
}

func (s *Service) mobile(phone string) string {
	return s.opts.CountryCode + phone
}

func (s *Service) isTestPhone(phone string) bool {
	return s.opts.TestPhone != "" && phone == s.opts.TestPhone
}

// Send asks the vendor to deliver a code to phone.
func (s *Service) Send(ctx context.Context, phone string) (SendOutcome, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return SendOutcome{}, ErrPhoneRequired
	}
	if s.isTestPhone(phone) {
		return SendOutcome{OK: true, Status: "sent", Test: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	res, err := s.provider.SendOTP(ctx, s.mobile(phone))
	if err != nil {
		s.logger.Errorw("otp send failed", "phone", phone, "error", err)
		return SendOutcome{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if res.Success() {
		return SendOutcome{OK: true, Status: "sent"}, nil
	}
	return SendOutcome{OK: false, Message: fallback(res.Message, "otp_send_failed"), Raw: res.Raw}, nil
}

// Verify checks code for phone. Recently verified phones are answered from the gate
// without calling the vendor. A vendor "already verified" answer counts as success.
func (s *Service) Verify(ctx context.Context, phone, code string) (VerifyOutcome, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		return VerifyOutcome{}, ErrCodeRequired
	}

	if status, ok := s.gate.CheckRecent(phone); ok {
		return VerifyOutcome{OK: true, Status: status, Cached: true}, nil
	}

	if s.isTestPhone(phone) && code == s.opts.TestCode {
		s.gate.RecordVerified(phone, StatusVerified)
		return VerifyOutcome{OK: true, Status: StatusVerified, Test: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	res, err := s.provider.VerifyOTP(ctx, s.mobile(phone), code)
	if err != nil {
		if IsAlreadyVerified(err.Error()) {
			s.gate.RecordVerified(phone, StatusAlreadyVerified)
			return VerifyOutcome{OK: true, Status: StatusAlreadyVerified}, nil
		}
		s.logger.Errorw("otp verify failed", "phone", phone, "error", err)
		return VerifyOutcome{}, fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}

	if res.Success() || res.AlreadyVerified() {
		status := StatusVerified
		if res.AlreadyVerified() {
			status = StatusAlreadyVerified
		}
		s.gate.RecordVerified(phone, status)
		return VerifyOutcome{OK: true, Status: status}, nil
	}

	return VerifyOutcome{OK: false, Message: fallback(res.Message, "invalid_otp"), Raw: res.Raw}, nil
}

func fallback(primary, secondary string) string {
	if strings.TrimSpace(primary) == "" {
		return secondary
	}
	return primary
}
