package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	sendResult   Result
	sendErr      error
	verifyResult Result
	verifyErr    error

	sendCalls   []string
	verifyCalls []string
	deadlineSet bool
}

func (f *fakeProvider) SendOTP(ctx context.Context, mobile string) (Result, error) {
	f.sendCalls = append(f.sendCalls, mobile)
	return f.sendResult, f.sendErr
}

func (f *fakeProvider) VerifyOTP(ctx context.Context, mobile, code string) (Result, error) {
	_, f.deadlineSet = ctx.Deadline()
	f.verifyCalls = append(f.verifyCalls, mobile+":"+code)
	return f.verifyResult, f.verifyErr
}

func newTestService(t *testing.T, provider Provider) (*Service, *Gate) {
	t.Helper()
	gate := newTestGate(t, newFakeClock())
	svc := NewService(provider, gate, Options{
		CountryCode: "91",
		Timeout:     time.Second,
		TestPhone:   "1234567890",
		TestCode:    "098765",
	}, zap.NewNop().Sugar())
	return svc, gate
}

func TestSendPrefixesCountryCode(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{sendResult: Result{Type: "success"}}
	svc, _ := newTestService(t, provider)

	out, err := svc.Send(context.Background(), " 9876543210 ")
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "sent", out.Status)
	assert.Equal(t, []string{"919876543210"}, provider.sendCalls)
}

func TestSendValidationAndTestPhone(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{}
	svc, _ := newTestService(t, provider)

	_, err := svc.Send(context.Background(), "")
	assert.ErrorIs(t, err, ErrPhoneRequired)

	out, err := svc.Send(context.Background(), "1234567890")
	require.NoError(t, err)
	assert.True(t, out.Test)
	assert.Empty(t, provider.sendCalls)
}

func TestSendVendorRejectionAndTransportError(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{sendResult: Result{Type: "error", Message: "Invalid mobile"}}
	svc, _ := newTestService(t, provider)

	out, err := svc.Send(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "Invalid mobile", out.Message)

	provider.sendErr = errors.New("dial tcp: timeout")
	_, err = svc.Send(context.Background(), "9876543210")
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestVerifySuccessIsCached(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{verifyResult: Result{Type: "success", Message: "OTP verified success"}}
	svc, gate := newTestService(t, provider)

	out, err := svc.Verify(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, VerifyOutcome{OK: true, Status: StatusVerified}, out)
	assert.True(t, provider.deadlineSet)

	out, err = svc.Verify(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.True(t, out.Cached)
	assert.Equal(t, StatusVerified, out.Status)
	assert.Len(t, provider.verifyCalls, 1)

	status, ok := gate.CheckRecent("9876543210")
	require.True(t, ok)
	assert.Equal(t, StatusVerified, status)
}

func TestVerifyAlreadyVerifiedCountsAsSuccess(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{verifyResult: Result{Type: "error", Message: "Mobile no. Already Verified"}}
	svc, gate := newTestService(t, provider)

	out, err := svc.Verify(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, StatusAlreadyVerified, out.Status)

	status, ok := gate.CheckRecent("9876543210")
	require.True(t, ok)
	assert.Equal(t, StatusAlreadyVerified, status)
}

func TestVerifyFailureIsNotCached(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{verifyResult: Result{Type: "error", Message: "OTP not match"}}
	svc, gate := newTestService(t, provider)

	out, err := svc.Verify(context.Background(), "9876543210", "000000")
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "OTP not match", out.Message)

	_, ok := gate.CheckRecent("9876543210")
	assert.False(t, ok)

	provider.verifyResult = Result{Type: "error"}
	out, err = svc.Verify(context.Background(), "9876543210", "000000")
	require.NoError(t, err)
	assert.Equal(t, "invalid_otp", out.Message)
}

func TestVerifyTransportErrors(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{verifyErr: errors.New("upstream said: already verified")}
	svc, gate := newTestService(t, provider)

	out, err := svc.Verify(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyVerified, out.Status)
	_, ok := gate.CheckRecent("9876543210")
	assert.True(t, ok)

	provider.verifyErr = context.DeadlineExceeded
	_, err = svc.Verify(context.Background(), "9000000000", "123456")
	assert.ErrorIs(t, err, ErrVerifyFailed)
}

func TestVerifyTestNumber(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{verifyResult: Result{Type: "error"}}
	svc, _ := newTestService(t, provider)

	out, err := svc.Verify(context.Background(), "1234567890", "098765")
	require.NoError(t, err)
	assert.True(t, out.Test)
	assert.Empty(t, provider.verifyCalls)

	_, err = svc.Verify(context.Background(), "1234567890", "")
	assert.ErrorIs(t, err, ErrCodeRequired)
}
