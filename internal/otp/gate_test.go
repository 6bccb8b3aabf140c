package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGate(t *testing.T, clock *fakeClock) *Gate {
	t.Helper()
	gate, err := NewGate(16, VerifiedTTL, clock.Now)
	require.NoError(t, err)
	return gate
}

func TestGateRecordThenCheck(t *testing.T) {
	t.Parallel()
	gate := newTestGate(t, newFakeClock())

	_, ok := gate.CheckRecent("9000000001")
	assert.False(t, ok)

	gate.RecordVerified("9000000001", StatusAlreadyVerified)
	status, ok := gate.CheckRecent("9000000001")
	require.True(t, ok)
	assert.Equal(t, StatusAlreadyVerified, status)
}

func TestGateExpiresAtTTL(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	gate := newTestGate(t, clock)

	gate.RecordVerified("9000000001", StatusVerified)

	clock.Advance(VerifiedTTL - time.Millisecond)
	_, ok := gate.CheckRecent("9000000001")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = gate.CheckRecent("9000000001")
	assert.False(t, ok, "entry exactly TTL old must be inert")
}

func TestGateOverwriteRefreshesTimestamp(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	gate := newTestGate(t, clock)

	gate.RecordVerified("9000000001", StatusVerified)
	clock.Advance(90 * time.Second)
	gate.RecordVerified("9000000001", StatusAlreadyVerified)
	clock.Advance(90 * time.Second)

	status, ok := gate.CheckRecent("9000000001")
	require.True(t, ok)
	assert.Equal(t, StatusAlreadyVerified, status)
}

func TestGateCapacityEvictsOldest(t *testing.T) {
	t.Parallel()
	gate, err := NewGate(2, VerifiedTTL, newFakeClock().Now)
	require.NoError(t, err)

	gate.RecordVerified("a", StatusVerified)
	gate.RecordVerified("b", StatusVerified)
	gate.RecordVerified("c", StatusVerified)

	_, ok := gate.CheckRecent("a")
	assert.False(t, ok)
	assert.Equal(t, 2, gate.Len())
}

func TestGateSweepDropsExpired(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	gate := newTestGate(t, clock)

	gate.RecordVerified("old", StatusVerified)
	clock.Advance(VerifiedTTL)
	gate.RecordVerified("fresh", StatusVerified)

	assert.Equal(t, 1, gate.Sweep())
	assert.Equal(t, 1, gate.Len())
	_, ok := gate.CheckRecent("fresh")
	assert.True(t, ok)
}

func TestGateSweeperRunsEveryTTL(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	gate, err := NewGate(16, 20*time.Millisecond, clock.Now)
	require.NoError(t, err)

	gate.RecordVerified("9876543210", StatusVerified)
	clock.Advance(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gate.RunSweeper(ctx)

	assert.Eventually(t, func() bool { return gate.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNewGateRejectsZeroSize(t *testing.T) {
	t.Parallel()
	_, err := NewGate(0, VerifiedTTL, nil)
	assert.Error(t, err)
}
