package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewPointGrantTTLByCause(t *testing.T) {
	tests := []struct {
		cause Cause
		ttl   time.Duration
	}{
		{CauseRoutineActivity, 30 * 24 * time.Hour},
		{CauseSpecialActivity, 60 * 24 * time.Hour},
		{CauseRaceCompletion, 365 * 24 * time.Hour},
		{CausePurchaseRefund, 30 * 24 * time.Hour},
	}
	for _, tc := range tests {
		g, err := NewPointGrant("owner-1", 10, tc.cause, testNow)
		require.NoError(t, err)
		require.Equal(t, testNow.Add(tc.ttl), g.ExpiresAt, "cause=%s", tc.cause)
		require.Equal(t, int64(10), g.Amount)
		require.Equal(t, int64(10), g.Remaining)
		require.NotEmpty(t, g.ID)
	}
}

func TestNewPointGrantRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewPointGrant("owner-1", 0, CauseRoutineActivity, testNow)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPointGrant("owner-1", -5, CauseRoutineActivity, testNow)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewPointGrantRejectsUnknownCause(t *testing.T) {
	_, err := NewPointGrant("owner-1", 10, Cause("lottery"), testNow)
	require.ErrorIs(t, err, ErrUnknownCause)
}

func TestIsActiveAtExpiryBoundary(t *testing.T) {
	g := mustGrant(t, "owner-1", 10, CauseRoutineActivity, testNow)

	require.True(t, g.IsActive(g.ExpiresAt.Add(-time.Second)))
	// 过期时刻本身不再可用
	require.False(t, g.IsActive(g.ExpiresAt))
	require.False(t, g.IsActive(g.ExpiresAt.Add(time.Second)))
}
