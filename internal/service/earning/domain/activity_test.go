package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validEvent(typ ActivityType) *ActivityEvent {
	e := &ActivityEvent{
		EventID:    "evt-1",
		OwnerID:    "owner-1",
		Type:       typ,
		OccurredAt: time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC),
	}
	switch typ {
	case ActivityEventCheckin:
		e.CheckinKind = CheckinRoutine
	case ActivityRunCompleted:
		e.DistanceKM = 5
	}
	return e
}

func TestComputeAwardCheckins(t *testing.T) {
	e := validEvent(ActivityEventCheckin)
	award, err := ComputeAward(e)
	require.NoError(t, err)
	require.Equal(t, Award{Points: 3, XP: 300, Cause: "routine_activity"}, award)

	e.CheckinKind = CheckinSpecial
	award, err = ComputeAward(e)
	require.NoError(t, err)
	require.Equal(t, Award{Points: 5, XP: 500, Cause: "special_activity"}, award)
}

func TestComputeAwardRaceFinish(t *testing.T) {
	award, err := ComputeAward(validEvent(ActivityRaceFinished))
	require.NoError(t, err)
	require.Equal(t, Award{Points: 10, XP: 1000, Cause: "race_completion"}, award)
}

func TestRunPointsDistanceBands(t *testing.T) {
	tests := []struct {
		distanceKM float64
		points     int64
	}{
		{0.5, 1},
		{1.99, 1},
		{2, 3},
		{4.99, 3},
		{5, 5},
		{9.99, 5},
		{10, 10},
		{20.99, 10},
		{21, 15}, // 全马/半马以上
		{42.2, 15},
	}
	for _, tc := range tests {
		require.Equal(t, tc.points, RunPoints(tc.distanceKM), "distance=%v", tc.distanceKM)
	}
}

func TestComputeAwardRunUsesRoutineCause(t *testing.T) {
	e := validEvent(ActivityRunCompleted)
	e.DistanceKM = 12

	award, err := ComputeAward(e)
	require.NoError(t, err)
	require.Equal(t, Award{Points: 10, XP: 1000, Cause: "routine_activity"}, award)
}

func TestValidate(t *testing.T) {
	e := validEvent(ActivityEventCheckin)
	e.EventID = ""
	require.ErrorIs(t, e.Validate(), ErrMalformedEvent)

	e = validEvent(ActivityEventCheckin)
	e.CheckinKind = CheckinKind("vip")
	require.ErrorIs(t, e.Validate(), ErrMalformedEvent)

	e = validEvent(ActivityRunCompleted)
	e.DistanceKM = 0
	require.ErrorIs(t, e.Validate(), ErrMalformedEvent)

	e = validEvent(ActivityEventCheckin)
	e.Type = ActivityType("swim_completed")
	require.ErrorIs(t, e.Validate(), ErrUnknownActivity)

	require.NoError(t, validEvent(ActivityRaceFinished).Validate())
}
