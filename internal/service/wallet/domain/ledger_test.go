package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustGrant(t *testing.T, ownerID string, amount int64, cause Cause, grantedAt time.Time) *PointGrant {
	t.Helper()
	g, err := NewPointGrant(ownerID, amount, cause, grantedAt)
	require.NoError(t, err)
	return g
}

func TestPlanConsumptionEarliestExpiryFirst(t *testing.T) {
	// 第 1 天发 5 点，第 3 天发 5 点，同为 30 天有效期 => 先发的先过期
	a := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	b := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow.Add(2*24*time.Hour))
	grants := []*PointGrant{b, a} // 乱序传入

	plan, err := PlanConsumption(grants, 7, testNow.Add(3*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	require.Equal(t, a.ID, plan[0].GrantID)
	require.Equal(t, int64(5), plan[0].Points)
	require.Equal(t, b.ID, plan[1].GrantID)
	require.Equal(t, int64(2), plan[1].Points)

	ApplyPlan(grants, plan)
	require.Equal(t, int64(0), a.Remaining)
	require.Equal(t, int64(3), b.Remaining)
}

func TestPlanConsumptionAllOrNothing(t *testing.T) {
	a := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	b := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	grants := []*PointGrant{a, b}

	plan, err := PlanConsumption(grants, 11, testNow)
	require.ErrorIs(t, err, ErrInsufficientPoints)
	require.Nil(t, plan)

	// 失败的消费不得留下任何部分扣减
	require.Equal(t, int64(5), a.Remaining)
	require.Equal(t, int64(5), b.Remaining)
	require.Equal(t, int64(10), TotalAvailable(grants, testNow))
}

func TestPlanConsumptionZeroIsNoop(t *testing.T) {
	grants := []*PointGrant{mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)}

	plan, err := PlanConsumption(grants, 0, testNow)
	require.NoError(t, err)
	require.Empty(t, plan)
}

func TestPlanConsumptionNegativeRejected(t *testing.T) {
	_, err := PlanConsumption(nil, -1, testNow)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPlanConsumptionSkipsExpiredAndDrained(t *testing.T) {
	expired := mustGrant(t, "owner-1", 100, CauseRoutineActivity, testNow.Add(-31*24*time.Hour))
	drained := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	drained.Remaining = 0
	live := mustGrant(t, "owner-1", 3, CauseRaceCompletion, testNow)
	grants := []*PointGrant{expired, drained, live}

	require.Equal(t, int64(3), TotalAvailable(grants, testNow))

	plan, err := PlanConsumption(grants, 3, testNow)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	require.Equal(t, live.ID, plan[0].GrantID)

	_, err = PlanConsumption(grants, 4, testNow)
	require.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestPlanConsumptionTieBreakDeterministic(t *testing.T) {
	// 同一时刻、同一原因发放的两笔 grant：平局按 ID 升序，结果完全确定
	a := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	b := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	lo, hi := a, b
	if b.ID < a.ID {
		lo, hi = b, a
	}

	plan1, err := PlanConsumption([]*PointGrant{a, b}, 6, testNow)
	require.NoError(t, err)
	plan2, err := PlanConsumption([]*PointGrant{b, a}, 6, testNow)
	require.NoError(t, err)

	require.Equal(t, plan1, plan2)
	require.Equal(t, lo.ID, plan1[0].GrantID)
	require.Equal(t, int64(5), plan1[0].Points)
	require.Equal(t, hi.ID, plan1[1].GrantID)
	require.Equal(t, int64(1), plan1[1].Points)
}

func TestApplyPlanConservation(t *testing.T) {
	a := mustGrant(t, "owner-1", 7, CauseRoutineActivity, testNow)
	b := mustGrant(t, "owner-1", 4, CauseSpecialActivity, testNow)
	grants := []*PointGrant{a, b}
	before := TotalAvailable(grants, testNow)

	plan, err := PlanConsumption(grants, 9, testNow)
	require.NoError(t, err)
	ApplyPlan(grants, plan)

	require.Equal(t, before-9, TotalAvailable(grants, testNow))
	for _, g := range grants {
		require.GreaterOrEqual(t, g.Remaining, int64(0))
		require.LessOrEqual(t, g.Remaining, g.Amount)
	}
}
