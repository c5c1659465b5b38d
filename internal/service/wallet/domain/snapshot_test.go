package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildSnapshotAggregates(t *testing.T) {
	routine := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	race := mustGrant(t, "owner-1", 10, CauseRaceCompletion, testNow)
	partiallyUsed := mustGrant(t, "owner-1", 8, CauseRoutineActivity, testNow)
	partiallyUsed.Remaining = 3
	expired := mustGrant(t, "owner-1", 100, CauseSpecialActivity, testNow.Add(-61*24*time.Hour))
	grants := []*PointGrant{routine, race, partiallyUsed, expired}

	snap := BuildSnapshot(grants, testNow)

	require.Equal(t, int64(18), snap.TotalAvailable)
	require.Equal(t, int64(8), snap.BreakdownByCause[CauseRoutineActivity])
	require.Equal(t, int64(10), snap.BreakdownByCause[CauseRaceCompletion])
	require.NotContains(t, snap.BreakdownByCause, CauseSpecialActivity)
}

func TestBuildSnapshotBreakdownInvariant(t *testing.T) {
	grants := []*PointGrant{
		mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow),
		mustGrant(t, "owner-1", 3, CauseSpecialActivity, testNow),
		mustGrant(t, "owner-1", 10, CauseRaceCompletion, testNow.Add(-10*24*time.Hour)),
	}

	snap := BuildSnapshot(grants, testNow)

	var sum int64
	for _, v := range snap.BreakdownByCause {
		sum += v
	}
	require.Equal(t, snap.TotalAvailable, sum)
}

func TestBuildSnapshotExpiringSoon(t *testing.T) {
	// 30 天期限的 grant 在发放 25 天后进入 7 天前瞻窗口
	soon := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow.Add(-25*24*time.Hour))
	far := mustGrant(t, "owner-1", 10, CauseRaceCompletion, testNow)
	grants := []*PointGrant{soon, far}

	snap := BuildSnapshot(grants, testNow)

	require.Equal(t, int64(15), snap.TotalAvailable)
	require.Equal(t, int64(5), snap.ExpiringSoon)
}

func TestBuildSnapshotEmptyWallet(t *testing.T) {
	snap := BuildSnapshot(nil, testNow)

	require.Equal(t, int64(0), snap.TotalAvailable)
	require.Equal(t, int64(0), snap.ExpiringSoon)
	require.Empty(t, snap.BreakdownByCause)
	require.Equal(t, testNow, snap.TakenAt)
}

func TestBuildSnapshotIdempotent(t *testing.T) {
	g := mustGrant(t, "owner-1", 5, CauseRoutineActivity, testNow)
	soon := mustGrant(t, "owner-1", 2, CauseRoutineActivity, testNow.Add(-25*24*time.Hour))
	grants := []*PointGrant{g, soon}

	// 两次快照之间没有任何变更 => 结果完全相同，且 grant 本身未被改动
	first := BuildSnapshot(grants, testNow)
	second := BuildSnapshot(grants, testNow)

	require.Equal(t, first, second)
	require.Equal(t, int64(5), g.Remaining)
	require.Equal(t, int64(2), soon.Remaining)
}
