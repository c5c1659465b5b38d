package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"corre/internal/service/earning/domain"
)

func TestCELRuleEngineEvaluate(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)
	ctx := context.Background()

	fact := domain.Fact{
		OwnerID:    "owner-1",
		Type:       "run_completed",
		DistanceKM: 0.5,
		Hour:       7,
	}

	// 运营规则示例：跑步必须满 1 公里才计分
	rule := `type != 'run_completed' || distance_km >= 1.0`

	ok, err := engine.Evaluate(ctx, rule, fact)
	require.NoError(t, err)
	require.False(t, ok)

	fact.DistanceKM = 3
	ok, err = engine.Evaluate(ctx, rule, fact)
	require.NoError(t, err)
	require.True(t, ok)

	// 其他活动类型不受里程约束
	fact = domain.Fact{Type: "event_checkin", Kind: "special", Hour: 22}
	ok, err = engine.Evaluate(ctx, rule, fact)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCELRuleEngineRejectsBadRules(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = engine.Evaluate(ctx, `distance_km >=`, domain.Fact{})
	require.Error(t, err)

	// 语法合法但不是布尔结果
	_, err = engine.Evaluate(ctx, `distance_km + 1.0`, domain.Fact{})
	require.Error(t, err)
}

func TestCELRuleEngineCachesPrograms(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	require.NoError(t, err)
	ctx := context.Background()

	rule := `hour >= 6 && hour <= 22`
	for i := 0; i < 3; i++ {
		_, err := engine.Evaluate(ctx, rule, domain.Fact{Hour: 12})
		require.NoError(t, err)
	}

	engine.mu.RLock()
	defer engine.mu.RUnlock()
	require.Len(t, engine.programs, 1)
}
