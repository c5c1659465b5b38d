package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"corre/internal/service/earning/domain"
)

// CELRuleEngineAdapter 是 domain.RuleEngine 的 CEL 实现。
// 典型的适配器：把第三方表达式引擎适配到我们自己的领域接口。
// 编译结果按规则文本缓存，热路径上只做求值。
type CELRuleEngineAdapter struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngineAdapter 创建规则引擎适配器，声明规则可见的变量。
func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("owner_id", cel.StringType),
		cel.Variable("type", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("distance_km", cel.DoubleType),
		cel.Variable("hour", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELRuleEngineAdapter{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate 实现 domain.RuleEngine。规则必须求值为布尔。
func (a *CELRuleEngineAdapter) Evaluate(ctx context.Context, rule string, fact domain.Fact) (bool, error) {
	prg, err := a.program(rule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.ContextEval(ctx, map[string]interface{}{
		"owner_id":    fact.OwnerID,
		"type":        fact.Type,
		"kind":        fact.Kind,
		"distance_km": fact.DistanceKM,
		"hour":        fact.Hour,
	})
	if err != nil {
		return false, fmt.Errorf("rule evaluation error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule did not evaluate to a boolean: %q", rule)
	}
	return result, nil
}

func (a *CELRuleEngineAdapter) program(rule string) (cel.Program, error) {
	a.mu.RLock()
	prg, ok := a.programs[rule]
	a.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := a.env.Compile(rule)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid rule %q: %w", rule, iss.Err())
	}
	prg, err := a.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	a.mu.Lock()
	a.programs[rule] = prg
	a.mu.Unlock()
	return prg, nil
}
