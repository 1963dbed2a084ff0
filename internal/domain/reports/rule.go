package reports

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// DefaultRatioRule marks a cost ratio red when it exceeds the threshold.
const DefaultRatioRule = "ratio > threshold"

// RatioRule decides the colour of a cost-to-revenue ratio. The expression
// sees two doubles, ratio and threshold (both percentages), and must
// evaluate to a bool; true means red.
type RatioRule struct {
	expr      string
	threshold types.Money
	program   cel.Program
}

// NewRatioRule compiles expr. An empty expr uses DefaultRatioRule.
func NewRatioRule(expr string, threshold types.Money) (*RatioRule, error) {
	if expr == "" {
		expr = DefaultRatioRule
	}
	env, err := cel.NewEnv(
		cel.Variable("ratio", cel.DoubleType),
		cel.Variable("threshold", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("ratio rule env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile ratio rule %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("ratio rule %q must return bool, got %s", expr, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("ratio rule program: %w", err)
	}
	return &RatioRule{expr: expr, threshold: threshold, program: program}, nil
}

func (r *RatioRule) Threshold() types.Money { return r.threshold }

// Status evaluates the rule for ratio.
func (r *RatioRule) Status(ratio types.Money) (RatioStatus, error) {
	out, _, err := r.program.Eval(map[string]any{
		"ratio":     ratio.InexactFloat64(),
		"threshold": r.threshold.InexactFloat64(),
	})
	if err != nil {
		return "", fmt.Errorf("evaluate ratio rule %q: %w", r.expr, err)
	}
	red, ok := out.Value().(bool)
	if !ok {
		return "", fmt.Errorf("ratio rule %q returned %T", r.expr, out.Value())
	}
	if red {
		return StatusRed, nil
	}
	return StatusGreen, nil
}
