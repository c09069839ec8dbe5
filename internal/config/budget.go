package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/zhanong/ecsframework/internal/scene"
)

// Budget is a managed config: named integer expressions evaluated per scene.
type Budget struct {
	names    []string
	programs map[string]*vm.Program
	sources  map[string]string
}

// budgetEnv is the compile-time shape of the evaluation environment.
func budgetEnv(row sceneConfigRow, asset scene.Asset) map[string]any {
	return map[string]any{
		"scene": asset.ID.String(),
		"level": asset.Level,
		"config": map[string]any{
			"max_entities":     row.MaxEntities,
			"destroy_capacity": row.DestroyCapacity,
		},
	}
}

// CompileBudget compiles every expression. Names are kept sorted so
// evaluation order is deterministic.
func CompileBudget(sources map[string]string) (*Budget, error) {
	b := &Budget{
		programs: make(map[string]*vm.Program, len(sources)),
		sources:  make(map[string]string, len(sources)),
	}

	sample := budgetEnv(sceneConfigRow{}, scene.Asset{})
	for name, src := range sources {
		program, err := expr.Compile(src, expr.Env(sample))
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeBadExpression,
				Message: fmt.Sprintf("budget %q: %v", name, err),
				Path:    "budget." + name,
			}
		}
		b.programs[name] = program
		b.sources[name] = src
		b.names = append(b.names, name)
	}
	sort.Strings(b.names)

	return b, nil
}

// Names returns budget names in evaluation order.
func (b *Budget) Names() []string {
	if b == nil {
		return nil
	}
	return b.names
}

// Source returns the expression text for name.
func (b *Budget) Source(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	src, ok := b.sources[name]
	return src, ok
}

// eval runs every expression for one scene.
func (b *Budget) eval(row sceneConfigRow, asset scene.Asset) (map[string]int, error) {
	out := make(map[string]int, len(b.Names()))
	if b == nil {
		return out, nil
	}

	env := budgetEnv(row, asset)
	for _, name := range b.names {
		raw, err := expr.Run(b.programs[name], env)
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeBadExpression,
				Message: fmt.Sprintf("budget %q for %s: %v", name, asset.ID, err),
				Path:    "budget." + name,
			}
		}
		n, err := toInt(raw)
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeOutOfRange,
				Message: fmt.Sprintf("budget %q for %s: %v", name, asset.ID, err),
				Path:    "budget." + name,
			}
		}
		if n < 0 || n > MaxSize {
			return nil, &LoadError{
				Code:    ErrCodeOutOfRange,
				Message: fmt.Sprintf("budget %q for %s must be in [0, %d], got %d", name, asset.ID, MaxSize, n),
				Path:    "budget." + name,
			}
		}
		out[name] = n
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("non-finite result %v", n)
		}
		// float64(math.MaxInt) rounds up to 2^63, itself out of range.
		if n >= float64(math.MaxInt) || n < float64(math.MinInt) {
			return 0, fmt.Errorf("result %v overflows int", n)
		}
		return int(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expression must yield a number, got %T", v)
	}
}
