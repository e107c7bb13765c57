// Package formula evaluates the numeric expressions content authors may
// attach to rules (custom pool weights, cost multipliers). Expressions are
// Lua expressions evaluated in a fresh state with only the math library.
//
// A broken formula must never stop a turn: callers use EvalOr, which logs
// the failure and substitutes a fallback.
package formula

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
)

// ErrNotNumber indicates the expression did not produce a number.
var ErrNotNumber = errors.New("formula did not evaluate to a number")

// Vars are the named numeric inputs visible to an expression.
type Vars map[string]float64

// Eval evaluates expr and returns its numeric value.
func Eval(expr string, vars Vars) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("evaluating formula: empty expression")
	}

	l := lua.NewState()
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)

	// deterministic global order keeps error messages stable
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l.PushNumber(vars[name])
		l.SetGlobal(name)
	}

	if err := lua.LoadString(l, "return "+expr); err != nil {
		return 0, fmt.Errorf("compiling formula %q: %w", expr, err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return 0, fmt.Errorf("evaluating formula %q: %w", expr, err)
	}

	v, ok := l.ToNumber(-1)
	l.Pop(1)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("evaluating formula %q: %w", expr, ErrNotNumber)
	}
	return v, nil
}

// EvalOr evaluates expr, returning fallback (and logging a warning) when
// the expression fails.
func EvalOr(expr string, vars Vars, fallback float64) float64 {
	v, err := Eval(expr, vars)
	if err != nil {
		slog.Warn("formula evaluation failed, using fallback",
			"formula", expr,
			"fallback", fallback,
			"error", err)
		return fallback
	}
	return v
}
