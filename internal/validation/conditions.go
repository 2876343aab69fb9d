package validation

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprConditionValidator checks router branch condition syntax by compiling
// the expression with expr-lang/expr, never evaluating it — evaluation
// requires runtime variables the engine does not have. Successfully
// compiled programs are cached, since the same condition string is
// re-checked on every validity recompute.
type ExprConditionValidator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewExprConditionValidator builds an ExprConditionValidator.
func NewExprConditionValidator() *ExprConditionValidator {
	return &ExprConditionValidator{cache: make(map[string]*vm.Program)}
}

// CheckSyntax compiles expression against an environment permitting
// arbitrary identifiers (step output references are not known statically)
// and returns any compile error.
func (v *ExprConditionValidator) CheckSyntax(expression string) error {
	v.mu.RLock()
	_, cached := v.cache[expression]
	v.mu.RUnlock()
	if cached {
		return nil
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.cache[expression] = program
	v.mu.Unlock()
	return nil
}
