package trigger

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Conditions evaluates destination conditions with expr-lang.
// Compiled programs are cached by expression source.
type Conditions struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewConditions creates an empty condition evaluator.
func NewConditions() *Conditions {
	return &Conditions{cache: make(map[string]*vm.Program)}
}

// Match evaluates a destination's condition against a payload. An empty
// condition always matches.
func (c *Conditions) Match(d *Destination, triggerID string, data map[string]any) (bool, error) {
	if d == nil || d.Condition == "" {
		return true, nil
	}

	prog, err := c.compile(d.Condition)
	if err != nil {
		return false, err
	}

	env := map[string]any{
		"trigger": triggerID,
		"data":    data,
	}
	out, err := expr.Run(prog, env)
	if err != nil {
		return false, fmt.Errorf("trigger: evaluate condition: %w", err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("trigger: condition did not return bool")
	}
	return ok, nil
}

func (c *Conditions) compile(src string) (*vm.Program, error) {
	c.mu.RLock()
	prog, ok := c.cache[src]
	c.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("trigger: compile condition: %w", err)
	}

	c.mu.Lock()
	c.cache[src] = prog
	c.mu.Unlock()
	return prog, nil
}
