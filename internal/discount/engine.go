package discount

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/openfleet/harrier/internal/domain"
)

// Engine evaluates operator-defined CEL discount expressions. Expressions
// see two variables, the customer kind as a string and the billed day
// count as an int, and must produce either a bool (interpreted as a flat
// 10% when true) or a numeric discount fraction.
type Engine struct {
	mu            sync.RWMutex
	env           *cel.Env
	compiledRules map[string]*CompiledRule
}

// CompiledRule holds a pre-compiled CEL program alongside its config.
type CompiledRule struct {
	Config  *domain.DiscountRuleConfig
	Program cel.Program
}

// boolFraction is the discount granted when a boolean expression fires.
const boolFraction = 0.10

// NewEngine creates an empty CEL discount engine.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("billed_days", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:           env,
		compiledRules: make(map[string]*CompiledRule),
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(cfg *domain.DiscountRuleConfig) error {
	if cfg == nil {
		return fmt.Errorf("rule config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *Engine) LoadRule(cfg *domain.DiscountRuleConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	e.compiledRules[cfg.ID] = compiled

	return nil
}

// LoadRules compiles and loads all enabled rules.
func (e *Engine) LoadRules(configs []*domain.DiscountRuleConfig) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadRule(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveRule unloads a rule by ID.
func (e *Engine) RemoveRule(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.compiledRules, id)
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledRules)
}

// LoadedRules returns the configs of all loaded rules.
func (e *Engine) LoadedRules() []*domain.DiscountRuleConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	configs := make([]*domain.DiscountRuleConfig, 0, len(e.compiledRules))
	for _, rule := range e.compiledRules {
		configs = append(configs, rule.Config)
	}
	return configs
}

// Rule returns a Rule that evaluates all loaded expressions and yields
// the best resulting fraction, clamped to MaxFraction. Expressions that
// fail at runtime are treated as no discount.
func (e *Engine) Rule() Rule {
	return func(kind domain.CustomerKind, billedDays int64) float64 {
		e.mu.RLock()
		rules := make([]*CompiledRule, 0, len(e.compiledRules))
		for _, rule := range e.compiledRules {
			rules = append(rules, rule)
		}
		e.mu.RUnlock()

		activation := map[string]any{
			"kind":        string(kind),
			"billed_days": billedDays,
		}

		var best float64
		for _, rule := range rules {
			out, _, err := rule.Program.Eval(activation)
			if err != nil {
				continue
			}
			if f := toFraction(out); f > best {
				best = f
			}
		}
		return min(best, MaxFraction)
	}
}

// toFraction converts a CEL result into a discount fraction.
func toFraction(val ref.Val) float64 {
	switch v := val.(type) {
	case types.Bool:
		if v {
			return boolFraction
		}
		return 0
	case types.Double:
		return float64(v)
	case types.Int:
		return float64(v)
	default:
		return 0
	}
}

func (e *Engine) compileRule(cfg *domain.DiscountRuleConfig) (*CompiledRule, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", cfg.ID, issues.Err())
	}

	outputType := ast.OutputType()
	if outputType != cel.BoolType && outputType != cel.DoubleType && outputType != cel.IntType {
		return nil, fmt.Errorf("rule %s: expression must return bool, int, or double, got %s", cfg.ID, outputType)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", cfg.ID, err)
	}

	return &CompiledRule{
		Config:  cfg,
		Program: program,
	}, nil
}
