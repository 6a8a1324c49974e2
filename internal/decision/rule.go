package decision

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fo76bot/fo76bot/internal/perception"
)

// RuleEnv exposes the keyword hit counts to a rule expression.
type RuleEnv struct {
	PreMain    int `expr:"premain"`
	Navigation int `expr:"navigation"`
	Event      int `expr:"event"`
	Loading    int `expr:"loading"`
	Bad        int `expr:"bad"`
}

func ruleEnvOf(s perception.Snapshot) RuleEnv {
	return RuleEnv{
		PreMain:    s.Count(perception.DictPreMain),
		Navigation: s.Count(perception.DictNavigation),
		Event:      s.Count(perception.DictEvent),
		Loading:    s.Count(perception.DictLoading),
		Bad:        s.Count(perception.DictBadEvent),
	}
}

// Rule is a compiled boolean expression over RuleEnv.
type Rule struct {
	Source  string
	program *vm.Program
}

func CompileRule(src string) (*Rule, error) {
	prog, err := expr.Compile(src, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile rule %q: %w", src, err)
	}
	return &Rule{Source: src, program: prog}, nil
}

func (r *Rule) Match(s perception.Snapshot) (bool, error) {
	out, err := vm.Run(r.program, ruleEnvOf(s))
	if err != nil {
		return false, fmt.Errorf("run rule %q: %w", r.Source, err)
	}
	match, _ := out.(bool)
	return match, nil
}
