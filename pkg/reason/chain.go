package reason

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
)

// Chain evaluates rules in order and stops at the first match.
type Chain struct {
	rules []RuleDef
}

// NewChain builds a chain from rules, ordered by priority.
func NewChain(rules ...RuleDef) *Chain {
	ordered := make([]RuleDef, 0, len(rules))
	for _, r := range rules {
		if r.Check != nil {
			ordered = append(ordered, r)
		}
	}
	sortRules(ordered)
	return &Chain{rules: ordered}
}

// DefaultChain builds a chain from every registered rule.
func DefaultChain() *Chain {
	return NewChain(GetAll()...)
}

// Rules returns the rules in evaluation order.
func (c *Chain) Rules() []RuleDef {
	out := make([]RuleDef, len(c.rules))
	copy(out, c.rules)
	return out
}

// Infer returns the reason of the first matching rule, or core.NoReason.
// Ids with no auxiliary records at all are never explained.
func (c *Chain) Infer(in *Input) core.Reason {
	if in.Empty() {
		return core.NoReason
	}
	for _, r := range c.rules {
		if res, ok := r.Check(in); ok {
			return res
		}
	}
	return core.NoReason
}
