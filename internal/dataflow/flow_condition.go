package dataflow

import (
	"fmt"
	"strings"

	"github.com/sirkon/flowsense/internal/symbolic"
)

// MakeFlowConditionToken creates a fresh flow condition token. A token with
// no constraints stands for true.
func (c *Context) MakeFlowConditionToken() *symbolic.AtomicBool {
	return c.CreateAtomicBool()
}

// AddFlowConditionConstraint adds constraint to the flow condition identified
// by token. Constraints added to the same token are conjoined.
func (c *Context) AddFlowConditionConstraint(token *symbolic.AtomicBool, constraint symbolic.BoolValue) {
	prev, ok := c.flowConditionConstraints[token]
	if !ok {
		c.flowConditionConstraints[token] = constraint
		return
	}

	c.flowConditionConstraints[token] = c.Conjunction(prev, constraint)
}

// ForkFlowCondition creates a new flow condition implying the one identified
// by token and returns its token. Constraints added to the fork do not affect
// the parent. The fork depends on the parent token though, so constraints
// added to the parent later are seen by the fork as well.
func (c *Context) ForkFlowCondition(token *symbolic.AtomicBool) *symbolic.AtomicBool {
	fork := c.MakeFlowConditionToken()
	c.addFlowConditionDep(fork, token)
	c.AddFlowConditionConstraint(fork, token)
	return fork
}

// JoinFlowConditions creates a new flow condition that is the disjunction of
// the flow conditions identified by the given tokens and returns its token.
func (c *Context) JoinFlowConditions(first, second *symbolic.AtomicBool) *symbolic.AtomicBool {
	token := c.MakeFlowConditionToken()
	c.addFlowConditionDep(token, first)
	c.addFlowConditionDep(token, second)
	c.AddFlowConditionConstraint(token, c.Disjunction(first, second))
	return token
}

func (c *Context) addFlowConditionDep(token, dep *symbolic.AtomicBool) {
	for _, d := range c.flowConditionDeps[token] {
		if d == dep {
			return
		}
	}
	c.flowConditionDeps[token] = append(c.flowConditionDeps[token], dep)
}

// BuildAndSubstituteFlowCondition builds the explicit formula of the flow
// condition identified by token. Constraints of every dependency are inlined
// and atomic booleans found in substitutions are replaced with their mapped
// values.
//
// Literals cannot be substituted.
func (c *Context) BuildAndSubstituteFlowCondition(
	token *symbolic.AtomicBool,
	substitutions map[*symbolic.AtomicBool]symbolic.BoolValue,
) symbolic.BoolValue {
	if _, ok := substitutions[c.trueVal]; ok {
		panic(fmt.Errorf("substitution of the true literal is not allowed"))
	}
	if _, ok := substitutions[c.falseVal]; ok {
		panic(fmt.Errorf("substitution of the false literal is not allowed"))
	}

	b := flowConditionBuilder{
		c:          c,
		cache:      make(map[symbolic.BoolValue]symbolic.BoolValue, len(substitutions)),
		inProgress: map[*symbolic.AtomicBool]struct{}{},
	}
	for k, v := range substitutions {
		b.cache[k] = v
	}

	return b.build(token)
}

type flowConditionBuilder struct {
	c *Context

	// cache keeps both substitutions and memoized results for the values met
	// during the walk. Dependency tokens are mapped to their expansions.
	cache      map[symbolic.BoolValue]symbolic.BoolValue
	inProgress map[*symbolic.AtomicBool]struct{}
}

func (b *flowConditionBuilder) build(token *symbolic.AtomicBool) symbolic.BoolValue {
	constraint, ok := b.c.flowConditionConstraints[token]
	if !ok {
		return b.c.BoolLiteral(true)
	}

	b.inProgress[token] = struct{}{}
	defer delete(b.inProgress, token)

	for _, dep := range b.c.flowConditionDeps[token] {
		if _, ok := b.cache[dep]; ok {
			continue
		}
		if _, ok := b.inProgress[dep]; ok {
			// Cyclic dependency, the token stays as is.
			continue
		}

		b.cache[dep] = b.build(dep)
	}

	return b.substitute(constraint)
}

func (b *flowConditionBuilder) substitute(v symbolic.BoolValue) symbolic.BoolValue {
	if res, ok := b.cache[v]; ok {
		return res
	}

	var res symbolic.BoolValue
	switch vv := v.(type) {
	case *symbolic.AtomicBool:
		return vv
	case *symbolic.Negation:
		res = b.c.Negation(b.substitute(vv.Operand()))
	case *symbolic.Conjunction:
		res = b.c.Conjunction(b.substitute(vv.LHS()), b.substitute(vv.RHS()))
	case *symbolic.Disjunction:
		res = b.c.Disjunction(b.substitute(vv.LHS()), b.substitute(vv.RHS()))
	default:
		panic(fmt.Errorf("missing handling for bool value kind %s", v.Kind()))
	}

	b.cache[v] = res
	return res
}

// FlowConditionString renders the flow condition identified by token with
// every token it depends on, one per line:
//
//	B7 <=> (B5 | B6)
//	B5 <=> B3
//	B6 <=> (B3 & B4)
//	B3
//
// Tokens without constraints are rendered alone.
func (c *Context) FlowConditionString(token *symbolic.AtomicBool) string {
	var buf strings.Builder
	visited := map[*symbolic.AtomicBool]struct{}{}

	var walk func(t *symbolic.AtomicBool)
	walk = func(t *symbolic.AtomicBool) {
		if _, ok := visited[t]; ok {
			return
		}
		visited[t] = struct{}{}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		if constraint, ok := c.flowConditionConstraints[t]; ok {
			fmt.Fprintf(&buf, "%s <=> %s", t, c.literalString(constraint))
		} else {
			buf.WriteString(t.String())
		}

		for _, dep := range c.flowConditionDeps[t] {
			walk(dep)
		}
	}
	walk(token)

	return buf.String()
}

func (c *Context) literalString(v symbolic.BoolValue) string {
	switch v {
	case c.trueVal:
		return "true"
	case c.falseVal:
		return "false"
	default:
		return v.String()
	}
}
