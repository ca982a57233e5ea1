// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flow

import "fmt"

// Rule is one entry in the ordered route table. A rule matches when
// the submitted event's kind equals Event, the current state's kind
// equals From (or From is Wildcard), and Guard, if present, returns
// true. The first matching rule wins; later rules are not consulted.
//
// Build constructs the destination state. It must be pure: same
// (event, state) in, same destination out, no side effects. The
// constructed state's kind must equal the declared To kind; the
// coordinator treats a mismatch as a configuration defect and halts.
type Rule struct {
	// Event is the event kind this rule responds to. Required,
	// never Wildcard: an event that should be handled everywhere
	// still names itself.
	Event Kind

	// From is the state kind this rule fires in, or Wildcard for
	// any state.
	From Kind

	// To is the declared destination state kind. Used to check
	// route/effect coverage at construction and to verify Build's
	// output at runtime.
	To Kind

	// Guard, when non-nil, further restricts the rule. Guards must
	// be side-effect free. A guard that returns false rejects this
	// rule and evaluation continues with the next one.
	Guard func(event Event, from State) bool

	// Build constructs the destination state from the event and the
	// current state.
	Build func(event Event, from State) State
}

// Table is an ordered route table: a pure function from
// (event, state) to an optional destination state.
type Table struct {
	rules []Rule
}

// NewTable builds a Table from rules, validating each rule's shape.
func NewTable(rules ...Rule) (Table, error) {
	for i, rule := range rules {
		if rule.Event == "" || rule.Event == Wildcard {
			return Table{}, fmt.Errorf("flow: rule %d: event kind is required and cannot be the wildcard", i)
		}
		if rule.From == "" {
			return Table{}, fmt.Errorf("flow: rule %d (%s): from kind is required (use Wildcard for any)", i, rule.Event)
		}
		if rule.To == "" || rule.To == Wildcard {
			return Table{}, fmt.Errorf("flow: rule %d (%s): to kind is required and cannot be the wildcard", i, rule.Event)
		}
		if rule.Build == nil {
			return Table{}, fmt.Errorf("flow: rule %d (%s): Build is required", i, rule.Event)
		}
		for j := range rules[:i] {
			prior := rules[j]
			if prior.Event == rule.Event && prior.From == rule.From && prior.Guard == nil {
				return Table{}, fmt.Errorf("flow: rule %d (%s from %s) is unreachable: rule %d matches unconditionally first",
					i, rule.Event, rule.From, j)
			}
		}
	}
	return Table{rules: rules}, nil
}

// MustTable is NewTable that panics on error. For package-level table
// literals whose validity is covered by tests.
func MustTable(rules ...Rule) Table {
	table, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return table
}

// Resolve computes the destination state for event in state from, or
// reports false if no rule matches (rejected transition). Resolve is
// side-effect free: it performs no presentation and mutates nothing.
func (table Table) Resolve(event Event, from State) (State, bool) {
	for _, rule := range table.rules {
		if rule.Event != event.Kind() {
			continue
		}
		if rule.From != Wildcard && rule.From != from.Kind() {
			continue
		}
		if rule.Guard != nil && !rule.Guard(event, from) {
			continue
		}
		return rule.Build(event, from), true
	}
	return nil, false
}

// Rules returns a copy of the ordered rule list, for tooling
// (coverage checks, graph export).
func (table Table) Rules() []Rule {
	out := make([]Rule, len(table.rules))
	copy(out, table.rules)
	return out
}
