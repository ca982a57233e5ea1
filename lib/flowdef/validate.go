// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flowdef

import (
	"fmt"
)

// Validate checks a Definition for structural issues. Returns a list
// of human-readable issue descriptions. An empty list means the
// definition is valid.
//
// Structural checks include:
//   - Name and Root are required; Root must be a declared state
//   - No duplicate state or event declarations
//   - Every rule references declared kinds; rule events and targets
//     must be concrete (no wildcard), matching the executable table
//   - An unguarded rule must not shadow a later rule for the same
//     (event, from) pair
//   - Every rule is covered by at least one effect; a wildcard-from
//     rule needs a wildcard-from effect
//   - Every effect covers at least one rule (dead handlers are drift
//     in the other direction)
//   - Every non-root state is reachable from the root
//   - The root is reachable from every state along dismissal edges
func Validate(definition *Definition) []string {
	var issues []string

	if definition.Name == "" {
		issues = append(issues, "name is required")
	}
	if definition.Root == "" {
		issues = append(issues, "root is required")
	}

	states := declarationSet("states", definition.States, &issues)
	events := declarationSet("events", definition.Events, &issues)

	if definition.Root != "" && !states[definition.Root] {
		issues = append(issues, fmt.Sprintf("root %q is not a declared state", definition.Root))
	}

	if len(definition.Rules) == 0 {
		issues = append(issues, "definition has no rules (at least one rule is required)")
	}

	// unguarded[event|from] records the index of the first unguarded
	// rule for the pair; any later rule for the same pair is
	// unreachable.
	unguarded := make(map[string]int)
	for index, rule := range definition.Rules {
		prefix := fmt.Sprintf("rules[%d]", index)

		if rule.Event == "" || rule.Event == Wildcard {
			issues = append(issues, fmt.Sprintf("%s: event must be a concrete declared kind", prefix))
		} else if !events[rule.Event] {
			issues = append(issues, fmt.Sprintf("%s: event %q is not declared", prefix, rule.Event))
		}

		if rule.From == "" {
			issues = append(issues, fmt.Sprintf("%s: from is required", prefix))
		} else if rule.From != Wildcard && !states[rule.From] {
			issues = append(issues, fmt.Sprintf("%s: from %q is not a declared state", prefix, rule.From))
		}

		if rule.To == "" || rule.To == Wildcard {
			issues = append(issues, fmt.Sprintf("%s: to must be a concrete declared state", prefix))
		} else if !states[rule.To] {
			issues = append(issues, fmt.Sprintf("%s: to %q is not a declared state", prefix, rule.To))
		}

		pair := rule.Event + "|" + rule.From
		if firstIndex, shadowed := unguarded[pair]; shadowed {
			issues = append(issues, fmt.Sprintf(
				"%s: unreachable, shadowed by unguarded rules[%d] for (%s, %s)",
				prefix, firstIndex, rule.Event, rule.From,
			))
		} else if !rule.Guarded {
			unguarded[pair] = index
		}
	}

	issues = append(issues, validateCoverage(definition)...)
	issues = append(issues, validateReachability(definition, states)...)

	return issues
}

// declarationSet builds a membership set from a declaration list,
// reporting duplicates and wildcard declarations.
func declarationSet(kind string, names []string, issues *[]string) map[string]bool {
	set := make(map[string]bool, len(names))
	for index, name := range names {
		if name == "" || name == Wildcard {
			*issues = append(*issues, fmt.Sprintf("%s[%d]: declaration must be a concrete name", kind, index))
			continue
		}
		if set[name] {
			*issues = append(*issues, fmt.Sprintf("%s[%d]: duplicate declaration %q", kind, index, name))
		}
		set[name] = true
	}
	return set
}

// validateCoverage checks rules and effects against each other:
// every rule needs a covering effect, every effect needs a rule it
// covers.
func validateCoverage(definition *Definition) []string {
	var issues []string

	covers := func(effect Effect, rule Rule) bool {
		if effect.Event != Wildcard && effect.Event != rule.Event {
			return false
		}
		// A wildcard-from rule can land in states no concrete effect
		// pattern names, so only a wildcard-from effect covers it.
		if rule.From == Wildcard {
			if effect.From != Wildcard {
				return false
			}
		} else if effect.From != Wildcard && effect.From != rule.From {
			return false
		}
		if effect.To != Wildcard && effect.To != rule.To {
			return false
		}
		return true
	}

	used := make([]bool, len(definition.Effects))
	for index, rule := range definition.Rules {
		covered := false
		for effectIndex, effect := range definition.Effects {
			if covers(effect, rule) {
				covered = true
				used[effectIndex] = true
			}
		}
		if !covered {
			issues = append(issues, fmt.Sprintf(
				"rules[%d]: no effect covers (%s, %s -> %s)",
				index, rule.Event, rule.From, rule.To,
			))
		}
	}
	for index, usedEffect := range used {
		if !usedEffect {
			effect := definition.Effects[index]
			issues = append(issues, fmt.Sprintf(
				"effects[%d] %q: covers no rule (%s, %s -> %s)",
				index, effect.Handler, effect.Event, effect.From, effect.To,
			))
		}
	}

	return issues
}

// validateReachability checks the state graph in both directions:
// forward from the root over all rules, and back to the root over
// dismissal rules only.
func validateReachability(definition *Definition, states map[string]bool) []string {
	if definition.Root == "" || !states[definition.Root] {
		// Already reported; reachability needs a valid anchor.
		return nil
	}

	var issues []string

	// Forward edges. A wildcard-from rule contributes an edge from
	// every declared state.
	forward := make(map[string][]string)
	addEdge := func(graph map[string][]string, from, to string) {
		if from == Wildcard {
			for state := range states {
				graph[state] = append(graph[state], to)
			}
			return
		}
		graph[from] = append(graph[from], to)
	}
	dismissal := make(map[string][]string)
	for _, rule := range definition.Rules {
		addEdge(forward, rule.From, rule.To)
		if rule.Dismissal {
			addEdge(dismissal, rule.From, rule.To)
		}
	}

	reachable := walk(forward, definition.Root)
	for _, state := range definition.States {
		if state != definition.Root && !reachable[state] {
			issues = append(issues, fmt.Sprintf("state %q is not reachable from root %q", state, definition.Root))
		}
	}

	// Root reachability walks dismissal edges backwards: from each
	// state, some dismissal path must end at root.
	reversed := make(map[string][]string)
	for from, targets := range dismissal {
		for _, to := range targets {
			reversed[to] = append(reversed[to], from)
		}
	}
	returning := walk(reversed, definition.Root)
	for _, state := range definition.States {
		if state != definition.Root && !returning[state] {
			issues = append(issues, fmt.Sprintf("root %q is not reachable from state %q via dismissal rules", definition.Root, state))
		}
	}

	return issues
}

// walk returns the set of nodes reachable from start, inclusive.
func walk(graph map[string][]string, start string) map[string]bool {
	seen := map[string]bool{start: true}
	frontier := []string{start}
	for len(frontier) > 0 {
		node := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, next := range graph[node] {
			if !seen[next] {
				seen[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	return seen
}
