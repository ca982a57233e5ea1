// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flowdef

import (
	"fmt"
	"strings"
)

// DOT renders the definition's state graph in Graphviz dot syntax.
// States become nodes (the root double-circled), rules become edges
// labeled with their event kind. Dismissal edges are dashed. Output
// order follows the definition, so renders are stable across runs.
func DOT(definition *Definition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", definition.Name)
	b.WriteString("\trankdir=LR;\n")
	b.WriteString("\tnode [shape=circle];\n")

	for _, state := range definition.States {
		if state == definition.Root {
			fmt.Fprintf(&b, "\t%q [shape=doublecircle];\n", state)
		} else {
			fmt.Fprintf(&b, "\t%q;\n", state)
		}
	}

	for _, rule := range definition.Rules {
		label := rule.Event
		if rule.Guarded {
			label += " ?"
		}
		var attrs []string
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
		if rule.Dismissal {
			attrs = append(attrs, "style=dashed")
		}
		from := rule.From
		if from == Wildcard {
			// Render the wildcard source as its own node rather than
			// fanning out an edge per state.
			from = "(any)"
		}
		fmt.Fprintf(&b, "\t%q -> %q [%s];\n", from, rule.To, strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}
