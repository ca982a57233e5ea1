// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flowdef

import (
	"os"
	"strings"
	"testing"
)

// validDefinition builds a small two-state flow that passes every
// check. Tests mutate a copy to provoke specific issues.
func validDefinition() *Definition {
	return &Definition{
		Name:   "panel",
		Root:   "closed",
		States: []string{"closed", "open"},
		Events: []string{"open", "close", "reset"},
		Rules: []Rule{
			{Event: "open", From: "closed", To: "open"},
			{Event: "close", From: "open", To: "closed", Dismissal: true},
			{Event: "reset", From: Wildcard, To: "closed", Dismissal: true},
		},
		Effects: []Effect{
			{Event: "open", From: "closed", To: "open", Handler: "showPanel"},
			{Event: "close", From: "open", To: "closed", Handler: "hidePanel"},
			{Event: "reset", From: Wildcard, To: "closed", Handler: "collapse"},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		mutate         func(*Definition)
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name:           "valid definition",
			mutate:         func(*Definition) {},
			expectedIssues: 0,
		},
		{
			name:           "missing name",
			mutate:         func(d *Definition) { d.Name = "" },
			expectedIssues: 1,
			wantSubstrings: []string{"name is required"},
		},
		{
			name:           "root not declared",
			mutate:         func(d *Definition) { d.Root = "lobby" },
			expectedIssues: 1,
			wantSubstrings: []string{`root "lobby" is not a declared state`},
		},
		{
			name: "duplicate state declaration",
			mutate: func(d *Definition) {
				d.States = append(d.States, "open")
			},
			expectedIssues: 1,
			wantSubstrings: []string{`duplicate declaration "open"`},
		},
		{
			name: "rule references undeclared event",
			mutate: func(d *Definition) {
				d.Rules[0].Event = "toggle"
				d.Effects[0].Event = "toggle"
			},
			expectedIssues: 1,
			wantSubstrings: []string{`event "toggle" is not declared`},
		},
		{
			name: "wildcard rule target rejected",
			mutate: func(d *Definition) {
				d.Rules[2].To = Wildcard
			},
			// The wildcard target is an issue itself and breaks the
			// coverage match for its rule and effect.
			expectedIssues: 3,
			wantSubstrings: []string{"to must be a concrete declared state"},
		},
		{
			name: "unguarded rule shadows later rule",
			mutate: func(d *Definition) {
				d.Rules = append(d.Rules, Rule{Event: "open", From: "closed", To: "open", Guarded: true})
			},
			expectedIssues: 1,
			wantSubstrings: []string{"shadowed by unguarded rules[0]"},
		},
		{
			name: "guarded rules may share a pair",
			mutate: func(d *Definition) {
				d.Rules[0].Guarded = true
				d.Rules = append(d.Rules[:1], append([]Rule{
					{Event: "open", From: "closed", To: "open", Guarded: true},
				}, d.Rules[1:]...)...)
			},
			expectedIssues: 0,
		},
		{
			name: "uncovered rule",
			mutate: func(d *Definition) {
				d.Effects = d.Effects[1:]
			},
			expectedIssues: 1,
			wantSubstrings: []string{"no effect covers (open, closed -> open)"},
		},
		{
			name: "wildcard-from rule needs wildcard-from effect",
			mutate: func(d *Definition) {
				d.Effects[2].From = "open"
			},
			// The narrowed effect both leaves the wildcard rule
			// uncovered and covers nothing itself.
			expectedIssues: 2,
			wantSubstrings: []string{
				"no effect covers (reset, * -> closed)",
				`effects[2] "collapse": covers no rule`,
			},
		},
		{
			name: "effect covering no rule",
			mutate: func(d *Definition) {
				d.Effects = append(d.Effects, Effect{
					Event: "close", From: "closed", To: "closed", Handler: "stray",
				})
			},
			expectedIssues: 1,
			wantSubstrings: []string{`effects[3] "stray": covers no rule`},
		},
		{
			name: "unreachable state",
			// The wildcard reset rule still gives "attic" a dismissal
			// path back, so only the forward check fires.
			mutate: func(d *Definition) {
				d.States = append(d.States, "attic")
			},
			expectedIssues: 1,
			wantSubstrings: []string{
				`state "attic" is not reachable from root "closed"`,
			},
		},
		{
			name: "no dismissal path back to root",
			mutate: func(d *Definition) {
				d.Rules[1].Dismissal = false
				d.Rules[2].Dismissal = false
			},
			expectedIssues: 1,
			wantSubstrings: []string{`root "closed" is not reachable from state "open" via dismissal rules`},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			definition := validDefinition()
			test.mutate(definition)
			issues := Validate(definition)

			if len(issues) != test.expectedIssues {
				t.Fatalf("got %d issues, want %d:\n%s",
					len(issues), test.expectedIssues, strings.Join(issues, "\n"))
			}
			joined := strings.Join(issues, "\n")
			for _, want := range test.wantSubstrings {
				if !strings.Contains(joined, want) {
					t.Errorf("issues missing %q:\n%s", want, joined)
				}
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	const source = `
name: panel
root: closed
states: [closed, open]
events: [open, close, reset]
rules:
  - {event: open, from: closed, to: open}
  - {event: close, from: open, to: closed, dismissal: true}
  - {event: reset, from: "*", to: closed, dismissal: true}
effects:
  - {event: open, from: closed, to: open, handler: showPanel}
  - {event: close, from: open, to: closed, handler: hidePanel}
  - {event: reset, from: "*", to: closed, handler: collapse}
`
	definition, err := Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if issues := Validate(definition); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if definition.Name != "panel" || len(definition.Rules) != 3 {
		t.Fatalf("parsed definition = %+v", definition)
	}
	if !definition.Rules[1].Dismissal {
		t.Fatal("dismissal flag not parsed")
	}
}

func TestParseJSONC(t *testing.T) {
	t.Parallel()

	const source = `{
	// A two-state panel flow.
	"name": "panel",
	"root": "closed",
	"states": ["closed", "open"],
	"events": ["open", "close"],
	"rules": [
		{"event": "open", "from": "closed", "to": "open"},
		{"event": "close", "from": "open", "to": "closed", "dismissal": true}, // trailing comma below
	],
	"effects": [
		{"event": "open", "from": "closed", "to": "open", "handler": "showPanel"},
		{"event": "close", "from": "open", "to": "closed", "handler": "hidePanel"},
	],
}`
	definition, err := ParseJSONC([]byte(source))
	if err != nil {
		t.Fatalf("ParseJSONC: %v", err)
	}
	if issues := Validate(definition); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestReadFileChoosesFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlPath := dir + "/flow.yaml"
	if err := os.WriteFile(yamlPath, []byte("name: panel\nroot: closed\nstates: [closed]\nevents: [reset]\nrules:\n  - {event: reset, from: closed, to: closed, dismissal: true}\neffects:\n  - {event: reset, from: closed, to: closed, handler: collapse}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	definition, err := ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("ReadFile(yaml): %v", err)
	}
	if definition.Name != "panel" {
		t.Fatalf("name = %q", definition.Name)
	}

	if _, err := ReadFile(dir + "/flow.toml"); err == nil {
		t.Fatal("ReadFile accepted an unsupported extension")
	}
}

func TestDOT(t *testing.T) {
	t.Parallel()

	output := DOT(validDefinition())
	for _, want := range []string{
		`digraph "panel"`,
		`"closed" [shape=doublecircle];`,
		`"closed" -> "open" [label="open"];`,
		`"open" -> "closed" [label="close", style=dashed];`,
		`"(any)" -> "closed"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("DOT output missing %q:\n%s", want, output)
		}
	}
}
