// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package flowdef provides parsing, validation, and graph export for
// declarative flow definitions. A definition mirrors an executable
// route table as data: the state kinds, event kinds, transition
// rules, and the effect handlers covering them.
//
// Definitions are authored on disk as YAML or JSONC (JSON extended
// with comments and trailing commas). The executable table remains
// the source of truth; a definition exists so drift between rules and
// effects is caught by tooling and tests rather than at runtime, and
// so the state graph can be rendered for review.
//
// The typical flow:
//
//  1. ReadFile or Parse: YAML/JSONC bytes → Definition
//  2. Validate: coverage, declaration, and reachability checks
//  3. DOT: render the state graph for documentation
package flowdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Wildcard matches any kind in a rule or effect position.
const Wildcard = "*"

// Definition is the declarative mirror of one flow's route table.
type Definition struct {
	// Name identifies the flow.
	Name string `yaml:"name" json:"name"`

	// Root is the initial state kind. Reachability checks anchor
	// here.
	Root string `yaml:"root" json:"root"`

	// States declares every state kind the rules may reference.
	States []string `yaml:"states" json:"states"`

	// Events declares every event kind the rules may reference.
	Events []string `yaml:"events" json:"events"`

	// Rules lists the transitions in evaluation order.
	Rules []Rule `yaml:"rules" json:"rules"`

	// Effects lists the handlers covering the rules.
	Effects []Effect `yaml:"effects" json:"effects"`
}

// Rule is one declared transition.
type Rule struct {
	// Event is the triggering event kind.
	Event string `yaml:"event" json:"event"`

	// From is the source state kind, or "*" for any.
	From string `yaml:"from" json:"from"`

	// To is the declared target state kind.
	To string `yaml:"to" json:"to"`

	// Guarded marks rules the executable table narrows with a guard
	// predicate. Several guarded rules may share an (event, from)
	// pair; an unguarded rule shadows everything after it.
	Guarded bool `yaml:"guarded,omitempty" json:"guarded,omitempty"`

	// Dismissal marks edges that move toward the root. The
	// root-reachability check walks only these.
	Dismissal bool `yaml:"dismissal,omitempty" json:"dismissal,omitempty"`
}

// Effect is one declared handler.
type Effect struct {
	// Event is the handled event kind, or "*".
	Event string `yaml:"event" json:"event"`

	// From is the handled source kind, or "*".
	From string `yaml:"from" json:"from"`

	// To is the handled target kind, or "*".
	To string `yaml:"to" json:"to"`

	// Handler names the function that runs, for documentation.
	Handler string `yaml:"handler" json:"handler"`
}

// Parse unmarshals a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var definition Definition
	if err := yaml.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("parsing flow definition: %w", err)
	}
	return &definition, nil
}

// ParseJSONC strips comments and trailing commas from data, then
// unmarshals the remaining JSON.
func ParseJSONC(data []byte) (*Definition, error) {
	stripped := jsonc.ToJSON(data)

	var definition Definition
	if err := json.Unmarshal(stripped, &definition); err != nil {
		return nil, fmt.Errorf("parsing flow definition: %w", err)
	}
	return &definition, nil
}

// ReadFile reads a definition from disk, choosing the format by file
// extension: .yaml/.yml parse as YAML, .json/.jsonc as JSONC.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var definition *Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		definition, err = Parse(data)
	case ".json", ".jsonc":
		definition, err = ParseJSONC(data)
	default:
		return nil, fmt.Errorf("%s: unsupported flow definition extension (want .yaml, .yml, .json, or .jsonc)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definition, nil
}
