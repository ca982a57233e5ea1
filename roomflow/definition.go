// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import (
	_ "embed"

	"github.com/traverse-foundation/traverse/lib/flowdef"
)

//go:embed flow.yaml
var definitionSource []byte

// Definition returns the declarative mirror of the coordinator's
// route table, suitable for validation tooling and graph export. The
// compiled table remains the source of truth; tests assert the two
// agree.
func Definition() (*flowdef.Definition, error) {
	return flowdef.Parse(definitionSource)
}
