// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Slab sizes for fzf's scratch allocator, matching fzf's own
// defaults. One slab serves one goroutine; the room list owns one.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

// fzf keeps its character-class and bonus tables in package state and
// fills them on Init. Without this call every non-empty pattern fails
// to match.
func init() {
	algo.Init("default")
}

// FuzzyResult is the outcome of matching one candidate string.
type FuzzyResult struct {
	// Matched is true when every pattern rune was found in order.
	Matched bool
	// Score ranks matches; higher is better.
	Score int
	// Positions are the matched rune indexes in the candidate, for
	// highlighting.
	Positions []int
}

// NewSlab allocates the scratch space FuzzyMatch needs. Reuse one
// slab for a whole filtering pass; it is not safe for concurrent use.
func NewSlab() *util.Slab {
	return util.MakeSlab(slab16Size, slab32Size)
}

// FuzzyMatch scores text against pattern with fzf's V2 algorithm.
// Matching is case-insensitive with Unicode normalization; lowercase
// the pattern before calling.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}
	matched := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		matched.Positions = *positions
	}
	return matched
}
