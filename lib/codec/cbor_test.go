// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()

	value := map[string]any{"from": "room", "event": "openContent", "to": "content"}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding produced different bytes:\n%x\n%x", first, second)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	encoded, err := Marshal(map[string]any{"from": "root", "extra": "future field"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		From string `cbor:"from"`
	}
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.From != "root" {
		t.Errorf("From = %q, want %q", decoded.From, "root")
	}
}

func TestUnmarshalAnyUsesStringKeyedMaps(t *testing.T) {
	t.Parallel()

	encoded, err := Marshal(map[string]any{"nested": map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded top-level type %T, want map[string]any", decoded)
	}
	if _, ok := top["nested"].(map[string]any); !ok {
		t.Errorf("nested map type %T, want map[string]any", top["nested"])
	}
}

func TestStreamEncodeDecode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	for _, record := range []string{"first", "second", "third"} {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode(%q): %v", record, err)
		}
	}

	decoder := NewDecoder(&buf)
	for _, want := range []string{"first", "second", "third"} {
		var got string
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != want {
			t.Errorf("Decode = %q, want %q", got, want)
		}
	}
}
