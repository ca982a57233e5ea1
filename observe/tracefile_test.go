// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package observe

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// largeRecord is big enough to cross the compression threshold so the
// lz4 and zstd paths are actually exercised.
func largeRecord(i int) Record {
	return Record{
		From:        "room",
		Event:       "openContent",
		To:          "content",
		FromDetail:  strings.Repeat("room detail ", 20),
		EventDetail: strings.Repeat("event detail ", 20),
		ToDetail:    strings.Repeat("to detail ", 20),
		Animated:    i%2 == 0,
		At:          time.Date(2026, 3, 1, 10, 0, i, 0, time.UTC),
	}
}

func TestTraceFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			writer, err := NewWriter(&buf, tag)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			const count = 5
			for i := 0; i < count; i++ {
				if err := writer.WriteRecord(largeRecord(i)); err != nil {
					t.Fatalf("WriteRecord(%d): %v", i, err)
				}
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			reader := NewReader(&buf)
			defer reader.Close()
			for i := 0; i < count; i++ {
				record, err := reader.Next()
				if err != nil {
					t.Fatalf("Next(%d): %v", i, err)
				}
				want := largeRecord(i)
				if !record.At.Equal(want.At) || record.Event != want.Event || record.Animated != want.Animated {
					t.Errorf("record %d = %+v, want %+v", i, record, want)
				}
			}
			if _, err := reader.Next(); err != io.EOF {
				t.Errorf("Next past end: %v, want io.EOF", err)
			}
		})
	}
}

func TestTraceFileSmallRecordsStoredRaw(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer, err := NewWriter(&buf, CompressionZstd)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := writer.WriteRecord(Record{Event: "back", At: time.Now()}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	defer writer.Close()

	if got := CompressionTag(buf.Bytes()[0]); got != CompressionNone {
		t.Errorf("small frame tagged %s, want none", got)
	}

	record, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if record.Event != "back" {
		t.Errorf("Event = %q, want back", record.Event)
	}
}

func TestTraceFileTruncated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer, err := NewWriter(&buf, CompressionNone)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := writer.WriteRecord(largeRecord(0)); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])
	if _, err := NewReader(truncated).Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated read error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestTraceFileUnknownTag(t *testing.T) {
	t.Parallel()

	if _, err := NewWriter(io.Discard, CompressionTag(9)); err == nil {
		t.Error("NewWriter accepted an unknown compression tag")
	}
}

func TestWriterStickyError(t *testing.T) {
	t.Parallel()

	writer, err := NewWriter(failingWriter{}, CompressionNone)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := writer.WriteRecord(largeRecord(0)); err == nil {
		t.Fatal("write to failing stream succeeded")
	}
	if writer.Err() == nil {
		t.Error("Err() is nil after a failed write")
	}
	// Recorder path must absorb rather than panic.
	writer.Record(largeRecord(1))
}

type failingWriter struct{}

func (failingWriter) Write(data []byte) (int, error) {
	return 0, errors.New("disk full")
}
