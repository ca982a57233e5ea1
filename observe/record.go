// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package observe

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/traverse-foundation/traverse/flow"
)

// Record is one traced transition. Kinds identify the transition
// shape; the detail fields carry the String() rendering of the actual
// state and event values for human inspection.
type Record struct {
	From        flow.Kind `cbor:"from"`
	Event       flow.Kind `cbor:"event"`
	To          flow.Kind `cbor:"to"`
	FromDetail  string    `cbor:"from_detail,omitempty"`
	EventDetail string    `cbor:"event_detail,omitempty"`
	ToDetail    string    `cbor:"to_detail,omitempty"`
	Animated    bool      `cbor:"animated,omitempty"`
	At          time.Time `cbor:"at"`
}

// Recorder consumes trace records. Ring, Writer, and SlogSink all
// implement it.
type Recorder interface {
	Record(record Record)
}

// Sink adapts one or more Recorders to the coordinator's TraceSink
// contract, fanning each route out to all of them in order.
type Sink struct {
	recorders []Recorder
}

var _ flow.TraceSink = (*Sink)(nil)

// NewSink builds a Sink over recorders.
func NewSink(recorders ...Recorder) *Sink {
	return &Sink{recorders: recorders}
}

// Trace implements flow.TraceSink.
func (sink *Sink) Trace(route flow.Route, at time.Time) {
	record := Record{
		From:        route.From.Kind(),
		Event:       route.Event.Kind(),
		To:          route.To.Kind(),
		FromDetail:  detail(route.From),
		EventDetail: detail(route.Event),
		ToDetail:    detail(route.To),
		Animated:    route.Animated,
		At:          at,
	}
	for _, recorder := range sink.recorders {
		recorder.Record(record)
	}
}

// detail renders a state or event for the record. Values that
// implement fmt.Stringer render themselves; others fall back to the
// default formatting.
func detail(value any) string {
	if stringer, ok := value.(fmt.Stringer); ok {
		return stringer.String()
	}
	return fmt.Sprintf("%+v", value)
}

// SlogSink forwards records to a structured logger at debug level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink builds a SlogSink over logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Record implements Recorder.
func (sink *SlogSink) Record(record Record) {
	sink.logger.Debug("navigation transition",
		"from", record.From,
		"event", record.Event,
		"to", record.To,
		"from_detail", record.FromDetail,
		"to_detail", record.ToDetail,
		"animated", record.Animated)
}
