// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package observe

import "sync"

// DefaultRingCapacity holds enough transitions for a long interactive
// session while staying trivially small in memory.
const DefaultRingCapacity = 4096

// Ring is a fixed-capacity circular buffer of trace records with
// sequence tracking. New records overwrite the oldest when the ring
// is full. Observers remember the sequence number from their last
// read and ask for "everything since", so a live inspector can poll
// without missing or duplicating transitions.
//
// All methods are safe for concurrent use.
type Ring struct {
	mutex    sync.Mutex
	records  []Record
	capacity int
	// total is the count of records ever written. The ring holds
	// records with sequence numbers [total-stored, total), where
	// stored = min(total, capacity).
	total uint64
}

var _ Recorder = (*Ring)(nil)

// NewRing creates a ring holding up to capacity records. A
// non-positive capacity falls back to DefaultRingCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{
		records:  make([]Record, capacity),
		capacity: capacity,
	}
}

// Record implements Recorder, appending one record and advancing the
// sequence.
func (ring *Ring) Record(record Record) {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()
	ring.records[int(ring.total%uint64(ring.capacity))] = record
	ring.total++
}

// Since returns all records written after sequence seq, oldest first,
// along with the sequence to pass on the next call. If seq is older
// than the oldest retained record, everything currently held is
// returned: the caller fell behind and missed some records.
func (ring *Ring) Since(seq uint64) ([]Record, uint64) {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()

	if seq >= ring.total {
		return nil, ring.total
	}

	stored := ring.total
	if stored > uint64(ring.capacity) {
		stored = uint64(ring.capacity)
	}
	oldest := ring.total - stored
	if seq < oldest {
		seq = oldest
	}

	out := make([]Record, 0, ring.total-seq)
	for s := seq; s < ring.total; s++ {
		out = append(out, ring.records[int(s%uint64(ring.capacity))])
	}
	return out, ring.total
}

// Len returns the number of records currently retained.
func (ring *Ring) Len() int {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()
	if ring.total > uint64(ring.capacity) {
		return ring.capacity
	}
	return int(ring.total)
}
