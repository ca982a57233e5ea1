// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package observe

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/traverse-foundation/traverse/lib/codec"
)

// CompressionTag identifies the compression algorithm of one trace
// frame. Tags are stored in the frame header (1 byte). These values
// are format constants; changing them breaks trace file
// compatibility.
type CompressionTag uint8

const (
	// CompressionNone stores the frame uncompressed. Also used
	// automatically for frames too small to benefit.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 uses LZ4 block compression: cheap, fast
	// decode, modest ratio. The default for live recording.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd uses zstd at its default level: better ratio
	// for long sessions archived to disk.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// minCompressSize is the smallest encoded record worth compressing.
// Below this the header overhead and CPU cost buy nothing.
const minCompressSize = 128

// frameHeaderSize is tag(1) + stored length(4) + raw length(4).
const frameHeaderSize = 9

// Writer appends trace records to a stream as length-prefixed frames
// of deterministic CBOR, each independently compressed so a reader
// can stop at any frame boundary and a truncated file loses only its
// tail.
//
// Writer is safe for concurrent use. Errors are sticky: after the
// first failure every subsequent write is a no-op and Err reports the
// cause.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	tag     CompressionTag
	zstdEnc *zstd.Encoder
	err     error
}

var _ Recorder = (*Writer)(nil)

// NewWriter creates a trace writer emitting frames compressed with
// tag. The caller retains ownership of out and closes it after Close.
func NewWriter(out io.Writer, tag CompressionTag) (*Writer, error) {
	writer := &Writer{out: out, tag: tag}
	switch tag {
	case CompressionNone, CompressionLZ4:
	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("observe: creating zstd encoder: %w", err)
		}
		writer.zstdEnc = encoder
	default:
		return nil, fmt.Errorf("observe: unsupported compression tag %s", tag)
	}
	return writer, nil
}

// Record implements Recorder. Failures are absorbed into the sticky
// error: tracing must never disturb navigation.
func (writer *Writer) Record(record Record) {
	_ = writer.WriteRecord(record)
}

// WriteRecord appends one record and returns any write error.
func (writer *Writer) WriteRecord(record Record) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.err != nil {
		return writer.err
	}

	raw, err := codec.Marshal(record)
	if err != nil {
		writer.err = fmt.Errorf("observe: encoding trace record: %w", err)
		return writer.err
	}
	if len(raw) > math.MaxUint32 {
		writer.err = fmt.Errorf("observe: trace record of %d bytes exceeds frame limit", len(raw))
		return writer.err
	}

	tag, stored := writer.compress(raw)

	var header [frameHeaderSize]byte
	header[0] = byte(tag)
	binary.BigEndian.PutUint32(header[1:5], uint32(len(stored)))
	binary.BigEndian.PutUint32(header[5:9], uint32(len(raw)))

	if _, err := writer.out.Write(header[:]); err != nil {
		writer.err = fmt.Errorf("observe: writing frame header: %w", err)
		return writer.err
	}
	if _, err := writer.out.Write(stored); err != nil {
		writer.err = fmt.Errorf("observe: writing frame payload: %w", err)
		return writer.err
	}
	return nil
}

// compress applies the writer's algorithm to raw, falling back to an
// uncompressed frame when compression would not shrink it.
func (writer *Writer) compress(raw []byte) (CompressionTag, []byte) {
	if writer.tag == CompressionNone || len(raw) < minCompressSize {
		return CompressionNone, raw
	}
	switch writer.tag {
	case CompressionLZ4:
		var compressor lz4.Compressor
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := compressor.CompressBlock(raw, buf)
		if err != nil || n == 0 || n >= len(raw) {
			// Incompressible data; store raw.
			return CompressionNone, raw
		}
		return CompressionLZ4, buf[:n]
	case CompressionZstd:
		compressed := writer.zstdEnc.EncodeAll(raw, nil)
		if len(compressed) >= len(raw) {
			return CompressionNone, raw
		}
		return CompressionZstd, compressed
	default:
		return CompressionNone, raw
	}
}

// Err returns the sticky error, if any.
func (writer *Writer) Err() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	return writer.err
}

// Close releases the writer's compression resources. It does not
// close the underlying stream.
func (writer *Writer) Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	if writer.zstdEnc != nil {
		writer.zstdEnc.Close()
		writer.zstdEnc = nil
	}
	return writer.err
}

// Reader decodes a trace stream written by Writer.
type Reader struct {
	in      io.Reader
	zstdDec *zstd.Decoder
}

// NewReader creates a trace reader over in.
func NewReader(in io.Reader) *Reader {
	return &Reader{in: in}
}

// Next returns the next record, or io.EOF cleanly at end of stream. A
// frame cut off mid-way returns io.ErrUnexpectedEOF.
func (reader *Reader) Next() (Record, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(reader.in, header[:1]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("observe: reading frame tag: %w", err)
	}
	if _, err := io.ReadFull(reader.in, header[1:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Record{}, fmt.Errorf("observe: reading frame header: %w", err)
	}

	tag := CompressionTag(header[0])
	storedLen := binary.BigEndian.Uint32(header[1:5])
	rawLen := binary.BigEndian.Uint32(header[5:9])

	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(reader.in, stored); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Record{}, fmt.Errorf("observe: reading frame payload: %w", err)
	}

	raw, err := reader.decompress(tag, stored, int(rawLen))
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := codec.Unmarshal(raw, &record); err != nil {
		return Record{}, fmt.Errorf("observe: decoding trace record: %w", err)
	}
	return record, nil
}

func (reader *Reader) decompress(tag CompressionTag, stored []byte, rawLen int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return stored, nil
	case CompressionLZ4:
		raw := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, fmt.Errorf("observe: lz4 decompress: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("observe: lz4 frame decompressed to %d bytes, header says %d", n, rawLen)
		}
		return raw, nil
	case CompressionZstd:
		if reader.zstdDec == nil {
			decoder, err := zstd.NewReader(nil)
			if err != nil {
				return nil, fmt.Errorf("observe: creating zstd decoder: %w", err)
			}
			reader.zstdDec = decoder
		}
		raw, err := reader.zstdDec.DecodeAll(stored, nil)
		if err != nil {
			return nil, fmt.Errorf("observe: zstd decompress: %w", err)
		}
		if len(raw) != rawLen {
			return nil, fmt.Errorf("observe: zstd frame decompressed to %d bytes, header says %d", len(raw), rawLen)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("observe: unknown compression tag %d", tag)
	}
}

// Close releases the reader's decompression resources.
func (reader *Reader) Close() {
	if reader.zstdDec != nil {
		reader.zstdDec.Close()
		reader.zstdDec = nil
	}
}
