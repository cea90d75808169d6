// Package writer provides the output sinks of the conversion: the flat
// binary .dat series file, an optional parquet rendition and an optional
// S3 upload of the finished outputs.
package writer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"toaflow/logger"
)

// DatWriter appends fixed-size blocks of 32-bit little-endian IEEE floats
// to an output stream. The file layout is the flat concatenation of all
// blocks with no header.
type DatWriter struct {
	w       *bufio.Writer
	scratch []byte
	written int64
	log     *logger.Log
}

// NewDatWriter wraps w in a buffered block sink.
func NewDatWriter(w io.Writer) *DatWriter {
	return &DatWriter{
		w:   bufio.NewWriter(w),
		log: logger.GetLogger(),
	}
}

// WriteBlock encodes and appends one block of bin counts.
func (d *DatWriter) WriteBlock(block []float32) error {
	need := len(block) * 4
	if cap(d.scratch) < need {
		d.scratch = make([]byte, need)
	}
	buf := d.scratch[:need]
	for i, v := range block {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	if _, err := d.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write output block: %w", err)
	}
	d.written += int64(need)
	logger.AddBlockWritten(int64(need))

	return nil
}

// Flush drains the buffer to the underlying stream.
func (d *DatWriter) Flush() error {
	if err := d.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// BytesWritten reports the total payload bytes encoded so far.
func (d *DatWriter) BytesWritten() int64 {
	return d.written
}
