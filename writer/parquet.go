package writer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"toaflow/logger"
)

// binRecord defines the parquet schema for one bin of the output series.
type binRecord struct {
	Bin      int64   `parquet:"name=bin, type=INT64"`
	StartSec float64 `parquet:"name=start_sec, type=DOUBLE"`
	Count    float32 `parquet:"name=count, type=FLOAT"`
}

// memFileWriter adapts a byte buffer to the parquet source interface.
type memFileWriter struct{ buffer *bytes.Buffer }

func newMemFileWriter() *memFileWriter { return &memFileWriter{buffer: &bytes.Buffer{}} }

func (m *memFileWriter) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFileWriter) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFileWriter) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFileWriter) Read([]byte) (int, error)                  { return 0, nil }
func (m *memFileWriter) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFileWriter) Close() error                              { return nil }
func (m *memFileWriter) Bytes() []byte                             { return m.buffer.Bytes() }

// ParquetWriter renders the output series as parquet rows alongside the
// .dat file. It implements the block sink interface so the binning engine
// streams the same blocks through it.
type ParquetWriter struct {
	binWidth float64
	mw       *memFileWriter
	pw       *writer.ParquetWriter
	nextBin  int64
	log      *logger.Log
}

// NewParquetWriter prepares an in-memory parquet writer for a series with
// the given bin width. compression is one of snappy, gzip or none.
func NewParquetWriter(binWidth float64, compression string) (*ParquetWriter, error) {
	mw := newMemFileWriter()
	pw, err := writer.NewParquetWriter(mw, new(binRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch strings.ToLower(compression) {
	case "", "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	case "none":
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	default:
		return nil, fmt.Errorf("unsupported parquet compression '%s'", compression)
	}

	return &ParquetWriter{
		binWidth: binWidth,
		mw:       mw,
		pw:       pw,
		log:      logger.GetLogger(),
	}, nil
}

// WriteBlock appends one row per bin of the block.
func (p *ParquetWriter) WriteBlock(block []float32) error {
	for _, v := range block {
		rec := binRecord{
			Bin:      p.nextBin,
			StartSec: float64(p.nextBin) * p.binWidth,
			Count:    v,
		}
		if err := p.pw.Write(rec); err != nil {
			return fmt.Errorf("failed to write parquet row: %w", err)
		}
		p.nextBin++
	}
	return nil
}

// Close finalizes the parquet stream and returns the encoded file.
func (p *ParquetWriter) Close() ([]byte, error) {
	if err := p.pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	data := p.mw.Bytes()
	p.log.WithComponent("parquet_writer").WithFields(logger.Fields{
		"rows":  p.nextBin,
		"bytes": len(data),
	}).Debug("parquet series encoded")
	return data, nil
}
