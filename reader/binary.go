package reader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"toaflow/logger"
)

// SampleWidth selects the sample encoding of a raw binary TOA source.
type SampleWidth int

const (
	// Float32 marks sources holding 32-bit IEEE little-endian floats.
	Float32 SampleWidth = 4
	// Float64 marks sources holding 64-bit IEEE little-endian doubles.
	Float64 SampleWidth = 8
)

// ErrShortRead reports a binary source whose length is not a whole number
// of samples.
var ErrShortRead = errors.New("short read")

// LoadBinary reads every sample in r as a TOA. The TOA count is the source
// length divided by the sample width; a trailing partial sample is fatal.
// 32-bit samples are widened to double precision.
func LoadBinary(r io.Reader, width SampleWidth) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read TOA binary source: %w", err)
	}

	if len(data)%int(width) != 0 {
		return nil, fmt.Errorf("binary TOA source holds %d bytes, not a multiple of the %d-byte sample size: %w",
			len(data), width, ErrShortRead)
	}

	n := len(data) / int(width)
	toas := make([]float64, n)
	switch width {
	case Float32:
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(data[i*4:])
			toas[i] = float64(math.Float32frombits(bits))
		}
	case Float64:
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint64(data[i*8:])
			toas[i] = math.Float64frombits(bits)
		}
	default:
		return nil, fmt.Errorf("unsupported sample width %d", width)
	}

	logger.AddTOAsRead(int64(n))

	return toas, nil
}
