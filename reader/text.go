// Package reader loads times of arrival (TOAs) from text or raw binary
// sources into memory. Values are returned in whatever units and origin the
// source used; normalization happens downstream.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"toaflow/logger"
)

// LoadText reads ASCII TOAs from r, one per line. A line contributes a TOA
// iff it does not start with '#', is not blank, and its first
// whitespace-delimited token parses as a floating point number. Anything
// after the leading token is ignored.
func LoadText(r io.Reader) ([]float64, error) {
	log := logger.GetLogger().WithComponent("text_reader")

	toas := make([]float64, 0, 1024)
	skipped := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			skipped++
			continue
		}
		toas = append(toas, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TOA text source: %w", err)
	}

	if skipped > 0 {
		log.WithFields(logger.Fields{"lines": skipped}).Debug("skipped non-numeric lines")
	}
	logger.AddTOAsRead(int64(len(toas)))

	return toas, nil
}
