// Package metadata reads the .inf sidecar files that describe a time
// series data file: its length in bins, the bin width in seconds and the
// observation epoch (MJD).
package metadata

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// InfData holds the subset of an .inf description file needed to rebuild a
// time series with matching parameters.
type InfData struct {
	// Name is the described data file name, without suffix.
	Name string
	// NumBins is the number of bins in the time series.
	NumBins int64
	// BinWidth is the width of each time series bin in seconds.
	BinWidth float64
	// Epoch is the epoch of observation as an MJD.
	Epoch float64
}

// ReadInf parses root+".inf". Lines beginning with '#' and blank lines are
// ignored; unrecognised keys are skipped so extended .inf variants still
// resolve.
func ReadInf(root string) (*InfData, error) {
	path := root + ".inf"
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open information file '%s': %w", path, err)
	}
	defer f.Close()

	inf := &InfData{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "Data file name"):
			inf.Name = quotedValue(trimmed)
		case strings.HasPrefix(trimmed, "Number of bins"):
			v, err := strconv.ParseInt(numericValue(trimmed), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad bin count in '%s': %w", path, err)
			}
			inf.NumBins = v
		case strings.HasPrefix(trimmed, "Width of each time series"):
			v, err := strconv.ParseFloat(numericValue(trimmed), 64)
			if err != nil {
				return nil, fmt.Errorf("bad bin width in '%s': %w", path, err)
			}
			inf.BinWidth = v
		case strings.HasPrefix(trimmed, "Epoch of observation"):
			// The epoch is taken as a single double; splitting it into
			// integer and fractional MJD parts adds nothing at this
			// precision.
			v, err := strconv.ParseFloat(numericValue(trimmed), 64)
			if err != nil {
				return nil, fmt.Errorf("bad epoch in '%s': %w", path, err)
			}
			inf.Epoch = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read information file '%s': %w", path, err)
	}

	return inf, nil
}

// numericValue returns the first whitespace-delimited token after '='.
func numericValue(line string) string {
	_, after, found := strings.Cut(line, "=")
	if !found {
		return ""
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// quotedValue returns the first double-quoted token on the line.
func quotedValue(line string) string {
	first := strings.Index(line, `"`)
	if first < 0 {
		return ""
	}
	rest := line[first+1:]
	second := strings.Index(rest, `"`)
	if second < 0 {
		return rest
	}
	return rest[:second]
}
