package models

// SecondsPerDay converts day-unit TOAs (e.g. Modified Julian Days) to seconds.
const SecondsPerDay = 86400.0

// SeriesParams holds the resolved parameters of the output time series.
// It is built once (from flags or an .inf sidecar) and never mutated.
type SeriesParams struct {
	// BinWidth is the width of each output bin in seconds.
	BinWidth float64
	// NumOut is the total number of bins in the output series.
	NumOut int64
	// Epoch is the explicit time origin in raw TOA units. When nil the
	// earliest TOA becomes the origin.
	Epoch *float64
	// Seconds reports whether raw TOAs are already in seconds. Otherwise
	// they are treated as days and scaled by SecondsPerDay.
	Seconds bool
}

// SpanSeconds returns the total time covered by the output series.
func (p SeriesParams) SpanSeconds() float64 {
	return float64(p.NumOut) * p.BinWidth
}

// Summary describes a completed conversion run.
type Summary struct {
	RunID   string `json:"run_id"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	Found   int64  `json:"found"`
	Placed  int64  `json:"placed"`
	Dropped int64  `json:"dropped"`
	Blocks  int64  `json:"blocks"`
	Bytes   int64  `json:"bytes"`
}
