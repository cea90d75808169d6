package config

import (
	"fmt"
	"strings"

	"toaflow/internal/metadata"
	"toaflow/models"
)

// SeriesOptions carries the raw command line values that determine the
// shape of the output series.
type SeriesOptions struct {
	// BinWidth in seconds (-dt).
	BinWidth float64
	// NumOut is the number of output bins (-numout).
	NumOut int64
	// Epoch is the explicit time origin (-t0); EpochSet records whether the
	// flag was given at all, since zero is a valid origin.
	Epoch    float64
	EpochSet bool
	// Seconds marks raw TOAs as already being in seconds (-sec).
	Seconds bool
	// InfFile names an .inf sidecar (-inf) supplying bin width, series
	// length and epoch. A trailing ".inf" extension is optional.
	InfFile string
}

// ResolveSeries combines command line options with an optional .inf sidecar
// into the immutable series parameters. Sidecar values fill bin width and
// series length; its epoch is used only when -t0 was not given explicitly.
func ResolveSeries(opts SeriesOptions) (models.SeriesParams, error) {
	params := models.SeriesParams{
		BinWidth: opts.BinWidth,
		NumOut:   opts.NumOut,
		Seconds:  opts.Seconds,
	}
	if opts.EpochSet {
		epoch := opts.Epoch
		params.Epoch = &epoch
	}

	if opts.InfFile != "" {
		root := strings.TrimSuffix(opts.InfFile, ".inf")
		inf, err := metadata.ReadInf(root)
		if err != nil {
			return models.SeriesParams{}, err
		}
		params.BinWidth = inf.BinWidth
		params.NumOut = inf.NumBins
		if !opts.EpochSet {
			epoch := inf.Epoch
			params.Epoch = &epoch
		}
	}

	if params.BinWidth <= 0 {
		return models.SeriesParams{}, fmt.Errorf("bin width must be greater than 0 (got %g)", params.BinWidth)
	}
	if params.NumOut < 0 {
		return models.SeriesParams{}, fmt.Errorf("number of output bins must not be negative (got %d)", params.NumOut)
	}

	return params, nil
}
