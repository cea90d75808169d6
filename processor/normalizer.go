// Package processor turns a raw TOA set into the binned output series:
// normalization to sorted seconds-offsets, then a single block sweep that
// accumulates counts per bin.
package processor

import (
	"sort"

	"toaflow/models"
)

// Normalize sorts the TOA set ascending and converts it, in place, to
// seconds offset from the origin. The origin is the explicit epoch when one
// was configured, otherwise the earliest TOA. Day-unit values are scaled by
// models.SecondsPerDay; offsets may be negative when the epoch lies after
// some event.
//
// Sorting before conversion is safe: the conversion is the same positive
// affine transform for every value, so order is preserved.
//
// The origin actually used is returned in raw TOA units. An empty set with
// no explicit epoch normalizes to an empty set with origin 0.
func Normalize(toas []float64, params models.SeriesParams) float64 {
	sort.Float64s(toas)

	var origin float64
	switch {
	case params.Epoch != nil:
		origin = *params.Epoch
	case len(toas) > 0:
		origin = toas[0]
	}

	scale := models.SecondsPerDay
	if params.Seconds {
		scale = 1.0
	}
	for i := range toas {
		toas[i] = (toas[i] - origin) * scale
	}

	return origin
}
