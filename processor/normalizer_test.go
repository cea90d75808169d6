package processor

import (
	"math"
	"sort"
	"testing"

	"toaflow/models"
)

func TestNormalizeSortsAndZeroesEarliest(t *testing.T) {
	toas := []float64{5.0, 2.0, 9.0, 2.0}
	origin := Normalize(toas, models.SeriesParams{BinWidth: 1, Seconds: true})

	if origin != 2.0 {
		t.Errorf("origin = %g, want 2", origin)
	}
	if !sort.Float64sAreSorted(toas) {
		t.Errorf("normalized TOAs not sorted: %v", toas)
	}
	want := []float64{0, 0, 3, 7}
	for i := range want {
		if toas[i] != want[i] {
			t.Errorf("toas[%d] = %g, want %g", i, toas[i], want[i])
		}
	}
}

func TestNormalizeExplicitEpoch(t *testing.T) {
	epoch := 1.0
	toas := []float64{0.5, 2.5}
	origin := Normalize(toas, models.SeriesParams{BinWidth: 1, Seconds: true, Epoch: &epoch})

	if origin != 1.0 {
		t.Errorf("origin = %g, want 1", origin)
	}
	// The epoch lies after the first event, so its offset is negative.
	if toas[0] != -0.5 || toas[1] != 1.5 {
		t.Errorf("offsets = %v, want [-0.5 1.5]", toas)
	}
}

func TestNormalizeDayUnits(t *testing.T) {
	epoch := 54000.0
	toas := []float64{54001.0, 54000.5, 54000.0}
	Normalize(toas, models.SeriesParams{BinWidth: 1, Epoch: &epoch})

	want := []float64{0, 0.5 * models.SecondsPerDay, models.SecondsPerDay}
	for i := range want {
		if math.Abs(toas[i]-want[i]) > 1e-6 {
			t.Errorf("toas[%d] = %g, want %g", i, toas[i], want[i])
		}
	}
}

func TestNormalizeEmptySet(t *testing.T) {
	var toas []float64
	if origin := Normalize(toas, models.SeriesParams{BinWidth: 1}); origin != 0 {
		t.Errorf("origin = %g, want 0", origin)
	}
}

func TestNormalizeZeroEpochIsHonored(t *testing.T) {
	// An explicit zero epoch must not fall back to the earliest TOA.
	epoch := 0.0
	toas := []float64{3.0, 5.0}
	origin := Normalize(toas, models.SeriesParams{BinWidth: 1, Seconds: true, Epoch: &epoch})

	if origin != 0 {
		t.Errorf("origin = %g, want 0", origin)
	}
	if toas[0] != 3.0 || toas[1] != 5.0 {
		t.Errorf("offsets = %v, want [3 5]", toas)
	}
}
