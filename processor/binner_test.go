package processor

import (
	"errors"
	"testing"

	"toaflow/models"
)

// captureSink records emitted blocks for inspection.
type captureSink struct {
	blocks [][]float32
}

func (c *captureSink) WriteBlock(block []float32) error {
	cp := make([]float32, len(block))
	copy(cp, block)
	c.blocks = append(c.blocks, cp)
	return nil
}

func (c *captureSink) series() []float32 {
	var out []float32
	for _, b := range c.blocks {
		out = append(out, b...)
	}
	return out
}

type failSink struct{}

func (failSink) WriteBlock([]float32) error { return errors.New("sink full") }

func seriesParams(dt float64, numOut int64) models.SeriesParams {
	return models.SeriesParams{BinWidth: dt, NumOut: numOut, Seconds: true}
}

func runBinner(t *testing.T, toas []float64, dt float64, numOut int64, capacity int) ([]float32, int64) {
	t.Helper()
	sink := &captureSink{}
	placed, err := NewBinner(seriesParams(dt, numOut), capacity).Run(toas, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return sink.series(), placed
}

func TestBinnerBasicSeries(t *testing.T) {
	// Scenario A: four TOAs, all within range.
	series, placed := runBinner(t, []float64{0.5, 1.5, 1.5, 9.9}, 1.0, 10, 16)

	want := []float32{1, 2, 0, 0, 0, 0, 0, 0, 0, 1}
	if len(series) != len(want) {
		t.Fatalf("expected %d bins, got %d", len(want), len(series))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("bin %d = %g, want %g", i, series[i], want[i])
		}
	}
	if placed != 4 {
		t.Errorf("placed = %d, want 4", placed)
	}
}

func TestBinnerDropsTOAsBeyondSeriesEnd(t *testing.T) {
	// Scenario B: series truncated to 5 bins drops the 9.9 TOA even though
	// it is inside the block buffer's full span.
	series, placed := runBinner(t, []float64{0.5, 1.5, 1.5, 9.9}, 1.0, 5, 16)

	want := []float32{1, 2, 0, 0, 0}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("bin %d = %g, want %g", i, series[i], want[i])
		}
	}
	if placed != 3 {
		t.Errorf("placed = %d, want 3", placed)
	}
}

func TestBinnerEmptyTOASet(t *testing.T) {
	// Scenario C: no TOAs still produces a full all-zero series.
	series, placed := runBinner(t, nil, 1.0, 3, 8)

	if len(series) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(series))
	}
	for i, v := range series {
		if v != 0 {
			t.Errorf("bin %d = %g, want 0", i, v)
		}
	}
	if placed != 0 {
		t.Errorf("placed = %d, want 0", placed)
	}
}

func TestBinnerBlockSplitMatchesSingleBlock(t *testing.T) {
	// Scenario D: capacity 2 emits blocks of lengths 2,2,1 whose
	// concatenation equals the single-block result.
	toas := []float64{0.5, 1.5, 1.5, 3.25, 4.9}

	sink := &captureSink{}
	placedSplit, err := NewBinner(seriesParams(1.0, 5), 2).Run(append([]float64(nil), toas...), sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	wantLens := []int{2, 2, 1}
	if len(sink.blocks) != len(wantLens) {
		t.Fatalf("expected %d blocks, got %d", len(wantLens), len(sink.blocks))
	}
	for i, n := range wantLens {
		if len(sink.blocks[i]) != n {
			t.Errorf("block %d length = %d, want %d", i, len(sink.blocks[i]), n)
		}
	}

	whole, placedWhole := runBinner(t, toas, 1.0, 5, 64)
	split := sink.series()
	if len(split) != len(whole) {
		t.Fatalf("series length mismatch: %d vs %d", len(split), len(whole))
	}
	for i := range whole {
		if split[i] != whole[i] {
			t.Errorf("bin %d: split %g, whole %g", i, split[i], whole[i])
		}
	}
	if placedSplit != placedWhole {
		t.Errorf("placed mismatch: split %d, whole %d", placedSplit, placedWhole)
	}
}

func TestBinnerBoundaryTick(t *testing.T) {
	// A TOA exactly on a bin boundary belongs to the bin that begins there.
	for _, dt := range []float64{1.0, 0.5, 0.25} {
		toas := []float64{3 * dt}
		series, placed := runBinner(t, toas, dt, 10, 16)
		if placed != 1 {
			t.Fatalf("dt=%g: placed = %d, want 1", dt, placed)
		}
		if series[3] != 1 {
			t.Errorf("dt=%g: bin 3 = %g, want 1", dt, series[3])
		}
		if series[2] != 0 || series[4] != 0 {
			t.Errorf("dt=%g: neighbours of bin 3 not empty: %g %g", dt, series[2], series[4])
		}
	}
}

func TestBinnerBoundaryAcrossBlocks(t *testing.T) {
	// A boundary tick that is also a block boundary lands in the first bin
	// of the next block.
	series, placed := runBinner(t, []float64{2.0}, 1.0, 6, 2)
	if placed != 1 {
		t.Fatalf("placed = %d, want 1", placed)
	}
	if series[2] != 1 {
		t.Errorf("bin 2 = %g, want 1", series[2])
	}
}

func TestBinnerDropsTOAsBeforeOrigin(t *testing.T) {
	series, placed := runBinner(t, []float64{-3.2, -0.1, 0.5, 2.5}, 1.0, 4, 16)
	if placed != 2 {
		t.Fatalf("placed = %d, want 2", placed)
	}
	want := []float32{1, 0, 1, 0}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("bin %d = %g, want %g", i, series[i], want[i])
		}
	}
}

func TestBinnerTOAAtSeriesEndDropped(t *testing.T) {
	// numOut*dt itself is outside the half-open series window.
	_, placed := runBinner(t, []float64{5.0}, 1.0, 5, 16)
	if placed != 0 {
		t.Errorf("placed = %d, want 0", placed)
	}
}

func TestBinnerZeroLengthSeries(t *testing.T) {
	sink := &captureSink{}
	placed, err := NewBinner(seriesParams(1.0, 0), 4).Run([]float64{0.5}, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(sink.blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(sink.blocks))
	}
	if placed != 0 {
		t.Errorf("placed = %d, want 0", placed)
	}
}

func TestBinnerBlockLengthLaw(t *testing.T) {
	// Sum of emitted block lengths equals the series length for any
	// capacity and length combination.
	for _, tc := range []struct {
		numOut   int64
		capacity int
	}{
		{0, 1}, {1, 1}, {5, 2}, {6, 2}, {7, 3}, {100, 7}, {64, 64}, {65, 64},
	} {
		sink := &captureSink{}
		if _, err := NewBinner(seriesParams(1.0, tc.numOut), tc.capacity).Run(nil, sink); err != nil {
			t.Fatalf("numOut=%d capacity=%d: %v", tc.numOut, tc.capacity, err)
		}
		var total int64
		for _, b := range sink.blocks {
			total += int64(len(b))
		}
		if total != tc.numOut {
			t.Errorf("numOut=%d capacity=%d: emitted %d bins", tc.numOut, tc.capacity, total)
		}
	}
}

func TestBinnerCountConservation(t *testing.T) {
	toas := []float64{-2.0, -0.5, 0.0, 0.25, 1.0, 3.999, 4.0, 7.5, 100.0}
	_, placed := runBinner(t, toas, 1.0, 4, 2)

	// In range: 0.0, 0.25, 1.0, 3.999.
	if placed != 4 {
		t.Errorf("placed = %d, want 4", placed)
	}
	if dropped := int64(len(toas)) - placed; dropped != 5 {
		t.Errorf("dropped = %d, want 5", dropped)
	}
}

func TestBinnerSinkError(t *testing.T) {
	_, err := NewBinner(seriesParams(1.0, 4), 2).Run([]float64{0.5}, failSink{})
	if err == nil {
		t.Fatal("expected sink error to propagate")
	}
}
