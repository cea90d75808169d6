package processor

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"toaflow/logger"
	"toaflow/models"
)

// BlockSink receives the completed output blocks of the series, in order.
// The slice handed to WriteBlock is reused for the next block and must not
// be retained.
type BlockSink interface {
	WriteBlock(block []float32) error
}

// Binner sweeps a sorted, normalized TOA set across a sequence of
// fixed-capacity output blocks, counting events per bin. One block buffer
// is live at a time; memory is bounded by the block capacity regardless of
// the series length.
type Binner struct {
	params   models.SeriesParams
	capacity int64
	log      *logger.Log
	progress *rate.Limiter
}

// NewBinner creates a binning engine for the given series parameters and
// block capacity (bins per block, capacity >= 1).
func NewBinner(params models.SeriesParams, capacity int) *Binner {
	return &Binner{
		params:   params,
		capacity: int64(capacity),
		log:      logger.GetLogger(),
		progress: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// NumBlocks returns the number of blocks the series will be emitted in.
func (b *Binner) NumBlocks() int64 {
	if b.params.NumOut%b.capacity != 0 {
		return b.params.NumOut/b.capacity + 1
	}
	return b.params.NumOut / b.capacity
}

// Run bins the TOA set into the output series, emitting each block to sink
// as soon as it is complete. toas must be ascending seconds-offsets from
// the series origin. It returns the number of TOAs placed into some bin;
// TOAs before the origin or at or beyond the series end are silently
// dropped and show up only as the found-minus-placed discrepancy.
//
// Each TOA is examined at most once: the cursor only ever advances, so the
// sweep is O(len(toas) + NumOut).
func (b *Binner) Run(toas []float64, sink BlockSink) (int64, error) {
	log := b.log.WithComponent("binner")

	dt := b.params.BinWidth
	numBlocks := b.NumBlocks()
	blockT := float64(b.capacity) * dt
	buf := make([]float32, b.capacity)

	var placed, beforeOrigin int64
	cursor := 0

	for i := int64(0); i < numBlocks; i++ {
		loTime := float64(i) * blockT
		blockLen := b.capacity
		if rem := b.params.NumOut % b.capacity; rem != 0 && i == numBlocks-1 {
			blockLen = rem
		}
		// The final block's window ends at the series end, not at the full
		// block span, so tail events land in no bin and count as dropped.
		hiTime := loTime + float64(blockLen)*dt

		block := buf[:blockLen]
		for j := range block {
			block[j] = 0
		}

		for cursor < len(toas) {
			toa := toas[cursor]
			if toa >= hiTime {
				break
			}
			if toa >= loTime {
				bin := int64(math.Floor((toa - loTime) / dt))
				// toa < hiTime bounds bin below blockLen up to division
				// rounding on the window edge.
				if bin >= blockLen {
					bin = blockLen - 1
				}
				block[bin]++
				placed++
			} else {
				// Only TOAs ahead of block 0's window can get here; the
				// cursor still advances so they are tested exactly once.
				beforeOrigin++
			}
			cursor++
		}

		if err := sink.WriteBlock(block); err != nil {
			return placed, fmt.Errorf("failed to write block %d of %d: %w", i+1, numBlocks, err)
		}

		if b.progress.Allow() {
			log.WithFields(logger.Fields{
				"block":  i + 1,
				"blocks": numBlocks,
				"placed": placed,
			}).Debug("block emitted")
		}
	}

	if beforeOrigin > 0 {
		log.WithFields(logger.Fields{"toas": beforeOrigin}).Debug("dropped TOAs ahead of the series origin")
	}
	logger.AddTOAsPlaced(placed)

	return placed, nil
}
