package writer

import "toaflow/processor"

// MultiSink fans each block out to every sink in order.
type MultiSink []processor.BlockSink

// WriteBlock forwards the block, stopping at the first sink error.
func (m MultiSink) WriteBlock(block []float32) error {
	for _, s := range m {
		if err := s.WriteBlock(block); err != nil {
			return err
		}
	}
	return nil
}
