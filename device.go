package tinyfat

import "fmt"

// BlockDevice is the opaque backing store: a byte-addressable volume of
// NumBlocks fixed BlockSize-byte blocks, consumed whole-block at a time.
// Its own storage medium is explicitly out of scope for this package; it
// is implemented here only by the reference fakes in memdevice.go and
// filedevice.go.
type BlockDevice interface {
	// ReadBlock copies the contents of block into dst, which must have
	// length BlockSize.
	ReadBlock(block BlockIndex, dst []byte) error
	// WriteBlock writes src, which must have length BlockSize, to block.
	WriteBlock(block BlockIndex, src []byte) error
	// NumBlocks reports the fixed number of addressable blocks.
	NumBlocks() BlockIndex
}

func checkBlockBuf(buf []byte) error {
	if len(buf) != BlockSize {
		return fmt.Errorf("tinyfat: block buffer has length %d, want %d", len(buf), BlockSize)
	}
	return nil
}

func checkBlockRange(block, n BlockIndex) error {
	if block >= n {
		return &Error{Kind: InvalidArgument, Op: "device", Msg: fmt.Sprintf("block %d out of range [0,%d)", block, n)}
	}
	return nil
}
