package tinyfat

// blocksNeeded returns the number of BlockSize-sized blocks payload of
// length size requires. A zero-length payload still occupies one block
// (SPEC_FULL.md §9's resolution of the n=0-vs-n=1 open question).
func blocksNeeded(size int) int {
	if size == 0 {
		return 1
	}
	n := size / BlockSize
	if size%BlockSize != 0 {
		n++
	}
	return n
}

// readChain reads exactly size bytes starting at the chain headed by
// first, per spec.md §4.4's cat contract: the caller gets precisely
// size bytes even though the underlying chain is block-granular.
func (fs *FS) readChain(op, path string, first BlockIndex, size uint32) ([]byte, error) {
	out := make([]byte, 0, size)
	var buf [BlockSize]byte
	remaining := int(size)
	for blk := range fs.fat.walkChain(first) {
		if remaining <= 0 {
			break
		}
		if err := fs.dev.ReadBlock(blk, buf[:]); err != nil {
			return nil, ioErr(op, path, err)
		}
		n := remaining
		if n > BlockSize {
			n = BlockSize
		}
		out = append(out, buf[:n]...)
		remaining -= n
	}
	return out, nil
}

// writeChain allocates a fresh chain sized for payload, writes payload
// into it block by block (zero-padding the final block), links the
// chain, and returns its first block index.
func (fs *FS) writeChain(op, path string, payload []byte) (BlockIndex, error) {
	n := blocksNeeded(len(payload))
	blocks, err := fs.fat.findMultipleEmpty(n)
	if err != nil {
		return 0, newErr(op, path, OutOfSpace, "not enough free blocks")
	}
	var buf [BlockSize]byte
	for i, blk := range blocks {
		clear(buf[:])
		start := i * BlockSize
		end := start + BlockSize
		if end > len(payload) {
			end = len(payload)
		}
		if start < len(payload) {
			copy(buf[:], payload[start:end])
		}
		if err := fs.dev.WriteBlock(blk, buf[:]); err != nil {
			return 0, ioErr(op, path, err)
		}
	}
	fs.fat.linkChain(blocks)
	if err := fs.flushFAT(); err != nil {
		return 0, err
	}
	return blocks[0], nil
}

// copyChain duplicates the size-byte payload at first into a freshly
// allocated chain, leaving the source untouched.
func (fs *FS) copyChain(op, path string, first BlockIndex, size uint32) (BlockIndex, error) {
	payload, err := fs.readChain(op, path, first, size)
	if err != nil {
		return 0, err
	}
	return fs.writeChain(op, path, payload)
}

// appendChain appends payload to the end of the chain headed by first,
// whose current logical size is curSize, allocating new blocks only
// once the current tail block's free space is exhausted. The chain's
// first block is unchanged; the caller updates the entry's size.
func (fs *FS) appendChain(op, path string, first BlockIndex, curSize uint32, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	used := int(curSize) % BlockSize
	if curSize > 0 && used == 0 {
		used = BlockSize
	}
	free := BlockSize - used

	var tail BlockIndex
	for blk := range fs.fat.walkChain(first) {
		tail = blk
	}

	var buf [BlockSize]byte
	off := 0
	if free > 0 {
		if err := fs.dev.ReadBlock(tail, buf[:]); err != nil {
			return ioErr(op, path, err)
		}
		n := free
		if n > len(payload) {
			n = len(payload)
		}
		copy(buf[used:used+n], payload[:n])
		if err := fs.dev.WriteBlock(tail, buf[:]); err != nil {
			return ioErr(op, path, err)
		}
		off = n
	}

	remaining := payload[off:]
	if len(remaining) == 0 {
		return nil
	}
	n := blocksNeeded(len(remaining))
	newBlocks, err := fs.fat.findMultipleEmpty(n)
	if err != nil {
		return newErr(op, path, OutOfSpace, "not enough free blocks")
	}
	for i, blk := range newBlocks {
		clear(buf[:])
		start := i * BlockSize
		end := start + BlockSize
		if end > len(remaining) {
			end = len(remaining)
		}
		copy(buf[:], remaining[start:end])
		if err := fs.dev.WriteBlock(blk, buf[:]); err != nil {
			return ioErr(op, path, err)
		}
	}
	fs.fat.linkChain(append([]BlockIndex{tail}, newBlocks...))
	return fs.flushFAT()
}
