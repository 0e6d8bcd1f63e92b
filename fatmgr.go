package tinyfat

// fatmgr operates on the in-memory FAT mirror, held resident for the
// session lifetime per SPEC_FULL.md §5. All methods are pure in-memory
// operations; callers are responsible for flushing fat.cells back to
// FATBlock after a mutating call (the operations in ops.go and fileio.go
// do this through fs.flushFAT).
type fatmgr struct {
	fat *fatBlock
	n   BlockIndex // total addressable blocks, i.e. NumBlocks()
}

// findEmpty returns the smallest free block index in [2, n), or
// ErrOutOfSpace if none exists.
func (m *fatmgr) findEmpty() (BlockIndex, error) {
	for i := BlockIndex(2); i < m.n && i < NumFATCells; i++ {
		if m.fat.cells[i] == FatFree {
			return i, nil
		}
	}
	return 0, newErr("fatmgr", "", OutOfSpace, "no free blocks")
}

// findMultipleEmpty returns n distinct free block indices in ascending
// order, or ErrOutOfSpace with no partial allocation if fewer exist.
func (m *fatmgr) findMultipleEmpty(count int) ([]BlockIndex, error) {
	if count == 0 {
		return nil, nil
	}
	out := make([]BlockIndex, 0, count)
	for i := BlockIndex(2); i < m.n && i < NumFATCells && len(out) < count; i++ {
		if m.fat.cells[i] == FatFree {
			out = append(out, i)
		}
	}
	if len(out) < count {
		return nil, newErr("fatmgr", "", OutOfSpace, "not enough free blocks")
	}
	return out, nil
}

// linkChain sets fat[blocks[i]] = blocks[i+1] for each consecutive pair
// and terminates the chain with FatEOF.
func (m *fatmgr) linkChain(blocks []BlockIndex) {
	for i := 0; i < len(blocks)-1; i++ {
		m.fat.cells[blocks[i]] = int16(blocks[i+1])
	}
	if len(blocks) > 0 {
		m.fat.cells[blocks[len(blocks)-1]] = FatEOF
	}
}

// freeChain walks the chain starting at start, setting each visited cell
// to FatFree. Asserts (panics) if the chain exceeds the block count,
// which can only happen if the FAT already contains a cycle.
func (m *fatmgr) freeChain(start BlockIndex) {
	cur := start
	for steps := 0; ; steps++ {
		if steps > int(m.n) {
			panic("tinyfat: fat chain cycle detected in freeChain")
		}
		next := m.fat.cells[cur]
		m.fat.cells[cur] = FatFree
		if next == FatEOF {
			return
		}
		cur = BlockIndex(next)
	}
}

// walkChain returns an iterator over the block indices of the chain
// starting at start, in order, terminating after FatEOF. Restartable:
// callers may range over it more than once since it is a pure function
// of fat's current state.
func (m *fatmgr) walkChain(start BlockIndex) func(yield func(BlockIndex) bool) {
	return func(yield func(BlockIndex) bool) {
		cur := start
		for steps := 0; ; steps++ {
			if steps > int(m.n) {
				panic("tinyfat: fat chain cycle detected in walkChain")
			}
			if !yield(cur) {
				return
			}
			next := m.fat.cells[cur]
			if next == FatEOF {
				return
			}
			cur = BlockIndex(next)
		}
	}
}

// chainLen counts the blocks in the chain starting at start.
func (m *fatmgr) chainLen(start BlockIndex) int {
	n := 0
	for range m.walkChain(start) {
		n++
	}
	return n
}
