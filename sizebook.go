package tinyfat

// propagateSize adds delta to dirBlock's own size (as recorded in its
// parent's slot, or the root's self-entry if dirBlock is the root) and
// continues upward through each ancestor to the root, per spec.md §4.6.
// Nothing here recomputes a sum from scratch; each step applies the
// same incremental delta the caller already applied to the file's own
// entry.
func (fs *FS) propagateSize(op string, dirBlock BlockIndex, delta int64) error {
	cur := dirBlock
	for {
		if cur == RootBlock {
			db, err := fs.readDir(RootBlock)
			if err != nil {
				return err
			}
			applyDelta(&db.entries[BackLinkSlot], delta)
			return fs.writeDir(RootBlock, db)
		}

		child, err := fs.readDir(cur)
		if err != nil {
			return err
		}
		parentBlock := child.entries[BackLinkSlot].firstBlock()

		parent, err := fs.readDir(parentBlock)
		if err != nil {
			return err
		}
		found := false
		for s := 1; s < EntriesPerBlock; s++ {
			e := &parent.entries[s]
			if e.inUse() && e.isDir() && e.firstBlock() == cur {
				applyDelta(e, delta)
				found = true
				break
			}
		}
		if !found {
			return newErr(op, "", Io, "directory entry not found in its parent during size propagation")
		}
		if err := fs.writeDir(parentBlock, parent); err != nil {
			return err
		}
		cur = parentBlock
	}
}

func applyDelta(e *dirEntry, delta int64) {
	newSize := int64(e.size()) + delta
	if newSize < 0 {
		newSize = 0
	}
	e.setSize(uint32(newSize))
}
