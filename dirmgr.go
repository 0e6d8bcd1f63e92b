package tinyfat

// findSlot scans slots 1..63 of db for an in-use entry named name.
func findSlot(db *dirBlock, name string) int {
	for s := 1; s < EntriesPerBlock; s++ {
		if db.entries[s].inUse() && db.entries[s].name() == name {
			return s
		}
	}
	return -1
}

// firstFreeSlot scans slots 1..63 of db for the first unused slot.
func firstFreeSlot(db *dirBlock) int {
	for s := 1; s < EntriesPerBlock; s++ {
		if !db.entries[s].inUse() {
			return s
		}
	}
	return -1
}

// insertEntry writes e into the first free slot of db, failing with
// DirectoryFull when none exists.
func insertEntry(op string, db *dirBlock, e dirEntry) (int, error) {
	s := firstFreeSlot(db)
	if s == -1 {
		return -1, newErr(op, e.name(), DirectoryFull, "directory has no free slot")
	}
	db.entries[s] = e
	return s, nil
}

// removeEntry zeroes slot s of db.
func removeEntry(db *dirBlock, s int) {
	db.entries[s].zero()
}

// renameEntry overwrites the name of slot s; caller has already
// validated newName's length via validateName.
func renameEntry(db *dirBlock, s int, newName string) {
	db.entries[s].setName(newName)
}

// isEmptyDir reports whether a directory block has no children beyond
// its reserved slot 0.
func isEmptyDir(db *dirBlock) bool {
	for s := 1; s < EntriesPerBlock; s++ {
		if db.entries[s].inUse() {
			return false
		}
	}
	return true
}
