package tinyfat

import "strconv"

// LsEntry is one line of a directory listing, per spec.md §4.5's ls
// contract (name, type, rights, size); formatting to text is a caller
// concern, out of scope here along with the rest of the shell layer.
type LsEntry struct {
	Name   string
	IsDir  bool
	Rights string
	Size   uint32
}

func rightsString(bits uint8) string {
	r := [3]byte{'-', '-', '-'}
	if bits&AccessRead != 0 {
		r[0] = 'r'
	}
	if bits&AccessWrite != 0 {
		r[1] = 'w'
	}
	if bits&AccessExecute != 0 {
		r[2] = 'x'
	}
	return string(r[:])
}

// Create allocates payload into a fresh chain and inserts a new file
// entry named path in its parent directory, failing with AlreadyExists
// if path already resolves.
func (fs *FS) Create(path string, payload []byte) error {
	parentBlock, name, err := fs.resolveParent("create", path)
	if err != nil {
		return err
	}
	db, err := fs.readDir(parentBlock)
	if err != nil {
		return err
	}
	if findSlot(db, name) != -1 {
		return newErr("create", path, AlreadyExists, "")
	}
	if firstFreeSlot(db) == -1 {
		return newErr("create", path, DirectoryFull, "")
	}

	first, err := fs.writeChain("create", path, payload)
	if err != nil {
		return err
	}

	var e dirEntry
	e.setName(name)
	e.setEntryType(TypeFile)
	e.setFirstBlock(first)
	e.setAccessRights(AccessRWX)
	e.setSize(uint32(len(payload)))
	if _, err := insertEntry("create", db, e); err != nil {
		return err
	}
	if err := fs.writeDir(parentBlock, db); err != nil {
		return err
	}
	fs.trace("create", "path", path, "size", len(payload))
	return fs.propagateSize("create", parentBlock, int64(len(payload)))
}

// Cat reads and returns exactly the entry's recorded size bytes.
func (fs *FS) Cat(path string) ([]byte, error) {
	r, err := fs.resolve("cat", path)
	if err != nil {
		return nil, err
	}
	if r.entry.isDir() {
		return nil, newErr("cat", path, IsDirectory, "")
	}
	if r.entry.accessRights()&AccessRead == 0 {
		return nil, newErr("cat", path, PermissionDenied, "")
	}
	return fs.readChain("cat", path, r.entry.firstBlock(), r.entry.size())
}

// Ls lists the children of cwd, omitting slot 0. Requires EXECUTE on
// cwd.
func (fs *FS) Ls() ([]LsEntry, error) {
	cur, err := fs.resolve("ls", fs.cwd)
	if err != nil {
		return nil, err
	}
	if cur.entry.accessRights()&AccessExecute == 0 {
		return nil, newErr("ls", fs.cwd, PermissionDenied, "")
	}
	db, err := fs.readDir(cur.entry.firstBlock())
	if err != nil {
		return nil, err
	}
	var out []LsEntry
	for s := 1; s < EntriesPerBlock; s++ {
		e := db.entries[s]
		if !e.inUse() {
			continue
		}
		out = append(out, LsEntry{
			Name:   e.name(),
			IsDir:  e.isDir(),
			Rights: rightsString(e.accessRights()),
			Size:   e.size(),
		})
	}
	return out, nil
}

// Cp duplicates src's bytes into a new file dst with default rwx
// rights, failing if src is missing, is a directory, or dst already
// exists.
func (fs *FS) Cp(src, dst string) error {
	srcR, err := fs.resolve("cp", src)
	if err != nil {
		return err
	}
	if srcR.entry.isDir() {
		return newErr("cp", src, IsDirectory, "")
	}

	parentBlock, name, err := fs.resolveParent("cp", dst)
	if err != nil {
		return err
	}
	db, err := fs.readDir(parentBlock)
	if err != nil {
		return err
	}
	if findSlot(db, name) != -1 {
		return newErr("cp", dst, AlreadyExists, "")
	}
	if firstFreeSlot(db) == -1 {
		return newErr("cp", dst, DirectoryFull, "")
	}

	first, err := fs.copyChain("cp", src, srcR.entry.firstBlock(), srcR.entry.size())
	if err != nil {
		return err
	}

	var e dirEntry
	e.setName(name)
	e.setEntryType(TypeFile)
	e.setFirstBlock(first)
	e.setAccessRights(AccessRWX)
	e.setSize(srcR.entry.size())
	if _, err := insertEntry("cp", db, e); err != nil {
		return err
	}
	if err := fs.writeDir(parentBlock, db); err != nil {
		return err
	}
	return fs.propagateSize("cp", parentBlock, int64(srcR.entry.size()))
}

// rewriteBackLink points dirBlock's own slot-0 ".." entry at newParent,
// used by Mv when a directory changes parents: the moved directory's
// back-link would otherwise still reference the block it was removed
// from, breaking propagateSize's upward walk.
func (fs *FS) rewriteBackLink(op string, dirBlock, newParent BlockIndex) error {
	db, err := fs.readDir(dirBlock)
	if err != nil {
		return err
	}
	db.entries[BackLinkSlot].setFirstBlock(newParent)
	return fs.writeDir(dirBlock, db)
}

// Mv moves or renames src to dst per spec.md §4.5: into a directory
// (preserving the source name) when dst resolves to one, replacing dst
// when dst resolves to a file, or renaming in place within src's parent
// otherwise.
func (fs *FS) Mv(src, dst string) error {
	srcR, err := fs.resolve("mv", src)
	if err != nil {
		return err
	}

	dstR, dstErr := fs.resolve("mv", dst)
	switch {
	case dstErr == nil && dstR.entry.isDir():
		targetBlock := dstR.entry.firstBlock()
		targetDB, err := fs.readDir(targetBlock)
		if err != nil {
			return err
		}
		name := srcR.entry.name()
		if collide := findSlot(targetDB, name); collide != -1 {
			if targetDB.entries[collide].isDir() {
				return newErr("mv", dst, AlreadyExists, "destination directory collides with an existing directory")
			}
			removed := targetDB.entries[collide]
			removeEntry(targetDB, collide)
			if err := fs.propagateSize("mv", targetBlock, -int64(removed.size())); err != nil {
				return err
			}
		}
		if firstFreeSlot(targetDB) == -1 {
			return newErr("mv", dst, DirectoryFull, "")
		}

		srcParentDB, err := fs.readDir(srcR.parentBlock)
		if err != nil {
			return err
		}
		removeEntry(srcParentDB, srcR.slot)
		if err := fs.writeDir(srcR.parentBlock, srcParentDB); err != nil {
			return err
		}
		if err := fs.propagateSize("mv", srcR.parentBlock, -int64(srcR.entry.size())); err != nil {
			return err
		}

		if _, err := insertEntry("mv", targetDB, srcR.entry); err != nil {
			return err
		}
		if err := fs.writeDir(targetBlock, targetDB); err != nil {
			return err
		}
		if srcR.entry.isDir() {
			if err := fs.rewriteBackLink("mv", srcR.entry.firstBlock(), targetBlock); err != nil {
				return err
			}
		}
		return fs.propagateSize("mv", targetBlock, int64(srcR.entry.size()))

	case dstErr == nil && !dstR.entry.isDir():
		dstParentDB, err := fs.readDir(dstR.parentBlock)
		if err != nil {
			return err
		}
		fs.fat.freeChain(dstR.entry.firstBlock())
		if err := fs.flushFAT(); err != nil {
			return err
		}
		removeEntry(dstParentDB, dstR.slot)
		if err := fs.writeDir(dstR.parentBlock, dstParentDB); err != nil {
			return err
		}
		if err := fs.propagateSize("mv", dstR.parentBlock, -int64(dstR.entry.size())); err != nil {
			return err
		}

		newEntry := srcR.entry
		newEntry.setName(dstR.entry.name())

		srcParentDB, err := fs.readDir(srcR.parentBlock)
		if err != nil {
			return err
		}
		removeEntry(srcParentDB, srcR.slot)
		if err := fs.writeDir(srcR.parentBlock, srcParentDB); err != nil {
			return err
		}
		if err := fs.propagateSize("mv", srcR.parentBlock, -int64(srcR.entry.size())); err != nil {
			return err
		}

		destParentBlock := dstR.parentBlock
		destParentDB, err := fs.readDir(destParentBlock)
		if err != nil {
			return err
		}
		if _, err := insertEntry("mv", destParentDB, newEntry); err != nil {
			return err
		}
		if err := fs.writeDir(destParentBlock, destParentDB); err != nil {
			return err
		}
		if newEntry.isDir() {
			if err := fs.rewriteBackLink("mv", newEntry.firstBlock(), destParentBlock); err != nil {
				return err
			}
		}
		return fs.propagateSize("mv", destParentBlock, int64(newEntry.size()))

	default:
		comps := fs.components(dst)
		if len(comps) == 0 {
			return newErr("mv", dst, InvalidArgument, "empty destination path")
		}
		name, err := validateName("mv", comps[len(comps)-1])
		if err != nil {
			return err
		}
		srcParentDB, err := fs.readDir(srcR.parentBlock)
		if err != nil {
			return err
		}
		renameEntry(srcParentDB, srcR.slot, name)
		return fs.writeDir(srcR.parentBlock, srcParentDB)
	}
}

// Rm removes path: frees its chain, zeroes its slot, and propagates the
// size delta to ancestors. Removing a non-empty directory is rejected
// (SPEC_FULL.md §9).
func (fs *FS) Rm(path string) error {
	r, err := fs.resolve("rm", path)
	if err != nil {
		return err
	}
	if r.entry.isDir() {
		target, err := fs.readDir(r.entry.firstBlock())
		if err != nil {
			return err
		}
		if !isEmptyDir(target) {
			return newErr("rm", path, DirectoryNotEmpty, "")
		}
	}

	fs.fat.freeChain(r.entry.firstBlock())
	if err := fs.flushFAT(); err != nil {
		return err
	}

	db, err := fs.readDir(r.parentBlock)
	if err != nil {
		return err
	}
	removeEntry(db, r.slot)
	if err := fs.writeDir(r.parentBlock, db); err != nil {
		return err
	}
	return fs.propagateSize("rm", r.parentBlock, -int64(r.entry.size()))
}

// Append appends src's full content onto dst, failing if either is
// missing or a directory, or dst lacks WRITE.
func (fs *FS) Append(src, dst string) error {
	srcR, err := fs.resolve("append", src)
	if err != nil {
		return err
	}
	if srcR.entry.isDir() {
		return newErr("append", src, IsDirectory, "")
	}
	dstR, err := fs.resolve("append", dst)
	if err != nil {
		return err
	}
	if dstR.entry.isDir() {
		return newErr("append", dst, IsDirectory, "")
	}
	if dstR.entry.accessRights()&AccessWrite == 0 {
		return newErr("append", dst, PermissionDenied, "")
	}

	payload, err := fs.readChain("append", src, srcR.entry.firstBlock(), srcR.entry.size())
	if err != nil {
		return err
	}
	if err := fs.appendChain("append", dst, dstR.entry.firstBlock(), dstR.entry.size(), payload); err != nil {
		return err
	}

	db, err := fs.readDir(dstR.parentBlock)
	if err != nil {
		return err
	}
	db.entries[dstR.slot].setSize(dstR.entry.size() + uint32(len(payload)))
	if err := fs.writeDir(dstR.parentBlock, db); err != nil {
		return err
	}
	return fs.propagateSize("append", dstR.parentBlock, int64(len(payload)))
}

// Mkdir creates an empty directory, failing with AlreadyExists if path
// already resolves.
func (fs *FS) Mkdir(path string) error {
	parentBlock, name, err := fs.resolveParent("mkdir", path)
	if err != nil {
		return err
	}
	db, err := fs.readDir(parentBlock)
	if err != nil {
		return err
	}
	if findSlot(db, name) != -1 {
		return newErr("mkdir", path, AlreadyExists, "")
	}
	if firstFreeSlot(db) == -1 {
		return newErr("mkdir", path, DirectoryFull, "")
	}

	blocks, err := fs.fat.findMultipleEmpty(1)
	if err != nil {
		return newErr("mkdir", path, OutOfSpace, "")
	}
	fs.fat.linkChain(blocks)
	if err := fs.flushFAT(); err != nil {
		return err
	}
	newBlock := blocks[0]

	var newDB dirBlock
	newDB.entries[BackLinkSlot].setName("..")
	newDB.entries[BackLinkSlot].setEntryType(TypeDir)
	newDB.entries[BackLinkSlot].setFirstBlock(parentBlock)
	newDB.entries[BackLinkSlot].setAccessRights(AccessRWX)
	if err := fs.writeDir(newBlock, &newDB); err != nil {
		return err
	}

	var e dirEntry
	e.setName(name)
	e.setEntryType(TypeDir)
	e.setFirstBlock(newBlock)
	e.setAccessRights(AccessRWX)
	if _, err := insertEntry("mkdir", db, e); err != nil {
		return err
	}
	return fs.writeDir(parentBlock, db)
}

// Cd sets cwd to the canonical absolute form of path, failing if path
// does not resolve to a directory.
func (fs *FS) Cd(path string) error {
	r, err := fs.resolve("cd", path)
	if err != nil {
		return err
	}
	if !r.entry.isDir() {
		return newErr("cd", path, IsFile, "not a directory")
	}
	fs.cwd = fs.canonicalize(path)
	return nil
}

// Chmod sets path's access_rights directly from bits, a decimal string
// of an integer in {0..7}.
func (fs *FS) Chmod(bits string, path string) error {
	n, err := strconv.Atoi(bits)
	if err != nil || n < 0 || n > 7 {
		return newErr("chmod", path, InvalidArgument, "bits must be a decimal integer in 0..7")
	}
	r, err := fs.resolve("chmod", path)
	if err != nil {
		return err
	}
	db, err := fs.readDir(r.parentBlock)
	if err != nil {
		return err
	}
	db.entries[r.slot].setAccessRights(uint8(n))
	return fs.writeDir(r.parentBlock, db)
}
