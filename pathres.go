package tinyfat

import "strings"

// resolved is the result of locating a path: a value copy of its
// 64-byte directory entry plus enough location information to mutate
// the slot it came from (block holding the slot, and the slot index
// within that block).
type resolved struct {
	entry       dirEntry
	parentBlock BlockIndex // directory block containing the slot
	slot        int        // slot index within parentBlock, or BackLinkSlot
}

// splitComponents splits a path on '/' and drops empty components
// (produced by "//" or a leading/trailing slash), per spec.md §4.2.
func splitComponents(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (fs *FS) components(path string) []string {
	if strings.HasPrefix(path, "/") {
		return splitComponents(path)
	}
	comps := splitComponents(fs.cwd)
	comps = append(comps, splitComponents(path)...)
	return comps
}

// rootSelf returns the root directory's own self-entry (block 0, slot 0).
func (fs *FS) rootSelf() (*resolved, error) {
	db, err := fs.readDir(RootBlock)
	if err != nil {
		return nil, err
	}
	return &resolved{entry: db.entries[BackLinkSlot], parentBlock: RootBlock, slot: BackLinkSlot}, nil
}

// resolve locates path (absolute or relative to cwd) and returns a copy
// of its directory entry. Fails with NotFound if any component does not
// resolve.
func (fs *FS) resolve(op, path string) (*resolved, error) {
	comps := fs.components(path)
	if len(comps) == 0 {
		return fs.rootSelf()
	}

	curBlock := RootBlock
	var r *resolved
	for i, comp := range comps {
		db, err := fs.readDir(curBlock)
		if err != nil {
			return nil, err
		}
		if comp == ".." {
			if curBlock == RootBlock {
				// cd .. from / is a no-op; resolving ".." at the root
				// stays at the root self-entry.
				r = &resolved{entry: db.entries[BackLinkSlot], parentBlock: RootBlock, slot: BackLinkSlot}
				curBlock = RootBlock
				continue
			}
			back := db.entries[BackLinkSlot]
			parentBlock := back.firstBlock()
			if i == len(comps)-1 {
				// Best-effort synthetic entry: the back-link slot
				// carries the parent's block but not its own name or
				// access rights as seen from its own parent. Degenerate
				// case (a path literally ending in ".."); good enough
				// to identify "this is a directory at parentBlock".
				var synth dirEntry
				synth.setName("..")
				synth.setEntryType(TypeDir)
				synth.setFirstBlock(parentBlock)
				synth.setAccessRights(AccessRWX)
				r = &resolved{entry: synth, parentBlock: curBlock, slot: BackLinkSlot}
			}
			curBlock = parentBlock
			continue
		}

		slot := -1
		for s := 1; s < EntriesPerBlock; s++ {
			if db.entries[s].inUse() && db.entries[s].name() == comp {
				slot = s
				break
			}
		}
		if slot == -1 {
			return nil, newErr(op, path, NotFound, "no such file or directory")
		}
		e := db.entries[slot]
		r = &resolved{entry: e, parentBlock: curBlock, slot: slot}
		if i < len(comps)-1 {
			if !e.isDir() {
				return nil, newErr(op, path, IsFile, "not a directory")
			}
			curBlock = e.firstBlock()
		}
	}
	return r, nil
}

// resolveParent locates the directory that would contain path's final
// component, without requiring that component to already exist. It
// returns that directory's block and the validated final name. Used by
// create, mkdir, and cp's destination.
func (fs *FS) resolveParent(op, path string) (BlockIndex, string, error) {
	comps := fs.components(path)
	if len(comps) == 0 {
		return 0, "", newErr(op, path, InvalidArgument, "empty destination path")
	}
	final := comps[len(comps)-1]
	final, err := validateName(op, final)
	if err != nil {
		return 0, "", err
	}

	curBlock := RootBlock
	for _, comp := range comps[:len(comps)-1] {
		db, err := fs.readDir(curBlock)
		if err != nil {
			return 0, "", err
		}
		if comp == ".." {
			if curBlock == RootBlock {
				continue
			}
			curBlock = db.entries[BackLinkSlot].firstBlock()
			continue
		}
		slot := -1
		for s := 1; s < EntriesPerBlock; s++ {
			if db.entries[s].inUse() && db.entries[s].name() == comp {
				slot = s
				break
			}
		}
		if slot == -1 {
			return 0, "", newErr(op, path, NotFound, "no such file or directory")
		}
		e := db.entries[slot]
		if !e.isDir() {
			return 0, "", newErr(op, path, IsFile, "not a directory")
		}
		curBlock = e.firstBlock()
	}
	return curBlock, final, nil
}

// canonicalize computes the canonical absolute form of path (resolving
// ".." by popping the last segment; "." has no special meaning and is
// kept as an ordinary segment), ending in "/", per spec.md §4.5's cd
// contract. It does not
// touch the device: it is pure string/stack manipulation over the
// combined component list, since cd's canonical-path bookkeeping does
// not require re-deriving names from back-link entries.
func (fs *FS) canonicalize(path string) string {
	comps := fs.components(path)
	stack := make([]string, 0, len(comps))
	for _, c := range comps {
		if c == ".." {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		stack = append(stack, c)
	}
	if len(stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(stack, "/") + "/"
}
