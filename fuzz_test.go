package tinyfat

import (
	"testing"
)

// FuzzOps drives a randomized sequence of ten of the twelve operations
// (all but Format and Pwd) through a single FS and checks the universal
// invariants of spec.md §8 after every step. 64-bit operation encoding,
// least-significant bits first:
//
//   - OP:       4 bits, which operation to perform.
//   - WHO:      4 bits, index into the set of names created so far.
//   - PERM:     3 bits, access rights for chmod.
//   - DATASIZE: top 16 bits, payload size for create.
//
// Grounded on _examples/soypat-fat/fuzz_test.go's FuzzFS, adapted from
// that package's open/read/write file-handle model to this package's
// stateless path-based operations.
func FuzzOps(f *testing.F) {
	const (
		opCreate uint64 = iota
		opCat
		opLs
		opCp
		opMv
		opRm
		opAppend
		opMkdir
		opCd
		opChmod

		whoOff      = 4
		permOff     = 8
		datasizeOff = 48
	)
	const totalBlocks = 96

	f.Add(opCreate, opCat, opLs|(1<<whoOff), opMkdir|(2<<whoOff),
		opCd|(2<<whoOff), opCreate|(3<<whoOff), opAppend|(1<<whoOff)|(3<<20),
		opChmod|(4<<permOff), opRm, opMv|(5<<whoOff))

	f.Fuzz(func(t *testing.T, op0, op1, op2, op3, op4, op5, op6, op7, op8, op9 uint64) {
		dev := NewMemDevice(totalBlocks)
		fs := &FS{}
		if err := fs.Format(dev, DefaultFormatConfig()); err != nil {
			t.Fatalf("format: %v", err)
		}

		var names []string
		var dirNames []string
		ops := [...]uint64{op0, op1, op2, op3, op4, op5, op6, op7, op8, op9}
		genName := func(who uint8) string {
			return string(rune('a' + who%26))
		}
		pick := func(who uint8) string {
			if len(names) == 0 {
				return ""
			}
			return names[int(who)%len(names)]
		}
		// pickAny draws from files and directories alike, so opMv/opRm/opCd
		// exercise directories too, not just the files opCreate/opCp add to
		// names.
		pickAny := func(who uint8) string {
			total := len(names) + len(dirNames)
			if total == 0 {
				return ""
			}
			i := int(who) % total
			if i < len(names) {
				return names[i]
			}
			return dirNames[i-len(names)]
		}

		for _, raw := range ops {
			op := raw & 0xf
			who := uint8(raw>>whoOff) & 0xf
			perm := uint8(raw>>permOff) & 0x7
			datasize := uint16(raw >> datasizeOff)
			if datasize > 4*BlockSize {
				datasize = datasize % (4 * BlockSize)
			}
			payload := make([]byte, datasize)

			switch op {
			case opCreate:
				name := "/" + genName(who)
				if err := fs.Create(name, payload); err == nil {
					names = append(names, name)
				}
			case opCat:
				fs.Cat(pick(who))
			case opLs:
				fs.Ls()
			case opCp:
				src := pick(who)
				if src == "" {
					break
				}
				dst := src + "_copy"
				if err := fs.Cp(src, dst); err == nil {
					names = append(names, dst)
				}
			case opMv:
				src := pickAny(who)
				if src == "" {
					break
				}
				fs.Mv(src, src+"_moved")
			case opRm:
				fs.Rm(pickAny(who))
			case opAppend:
				src, dst := pick(who), pick(who+1)
				if src == "" || dst == "" {
					break
				}
				fs.Append(src, dst)
			case opMkdir:
				name := "/" + genName(who) + "d"
				if err := fs.Mkdir(name); err == nil {
					dirNames = append(dirNames, name)
				}
			case opCd:
				fs.Cd(pickAny(who))
			case opChmod:
				target := pick(who)
				if target == "" {
					break
				}
				fs.Chmod(string(rune('0'+perm)), target)
			}

			checkInvariants(t, fs, totalBlocks)
		}
	})
}

// checkInvariants verifies the universal invariants of spec.md §8
// reachable purely from the FAT and the root directory tree.
func checkInvariants(t *testing.T, fs *FS, n int) {
	t.Helper()

	if fs.fat.fat.cells[RootBlock] != FatEOF || fs.fat.fat.cells[FATBlock] != FatEOF {
		t.Fatalf("fat[0] or fat[1] is not FatEOF")
	}

	seen := make(map[BlockIndex]bool)
	var walk func(block BlockIndex, isRoot bool)
	walk = func(block BlockIndex, isRoot bool) {
		db, err := fs.readDir(block)
		if err != nil {
			t.Fatalf("readDir(%d): %v", block, err)
		}
		if !isRoot {
			back := db.entries[BackLinkSlot]
			if !back.isDir() || back.name() != ".." {
				t.Fatalf("directory %d has malformed back-link slot 0", block)
			}
		}
		names := make(map[string]bool)
		for s := 1; s < EntriesPerBlock; s++ {
			e := db.entries[s]
			if !e.inUse() {
				continue
			}
			if names[e.name()] {
				t.Fatalf("duplicate sibling name %q in block %d", e.name(), block)
			}
			names[e.name()] = true

			steps := 0
			for b := range fs.fat.walkChain(e.firstBlock()) {
				if seen[b] {
					t.Fatalf("block %d reachable from more than one chain", b)
				}
				seen[b] = true
				if fs.fat.fat.cells[b] == FatFree {
					t.Fatalf("block %d on a chain has FatFree cell", b)
				}
				steps++
				if steps > n {
					t.Fatalf("chain from block %d exceeds total block count: cycle", e.firstBlock())
				}
			}
			if e.isDir() {
				walk(e.firstBlock(), false)
			}
		}
	}
	walk(RootBlock, true)

	for b := BlockIndex(2); int(b) < n; b++ {
		if !seen[b] && fs.fat.fat.cells[b] != FatFree {
			t.Fatalf("block %d is on no chain but fat cell is not FatFree", b)
		}
	}
}
