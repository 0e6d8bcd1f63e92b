package tinyfat

import "encoding/binary"

const (
	// BlockSize is the fixed unit of I/O against a BlockDevice.
	BlockSize = 4096

	// RootBlock holds the root directory. FATBlock holds the file
	// allocation table. Both are permanently reserved.
	RootBlock BlockIndex = 0
	FATBlock  BlockIndex = 1

	// NumFATCells is the number of 16-bit cells the FAT block holds.
	NumFATCells = BlockSize / 2

	// DirEntrySize is the on-disk size of one directory entry.
	DirEntrySize = 64
	// EntriesPerBlock is the number of directory-entry slots in one
	// directory block.
	EntriesPerBlock = BlockSize / DirEntrySize

	// BackLinkSlot is the reserved slot holding the ".." (or root "/")
	// self-referential entry.
	BackLinkSlot = 0

	// MaxNameLen is the longest name a dirEntry can hold, excluding the
	// NUL terminator.
	MaxNameLen = 55
)

// FAT cell sentinel values, per the on-disk format.
const (
	FatFree int16 = 0
	FatEOF  int16 = -1
)

// Entry type tags.
const (
	TypeFile uint8 = 0
	TypeDir  uint8 = 1
)

// Access rights bitmask.
const (
	AccessExecute uint8 = 0x01
	AccessWrite   uint8 = 0x02
	AccessRead    uint8 = 0x04

	AccessRWX = AccessRead | AccessWrite | AccessExecute
)

// BlockIndex addresses one BlockSize-sized block on the device.
type BlockIndex uint16

// dirEntry is a 64-byte directory-entry window, laid out little-endian:
//
//	off  0 : file_name[56]
//	off 56 : size          (uint32)
//	off 60 : first_blk     (uint16)
//	off 62 : type          (uint8)
//	off 63 : access_rights (uint8)
type dirEntry struct {
	b [DirEntrySize]byte
}

const (
	direntNameOff   = 0
	direntNameLen   = 56
	direntSizeOff   = 56
	direntBlkOff    = 60
	direntTypeOff   = 62
	direntAccessOff = 63
)

func (d *dirEntry) inUse() bool { return d.b[direntNameOff] != 0 }

func (d *dirEntry) name() string {
	n := d.b[direntNameOff : direntNameOff+direntNameLen]
	i := 0
	for i < len(n) && n[i] != 0 {
		i++
	}
	return string(n[:i])
}

func (d *dirEntry) setName(name string) {
	clear(d.b[direntNameOff : direntNameOff+direntNameLen])
	copy(d.b[direntNameOff:direntNameOff+direntNameLen], name)
}

func (d *dirEntry) size() uint32 {
	return binary.LittleEndian.Uint32(d.b[direntSizeOff:])
}

func (d *dirEntry) setSize(sz uint32) {
	binary.LittleEndian.PutUint32(d.b[direntSizeOff:], sz)
}

func (d *dirEntry) firstBlock() BlockIndex {
	return BlockIndex(binary.LittleEndian.Uint16(d.b[direntBlkOff:]))
}

func (d *dirEntry) setFirstBlock(blk BlockIndex) {
	binary.LittleEndian.PutUint16(d.b[direntBlkOff:], uint16(blk))
}

func (d *dirEntry) entryType() uint8 { return d.b[direntTypeOff] }

func (d *dirEntry) setEntryType(t uint8) { d.b[direntTypeOff] = t }

func (d *dirEntry) isDir() bool { return d.entryType() == TypeDir }

func (d *dirEntry) accessRights() uint8 { return d.b[direntAccessOff] }

func (d *dirEntry) setAccessRights(bits uint8) { d.b[direntAccessOff] = bits }

func (d *dirEntry) zero() { d.b = [DirEntrySize]byte{} }

// dirBlock is the in-memory decoding of one directory block: 64 fixed
// slots, slot 0 reserved for the back-link or root self-entry.
type dirBlock struct {
	entries [EntriesPerBlock]dirEntry
}

func decodeDirBlock(buf []byte) *dirBlock {
	var db dirBlock
	for i := range db.entries {
		copy(db.entries[i].b[:], buf[i*DirEntrySize:(i+1)*DirEntrySize])
	}
	return &db
}

func (db *dirBlock) encode(buf []byte) {
	for i := range db.entries {
		copy(buf[i*DirEntrySize:(i+1)*DirEntrySize], db.entries[i].b[:])
	}
}

// fatBlock is the in-memory decoding of the whole FAT: 2048 signed
// 16-bit cells held permanently resident, per SPEC_FULL.md §4.1 (the
// teacher's sector-windowing cache is unnecessary since the FAT here is
// exactly one block).
type fatBlock struct {
	cells [NumFATCells]int16
}

func decodeFATBlock(buf []byte) *fatBlock {
	var fb fatBlock
	for i := range fb.cells {
		fb.cells[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return &fb
}

func (fb *fatBlock) encode(buf []byte) {
	for i, c := range fb.cells {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(c))
	}
}
