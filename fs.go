package tinyfat

import (
	"context"
	"log/slog"
)

// slogLevelTrace sits below slog.LevelDebug, for the chattiest
// block-level tracing (one line per block read/write), mirroring the
// teacher's own trace level below Debug.
const slogLevelTrace = slog.LevelDebug - 2

// FS is the long-lived object owning the in-memory FAT and the
// process-wide current working directory, threaded into every
// operation (SPEC_FULL.md §5, §9). The zero value is not usable until
// Mount or Format has been called on it.
type FS struct {
	dev BlockDevice
	fat *fatmgr
	cwd string
	log *slog.Logger
}

// SetLogger attaches a structured logger; passing nil silences logging.
// Unset by default, matching the teacher's opt-in tracing.
func (fs *FS) SetLogger(l *slog.Logger) { fs.log = l }

func (fs *FS) trace(msg string, args ...any) {
	if fs.log != nil {
		fs.log.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

func (fs *FS) debug(msg string, args ...any) {
	if fs.log != nil {
		fs.log.Debug(msg, args...)
	}
}

func (fs *FS) warn(msg string, args ...any) {
	if fs.log != nil {
		fs.log.Warn(msg, args...)
	}
}

func (fs *FS) logerror(msg string, err error, args ...any) {
	if fs.log != nil {
		fs.log.Error(msg, append(args, "err", err)...)
	}
}

// Mount attaches dev as the backing store and loads the in-memory FAT
// from FATBlock. The device is assumed already formatted; use Format to
// initialize a fresh one. Sets cwd to "/".
func (fs *FS) Mount(dev BlockDevice) error {
	if dev.NumBlocks() < 2 {
		return newErr("mount", "", InvalidArgument, "device too small to hold root and FAT blocks")
	}
	var buf [BlockSize]byte
	if err := dev.ReadBlock(FATBlock, buf[:]); err != nil {
		return ioErr("mount", "", err)
	}
	fs.dev = dev
	fs.fat = &fatmgr{fat: decodeFATBlock(buf[:]), n: dev.NumBlocks()}
	fs.cwd = "/"
	fs.trace("mounted", "numBlocks", dev.NumBlocks())
	return nil
}

// FormatConfig controls the initial root entry Format installs.
// Generalized from the teacher's FormatConfig (format.go), which
// selected among FAT12/16/32 layouts; this format has exactly one
// on-disk layout, so only the root's access rights are configurable.
type FormatConfig struct {
	RootAccessRights uint8
}

// DefaultFormatConfig returns the conventional rwx root.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{RootAccessRights: AccessRWX}
}

// Format zeroes every block of dev, installs the root directory in
// block 0, and initializes the FAT: FAT[0]=FAT[1]=FatEOF, FAT[2..N)=FatFree.
// It then mounts dev as the current device with cwd = "/".
func (fs *FS) Format(dev BlockDevice, cfg FormatConfig) error {
	n := dev.NumBlocks()
	if n < 2 {
		return newErr("format", "", InvalidArgument, "device too small to hold root and FAT blocks")
	}
	var zero [BlockSize]byte
	for b := BlockIndex(0); b < n; b++ {
		if err := dev.WriteBlock(b, zero[:]); err != nil {
			return ioErr("format", "", err)
		}
	}

	var root dirBlock
	root.entries[BackLinkSlot].setName("/")
	root.entries[BackLinkSlot].setEntryType(TypeDir)
	root.entries[BackLinkSlot].setFirstBlock(RootBlock)
	root.entries[BackLinkSlot].setAccessRights(cfg.RootAccessRights)
	root.entries[BackLinkSlot].setSize(0)
	var rootBuf [BlockSize]byte
	root.encode(rootBuf[:])
	if err := dev.WriteBlock(RootBlock, rootBuf[:]); err != nil {
		return ioErr("format", "", err)
	}

	fb := &fatBlock{}
	fb.cells[RootBlock] = FatEOF
	fb.cells[FATBlock] = FatEOF
	for i := BlockIndex(2); i < n && i < NumFATCells; i++ {
		fb.cells[i] = FatFree
	}
	var fatBuf [BlockSize]byte
	fb.encode(fatBuf[:])
	if err := dev.WriteBlock(FATBlock, fatBuf[:]); err != nil {
		return ioErr("format", "", err)
	}

	fs.dev = dev
	fs.fat = &fatmgr{fat: fb, n: n}
	fs.cwd = "/"
	fs.trace("formatted", "numBlocks", n)
	return nil
}

func (fs *FS) readDir(block BlockIndex) (*dirBlock, error) {
	var buf [BlockSize]byte
	if err := fs.dev.ReadBlock(block, buf[:]); err != nil {
		return nil, ioErr("readDir", "", err)
	}
	return decodeDirBlock(buf[:]), nil
}

func (fs *FS) writeDir(block BlockIndex, db *dirBlock) error {
	var buf [BlockSize]byte
	db.encode(buf[:])
	if err := fs.dev.WriteBlock(block, buf[:]); err != nil {
		return ioErr("writeDir", "", err)
	}
	return nil
}

func (fs *FS) flushFAT() error {
	var buf [BlockSize]byte
	fs.fat.fat.encode(buf[:])
	if err := fs.dev.WriteBlock(FATBlock, buf[:]); err != nil {
		return ioErr("flushFAT", "", err)
	}
	return nil
}

// Pwd returns the canonical current working directory.
func (fs *FS) Pwd() string { return fs.cwd }
