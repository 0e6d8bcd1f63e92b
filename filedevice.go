package tinyfat

import "os"

// FileDevice is a regular-file-backed BlockDevice, so a virtual disk
// persists across process restarts (spec.md §6). Grounded on the
// device-opening discipline of
// _examples/ostafen-digler/internal/disk/volume.go and stat.go, without
// their raw ioctl/mmap machinery: there is no real device to introspect
// here, only a plain file of known size (DESIGN.md explains the choice
// in full).
type FileDevice struct {
	f      *os.File
	blocks BlockIndex
}

// OpenFileDevice opens (or creates, if create is true) path as a
// numBlocks-block volume.
func OpenFileDevice(path string, numBlocks int, create bool) (*FileDevice, error) {
	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	size := int64(numBlocks) * BlockSize
	if create {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &FileDevice{f: f, blocks: BlockIndex(numBlocks)}, nil
}

func (d *FileDevice) NumBlocks() BlockIndex { return d.blocks }

func (d *FileDevice) ReadBlock(block BlockIndex, dst []byte) error {
	if err := checkBlockBuf(dst); err != nil {
		return err
	}
	if err := checkBlockRange(block, d.blocks); err != nil {
		return err
	}
	_, err := d.f.ReadAt(dst, int64(block)*BlockSize)
	return err
}

func (d *FileDevice) WriteBlock(block BlockIndex, src []byte) error {
	if err := checkBlockBuf(src); err != nil {
		return err
	}
	if err := checkBlockRange(block, d.blocks); err != nil {
		return err
	}
	_, err := d.f.WriteAt(src, int64(block)*BlockSize)
	return err
}

// Close releases the underlying file handle.
func (d *FileDevice) Close() error { return d.f.Close() }
