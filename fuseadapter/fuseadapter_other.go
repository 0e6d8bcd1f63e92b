//go:build !linux

package fuseadapter

import (
	"fmt"

	"github.com/halvorsen/tinyfat"
)

// Mount is unavailable outside Linux; bazil.org/fuse's kernel driver has
// no portable counterpart, mirroring
// _examples/ostafen-digler/internal/fuse/mount.go's !linux stub.
func Mount(mountpoint string, fs *tinyfat.FS) error {
	return fmt.Errorf("tinyfat fuse mount is only supported on Linux")
}
