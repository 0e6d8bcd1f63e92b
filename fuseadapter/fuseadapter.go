//go:build linux

// Package fuseadapter mounts a live *tinyfat.FS as a real, OS-visible
// filesystem via bazil.org/fuse. Grounded on
// _examples/ostafen-digler/internal/fuse/{fuse.go,mount_linux.go}'s
// Root()/Dir/File node pattern, adapted from a flat offset/size entry
// map to live Ls/Cat calls against a mounted *tinyfat.FS. The mount is
// read-only: directory listing and file reads are served, and no node
// handles create, write or append requests.
package fuseadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/halvorsen/tinyfat"
)

// TinyfatFS bridges a *tinyfat.FS into bazil.org/fuse's node model. Every
// handler that calls into the wrapped *tinyfat.FS holds mtx for the whole
// call, so no two such calls overlap — consistent with tinyfat's
// single-threaded resource model (SPEC_FULL.md §5, §12).
type TinyfatFS struct {
	mtx sync.Mutex
	fs  *tinyfat.FS
}

// New wraps fs for mounting.
func New(fs *tinyfat.FS) *TinyfatFS {
	return &TinyfatFS{fs: fs}
}

func (t *TinyfatFS) Root() (fusefs.Node, error) {
	return &dirNode{t: t, path: "/"}, nil
}

// dirNode represents one directory, addressed by its absolute path in
// the wrapped FS.
type dirNode struct {
	t    *TinyfatFS
	path string
}

func (d *dirNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0755
	return nil
}

func (d *dirNode) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	d.t.mtx.Lock()
	defer d.t.mtx.Unlock()

	prevCwd := d.t.fs.Pwd()
	defer d.t.fs.Cd(prevCwd)
	if err := d.t.fs.Cd(d.path); err != nil {
		return nil, fuse.ENOENT
	}
	entries, err := d.t.fs.Ls()
	if err != nil {
		return nil, fuse.ENOENT
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		child := joinPath(d.path, name)
		if e.IsDir {
			return &dirNode{t: d.t, path: child}, nil
		}
		return &fileNode{t: d.t, path: child, size: e.Size}, nil
	}
	return nil, fuse.ENOENT
}

func (d *dirNode) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.t.mtx.Lock()
	defer d.t.mtx.Unlock()

	prevCwd := d.t.fs.Pwd()
	defer d.t.fs.Cd(prevCwd)
	if err := d.t.fs.Cd(d.path); err != nil {
		return nil, fuse.ENOENT
	}
	entries, err := d.t.fs.Ls()
	if err != nil {
		return nil, err
	}
	out := make([]fuse.Dirent, 0, len(entries))
	for i, e := range entries {
		typ := fuse.DT_File
		if e.IsDir {
			typ = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Inode: uint64(i + 1), Name: e.Name, Type: typ})
	}
	return out, nil
}

func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// fileNode represents one regular file, addressed by its absolute path.
type fileNode struct {
	t    *TinyfatFS
	path string
	size uint32
}

func (f *fileNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0644
	a.Size = uint64(f.size)
	return nil
}

func (f *fileNode) ReadAll(ctx context.Context) ([]byte, error) {
	f.t.mtx.Lock()
	defer f.t.mtx.Unlock()
	return f.t.fs.Cat(f.path)
}

// Mount blocks serving mountpoint until a termination signal arrives,
// following the teacher's signal-driven unmount loop
// (_examples/ostafen-digler/internal/fuse/mount_linux.go).
func Mount(mountpoint string, fs *tinyfat.FS) error {
	created, err := PrepareMountpoint(mountpoint)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint)
	if err != nil {
		return err
	}
	defer c.Close()

	root := New(fs)
	go func() {
		srv := fusefs.New(c, nil)
		if err := srv.Serve(root); err != nil {
			log.Fatalf("tinyfat fuse serve error: %v", err)
		}
	}()
	return waitForUmount(mountpoint)
}

func waitForUmount(mountpoint string) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	const maxUnmountRetries = 3
	attempts := 0
	for sig := range sigc {
		log.Printf("signal received: %v", sig)
		if attempts >= maxUnmountRetries {
			log.Fatalf("maximum unmount retries (%d) exceeded for %s", maxUnmountRetries, mountpoint)
		}
		if err := fuse.Unmount(mountpoint); err == nil {
			return nil
		}
		attempts++
	}
	return nil
}

// PrepareMountpoint ensures mountpoint exists as an empty directory,
// creating it if absent. Reports whether it created it.
func PrepareMountpoint(mountpoint string) (bool, error) {
	finfo, err := os.Stat(mountpoint)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(mountpoint, 0755); err != nil {
			return false, fmt.Errorf("create mountpoint %s: %w", mountpoint, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat mountpoint %s: %w", mountpoint, err)
	}
	if !finfo.IsDir() {
		return false, fmt.Errorf("mountpoint %s is not a directory", mountpoint)
	}
	empty, err := isDirEmpty(mountpoint)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, fmt.Errorf("mountpoint %s is not empty", mountpoint)
	}
	return false, nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.Readdir(1)
	if err == io.EOF {
		return true, nil
	}
	return err != nil, err
}

var _ fusefs.HandleReadDirAller = (*dirNode)(nil)
var _ fusefs.HandleReadAller = (*fileNode)(nil)
