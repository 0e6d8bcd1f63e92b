package tinyfat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T, numBlocks int) *FS {
	t.Helper()
	dev := NewMemDevice(numBlocks)
	fs := &FS{}
	require.NoError(t, fs.Format(dev, DefaultFormatConfig()))
	return fs
}

func TestCreateCatLs(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", []byte("hello")))

	got, err := fs.Cat("/a")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	entries, err := fs.Ls()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Name)
	require.False(t, entries[0].IsDir)
	require.Equal(t, "rwx", entries[0].Rights)
	require.Equal(t, uint32(5), entries[0].Size)
}

func TestCreateAlreadyExists(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", []byte("x")))
	err := fs.Create("/a", []byte("y"))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMkdirCdPwd(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Mkdir("/d"))
	require.NoError(t, fs.Cd("/d"))
	require.Equal(t, "/d/", fs.Pwd())
	require.NoError(t, fs.Create("f", []byte("x")))

	require.NoError(t, fs.Cd(".."))
	require.Equal(t, "/", fs.Pwd())
	entries, err := fs.Ls()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "d", entries[0].Name)
	require.True(t, entries[0].IsDir)
	require.Equal(t, uint32(1), entries[0].Size)
}

func TestCdDotDotFromRootIsNoop(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Cd(".."))
	require.Equal(t, "/", fs.Pwd())
}

func TestCpDuplicatesAndAllocates(t *testing.T) {
	fs := newTestFS(t, 64)
	payload := make([]byte, 5000)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, fs.Create("/a", payload))
	require.NoError(t, fs.Cp("/a", "/b"))

	got, err := fs.Cat("/b")
	require.NoError(t, err)
	require.Equal(t, payload, got)

	allocated := 0
	for b := BlockIndex(2); b < 64; b++ {
		if fs.fat.fat.cells[b] != FatFree {
			allocated++
		}
	}
	require.Equal(t, 4, allocated)
}

func TestAppend(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", []byte("AB")))
	require.NoError(t, fs.Create("/b", []byte("CD")))
	require.NoError(t, fs.Append("/a", "/b"))

	got, err := fs.Cat("/b")
	require.NoError(t, err)
	require.Equal(t, "CDAB", string(got))

	got, err = fs.Cat("/a")
	require.NoError(t, err)
	require.Equal(t, "AB", string(got))
}

func TestChmodPermissionDenied(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", []byte("x")))
	require.NoError(t, fs.Chmod("4", "/a"))

	got, err := fs.Cat("/a")
	require.NoError(t, err)
	require.Equal(t, "x", string(got))

	err = fs.Append("/a", "/a")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRmFreesChainAndUpdatesParentSize(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Mkdir("/d"))
	require.NoError(t, fs.Create("/d/f", []byte("z")))
	fBlock := mustFirstBlock(t, fs, "/d/f")
	require.NoError(t, fs.Rm("/d/f"))
	require.Equal(t, FatFree, fs.fat.fat.cells[fBlock])

	require.NoError(t, fs.Cd("/d"))
	entries, err := fs.Ls()
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, fs.Cd("/"))
	rootEntries, err := fs.Ls()
	require.NoError(t, err)
	require.Len(t, rootEntries, 1)
	require.Equal(t, uint32(0), rootEntries[0].Size)
}

func TestRmNonEmptyDirectoryRejected(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Mkdir("/d"))
	require.NoError(t, fs.Create("/d/f", []byte("z")))
	err := fs.Rm("/d")
	require.ErrorIs(t, err, ErrDirectoryNotEmpty)
}

func TestNameLengthBoundary(t *testing.T) {
	fs := newTestFS(t, 64)
	name55 := make([]byte, MaxNameLen)
	for i := range name55 {
		name55[i] = 'a'
	}
	require.NoError(t, fs.Create("/"+string(name55), []byte("x")))

	name56 := string(name55) + "a"
	err := fs.Create("/"+name56, []byte("x"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBlockSizeBoundaryAllocation(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/one", make([]byte, BlockSize)))
	require.NoError(t, fs.Create("/two", make([]byte, BlockSize+1)))

	oneR, err := fs.resolve("cat", "/one")
	require.NoError(t, err)
	require.Equal(t, 1, fs.fat.chainLen(oneR.entry.firstBlock()))

	twoR, err := fs.resolve("cat", "/two")
	require.NoError(t, err)
	require.Equal(t, 2, fs.fat.chainLen(twoR.entry.firstBlock()))
}

func TestAppendOneByteOntoBlockMultipleAllocatesOneBlock(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", make([]byte, BlockSize)))
	require.NoError(t, fs.Create("/b", []byte("x")))
	before := fs.fat.chainLen(mustFirstBlock(t, fs, "/a"))

	require.NoError(t, fs.Append("/b", "/a"))
	after := fs.fat.chainLen(mustFirstBlock(t, fs, "/a"))
	require.Equal(t, before+1, after)
}

func mustFirstBlock(t *testing.T, fs *FS, path string) BlockIndex {
	t.Helper()
	r, err := fs.resolve("test", path)
	require.NoError(t, err)
	return r.entry.firstBlock()
}

func TestMvPreservesNameIntoDirectory(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Mkdir("/d"))
	require.NoError(t, fs.Create("/a", []byte("x")))
	require.NoError(t, fs.Mv("/a", "/d"))

	got, err := fs.Cat("/d/a")
	require.NoError(t, err)
	require.Equal(t, "x", string(got))

	_, err = fs.Cat("/a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMvRenameInPlace(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", []byte("x")))
	require.NoError(t, fs.Mv("/a", "/b"))

	got, err := fs.Cat("/b")
	require.NoError(t, err)
	require.Equal(t, "x", string(got))
}

func TestScenarioFiveChmodReadOnly(t *testing.T) {
	fs := newTestFS(t, 64)
	require.NoError(t, fs.Create("/a", []byte("x")))
	require.NoError(t, fs.Chmod("4", "/a"))
	got, err := fs.Cat("/a")
	require.NoError(t, err)
	require.Equal(t, "x", string(got))
	err = fs.Append("/a", "/a")
	require.ErrorIs(t, err, ErrPermissionDenied)
}
