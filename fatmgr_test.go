package tinyfat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFatmgr(n BlockIndex) *fatmgr {
	fb := &fatBlock{}
	fb.cells[RootBlock] = FatEOF
	fb.cells[FATBlock] = FatEOF
	for i := BlockIndex(2); i < n; i++ {
		fb.cells[i] = FatFree
	}
	return &fatmgr{fat: fb, n: n}
}

func TestFindEmptyReturnsSmallestFree(t *testing.T) {
	m := newTestFatmgr(8)
	b, err := m.findEmpty()
	require.NoError(t, err)
	require.Equal(t, BlockIndex(2), b)
}

func TestFindMultipleEmptyFailsWithNoPartialAllocation(t *testing.T) {
	m := newTestFatmgr(4) // blocks 2,3 free only
	before := m.fat.cells
	_, err := m.findMultipleEmpty(3)
	require.ErrorIs(t, err, ErrOutOfSpace)
	require.Equal(t, before, m.fat.cells)
}

func TestLinkAndWalkChain(t *testing.T) {
	m := newTestFatmgr(8)
	blocks := []BlockIndex{2, 4, 6}
	m.linkChain(blocks)

	var walked []BlockIndex
	for b := range m.walkChain(2) {
		walked = append(walked, b)
	}
	require.Equal(t, blocks, walked)
	require.Equal(t, FatEOF, m.fat.cells[6])
}

func TestFreeChainRestoresFree(t *testing.T) {
	m := newTestFatmgr(8)
	blocks := []BlockIndex{2, 3, 4}
	m.linkChain(blocks)
	m.freeChain(2)
	for _, b := range blocks {
		require.Equal(t, FatFree, m.fat.cells[b])
	}
}

func TestReservedCellsAlwaysEOF(t *testing.T) {
	m := newTestFatmgr(8)
	require.Equal(t, FatEOF, m.fat.cells[RootBlock])
	require.Equal(t, FatEOF, m.fat.cells[FATBlock])
}
