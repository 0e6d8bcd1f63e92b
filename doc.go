// Package tinyfat implements a small block-addressed file system over an
// opaque BlockDevice: a hierarchical directory tree, variable-length
// files, UNIX-style access rights, and the twelve operations that make up
// its command surface (Format, Create, Cat, Ls, Cp, Mv, Rm, Append,
// Mkdir, Cd, Pwd, Chmod).
//
// The on-disk layout is fixed: block 0 is the root directory, block 1 is
// the file allocation table, and blocks 2..N-1 hold file payloads and
// further directory blocks. There is no boot sector and no partitioning;
// the layout is implied by convention rather than parsed from a
// superblock.
package tinyfat
