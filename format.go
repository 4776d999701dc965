// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dam implements the DAM ("dessicated BAM") archive format: a
// compact on-disk container that keeps the mapping and annotation columns
// of an alignment dataset while omitting sequence and quality, so that a
// full SAM/BAM dataset can later be reconstructed by merging the archive
// against any file that still carries those columns.
package dam

const (
	// magic is the literal byte sequence at the start of every DAM file.
	magic = "DAM1"

	// FormatVersion is the version encoded as FormatVersion*100 in the
	// header.
	FormatVersion = 1.01

	// encodedVersion is the integer form of FormatVersion stored on disk.
	encodedVersion = uint32(FormatVersion * 100)

	// HeaderSize is the fixed size in bytes of the DAM header.
	HeaderSize = 512

	// BlockSize is the target, not hard, upper bound on the decompressed
	// size of a block. A block may exceed BlockSize when the read id
	// active at the point the bound is reached continues beyond it; see
	// Creator.
	BlockSize = 1 << 20 // 1,048,576 bytes.

	// DefaultCacheSize is the default byte budget for a Reader's block
	// cache, approximately 100 decompressed blocks.
	DefaultCacheSize = 100 * BlockSize
)

// Field offset layout within the 512 byte header:
//
//	offset  size  field
//	0       4     magic ("DAM1")
//	4       4     version (uint32, version number * 100)
//	8       8     header_offset (uint64)
//	16      8     block_offset (uint64)
//	24      8     index_offset (uint64)
//	32      ...   source_path, NUL-terminated
//	...     ...   zero padding to 512
const (
	offMagic  = 0
	offVer    = 4
	offHdrOff = 8
	offBlkOff = 16
	offIdxOff = 24
	offPath   = 32
)
