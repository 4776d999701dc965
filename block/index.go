// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// Sentinel is the read id used to terminate an Index. It sorts after any
// printable-ASCII read id used in practice.
const Sentinel = "~"

// Entry pairs a block's first read id with the absolute file byte offset
// at which the block begins. The final Entry in an Index is always the
// Sentinel, whose Offset is the end of the block region (the archive's
// index_offset).
type Entry struct {
	ID     string
	Offset int64
}

// Index is the decoded, in-memory form of a DAM archive's block index.
// Entries is strictly ascending by ID and always ends with Sentinel.
type Index struct {
	Entries []Entry
}

// Encode serialises idx as a sequence of NUL-terminated id strings each
// followed by a little-endian uint64 offset, matching the on-disk index
// payload layout.
func (idx *Index) Encode() []byte {
	var buf bytes.Buffer
	var off [8]byte
	for _, e := range idx.Entries {
		buf.WriteString(e.ID)
		buf.WriteByte(0)
		binary.LittleEndian.PutUint64(off[:], uint64(e.Offset))
		buf.Write(off[:])
	}
	return buf.Bytes()
}

// Decode parses raw, the decompressed index payload, into an Index.
func Decode(raw []byte) (*Index, error) {
	var entries []Entry
	for len(raw) > 0 {
		nul := bytes.IndexByte(raw, 0)
		if nul < 0 {
			return nil, fmt.Errorf("block: index entry missing NUL terminator")
		}
		id := string(raw[:nul])
		raw = raw[nul+1:]
		if len(raw) < 8 {
			return nil, fmt.Errorf("block: truncated index offset for id %q", id)
		}
		off := int64(binary.LittleEndian.Uint64(raw[:8]))
		raw = raw[8:]
		entries = append(entries, Entry{ID: id, Offset: off})
	}
	if len(entries) == 0 || entries[len(entries)-1].ID != Sentinel {
		return nil, fmt.Errorf("block: index missing terminal sentinel")
	}
	return &Index{Entries: entries}, nil
}

// Len is the number of real blocks in the index, excluding the sentinel.
func (idx *Index) Len() int {
	if len(idx.Entries) == 0 {
		return 0
	}
	return len(idx.Entries) - 1
}

// Extent returns the absolute file byte range [begin, end) occupied by the
// compressed block at position i. Entry.Offset values are absolute file
// offsets, not offsets relative to the start of the block region: the
// sentinel's Offset equals the archive's index_offset exactly.
func (idx *Index) Extent(i int) (begin, end int64) {
	return idx.Entries[i].Offset, idx.Entries[i+1].Offset
}

// Locate returns the position of the block that may contain read id k, and
// reports whether any block could contain it, using a two-level lookup:
// the insertion position of k among the first-ids
// is found by binary search; an exact match at that position is itself the
// candidate block, otherwise the candidate is the block immediately before
// the insertion position (the last block whose first id does not exceed
// k). A candidate block found this way may still not contain k; that is
// confirmed by a second, line-level search inside the fetched block.
func (idx *Index) Locate(k string) (pos int, ok bool) {
	n := len(idx.Entries)
	i := sort.Search(n, func(i int) bool { return idx.Entries[i].ID >= k })
	if i < idx.Len() && idx.Entries[i].ID == k {
		return i, true
	}
	if i == 0 || i-1 >= idx.Len() {
		return 0, false
	}
	return i - 1, true
}
