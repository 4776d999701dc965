// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dam

import (
	"sort"

	"github.com/biodam/dam/block"
)

// Iterator provides a convenient forward-only loop interface over a
// Reader's archive, modeled on github.com/biogo/hts/bam's Iterator:
// successive calls to Next step through records; iteration stops
// unrecoverably at the end of the archive, at the end bound, or on the
// first error. Unlike FetchRead, the lines Iterator yields are NOT
// star-reinflated: they are returned in the archive's native dessicated
// form.
type Iterator struct {
	r *Reader

	blockPos int
	lineIdx  int
	lines    []string

	hasEnd bool
	end    string

	line string
	err  error
	done bool
}

// newIterator constructs an Iterator positioned at start (or the first
// record, if start is nil) and bounded above by end (or unbounded, if end
// is nil).
func newIterator(r *Reader, start, end *string) (*Iterator, error) {
	it := &Iterator{r: r}
	if end != nil {
		it.hasEnd, it.end = true, *end
	}

	if start == nil {
		it.lines = nil // lazily loaded by Next from blockPos 0, lineIdx 0
		return it, nil
	}

	pos, ok := r.idx.Locate(*start)
	if !ok {
		if r.idx.Len() > 0 && *start < r.idx.Entries[0].ID {
			// start sorts before every record: begin at the first block.
			return it, nil
		}
		it.done = true
		return it, nil
	}
	lines, err := r.fetchBlock(pos)
	if err != nil {
		return nil, err
	}
	idx := sort.Search(len(lines), func(i int) bool { return block.ReadID(lines[i]) >= *start })
	// If start sorts after every record in its candidate block, idx is
	// len(lines) and Next moves on to the first line of the following block.
	it.blockPos, it.lineIdx, it.lines = pos, idx, lines
	return it, nil
}

// Next advances the Iterator to the next record, returning true if one
// was found. After Next returns false, Error reports whether iteration
// stopped because of an error rather than exhaustion or the end bound.
func (it *Iterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.lines == nil {
		if it.blockPos >= it.r.idx.Len() {
			it.done = true
			return false
		}
		lines, err := it.r.fetchBlock(it.blockPos)
		if err != nil {
			it.err = err
			return false
		}
		it.lines = lines
	}
	for it.lineIdx >= len(it.lines) {
		it.blockPos++
		if it.blockPos >= it.r.idx.Len() {
			it.done = true
			return false
		}
		lines, err := it.r.fetchBlock(it.blockPos)
		if err != nil {
			it.err = err
			return false
		}
		it.lines, it.lineIdx = lines, 0
		if len(lines) == 0 {
			it.done = true
			return false
		}
	}
	candidate := it.lines[it.lineIdx]
	if it.hasEnd && block.ReadID(candidate) > it.end {
		it.done = true
		return false
	}
	it.line = candidate
	it.lineIdx++
	return true
}

// Record returns the most recent line read by a call to Next.
func (it *Iterator) Record() string { return it.line }

// Error returns the first error encountered during iteration, or nil if
// iteration stopped due to exhaustion or the end bound.
func (it *Iterator) Error() error { return it.err }

// Reset restarts the Iterator at the beginning of the archive, keeping its
// configured end bound.
func (it *Iterator) Reset() {
	it.blockPos, it.lineIdx, it.lines, it.line, it.err, it.done = 0, 0, nil, "", nil, false
}
