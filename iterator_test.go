// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dam

import (
	check "gopkg.in/check.v1"

	"github.com/biodam/dam/block"
)

func fiveRecordArchive(c *check.C) *Reader {
	path := buildArchive(c, "", [][]string{
		{"r1\t0\tchrA\t100\t60\t10M\t*\t0\t0"},
		{"r2\t0\tchrA\t200\t60\t10M\t*\t0\t0", "r3\t0\tchrA\t250\t60\t10M\t*\t0\t0"},
		{"r4\t0\tchrA\t300\t60\t10M\t*\t0\t0", "r5\t0\tchrA\t350\t60\t10M\t*\t0\t0"},
	})
	return Open(path)
}

func collectIDs(c *check.C, it *Iterator) []string {
	var ids []string
	for it.Next() {
		ids = append(ids, block.ReadID(it.Record()))
	}
	c.Assert(it.Error(), check.IsNil)
	return ids
}

func (s *S) TestIteratorFullRange(c *check.C) {
	r := fiveRecordArchive(c)
	defer r.Close()

	it, err := r.Iterator(nil, nil)
	c.Assert(err, check.IsNil)
	c.Check(collectIDs(c, it), check.DeepEquals, []string{"r1", "r2", "r3", "r4", "r5"})
}

func (s *S) TestIteratorBoundedRange(c *check.C) {
	r := fiveRecordArchive(c)
	defer r.Close()

	start, end := "r2", "r4"
	it, err := r.Iterator(&start, &end)
	c.Assert(err, check.IsNil)
	c.Check(collectIDs(c, it), check.DeepEquals, []string{"r2", "r3", "r4"})
}

func (s *S) TestIteratorStartBetweenBlocks(c *check.C) {
	r := fiveRecordArchive(c)
	defer r.Close()

	start := "r3"
	it, err := r.Iterator(&start, nil)
	c.Assert(err, check.IsNil)
	c.Check(collectIDs(c, it), check.DeepEquals, []string{"r3", "r4", "r5"})
}

func (s *S) TestIteratorResetReplaysSameSequence(c *check.C) {
	r := fiveRecordArchive(c)
	defer r.Close()

	it, err := r.Iterator(nil, nil)
	c.Assert(err, check.IsNil)
	first := collectIDs(c, it)

	it.Reset()
	second := collectIDs(c, it)
	c.Check(second, check.DeepEquals, first)
}

func (s *S) TestIteratorDoesNotReinflate(c *check.C) {
	r := fiveRecordArchive(c)
	defer r.Close()

	it, err := r.Iterator(nil, nil)
	c.Assert(err, check.IsNil)
	c.Assert(it.Next(), check.Equals, true)
	c.Check(it.Record(), check.Equals, "r1\t0\tchrA\t100\t60\t10M\t*\t0\t0")
}
