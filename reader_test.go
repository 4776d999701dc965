// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dam

import (
	"os"
	"path/filepath"
	"strings"

	check "gopkg.in/check.v1"

	"github.com/biodam/dam/block"
)

// buildArchive writes a well-formed DAM archive file directly from its
// block contents, without going through the Creator, so the Reader and
// Iterator can be tested in isolation.
func buildArchive(c *check.C, samHeader string, blocks [][]string) string {
	dir := c.MkDir()
	path := filepath.Join(dir, "test.dam")

	h, err := NewHeader("/source/input.bam")
	c.Assert(err, check.IsNil)

	blockOffset := int64(HeaderSize) + int64(len(samHeader))
	offset := blockOffset
	var entries []block.Entry
	var body []byte
	for _, lines := range blocks {
		if len(lines) == 0 {
			continue
		}
		plain := strings.Join(lines, "\n") + "\n"
		comp, err := block.Compress([]byte(plain))
		c.Assert(err, check.IsNil)
		entries = append(entries, block.Entry{ID: block.ReadID(lines[0]), Offset: offset})
		body = append(body, comp...)
		offset += int64(len(comp))
	}
	entries = append(entries, block.Entry{ID: block.Sentinel, Offset: offset})
	idx := &block.Index{Entries: entries}
	idxComp, err := block.Compress(idx.Encode())
	c.Assert(err, check.IsNil)
	indexOffset := offset

	h.BlockOffset = uint64(blockOffset)
	h.IndexOffset = uint64(indexOffset)
	hbuf, err := h.Encode()
	c.Assert(err, check.IsNil)

	var out []byte
	out = append(out, hbuf[:]...)
	out = append(out, samHeader...)
	out = append(out, body...)
	out = append(out, idxComp...)
	c.Assert(os.WriteFile(path, out, 0o644), check.IsNil)
	return path
}

func (s *S) TestReaderHeaderFields(c *check.C) {
	path := buildArchive(c, "@HD\tVN:1.6\n", [][]string{
		{"r1\t0\tchrA\t100\t60\t10M\t*\t0\t0"},
	})
	r := Open(path)
	defer r.Close()

	magic, err := r.HeaderMagic()
	c.Assert(err, check.IsNil)
	c.Check(magic, check.Equals, "DAM1")

	v, err := r.FormatVersion()
	c.Assert(err, check.IsNil)
	c.Check(v, check.Equals, FormatVersion)

	ho, err := r.HeaderOffset()
	c.Assert(err, check.IsNil)
	c.Check(ho, check.Equals, uint64(HeaderSize))

	sp, err := r.SourcePath()
	c.Assert(err, check.IsNil)
	c.Check(sp, check.Equals, "/source/input.bam")

	sam, err := r.SamHeader()
	c.Assert(err, check.IsNil)
	c.Check(string(sam), check.Equals, "@HD\tVN:1.6\n")
}

func (s *S) TestFetchReadReinflatesAndGroups(c *check.C) {
	path := buildArchive(c, "", [][]string{
		{
			"r1\t0\tchrA\t100\t60\t10M\t*\t0\t0",
			"r1\t0\tchrA\t150\t60\t10M\t*\t0\t0",
			"r2\t0\tchrA\t200\t60\t10M\t*\t0\t0",
		},
	})
	r := Open(path)
	defer r.Close()

	lines, err := r.FetchRead("r1")
	c.Assert(err, check.IsNil)
	c.Check(lines, check.DeepEquals, []string{
		"r1\t0\tchrA\t100\t60\t10M\t*\t0\t0\t*\t*",
		"r1\t0\tchrA\t150\t60\t10M\t*\t0\t0\t*\t*",
	})
}

func (s *S) TestFetchReadNotFoundBoundaries(c *check.C) {
	path := buildArchive(c, "", [][]string{
		{"r2\t0\tchrA\t100\t60\t10M\t*\t0\t0"},
		{"r4\t0\tchrA\t200\t60\t10M\t*\t0\t0"},
	})
	r := Open(path)
	defer r.Close()

	_, err := r.FetchRead("r0")
	c.Check(err, check.ErrorMatches, ".*not found.*")

	_, err = r.FetchRead("r9")
	c.Check(err, check.ErrorMatches, ".*not found.*")

	_, err = r.FetchRead("r3")
	c.Check(err, check.ErrorMatches, ".*not found.*")
}

func (s *S) TestNextReadRestartsOnExhaustion(c *check.C) {
	path := buildArchive(c, "", [][]string{
		{"r1\t0\tchrA\t100\t60\t10M\t*\t0\t0", "r2\t0\tchrA\t200\t60\t10M\t*\t0\t0"},
	})
	r := Open(path)
	defer r.Close()

	var first []string
	for {
		line, ok, err := r.NextRead(nil, nil)
		c.Assert(err, check.IsNil)
		if !ok {
			break
		}
		first = append(first, line)
	}
	c.Check(first, check.HasLen, 2)

	line, ok, err := r.NextRead(nil, nil)
	c.Assert(err, check.IsNil)
	c.Check(ok, check.Equals, true)
	c.Check(line, check.Equals, first[0])
}

func (s *S) TestEmptyArchive(c *check.C) {
	path := buildArchive(c, "@HD\tVN:1.6\n", nil)
	r := Open(path)
	defer r.Close()

	it, err := r.Iterator(nil, nil)
	c.Assert(err, check.IsNil)
	c.Check(it.Next(), check.Equals, false)
	c.Check(it.Error(), check.IsNil)

	_, err = r.FetchRead("anything")
	c.Check(err, check.ErrorMatches, ".*not found.*")
}
