// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"testing"

	"github.com/kr/pretty"
	check "gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestCodecRoundTrip(c *check.C) {
	for _, in := range [][]byte{
		nil,
		[]byte("r1\t0\tchrA\t100\t60\t10M\t*\t0\t0\n"),
		[]byte(strRepeat("r1\t0\tchrA\t100\t60\t10M\t*\t0\t0\tXA:Z:foo\n", 1000)),
	} {
		comp, err := Compress(in)
		c.Assert(err, check.IsNil)
		out, err := Decompress(comp)
		c.Assert(err, check.IsNil)
		if len(in) == 0 {
			c.Check(len(out), check.Equals, 0)
			continue
		}
		c.Check(string(out), check.Equals, string(in), check.Commentf("%s", pretty.Diff(in, out)))
	}
}

func strRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func (s *S) TestIndexEncodeDecode(c *check.C) {
	idx := &Index{Entries: []Entry{
		{ID: "r1", Offset: 0},
		{ID: "r4", Offset: 128},
		{ID: Sentinel, Offset: 256},
	}}
	got, err := Decode(idx.Encode())
	c.Assert(err, check.IsNil)
	c.Check(got.Entries, check.DeepEquals, idx.Entries)
	c.Check(got.Len(), check.Equals, 2)
	begin, end := got.Extent(1)
	c.Check(begin, check.Equals, int64(128))
	c.Check(end, check.Equals, int64(256))
}

func (s *S) TestDecodeRejectsMissingSentinel(c *check.C) {
	idx := &Index{Entries: []Entry{{ID: "r1", Offset: 0}}}
	_, err := Decode(idx.Encode())
	c.Check(err, check.ErrorMatches, ".*sentinel.*")
}

func (s *S) TestLocate(c *check.C) {
	idx := &Index{Entries: []Entry{
		{ID: "r1", Offset: 0},
		{ID: "r3", Offset: 100},
		{ID: "r5", Offset: 200},
		{ID: Sentinel, Offset: 300},
	}}
	cases := []struct {
		k       string
		pos     int
		ok      bool
	}{
		{"r0", 0, false},
		{"r1", 0, true},
		{"r2", 0, true},
		{"r3", 1, true},
		{"r4", 1, true},
		{"r5", 2, true},
		{"r9", 2, true},
	}
	for _, t := range cases {
		pos, ok := idx.Locate(t.k)
		c.Check(ok, check.Equals, t.ok, check.Commentf("k=%s", t.k))
		if ok {
			c.Check(pos, check.Equals, t.pos, check.Commentf("k=%s", t.k))
		}
	}
}

func (s *S) TestCacheEviction(c *check.C) {
	cache := NewCache(40)
	cache.Put(0, []string{"aaaaaaaaaa"}) // 10 + 16 = 26 bytes
	cache.Put(1, []string{"bb"})         // 2 + 16 = 18 bytes; total 44 > 40, evicts 0
	_, ok := cache.Get(0)
	c.Check(ok, check.Equals, false)
	lines, ok := cache.Get(1)
	c.Check(ok, check.Equals, true)
	c.Check(lines, check.DeepEquals, []string{"bb"})
}

func (s *S) TestCacheGetPromotes(c *check.C) {
	cache := NewCache(1 << 20)
	cache.Put(0, []string{"a"})
	cache.Put(1, []string{"b"})
	cache.Get(0) // promote 0 to MRU
	c.Check(cache.root.prev.pos, check.Equals, 1)
	c.Check(cache.root.next.pos, check.Equals, 0)
}

func (s *S) TestDessicateReinflate(c *check.C) {
	full := "r1\t0\tchrA\t100\t60\t10M\t*\t0\t0\tACGTACGTAC\tIIIIIIIIII\tXA:Z:foo"
	want := "r1\t0\tchrA\t100\t60\t10M\t*\t0\t0\tXA:Z:foo"
	c.Check(Dessicate(full), check.Equals, want)
	c.Check(Reinflate(want), check.Equals, "r1\t0\tchrA\t100\t60\t10M\t*\t0\t0\t*\t*\tXA:Z:foo")
}

func (s *S) TestReadID(c *check.C) {
	c.Check(ReadID("r1\t0\tchrA"), check.Equals, "r1")
	c.Check(ReadID("r1"), check.Equals, "r1")
}
