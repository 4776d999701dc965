// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

// Cache is a byte-budgeted LRU cache of decoded block line lists, keyed by
// block position. Slot-counted caches (as in github.com/biogo/hts/bgzf/cache)
// assume a fixed per-slot size; this one tracks a running byte total instead,
// since a DAM block's decompressed size varies with its read-id-group sizes
// rather than being bounded exactly by BlockSize.
//
// Cache is not safe for concurrent use; a Reader owns exactly one.
type Cache struct {
	root   node
	table  map[int]*node
	budget int
	size   int
}

type node struct {
	pos        int
	lines      []string
	size       int
	next, prev *node
}

// NewCache returns a Cache with the given byte budget. A budget of zero or
// less disables caching: Get always misses and Put is a no-op.
func NewCache(budget int) *Cache {
	c := &Cache{
		table:  make(map[int]*node),
		budget: budget,
	}
	c.root.next = &c.root
	c.root.prev = &c.root
	return c
}

// stringOverhead approximates the bookkeeping cost of a Go string header
// (pointer + length) per retained line, so the budget tracks actual memory
// pressure rather than just payload bytes.
const stringOverhead = 16

func lineSetSize(lines []string) int {
	size := 0
	for _, l := range lines {
		size += len(l) + stringOverhead
	}
	return size
}

func insertAfter(at, n *node) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
}

func remove(n *node, table map[int]*node) {
	delete(table, n.pos)
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
}

// Get returns the cached line list for block position, promoting it to
// most-recently-used on a hit.
func (c *Cache) Get(pos int) ([]string, bool) {
	n, ok := c.table[pos]
	if !ok {
		return nil, false
	}
	remove(n, c.table)
	insertAfter(&c.root, n)
	return n.lines, true
}

// Put inserts lines for block position into the cache, evicting
// least-recently-used entries until the cache is back within budget.
func (c *Cache) Put(pos int, lines []string) {
	if c.budget <= 0 {
		return
	}
	if _, ok := c.table[pos]; ok {
		return
	}
	n := &node{pos: pos, lines: lines, size: lineSetSize(lines)}
	c.table[pos] = n
	insertAfter(&c.root, n)
	c.size += n.size
	for c.size > c.budget && c.root.prev != &c.root {
		victim := c.root.prev
		c.size -= victim.size
		remove(victim, c.table)
	}
}

// Len reports the number of blocks currently retained.
func (c *Cache) Len() int { return len(c.table) }
