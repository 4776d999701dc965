// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dam

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/mmap"

	"github.com/biodam/dam/block"
)

// readerAt is the minimal handle a Reader needs onto the backing file:
// random access plus a way to release it.
type readerAt interface {
	io.ReaderAt
	Close() error
}

// sizer is satisfied by backing handles that know their own length
// without a stat call, such as *mmap.ReaderAt.
type sizer interface {
	Len() int
}

// Reader is the archive facade for random-access and sequential reads. It
// opens its backing file lazily, on the first accessor call, and thereafter
// holds a memory-mapped read-only view of the file (or a plain *os.File
// when mapping fails), parsed header, loaded
// block index and a byte-budgeted block cache, all for the Reader's
// lifetime.
//
// A Reader is not safe for concurrent use by multiple goroutines; open
// independent Readers for independent goroutines.
type Reader struct {
	path        string
	cacheBudget int

	once    sync.Once
	openErr error

	ra        readerAt
	header    Header
	samHeader []byte
	idx       *block.Index
	cache     *block.Cache

	hidden      *Iterator
	hiddenStart string
	hiddenEnd   string
	hiddenSet   bool
}

// Open returns a Reader for the archive at path, using DefaultCacheSize
// for its block cache. The file is not opened until the first accessor
// call.
func Open(path string) *Reader {
	return OpenCacheSize(path, DefaultCacheSize)
}

// OpenCacheSize is Open with an explicit block cache byte budget.
func OpenCacheSize(path string, cacheBudget int) *Reader {
	return &Reader{path: path, cacheBudget: cacheBudget}
}

func (r *Reader) ensureOpen() error {
	r.once.Do(func() { r.openErr = r.open() })
	return r.openErr
}

func (r *Reader) open() error {
	ra, err := mmap.Open(r.path)
	if err != nil {
		f, ferr := os.Open(r.path)
		if ferr != nil {
			return fmt.Errorf("dam: opening %s: %w", r.path, ferr)
		}
		r.ra = f
	} else {
		r.ra = ra
	}

	var hbuf [HeaderSize]byte
	if _, err := io.ReadFull(io.NewSectionReader(r.ra, 0, HeaderSize), hbuf[:]); err != nil {
		return fmt.Errorf("dam: reading header of %s: %w", r.path, err)
	}
	h, err := decodeHeader(hbuf)
	if err != nil {
		return err
	}
	r.header = h

	samLen := int64(h.BlockOffset) - int64(h.HeaderOffset)
	if samLen < 0 {
		return fmt.Errorf("%w: block_offset precedes header_offset", ErrMalformedArchive)
	}
	sam := make([]byte, samLen)
	if _, err := io.ReadFull(io.NewSectionReader(r.ra, int64(h.HeaderOffset), samLen), sam); err != nil {
		return fmt.Errorf("%w: reading SAM header: %v", ErrMalformedArchive, err)
	}
	r.samHeader = sam

	size, err := r.fileSize()
	if err != nil {
		return err
	}
	idxLen := size - int64(h.IndexOffset)
	if idxLen < 0 {
		return fmt.Errorf("%w: index_offset past end of file", ErrMalformedArchive)
	}
	idxBuf := make([]byte, idxLen)
	if _, err := io.ReadFull(io.NewSectionReader(r.ra, int64(h.IndexOffset), idxLen), idxBuf); err != nil {
		return fmt.Errorf("%w: reading index: %v", ErrMalformedArchive, err)
	}
	raw, err := block.Decompress(idxBuf)
	if err != nil {
		return fmt.Errorf("%w: decompressing index: %v", ErrMalformedArchive, err)
	}
	idx, err := block.Decode(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	r.idx = idx
	r.cache = block.NewCache(r.cacheBudget)
	return nil
}

func (r *Reader) fileSize() (int64, error) {
	if s, ok := r.ra.(sizer); ok {
		return int64(s.Len()), nil
	}
	fi, err := os.Stat(r.path)
	if err != nil {
		return 0, fmt.Errorf("dam: statting %s: %w", r.path, err)
	}
	return fi.Size(), nil
}

// Close releases the Reader's backing file handle.
func (r *Reader) Close() error {
	if r.ra == nil {
		return nil
	}
	return r.ra.Close()
}

// HeaderMagic returns the archive's 4 byte magic value, always "DAM1" for
// any Reader that opened successfully.
func (r *Reader) HeaderMagic() (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}
	return magic, nil
}

// FormatVersion returns the archive's format version number (e.g. 1.01).
func (r *Reader) FormatVersion() (float64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.header.Version, nil
}

// HeaderOffset returns the byte offset of the SAM header region, always
// HeaderSize.
func (r *Reader) HeaderOffset() (uint64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.header.HeaderOffset, nil
}

// BlockOffset returns the byte offset of the first compressed block.
func (r *Reader) BlockOffset() (uint64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.header.BlockOffset, nil
}

// IndexOffset returns the byte offset of the compressed block index.
func (r *Reader) IndexOffset() (uint64, error) {
	if err := r.ensureOpen(); err != nil {
		return 0, err
	}
	return r.header.IndexOffset, nil
}

// SourcePath returns the absolute path of the alignment file this archive
// was dessicated from.
func (r *Reader) SourcePath() (string, error) {
	if err := r.ensureOpen(); err != nil {
		return "", err
	}
	return r.header.SourcePath, nil
}

// SamHeader returns the raw SAM text header bytes.
func (r *Reader) SamHeader() ([]byte, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	return r.samHeader, nil
}

// fetchBlock returns the decoded, newline-split lines of block position i,
// consulting and populating the Reader's cache.
func (r *Reader) fetchBlock(i int) ([]string, error) {
	if lines, ok := r.cache.Get(i); ok {
		return lines, nil
	}
	begin, end := r.idx.Extent(i)
	length := end - begin
	if length <= 0 {
		return nil, nil
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(r.ra, begin, length), raw); err != nil {
		return nil, fmt.Errorf("%w: reading block %d: %v", ErrMalformedArchive, i, err)
	}
	plain, err := block.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing block %d: %v", ErrMalformedArchive, i, err)
	}
	lines := splitLines(plain)
	r.cache.Put(i, lines)
	return lines, nil
}

// splitLines splits plain on '\n' and drops the trailing empty element
// produced by the block's terminal newline.
func splitLines(plain []byte) []string {
	if len(plain) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(plain), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// lookupRecord locates, fetches and binary-searches the block that may
// contain read id, returning every matching line with "*" placeholders
// inserted as the sequence and quality columns.
// The search key is id+"\t" so that exact id matches are found and ids
// that merely share a prefix with another, longer id are not.
func (r *Reader) lookupRecord(id string) ([]string, error) {
	pos, ok := r.idx.Locate(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	lines, err := r.fetchBlock(pos)
	if err != nil {
		return nil, err
	}
	prefix := id + "\t"
	lo := sort.Search(len(lines), func(i int) bool { return lines[i] >= prefix })
	hi := lo
	for hi < len(lines) && strings.HasPrefix(lines[hi], prefix) {
		hi++
	}
	if lo == hi {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := make([]string, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = block.Reinflate(lines[i])
	}
	return out, nil
}

// FetchRead returns every archive record whose read id equals id, with the
// sequence and quality columns restored as "*" placeholders. It fails with
// ErrNotFound if no record has that id.
func (r *Reader) FetchRead(id string) ([]string, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	return r.lookupRecord(id)
}

// Iterator returns a forward-only Iterator over the archive restricted to
// read ids in [start, end] inclusive. A nil start begins at the first
// block; a nil end runs to the last record.
func (r *Reader) Iterator(start, end *string) (*Iterator, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	return newIterator(r, start, end)
}

// NextRead is a convenience wrapper around Iterator for callers that want
// to pull one dessicated line at a time without managing an Iterator
// value themselves. It owns a single hidden iterator keyed by (start,
// end); calling it again with the same bounds after exhaustion restarts
// iteration from the beginning.
func (r *Reader) NextRead(start, end *string) (line string, ok bool, err error) {
	if err := r.ensureOpen(); err != nil {
		return "", false, err
	}
	s, e := derefOrEmpty(start), derefOrEmpty(end)
	if r.hidden == nil || !r.hiddenSet || r.hiddenStart != s || r.hiddenEnd != e {
		it, err := newIterator(r, start, end)
		if err != nil {
			return "", false, err
		}
		r.hidden, r.hiddenStart, r.hiddenEnd, r.hiddenSet = it, s, e, true
	}
	if !r.hidden.Next() {
		r.hiddenSet = false
		return "", false, r.hidden.Error()
	}
	return r.hidden.Record(), true, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
