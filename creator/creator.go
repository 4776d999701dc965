// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package creator implements dessication: streaming a read-id-sorted
// alignment source into a new DAM archive.
package creator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biodam/dam"
	"github.com/biodam/dam/block"
	"github.com/biodam/dam/external"
)

// Options configures a Create call.
type Options struct {
	// TmpDirs are passed to the external sort as -T hints.
	TmpDirs []string

	// Progress, if non-nil, is called after every block flushed to disk,
	// with the number of blocks flushed so far.
	Progress func(flushed int)
}

// Create dessicates the SAM or BAM alignment file at sourcePath into a new
// DAM archive at outPath.
func Create(sourcePath, outPath string, opts Options) (err error) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return fmt.Errorf("dam: resolving %s: %w", sourcePath, err)
	}

	stream, err := external.Open(sourcePath, opts.TmpDirs)
	if err != nil {
		return err
	}
	defer stream.Close()

	h, err := dam.NewHeader(abs)
	if err != nil {
		return err
	}
	hbuf, err := h.Encode()
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("dam: creating %s: %w", outPath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := out.Write(hbuf[:]); err != nil {
		return fmt.Errorf("dam: writing header: %w", err)
	}
	if _, err := out.Write(stream.Header); err != nil {
		return fmt.Errorf("dam: writing SAM header: %w", err)
	}

	blockOffset := int64(dam.HeaderSize) + int64(len(stream.Header))
	offset := blockOffset

	var (
		entries    []block.Entry
		buf        strings.Builder
		blockFirst string
		haveFirst  bool
		flushed    int
	)

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		comp, err := block.Compress([]byte(buf.String()))
		if err != nil {
			return fmt.Errorf("dam: compressing block: %w", err)
		}
		entries = append(entries, block.Entry{ID: blockFirst, Offset: offset})
		if _, err := out.Write(comp); err != nil {
			return fmt.Errorf("dam: writing block: %w", err)
		}
		offset += int64(len(comp))
		buf.Reset()
		haveFirst = false
		flushed++
		if opts.Progress != nil {
			opts.Progress(flushed)
		}
		return nil
	}

	for stream.Next() {
		line := stream.Text()
		if line == "" {
			continue
		}
		id := block.ReadID(line)
		dessicated := block.Dessicate(line)

		// The size cap is only honored when the id also changes: a single
		// oversized read-id group stays in one block regardless of size.
		if !haveFirst {
			blockFirst, haveFirst = id, true
		} else if id != blockFirst && buf.Len()+len(dessicated)+1 > dam.BlockSize {
			if err := flush(); err != nil {
				return err
			}
			blockFirst, haveFirst = id, true
		}
		buf.WriteString(dessicated)
		buf.WriteByte('\n')
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("dam: reading sorted input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	entries = append(entries, block.Entry{ID: block.Sentinel, Offset: offset})
	idx := &block.Index{Entries: entries}
	idxComp, err := block.Compress(idx.Encode())
	if err != nil {
		return fmt.Errorf("dam: compressing index: %w", err)
	}
	indexOffset := offset
	if _, err := out.Write(idxComp); err != nil {
		return fmt.Errorf("dam: writing index: %w", err)
	}

	h.BlockOffset = uint64(blockOffset)
	h.IndexOffset = uint64(indexOffset)
	hbuf, err = h.Encode()
	if err != nil {
		return err
	}
	if _, err := out.WriteAt(hbuf[:], 0); err != nil {
		return fmt.Errorf("dam: patching header: %w", err)
	}
	return nil
}
