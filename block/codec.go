// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block implements the block-level machinery of a DAM archive:
// bzip2 compression of block and index payloads, the in-memory sparse
// block index, and a byte-budgeted LRU cache of decoded blocks.
package block

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Compress returns the bzip2-compressed form of p as a single bzip2
// stream, with no additional framing.
func Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("block: opening bzip2 writer: %w", err)
	}
	if _, err := w.Write(p); err != nil {
		w.Close()
		return nil, fmt.Errorf("block: compressing: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("block: closing bzip2 writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reads and inflates a single bzip2 stream held entirely in p.
func Decompress(p []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(p), nil)
	if err != nil {
		return nil, fmt.Errorf("block: opening bzip2 reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("block: decompressing: %w", err)
	}
	return out, nil
}
