// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dam

import (
	"encoding/binary"
	"fmt"
)

// Header is the fixed 512 byte archive header. All offsets are measured
// from the start of the file.
type Header struct {
	Version      float64
	HeaderOffset uint64
	BlockOffset  uint64
	IndexOffset  uint64
	SourcePath   string
}

// NewHeader returns the header written at archive-creation time, before
// the body has been produced and the offsets are known.
func NewHeader(sourcePath string) (Header, error) {
	h := Header{
		Version:      FormatVersion,
		HeaderOffset: HeaderSize,
		SourcePath:   sourcePath,
	}
	if err := h.validatePath(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func (h *Header) validatePath() error {
	if offPath+len(h.SourcePath)+1 > HeaderSize {
		return fmt.Errorf("%w: %q is %d bytes, header has room for %d",
			ErrPathTooLong, h.SourcePath, len(h.SourcePath), HeaderSize-offPath-1)
	}
	return nil
}

// Encode packs h into a HeaderSize-byte little-endian buffer as described
// in format.go.
func (h *Header) Encode() ([HeaderSize]byte, error) {
	var buf [HeaderSize]byte
	if err := h.validatePath(); err != nil {
		return buf, err
	}
	copy(buf[offMagic:], magic)
	binary.LittleEndian.PutUint32(buf[offVer:], uint32(h.Version*100+0.5))
	binary.LittleEndian.PutUint64(buf[offHdrOff:], h.HeaderOffset)
	binary.LittleEndian.PutUint64(buf[offBlkOff:], h.BlockOffset)
	binary.LittleEndian.PutUint64(buf[offIdxOff:], h.IndexOffset)
	copy(buf[offPath:], h.SourcePath)
	// buf[offPath+len(h.SourcePath)] is left zero as the NUL terminator;
	// the remainder of buf is already zero-filled.
	return buf, nil
}

// decodeHeader unpacks a HeaderSize-byte buffer into a Header, validating
// the magic number and format version.
func decodeHeader(buf [HeaderSize]byte) (Header, error) {
	var h Header
	if string(buf[offMagic:offMagic+4]) != magic {
		return h, fmt.Errorf("%w: got %q", ErrBadMagic, buf[offMagic:offMagic+4])
	}
	ver := binary.LittleEndian.Uint32(buf[offVer:])
	if ver != encodedVersion {
		return h, fmt.Errorf("%w: archive is version %d.%02d, library expects %d.%02d",
			ErrUnsupportedVersion, ver/100, ver%100, encodedVersion/100, encodedVersion%100)
	}
	h.Version = float64(ver) / 100
	h.HeaderOffset = binary.LittleEndian.Uint64(buf[offHdrOff:])
	h.BlockOffset = binary.LittleEndian.Uint64(buf[offBlkOff:])
	h.IndexOffset = binary.LittleEndian.Uint64(buf[offIdxOff:])

	end := offPath
	for end < HeaderSize && buf[end] != 0 {
		end++
	}
	h.SourcePath = string(buf[offPath:end])
	return h, nil
}
