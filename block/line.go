// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import "strings"

// seqCol and qualCol are the zero-based SAM column positions of the
// sequence and quality fields, which a dessicated line omits.
const (
	seqCol  = 9
	qualCol = 10
)

// ReadID returns the first tab-delimited field of line, the read id used
// for sorting and lookup.
func ReadID(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	return line
}

// Dessicate removes the sequence and quality columns (9 and 10) from a
// full tab-delimited SAM line, returning the remaining columns rejoined by
// tabs.
func Dessicate(line string) string {
	fields := strings.Split(line, "\t")
	if len(fields) <= seqCol {
		return line
	}
	out := make([]string, 0, len(fields)-2)
	out = append(out, fields[:seqCol]...)
	if len(fields) > qualCol+1 {
		out = append(out, fields[qualCol+1:]...)
	}
	return strings.Join(out, "\t")
}

// Reinflate inserts "*" placeholders at the sequence and quality columns
// of a dessicated line, reconstituting well-formed SAM column shape for
// single-record retrieval.
func Reinflate(line string) string {
	fields := strings.Split(line, "\t")
	if len(fields) < seqCol {
		return line
	}
	out := make([]string, 0, len(fields)+2)
	out = append(out, fields[:seqCol]...)
	out = append(out, "*", "*")
	out = append(out, fields[seqCol:]...)
	return strings.Join(out, "\t")
}
