// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rehydrate implements the merge between a DAM archive and an
// external sequence source that reconstructs full SAM text.
package rehydrate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/biodam/dam"
	"github.com/biodam/dam/block"
	"github.com/biodam/dam/external"
)

// Options configures a Rehydrate call.
type Options struct {
	// TmpDirs are passed to the external sort as -T hints.
	TmpDirs []string

	// PadMissing inserts "*" placeholders into the sequence and quality
	// columns of a dam record that has no match in the sequence source,
	// producing well-formed SAM instead of the source system's literal
	// under-populated line. Default false, matching that behavior.
	PadMissing bool

	// Progress, if non-nil, is called after every progressInterval merged
	// records, with the number of records written so far, and once more
	// with the final count when the merge ends on a count that is not a
	// multiple of progressInterval.
	Progress func(merged int)
}

// progressInterval is how often Options.Progress is called during a merge.
const progressInterval = 100000

// Rehydrate writes r's SAM header followed by every archive record to w,
// with sequence and quality columns reinjected from seqSourcePath where a
// matching read id exists. seqSourcePath may be a BAM, SAM, TAM, or
// (optionally gzip/bzip2-compressed) FASTQ file.
func Rehydrate(r *dam.Reader, seqSourcePath string, w io.Writer, opts Options) error {
	sam, err := r.SamHeader()
	if err != nil {
		return err
	}
	if _, err := w.Write(sam); err != nil {
		return fmt.Errorf("dam: writing SAM header: %w", err)
	}

	seq, err := openSequenceSource(seqSourcePath, opts.TmpDirs)
	if err != nil {
		return err
	}
	defer seq.Close()

	it, err := r.Iterator(nil, nil)
	if err != nil {
		return err
	}

	pending := seq.Next()
	var merged int
	for it.Next() {
		damLine := it.Record()
		damID := block.ReadID(damLine)

		for pending && block.ReadID(seq.Text()) < damID {
			pending = seq.Next()
		}
		if err := seq.Err(); err != nil {
			return fmt.Errorf("dam: reading sequence source: %w", err)
		}

		var out string
		if pending && block.ReadID(seq.Text()) == damID {
			out, err = mergeSeq(damLine, seq.Text())
			if err != nil {
				return err
			}
		} else if opts.PadMissing {
			out = block.Reinflate(damLine)
		} else {
			out = damLine
		}
		if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
			return fmt.Errorf("dam: writing output: %w", err)
		}
		merged++
		if opts.Progress != nil && merged%progressInterval == 0 {
			opts.Progress(merged)
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	if opts.Progress != nil && merged%progressInterval != 0 {
		opts.Progress(merged)
	}
	return nil
}

// mergeSeq splices the sequence and quality columns of seqLine into
// damLine, a dessicated dam record.
func mergeSeq(damLine, seqLine string) (string, error) {
	seqFields := strings.Split(seqLine, "\t")
	if len(seqFields) < 11 {
		return "", fmt.Errorf("dam: sequence source record %q is missing seq/qual columns", block.ReadID(seqLine))
	}
	fields := strings.Split(damLine, "\t")
	if len(fields) < 9 {
		return damLine, nil
	}
	out := make([]string, 0, len(fields)+2)
	out = append(out, fields[:9]...)
	out = append(out, seqFields[9], seqFields[10])
	out = append(out, fields[9:]...)
	return strings.Join(out, "\t"), nil
}

func openSequenceSource(path string, tmpDirs []string) (*external.SortedStream, error) {
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".bam"), strings.HasSuffix(lower, ".sam"), strings.HasSuffix(lower, ".tam"):
		return external.Open(path, tmpDirs)
	case strings.HasSuffix(lower, ".fastq"), strings.HasSuffix(lower, ".fastq.gz"), strings.HasSuffix(lower, ".fastq.bz2"), strings.HasSuffix(lower, ".fq"):
		return external.OpenFastq(path, tmpDirs)
	default:
		return nil, fmt.Errorf("%w: %s", dam.ErrUnknownExtension, filepath.Ext(path))
	}
}
