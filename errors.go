// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dam

import "errors"

// Sentinel errors identifying the failure modes callers need to
// distinguish. Callers should use errors.Is against these values; wrapped
// errors returned by this package carry additional context via
// fmt.Errorf's %w verb.
var (
	// ErrBadMagic is returned when a file's first four bytes are not "DAM1".
	ErrBadMagic = errors.New("dam: bad magic number")

	// ErrUnsupportedVersion is returned when a header's version does not
	// match FormatVersion.
	ErrUnsupportedVersion = errors.New("dam: unsupported format version")

	// ErrPathTooLong is returned when a source path does not fit in the
	// header's remaining byte budget.
	ErrPathTooLong = errors.New("dam: source path too long for header")

	// ErrNotFound is returned by single-read lookups when the requested
	// read id is absent from the archive.
	ErrNotFound = errors.New("dam: read id not found")

	// ErrExternalTool is returned when a spawned external process exits
	// with a nonzero status or cannot be started.
	ErrExternalTool = errors.New("dam: external tool failed")

	// ErrMalformedArchive is returned for structural problems discovered
	// while reading an archive: a corrupt index, a truncated block, or a
	// bzip2 stream that fails to decode.
	ErrMalformedArchive = errors.New("dam: malformed archive")

	// ErrUnknownExtension is returned when a rehydration sequence source
	// has an extension outside {.bam, .sam, .tam, .fastq, .fastq.gz,
	// .fastq.bz2, .fq}, or a dessication source one outside {.bam, .sam,
	// .tam}.
	ErrUnknownExtension = errors.New("dam: unrecognised sequence source extension")
)
