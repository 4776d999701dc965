// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package external wraps the subprocesses (samtools, sort) that the
// Creator and Rehydrator lean on instead of decoding BAM or spilling a
// large sort to disk themselves; compressed FASTQ is decoded in-process
// with compress/gzip and compress/bzip2. It is grounded on
// ExaScience elprep's sam.InputFile/sam.Create, which wrap exec.Cmd pipes
// to samtools the same way.
package external

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/biodam/dam"
)

// SortedStream is a read-id-sorted, tab-delimited line stream together with
// whatever SAM header text preceded it. It is the common shape the Creator
// and Rehydrator consume regardless of whether the underlying file was
// BAM, SAM, TAM or FASTQ.
type SortedStream struct {
	// Header holds the raw SAM header text (the "@"-prefixed lines), or
	// nil for sources that carry none, such as FASTQ.
	Header []byte

	rc      io.Closer
	scanner *bufio.Scanner
	cmds    []*exec.Cmd
}

// Next advances to the next line of the stream, returning false at EOF or
// on error; call Err after a false return to distinguish the two.
func (s *SortedStream) Next() bool { return s.scanner.Scan() }

// Text returns the most recent line read by Next.
func (s *SortedStream) Text() string { return s.scanner.Text() }

// Err reports the first error encountered scanning the stream.
func (s *SortedStream) Err() error { return s.scanner.Err() }

// Close releases the stream's resources and waits for every external
// command it started to exit. A nonzero exit from any of them is reported
// wrapping dam.ErrExternalTool.
func (s *SortedStream) Close() error {
	var first error
	if s.rc != nil {
		if err := s.rc.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, cmd := range s.cmds {
		if err := cmd.Wait(); err != nil && first == nil {
			first = fmt.Errorf("%w: %s: %v", dam.ErrExternalTool, filepath.Base(cmd.Path), err)
		}
	}
	return first
}

// sortCommand builds the external sort invocation shared by every Open
// variant: ascending order on the tab-delimited read id column, honoring
// any caller-supplied -T temp-dir hints, since sorting an arbitrarily
// large record stream in-process is explicitly left to an external,
// disk-spilling sort.
func sortCommand(tmpDirs []string) *exec.Cmd {
	args := []string{"-k1,1", "-t", "\t"}
	for _, dir := range tmpDirs {
		args = append(args, "-T", dir)
	}
	return exec.Command("sort", args...)
}

// pipeThroughSort starts sort over body, returning a SortedStream whose
// Header is header and whose lines come from sort's stdout. body is
// copied into sort's stdin on a background goroutine so the caller can
// begin scanning the sorted output before the whole input has been read.
func pipeThroughSort(header []byte, body io.Reader, upstream *exec.Cmd, tmpDirs []string) (*SortedStream, error) {
	sortCmd := sortCommand(tmpDirs)
	stdin, err := sortCmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: sort: %v", dam.ErrExternalTool, err)
	}
	stdout, err := sortCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: sort: %v", dam.ErrExternalTool, err)
	}
	if err := sortCmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: sort: %v", dam.ErrExternalTool, err)
	}

	go func() {
		defer stdin.Close()
		io.Copy(stdin, body)
	}()

	cmds := []*exec.Cmd{sortCmd}
	if upstream != nil {
		cmds = append([]*exec.Cmd{upstream}, cmds...)
	}
	return &SortedStream{
		Header:  header,
		rc:      stdout,
		scanner: bufio.NewScanner(stdout),
		cmds:    cmds,
	}, nil
}

// splitHeader peels the leading "@"-prefixed lines off br, returning them
// joined back together and a reader positioned at the first body line (if
// any was read ahead while detecting the end of the header).
func splitHeader(br *bufio.Reader) (header []byte, body io.Reader, err error) {
	var buf bytes.Buffer
	for {
		line, rerr := br.ReadString('\n')
		if strings.HasPrefix(line, "@") {
			buf.WriteString(line)
			if rerr != nil {
				return buf.Bytes(), strings.NewReader(""), nil
			}
			continue
		}
		if line == "" {
			return buf.Bytes(), br, rerr
		}
		return buf.Bytes(), io.MultiReader(strings.NewReader(line), br), nil
	}
}

// Open returns a SortedStream of read-id-sorted SAM body lines for path,
// dispatching on its extension: .bam is decoded via samtools view -h,
// .sam and .tam are read and sorted directly.
func Open(path string, tmpDirs []string) (*SortedStream, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bam":
		return openBAM(path, tmpDirs)
	case ".sam", ".tam":
		return openText(path, tmpDirs)
	default:
		return nil, fmt.Errorf("%w: %s", dam.ErrUnknownExtension, ext)
	}
}

func openBAM(path string, tmpDirs []string) (*SortedStream, error) {
	view := exec.Command("samtools", "view", "-h", path)
	viewOut, err := view.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: samtools: %v", dam.ErrExternalTool, err)
	}
	if err := view.Start(); err != nil {
		return nil, fmt.Errorf("%w: samtools: %v", dam.ErrExternalTool, err)
	}
	header, body, err := splitHeader(bufio.NewReader(viewOut))
	if err != nil && err != io.EOF {
		view.Wait()
		return nil, fmt.Errorf("%w: samtools: %v", dam.ErrExternalTool, err)
	}
	stream, err := pipeThroughSort(header, body, view, tmpDirs)
	if err != nil {
		view.Process.Kill()
		view.Wait()
		return nil, err
	}
	return stream, nil
}

func openText(path string, tmpDirs []string) (*SortedStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	header, body, err := splitHeader(bufio.NewReader(f))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("dam: reading %s: %v", path, err)
	}
	stream, err := pipeThroughSort(header, body, nil, tmpDirs)
	if err != nil {
		f.Close()
		return nil, err
	}
	stream.rc = closerPair{stream.rc, f}
	return stream, nil
}

// closerPair closes both of its members, in order, collecting the first
// error.
type closerPair struct {
	first, second io.Closer
}

func (c closerPair) Close() error {
	err1 := c.first.Close()
	err2 := c.second.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// OpenFastq returns a SortedStream over the synthetic dessicated-shape
// records built from a plain, gzip- or bzip2-compressed FASTQ file, used
// as a Rehydrator sequence source. Each FASTQ record becomes a line with
// id in column 0, eight empty columns, then seq and qual in columns 9 and
// 10 (the two positions the merge loop actually reads), which is then
// sorted externally on the id column like any other source.
func OpenFastq(path string, tmpDirs []string) (*SortedStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = f
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("dam: opening %s: %v", path, err)
		}
		r = gz
	case ".bz2":
		r = bzip2.NewReader(f)
	case ".fastq", ".fq":
	default:
		f.Close()
		return nil, fmt.Errorf("%w: %s", dam.ErrUnknownExtension, ext)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(reshapeFastq(r, pw))
	}()

	stream, err := pipeThroughSort(nil, pr, nil, tmpDirs)
	if err != nil {
		f.Close()
		return nil, err
	}
	stream.rc = closerPair{stream.rc, f}
	return stream, nil
}

// reshapeFastq reads 4-line FASTQ records from r and writes the
// corresponding synthetic dessicated-shape lines to w.
func reshapeFastq(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for sc.Scan() {
		idLine := sc.Text()
		if !sc.Scan() {
			return fmt.Errorf("dam: truncated FASTQ record")
		}
		seq := sc.Text()
		if !sc.Scan() {
			return fmt.Errorf("dam: truncated FASTQ record")
		}
		if !sc.Scan() {
			return fmt.Errorf("dam: truncated FASTQ record")
		}
		qual := sc.Text()

		id := strings.TrimPrefix(idLine, "@")
		if i := strings.IndexAny(id, " \t/"); i >= 0 {
			id = id[:i]
		}
		if _, err := fmt.Fprintf(w, "%s\t\t\t\t\t\t\t\t\t%s\t%s\n", id, seq, qual); err != nil {
			return err
		}
	}
	return sc.Err()
}

// CreateBAM starts samtools view -bS, writing its SAM-text stdin to the
// BAM file at path. Write the SAM header followed by every record line to
// the returned writer, then Close it to flush and reap the subprocess.
func CreateBAM(path string) (io.WriteCloser, error) {
	cmd := exec.Command("samtools", "view", "-bS", "-o", path, "-")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: samtools: %v", dam.ErrExternalTool, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: samtools: %v", dam.ErrExternalTool, err)
	}
	return &bamWriter{stdin: stdin, cmd: cmd}, nil
}

type bamWriter struct {
	stdin io.WriteCloser
	cmd   *exec.Cmd
}

func (b *bamWriter) Write(p []byte) (int, error) { return b.stdin.Write(p) }

func (b *bamWriter) Close() error {
	if err := b.stdin.Close(); err != nil {
		return err
	}
	if err := b.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: samtools: %v", dam.ErrExternalTool, err)
	}
	return nil
}
