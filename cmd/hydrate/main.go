// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hydrate reconstructs a BAM file by merging a DAM archive against
// an external sequence source.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biodam/dam"
	"github.com/biodam/dam/external"
	"github.com/biodam/dam/rehydrate"
)

type tmpDirs []string

func (t *tmpDirs) String() string { return fmt.Sprint([]string(*t)) }

func (t *tmpDirs) Set(v string) error {
	*t = append(*t, v)
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("hydrate: ")

	var dirs tmpDirs
	pad := flag.Bool("pad-missing", false, "pad unmatched records with * placeholders instead of leaving seq/qual absent")
	flag.Var(&dirs, "tmpdir", "temporary directory hint for the external sort (repeatable)")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: hydrate [-tmpdir DIR]... [-pad-missing] IN.dam READS.{bam,sam,tam,fastq,fastq.gz,fastq.bz2} OUT.bam")
		os.Exit(2)
	}
	archivePath, readsPath, outPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	r := dam.Open(archivePath)
	defer r.Close()

	out, err := external.CreateBAM(outPath)
	if err != nil {
		log.Fatal(err)
	}

	var merged int
	opts := rehydrate.Options{
		TmpDirs:    dirs,
		PadMissing: *pad,
		Progress: func(n int) {
			merged = n
			log.Printf("merged %d records", n)
		},
	}
	if err := rehydrate.Rehydrate(r, readsPath, out, opts); err != nil {
		out.Close()
		log.Fatal(err)
	}
	if err := out.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("done: %d records", merged)
}
