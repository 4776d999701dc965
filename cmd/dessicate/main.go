// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dessicate creates a DAM archive from a SAM, TAM or BAM alignment
// file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biodam/dam/creator"
)

// tmpDirs collects repeated -tmpdir flags.
type tmpDirs []string

func (t *tmpDirs) String() string { return fmt.Sprint([]string(*t)) }

func (t *tmpDirs) Set(v string) error {
	*t = append(*t, v)
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("dessicate: ")

	var dirs tmpDirs
	flag.Var(&dirs, "tmpdir", "temporary directory hint for the external sort (repeatable)")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: dessicate [-tmpdir DIR]... IN.{bam,sam,tam} OUT.dam")
		os.Exit(2)
	}
	in, out := flag.Arg(0), flag.Arg(1)

	var flushed int
	opts := creator.Options{
		TmpDirs: dirs,
		Progress: func(n int) {
			flushed = n
			if n%100 == 0 {
				log.Printf("flushed %d blocks", n)
			}
		},
	}
	if err := creator.Create(in, out, opts); err != nil {
		log.Fatal(err)
	}
	log.Printf("done: %d blocks", flushed)
}
