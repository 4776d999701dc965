// Copyright ©2026 The DAM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dam_view prints a DAM archive's SAM header followed by its
// dessicated records, optionally restricted to an inclusive read-id range.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biodam/dam"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("dam_view: ")
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 3 {
		fmt.Fprintln(os.Stderr, "usage: dam_view IN.dam [START_ID] [END_ID]")
		os.Exit(2)
	}

	var start, end *string
	if flag.NArg() >= 2 {
		s := flag.Arg(1)
		start = &s
	}
	if flag.NArg() >= 3 {
		e := flag.Arg(2)
		end = &e
	}

	r := dam.Open(flag.Arg(0))
	defer r.Close()

	sam, err := r.SamHeader()
	if err != nil {
		log.Fatal(err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if _, err := w.Write(sam); err != nil {
		log.Fatal(err)
	}

	it, err := r.Iterator(start, end)
	if err != nil {
		log.Fatal(err)
	}
	for it.Next() {
		if _, err := fmt.Fprintln(w, it.Record()); err != nil {
			log.Fatal(err)
		}
	}
	if err := it.Error(); err != nil {
		log.Fatal(err)
	}
}
