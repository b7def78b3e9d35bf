// Copyright 2024 The mmark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Command mmarkfmt reads a Markdown document and writes its rendered
// HTML to stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/strictdown/mmark"
)

func main() {
	printYAML := flag.Bool("yaml", false, "print decoded YAML front matter as JSON instead of rendering HTML")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	name := "<stdin>"
	var input []byte
	var err error
	if flag.NArg() > 0 {
		name = flag.Arg(0)
		input, err = os.ReadFile(name)
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("mmarkfmt: %v", err)
	}

	doc, parseErr := mmark.Parse(name, string(input))
	if parseErr != nil {
		if bundle, ok := parseErr.(*mmark.ParseErrorBundle); ok {
			for _, e := range bundle.Errors {
				fmt.Fprintln(os.Stderr, e)
			}
		} else {
			log.Println(parseErr)
		}
	}

	if *printYAML {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc.YAML); err != nil {
			log.Fatalf("mmarkfmt: %v", err)
		}
		return
	}

	fmt.Print(doc.Render())
}
