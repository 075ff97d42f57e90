// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-absint/analysis"
	"github.com/awslabs/ar-go-absint/cmd/absint/analyze"
	"github.com/awslabs/ar-go-absint/cmd/absint/reachability"
	"github.com/awslabs/ar-go-absint/cmd/absint/stats"
	"github.com/awslabs/ar-go-absint/cmd/absint/threads"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
)

const usage = `absint: abstract interpretation of goto programs
Usage:
  absint [tool] [options] <program file>
Tools:
  - analyze: runs the constant propagation and prints the state before every location and the assertion verdicts
  - reachability: prints the functions that are reachable from the entry point
  - stats: prints statistics about the program and its call graph
  - threads: prints the functions and locations that may run concurrently
Examples:
  Analyze a program: absint analyze main.ir
  Analyze a concurrent program with a config: absint analyze --config=config.yaml -concurrency main.ir`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "analyze":
		flags, err := analyze.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := analyze.Run(flags); err != nil {
			errExit(err)
		}
	case "reachability":
		flags, err := reachability.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := reachability.Run(flags); err != nil {
			errExit(err)
		}
	case "stats":
		flags, err := stats.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := stats.Run(flags); err != nil {
			errExit(err)
		}
	case "threads":
		flags, err := tools.NewCommonFlags("threads", args, threads.Usage)
		if err != nil {
			errExit(err)
		}
		if err := threads.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
