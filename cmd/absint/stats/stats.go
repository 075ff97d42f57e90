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

// Package stats implements the stats sub-command
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/reachability"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
)

// Flags represents the parsed flags for the stats sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
	cycles     bool
}

// NewFlags creates parsed stats sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("stats")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	cycles := flags.FlagSet.Bool("cycles", false, "print the recursive cycles of the call graph")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, outputJSON: *outputJSON, cycles: *cycles}, nil
}

// Usage is the help message of the stats sub-command
const Usage = `Print statistics about a goto program.

Usage:
  absint stats [options] program.ir
`

// Run prints the statistics of the program named in the flags
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	p, err := tools.LoadProgram(flags.CommonFlags, cfg)
	if err != nil {
		return err
	}
	stats, err := reachability.ComputeStatistics(p)
	if err != nil {
		return err
	}
	if flags.outputJSON {
		buf, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
	} else if err := stats.WriteText(os.Stdout); err != nil {
		return err
	}
	if flags.cycles {
		fmt.Println(formatutil.Bold("Recursive cycles"))
		for _, cycle := range reachability.NewCallGraph(p).Cycles() {
			fmt.Printf("  %s\n", strings.Join(cycle, " -> "))
		}
	}
	return nil
}
