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

// Package reachability implements the reachability sub-command
package reachability

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-absint/analysis/reachability"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
)

// Flags represents the parsed flags for the reachability sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
}

// NewFlags creates parsed reachability sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("reachability")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, outputJSON: *outputJSON}, nil
}

const usage = `Find all the functions reachable from the entry point of a goto program.

Usage:
  absint reachability [options] program.ir

Examples:
% absint reachability -entry worker main.ir
`

// Run runs the reachability analysis with flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading program")+"\n")
	p, err := tools.LoadProgram(flags.CommonFlags, cfg)
	if err != nil {
		return err
	}
	return reachability.ReachableFunctionsReport(os.Stdout, p, flags.outputJSON)
}
