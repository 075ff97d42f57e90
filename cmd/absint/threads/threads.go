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

// Package threads implements the threads sub-command, which prints the locations that may run concurrently.
package threads

import (
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/threads"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
	fn "github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Usage is the help message of the threads sub-command
const Usage = `Print the functions and locations of a goto program that may run concurrently.

Usage:
  absint threads [options] program.ir
`

// Run runs the thread analysis with flags.
func Run(flags tools.CommonFlags) error {
	cfg, err := tools.LoadConfig(flags)
	if err != nil {
		return err
	}
	p, err := tools.LoadProgram(flags, cfg)
	if err != nil {
		return err
	}
	ar, err := threads.Analyze(config.NewLogGroup(cfg), cfg, p)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d\n", formatutil.Bold("Threads:"), len(ar.Ids))
	for id, start := range ar.Ids {
		if id == 0 {
			continue
		}
		fmt.Printf("  %d: %s at %d\n", id, formatutil.Sanitize(p.Instr(start).String()), start)
	}
	colors := ar.FunctionColors()
	fmt.Printf("%s %d locations\n", formatutil.Bold("Threaded:"), ar.NumThreaded())
	for _, name := range ar.ThreadedFunctions() {
		ids := fn.Map(fn.SetToOrderedSlice(colors[name]), func(c uint32) string { return fmt.Sprint(c) })
		fmt.Printf("  %s %s\n", formatutil.Cyan(name), formatutil.Faint("threads "+strings.Join(ids, ",")))
	}
	if flags.Verbose {
		for l := 0; l < p.NumLocations(); l++ {
			if ar.IsThreaded(program.Location(l)) {
				fmt.Fprintf(os.Stderr, "%d\t%s\n", l, p.Instr(program.Location(l)))
			}
		}
	}
	return nil
}
