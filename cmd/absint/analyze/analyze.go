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

// Package analyze implements the analyze sub-command: the constant propagation over a goto program, optionally
// concurrency-aware.
package analyze

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-go-absint/analysis/ai"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/domains/constants"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/reachability"
	"github.com/awslabs/ar-go-absint/analysis/threads"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
)

// Flags represents the parsed flags for the analyze sub-command.
type Flags struct {
	tools.CommonFlags
	format      string
	concurrency bool
	function    string
	output      string
	noStates    bool
}

// NewFlags creates parsed analyze sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("analyze")
	format := flags.FlagSet.String("format", "", "output format: text, json or xml (overrides the config)")
	concurrency := flags.FlagSet.Bool("concurrency", false, "run the concurrency-aware fixed point")
	function := flags.FlagSet.String("function", "", "analyse only this function, without following calls")
	output := flags.FlagSet.String("o", "", "write the states to this file instead of standard output")
	noStates := flags.FlagSet.Bool("no-states", false, "only print the assertion verdicts")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags: common,
		format:      *format,
		concurrency: *concurrency,
		function:    *function,
		output:      *output,
		noStates:    *noStates,
	}, nil
}

// Usage is the help message of the analyze sub-command
const Usage = `Run the constant propagation over a goto program and check its assertions.

Usage:
  absint analyze [options] program.ir

Examples:
% absint analyze -format json main.ir
% absint analyze -config config.yaml -concurrency threads.ir
`

// Run runs the analysis with flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	if flags.format != "" {
		cfg.OutputFormat = flags.format
	}
	cfg.Concurrency = cfg.Concurrency || flags.concurrency
	logger := config.NewLogGroup(cfg)

	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading program")+"\n")
	p, err := tools.LoadProgram(flags.CommonFlags, cfg)
	if err != nil {
		return err
	}
	if reachable, err := reachability.NewCallGraph(p).Reachable(p.EntryPoint); err == nil {
		logger.Debugf("%d of %d functions reachable from %s", len(reachable), len(p.FunctionNames), p.EntryPoint)
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Analyzing")+"\n")
	options := []ai.Option{ai.WithConfig(cfg, logger)}
	var e *ai.Engine[*constants.State]
	switch {
	case flags.function != "":
		e = constants.NewEngine(p, options...)
		err = e.RunFunction(flags.function)
	case cfg.Concurrency:
		ar, terr := threads.Analyze(logger, cfg, p)
		if terr != nil {
			return fmt.Errorf("thread analysis failed: %w", terr)
		}
		logger.Infof("%d threaded locations in %v", ar.NumThreaded(), ar.ThreadedFunctions())
		ce := constants.NewConcurrencyAwareEngine(p, ar.IsThreaded,
			append(options, ai.WithThreadEntries(ar.ThreadEntries()...))...)
		err = ce.RunProgram()
		e = ce.Engine
	default:
		e = constants.NewEngine(p, options...)
		err = e.RunProgram()
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if !flags.noStates {
		if err := writeStates(e, cfg, flags.output); err != nil {
			return err
		}
	}
	return reportAssertions(os.Stdout, p, e)
}

func writeStates(e *ai.Engine[*constants.State], cfg *config.Config, output string) error {
	if output == "" {
		return e.Output(os.Stdout, cfg.OutputFormat)
	}
	if !filepath.IsAbs(output) && cfg.ReportsDir != "" {
		if err := cfg.SetReportsDir(); err != nil {
			return err
		}
		output = filepath.Join(cfg.ReportsDir, output)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer f.Close()
	if err := e.Output(f, cfg.OutputFormat); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "States written to %s\n", output)
	return nil
}

func reportAssertions(w io.Writer, p *program.Program, e *ai.Engine[*constants.State]) error {
	assertions := constants.CheckAssertions(p, e.StateBefore)
	if len(assertions) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", formatutil.Bold("Assertions"))
	failed := 0
	for _, a := range assertions {
		verdict := a.Verdict.String()
		switch a.Verdict {
		case constants.Holds:
			verdict = formatutil.Green(verdict)
		case constants.Fails:
			verdict = formatutil.Red(verdict)
			failed++
		case constants.Unknown:
			verdict = formatutil.Yellow(verdict)
		default:
			verdict = formatutil.Faint(verdict)
		}
		fmt.Fprintf(w, "[%s] %s: %s %s\n", verdict, a.Instr.Function, formatutil.Sanitize(a.Instr.String()),
			a.Instr.Source)
	}
	if failed > 0 {
		return fmt.Errorf("%d assertion(s) fail", failed)
	}
	return nil
}
