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

// Package irtext reads goto programs written in a small textual format:
//
//	global g_in, g_out;
//	extern func abort();
//	func main() {
//	  g_in = 0;
//	  if !(g_in > 5) goto done;
//	  g_out = 1;
//	done:
//	  return;
//	}
//	entry main;
//
// Parsing produces a syntax tree (File) that is lowered into a program.Program.
package irtext

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/fatih/color"
)

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// Parse parses the source into a syntax tree. The filename is only used in error positions.
func Parse(filename string, source string) (*File, error) {
	return parser.ParseString(filename, source)
}

// ParseString parses and lowers the source into a program
func ParseString(filename string, source string) (*program.Program, error) {
	file, err := Parse(filename, source)
	if err != nil {
		return nil, err
	}
	return Lower(filename, file)
}

// ParseFile reads, parses and lowers the program in the file at path
func ParseFile(path string) (*program.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// ReportError prints a caret-style error message for err to w. Errors that carry no position are printed as is.
func ReportError(w io.Writer, src string, err error) {
	red := color.New(color.FgRed)
	var pe participle.Error
	if !errors.As(err, &pe) {
		red.Fprintf(w, "Error: %s\n", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		red.Fprintf(w, "Syntax error at unknown location: %s\n", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"

	red.Fprintf(w, "Syntax error in %s at line %d, column %d:\n", pos.Filename, pos.Line, pos.Column)
	fmt.Fprintln(w, line)
	color.New(color.FgHiRed).Fprintln(w, caret)
	fmt.Fprintf(w, "-> %s\n", pe.Message())
}
