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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of the program file
var flagAfterFile = regexp.MustCompile("expected one program file, got [2-9]")

// Captures calls that must be resolved before the engine runs
var indirectCall = regexp.MustCompile("indirect call")

// Captures missing entry points
var missingEntry = regexp.MustCompile("(no entry point|function \\w+ is not defined)")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if flagAfterFile.MatchString(errMsg) {
			return "all command line flags should be before the path to the program to analyze"
		}
		return "make sure you have provided the path to a program in the textual goto-program format"
	}
	if indirectCall.MatchString(errMsg) {
		return "calls through function pointers must be replaced by direct calls before the analysis"
	}
	if missingEntry.MatchString(errMsg) {
		return "declare the entry point with `entry f;` in the program, or pass -entry"
	}
	return ""
}
