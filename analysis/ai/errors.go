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

package ai

import "errors"

var (
	// ErrMalformedProgram is returned when the program violates a structural invariant the engine relies on, for
	// example a call whose only successor is not the next instruction.
	ErrMalformedProgram = errors.New("malformed program")

	// ErrUnresolvedCall is returned when a call targets a function that is not in the call table
	ErrUnresolvedCall = errors.New("unresolved call")

	// ErrIndirectCall is returned when a call through a function pointer reaches the engine. Function pointers must
	// be removed before the analysis.
	ErrIndirectCall = errors.New("indirect call")

	// ErrStateNotFound is returned by lookups of locations that the analysis never reached
	ErrStateNotFound = errors.New("no state for location")

	// ErrEmptyWorklist is returned when the next location of an empty worklist is requested
	ErrEmptyWorklist = errors.New("empty worklist")
)
