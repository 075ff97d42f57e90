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

/*
Package ai implements a generic abstract interpreter over goto programs.

The Engine computes, for every reachable location of a program.Program, an abstract state over-approximating the
concrete states that can reach that location. The engine is parameterized by the abstract domain: any type
implementing Domain can be used, and the engine only relies on the lattice operations of the domain (bottom, top,
entry, transform and merge).

The fixed point is computed with a worklist ordered by location. Function calls are handled by following two edges:
the call site flows into the entry of the callee, and the exit of the callee flows into the instruction after the
call. Whenever the entry state of a callee changes, the body of the callee is re-analysed in a nested fixed point.
Nested fixed points are kept on an explicit stack of frames, so deep or recursive call chains do not consume the
goroutine stack.

The ConcurrencyAwareEngine extends the sequential fixed point with a flow-insensitive approximation of threads: the
states at the exits of functions running concurrently are summarized in a single shared state, which is fed back
into every location that may run concurrently until the shared state stabilizes.

A location that has never been reached by the analysis has no state: Lookup returns ErrStateNotFound for it, and
StateBefore returns a bottom state.
*/
package ai
