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

package ai_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/ai"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preds records the set of locations whose edge reached a location. It implements none of the optional
// capabilities, so the engine falls back to plain merges and to fmt for output.
type preds struct {
	reached bool
	from    map[program.Location]bool
}

func newPreds() *preds { return &preds{} }

func (p *preds) IsBottom() bool { return !p.reached }
func (p *preds) IsTop() bool    { return false }
func (p *preds) MakeBottom()    { p.reached, p.from = false, nil }
func (p *preds) MakeTop()       { p.reached, p.from = true, map[program.Location]bool{} }
func (p *preds) MakeEntry()     { p.MakeTop() }

func (p *preds) Transform(from, _ program.Location, _ ai.Oracle[*preds]) {
	if p.reached {
		p.from = map[program.Location]bool{from: true}
	}
}

func (p *preds) Merge(other *preds, _, _ program.Location) bool {
	if !other.reached {
		return false
	}
	changed := !p.reached
	if !p.reached {
		p.reached = true
		p.from = map[program.Location]bool{}
	}
	for l := range other.from {
		if !p.from[l] {
			p.from[l] = true
			changed = true
		}
	}
	return changed
}

func (p *preds) Copy() *preds {
	c := &preds{reached: p.reached, from: map[program.Location]bool{}}
	for l := range p.from {
		c.from[l] = true
	}
	return c
}

func (p *preds) String() string {
	if !p.reached {
		return "unreached"
	}
	return "preds{" + strings.Join(funcutil.Map(funcutil.SetToOrderedSlice(p.from),
		func(l program.Location) string { return fmt.Sprint(int(l)) }), ",") + "}"
}

const diamond = `
func main() {
  if nondet goto join;
  if nondet goto join;
  skip;
join:
  skip;
}`

func TestWorklistCoalescesVisits(t *testing.T) {
	p := parse(t, diamond)
	e := ai.NewEngine(p, newPreds, ai.WithLogger(quietLogger()))
	require.NoError(t, e.RunProgram())

	// location 3 is inserted three times but visited once, after all its predecessors
	assert.Equal(t, 5, e.Progress().Visits)
	join, err := e.Lookup(3)
	require.NoError(t, err)
	assert.Equal(t, "preds{0,1,2}", join.String())
	end, err := e.Lookup(4)
	require.NoError(t, err)
	assert.Equal(t, "preds{3}", end.String())
}

func TestReturnWithoutReturnMerger(t *testing.T) {
	p := parse(t, `func f() { skip; } func main() { call f(); skip; }`)
	e := ai.NewEngine(p, newPreds, ai.WithLogger(quietLogger()))
	require.NoError(t, e.RunProgram())

	// 0: skip; 1: end_function f; 2: call f; 3: skip; 4: end_function main
	entry, err := e.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "preds{2}", entry.String())
	ret, err := e.Lookup(3)
	require.NoError(t, err)
	assert.Equal(t, "preds{1}", ret.String(), "the return site only sees the transformed exit state")
}

func TestOutputFallsBackToString(t *testing.T) {
	p := parse(t, diamond)
	e := ai.NewEngine(p, newPreds, ai.WithLogger(quietLogger()))
	require.NoError(t, e.RunProgram())

	var b strings.Builder
	require.NoError(t, e.WriteText(&b))
	assert.Contains(t, b.String(), "preds{0,1,2}\n")

	locations := e.JSON()["main"]
	require.Len(t, locations, 5)
	assert.Equal(t, "preds{0,1,2}", locations[3].AbstractState)
	assert.Equal(t, "preds{}", locations[0].AbstractState)
}
