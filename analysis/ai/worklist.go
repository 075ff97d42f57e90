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

import (
	"github.com/awslabs/ar-go-absint/analysis/program"
	"golang.org/x/tools/container/intsets"
)

// worklist is the set of locations waiting to be visited. Locations are visited in program order, and a location
// inserted several times before being visited is visited once.
type worklist struct {
	set intsets.Sparse
}

func newWorklist(locations ...program.Location) *worklist {
	w := &worklist{}
	for _, l := range locations {
		w.insert(l)
	}
	return w
}

// insert adds l to the worklist and returns false if it was already present
func (w *worklist) insert(l program.Location) bool {
	return w.set.Insert(int(l))
}

// next removes and returns the smallest location of the worklist
func (w *worklist) next() (program.Location, error) {
	var l int
	if !w.set.TakeMin(&l) {
		return 0, ErrEmptyWorklist
	}
	return program.Location(l), nil
}

func (w *worklist) isEmpty() bool {
	return w.set.IsEmpty()
}

func (w *worklist) len() int {
	return w.set.Len()
}
