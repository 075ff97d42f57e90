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
	"errors"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/program"
)

func TestWorklistOrderAndCoalescing(t *testing.T) {
	w := newWorklist(7, 3)
	if !w.insert(5) {
		t.Errorf("5 was not in the worklist")
	}
	if w.insert(3) {
		t.Errorf("3 should already be in the worklist")
	}
	if w.len() != 3 {
		t.Errorf("expected 3 elements, got %d", w.len())
	}
	var order []program.Location
	for !w.isEmpty() {
		l, err := w.next()
		if err != nil {
			t.Fatal(err)
		}
		order = append(order, l)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 5 || order[2] != 7 {
		t.Errorf("expected [3 5 7], got %v", order)
	}
	// a location can be inserted again once it has been taken out
	if !w.insert(3) {
		t.Errorf("3 should be inserted again")
	}
}

func TestWorklistEmpty(t *testing.T) {
	w := newWorklist()
	if _, err := w.next(); !errors.Is(err, ErrEmptyWorklist) {
		t.Errorf("expected ErrEmptyWorklist, got %v", err)
	}
}
