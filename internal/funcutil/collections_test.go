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

package funcutil

import (
	"testing"

	"golang.org/x/exp/slices"
)

func TestSetToOrderedSlice(t *testing.T) {
	set := map[string]bool{"c": true, "a": true, "b": false, "d": true}
	got := SetToOrderedSlice(set)
	if !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Fatalf("unexpected ordered slice %v", got)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{3: "x", 1: "y", 2: "z"}
	if got := SortedKeys(m); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestUnion(t *testing.T) {
	a := map[int]bool{1: true}
	Union(a, map[int]bool{2: true, 1: false})
	if !a[1] || !a[2] || len(a) != 2 {
		t.Fatalf("unexpected union %v", a)
	}
}

func TestMapContains(t *testing.T) {
	xs := []int{1, 2, 3, 4}
	if doubled := Map(xs, func(x int) int { return 2 * x }); !slices.Equal(doubled, []int{2, 4, 6, 8}) {
		t.Fatalf("unexpected result %v", doubled)
	}
	if !Contains(xs, 3) || Contains(xs, 5) {
		t.Fatalf("Contains is wrong on %v", xs)
	}
}
