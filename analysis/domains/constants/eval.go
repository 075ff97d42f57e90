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

package constants

import (
	"github.com/awslabs/ar-go-absint/analysis/program"
)

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// eval returns the value of e in the state, and false if the value is not a known constant.
//
//gocyclo:ignore
func (s *State) eval(e program.Expr) (int64, bool) {
	switch x := e.(type) {
	case *program.Const:
		return x.Value, true
	case *program.Symbol:
		v, ok := s.values[x.ID()]
		return v, ok
	case *program.Unary:
		if x.Op == program.OpDeref {
			return 0, false
		}
		v, ok := s.eval(x.X)
		if !ok {
			return 0, false
		}
		if x.Op == program.OpNot {
			return boolValue(v == 0), true
		}
		return -v, true
	case *program.Binary:
		// short-circuits decide the value even when the other operand is unknown
		a, okA := s.eval(x.X)
		b, okB := s.eval(x.Y)
		switch x.Op {
		case program.OpAnd:
			if (okA && a == 0) || (okB && b == 0) {
				return 0, true
			}
			return 1, okA && okB
		case program.OpOr:
			if (okA && a != 0) || (okB && b != 0) {
				return 1, true
			}
			return 0, okA && okB
		}
		if !okA || !okB {
			if x.Op == program.OpMul && ((okA && a == 0) || (okB && b == 0)) {
				return 0, true
			}
			return 0, false
		}
		return binary(x.Op, a, b)
	}
	return 0, false
}

func binary(op program.Op, a, b int64) (int64, bool) {
	switch op {
	case program.OpAdd:
		return a + b, true
	case program.OpSub:
		return a - b, true
	case program.OpMul:
		return a * b, true
	case program.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case program.OpMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case program.OpEq:
		return boolValue(a == b), true
	case program.OpNeq:
		return boolValue(a != b), true
	case program.OpLt:
		return boolValue(a < b), true
	case program.OpLeq:
		return boolValue(a <= b), true
	case program.OpGt:
		return boolValue(a > b), true
	case program.OpGeq:
		return boolValue(a >= b), true
	}
	return 0, false
}

// assume restricts the state to the executions where e evaluates to truth. The state becomes bottom when no
// execution is possible.
func (s *State) assume(e program.Expr, truth bool) {
	if s.bottom {
		return
	}
	if v, ok := s.eval(e); ok {
		if (v != 0) != truth {
			s.MakeBottom()
		}
		return
	}
	switch x := e.(type) {
	case *program.Unary:
		if x.Op == program.OpNot {
			s.assume(x.X, !truth)
		}
	case *program.Binary:
		switch {
		case x.Op == program.OpAnd && truth, x.Op == program.OpOr && !truth:
			s.assume(x.X, truth)
			s.assume(x.Y, truth)
		case x.Op == program.OpEq && truth, x.Op == program.OpNeq && !truth:
			s.learnEqual(x.X, x.Y)
		}
	}
}

// learnEqual records that a == b when one side is an unknown symbol and the other a known value
func (s *State) learnEqual(a, b program.Expr) {
	if sym, isSym := a.(*program.Symbol); isSym {
		if v, ok := s.eval(b); ok {
			s.values[sym.ID()] = v
			return
		}
	}
	if sym, isSym := b.(*program.Symbol); isSym {
		if v, ok := s.eval(a); ok {
			s.values[sym.ID()] = v
		}
	}
}
