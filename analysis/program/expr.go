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

package program

import (
	"fmt"
	"strconv"
)

// Op is an operator of a unary or binary expression
type Op string

// Operators of the expression language. Booleans are integers: 0 is false, any other value is true.
const (
	OpNot   Op = "!"
	OpNeg   Op = "-"
	OpDeref Op = "*"
	OpAdd   Op = "+"
	OpSub   Op = "-"
	OpMul   Op = "*"
	OpDiv   Op = "/"
	OpMod   Op = "%"
	OpEq    Op = "=="
	OpNeq   Op = "!="
	OpLt    Op = "<"
	OpLeq   Op = "<="
	OpGt    Op = ">"
	OpGeq   Op = ">="
	OpAnd   Op = "&&"
	OpOr    Op = "||"
)

// precedence of the binary operators, used only for printing
var precedence = map[Op]int{
	OpOr: 1, OpAnd: 2,
	OpEq: 3, OpNeq: 3,
	OpLt: 4, OpLeq: 4, OpGt: 4, OpGeq: 4,
	OpAdd: 5, OpSub: 5,
	OpMul: 6, OpDiv: 6, OpMod: 6,
}

// IsBinaryOp returns true if op is one of the binary operators
func IsBinaryOp(op Op) bool {
	_, ok := precedence[op]
	return ok
}

// Expr is an expression of the goto program
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Const is an integer constant
type Const struct {
	Value int64
}

// Unary is the application of OpNot, OpNeg or OpDeref to an expression
type Unary struct {
	Op Op
	X  Expr
}

// Binary is the application of a binary operator
type Binary struct {
	Op   Op
	X, Y Expr
}

// Nondet is a value chosen non-deterministically
type Nondet struct{}

func (*Const) isExpr()  {}
func (*Unary) isExpr()  {}
func (*Binary) isExpr() {}
func (*Nondet) isExpr() {}
func (*Symbol) isExpr() {}

func (c *Const) String() string { return strconv.FormatInt(c.Value, 10) }

func (u *Unary) String() string {
	switch u.X.(type) {
	case *Binary:
		return string(u.Op) + "(" + u.X.String() + ")"
	default:
		return string(u.Op) + u.X.String()
	}
}

func (b *Binary) String() string {
	return operand(b.X, b.Op, false) + " " + string(b.Op) + " " + operand(b.Y, b.Op, true)
}

func operand(e Expr, parent Op, right bool) string {
	if b, ok := e.(*Binary); ok {
		p, q := precedence[b.Op], precedence[parent]
		if p < q || (right && p == q) {
			return "(" + b.String() + ")"
		}
	}
	return e.String()
}

func (*Nondet) String() string { return "nondet" }

// True and False are the canonical boolean constants
var (
	True  Expr = &Const{Value: 1}
	False Expr = &Const{Value: 0}
)

// IsConstTrue returns true if the guard is absent or a non-zero constant
func IsConstTrue(e Expr) bool {
	if e == nil {
		return true
	}
	c, ok := e.(*Const)
	return ok && c.Value != 0
}

// IsConstFalse returns true if the guard is the constant zero
func IsConstFalse(e Expr) bool {
	c, ok := e.(*Const)
	return ok && c.Value == 0
}

// Not returns the negation of e, simplifying double negations and constants.
func Not(e Expr) Expr {
	switch x := e.(type) {
	case nil:
		return False
	case *Const:
		if x.Value == 0 {
			return True
		}
		return False
	case *Unary:
		if x.Op == OpNot {
			return x.X
		}
	}
	return &Unary{Op: OpNot, X: e}
}

// Symbols returns the symbols read by the expression, in order of appearance and without duplicates.
// The symbol under a dereference is read; the location it points to is not known statically.
func Symbols(e Expr) []*Symbol {
	var res []*Symbol
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case *Symbol:
			if !seen[x.ID()] {
				seen[x.ID()] = true
				res = append(res, x)
			}
		case *Unary:
			walk(x.X)
		case *Binary:
			walk(x.X)
			walk(x.Y)
		}
	}
	walk(e)
	return res
}
