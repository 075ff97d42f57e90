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

package irtext

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/awslabs/ar-go-absint/analysis/program"
)

var binaryPrecedence = map[string]int{
	"||": 1, "&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

// Lower translates the syntax tree into a program. Globals are visible in every function regardless of where they
// are declared; names that are neither parameters nor globals are locals of the function using them.
func Lower(filename string, file *File) (*program.Program, error) {
	b := program.NewBuilder()
	for _, d := range file.Decls {
		if d.Global != nil {
			for _, name := range d.Global.Names {
				b.Global(name)
			}
		}
	}
	defined := map[string]lexer.Position{}
	for _, d := range file.Decls {
		switch {
		case d.Extern != nil:
			b.Extern(d.Extern.Name, d.Extern.Params...)
		case d.Func != nil:
			if prev, ok := defined[d.Func.Name]; ok {
				return nil, participle.Errorf(d.Func.Pos, "function %s is already defined at line %d",
					d.Func.Name, prev.Line)
			}
			defined[d.Func.Name] = d.Func.Pos
			f := b.Function(d.Func.Name, d.Func.Params...)
			f.At(sourceOf(d.Func.Pos))
			for _, s := range d.Func.Body {
				if err := lowerStmt(f, s); err != nil {
					return nil, err
				}
			}
		case d.Entry != nil:
			b.SetEntryPoint(d.Entry.Name)
		}
	}
	p, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, nil
}

func sourceOf(pos lexer.Position) program.SourceLocation {
	return program.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

//gocyclo:ignore
func lowerStmt(f *program.FunctionBuilder, s *Stmt) error {
	f.At(sourceOf(s.Pos))
	lower := func(e *Expr) (program.Expr, error) { return lowerExpr(f, e, s.Pos) }
	switch {
	case s.Skip:
		f.Skip()
	case s.Decl != nil:
		f.Decl(f.Local(*s.Decl))
	case s.Dead != nil:
		f.Dead(f.Var(*s.Dead))
	case s.Assume != nil:
		e, err := lower(s.Assume)
		if err != nil {
			return err
		}
		f.Assume(e)
	case s.Assert != nil:
		e, err := lower(s.Assert)
		if err != nil {
			return err
		}
		f.Assert(e)
	case s.Goto != nil:
		var guard program.Expr
		if s.Goto.Guard != nil {
			e, err := lower(s.Goto.Guard)
			if err != nil {
				return err
			}
			guard = e
		}
		f.Goto(guard, s.Goto.Labels...)
	case s.IfGoto != nil:
		e, err := lower(s.IfGoto.Guard)
		if err != nil {
			return err
		}
		f.Goto(e, s.IfGoto.Label)
	case s.Call != nil:
		args := make([]program.Expr, 0, len(s.Call.Args))
		for _, a := range s.Call.Args {
			e, err := lower(a)
			if err != nil {
				return err
			}
			args = append(args, e)
		}
		var lhs program.Expr
		if s.Call.Lhs != nil {
			lhs = lowerLValue(f, s.Call.Lhs)
		}
		if s.Call.Indirect {
			f.CallIndirect(lhs, &program.Unary{Op: program.OpDeref, X: f.Var(s.Call.Callee)}, args...)
		} else {
			f.Call(lhs, s.Call.Callee, args...)
		}
	case s.Return != nil:
		var value program.Expr
		if s.Return.Value != nil {
			e, err := lower(s.Return.Value)
			if err != nil {
				return err
			}
			value = e
		}
		f.Return(value)
	case s.StartThread != nil:
		f.StartThread(*s.StartThread)
	case s.EndThread:
		f.EndThread()
	case s.AtomicBegin:
		f.AtomicBegin()
	case s.AtomicEnd:
		f.AtomicEnd()
	case s.Label != nil:
		f.Label(*s.Label)
	case s.Assign != nil:
		e, err := lower(s.Assign.Value)
		if err != nil {
			return err
		}
		f.Assign(lowerLValue(f, s.Assign.Lhs), e)
	default:
		return participle.Errorf(s.Pos, "empty statement")
	}
	return nil
}

func lowerLValue(f *program.FunctionBuilder, lv *LValue) program.Expr {
	s := f.Var(lv.Name)
	if lv.Deref {
		return &program.Unary{Op: program.OpDeref, X: s}
	}
	return s
}

// lowerExpr applies operator precedence to the flat sequence of binary operations. Operators of equal precedence
// associate to the left.
func lowerExpr(f *program.FunctionBuilder, e *Expr, pos lexer.Position) (program.Expr, error) {
	left, err := lowerUnary(f, e.Left, pos)
	if err != nil {
		return nil, err
	}
	operands := []program.Expr{left}
	var operators []string
	reduce := func() {
		n := len(operands)
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]
		operands = append(operands[:n-2], &program.Binary{Op: program.Op(op), X: operands[n-2], Y: operands[n-1]})
	}
	for _, op := range e.Ops {
		for len(operators) > 0 && binaryPrecedence[operators[len(operators)-1]] >= binaryPrecedence[op.Operator] {
			reduce()
		}
		right, err := lowerUnary(f, op.Right, pos)
		if err != nil {
			return nil, err
		}
		operators = append(operators, op.Operator)
		operands = append(operands, right)
	}
	for len(operators) > 0 {
		reduce()
	}
	return operands[0], nil
}

func lowerUnary(f *program.FunctionBuilder, u *UnaryExpr, pos lexer.Position) (program.Expr, error) {
	if u.Primary == nil {
		x, err := lowerUnary(f, u.Operand, pos)
		if err != nil {
			return nil, err
		}
		if c, isConst := x.(*program.Const); isConst && u.Operator == "-" {
			return &program.Const{Value: -c.Value}, nil
		}
		return &program.Unary{Op: program.Op(u.Operator), X: x}, nil
	}
	p := u.Primary
	switch {
	case p.Nondet:
		return &program.Nondet{}, nil
	case p.Number != nil:
		v, err := strconv.ParseInt(*p.Number, 10, 64)
		if err != nil {
			return nil, participle.Errorf(pos, "invalid integer %s: %v", *p.Number, errors.Unwrap(err))
		}
		return &program.Const{Value: v}, nil
	case p.Ident != nil:
		return f.Var(*p.Ident), nil
	case p.Parens != nil:
		return lowerExpr(f, p.Parens, pos)
	}
	return nil, participle.Errorf(pos, "empty expression")
}
