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
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the textual goto-program format
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Integer", Pattern: `[0-9]+`, Action: nil},
		{Name: "Operator", Pattern: `(\|\||&&|==|!=|<=|>=|[-+*/%<>=!])`, Action: nil},
		{Name: "Punctuation", Pattern: `[{}(),;:]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})

// File is the syntax tree of a program file
type File struct {
	Decls []*Decl `@@*`
}

type Decl struct {
	Global *GlobalDecl `  @@`
	Extern *ExternDecl `| @@`
	Func   *FuncDecl   `| @@`
	Entry  *EntryDecl  `| @@`
}

type GlobalDecl struct {
	Pos   lexer.Position
	Names []string `"global" @Ident { "," @Ident } ";"`
}

type ExternDecl struct {
	Pos    lexer.Position
	Name   string   `"extern" "func" @Ident "("`
	Params []string `[ @Ident { "," @Ident } ] ")" ";"`
}

type FuncDecl struct {
	Pos    lexer.Position
	Name   string   `"func" @Ident "("`
	Params []string `[ @Ident { "," @Ident } ] ")" "{"`
	Body   []*Stmt  `@@* "}"`
}

type EntryDecl struct {
	Pos  lexer.Position
	Name string `"entry" @Ident ";"`
}

// Stmt is one statement of a function body. Keywords are matched before labels and assignments.
type Stmt struct {
	Pos lexer.Position

	Skip        bool        `  @"skip" ";"`
	Decl        *string     `| "decl" @Ident ";"`
	Dead        *string     `| "dead" @Ident ";"`
	Assume      *Expr       `| "assume" @@ ";"`
	Assert      *Expr       `| "assert" @@ ";"`
	Goto        *GotoStmt   `| @@`
	IfGoto      *IfGotoStmt `| @@`
	Call        *CallStmt   `| @@`
	Return      *ReturnStmt `| @@`
	StartThread *string     `| "start_thread" @Ident ";"`
	EndThread   bool        `| @"end_thread" ";"`
	AtomicBegin bool        `| @"atomic_begin" ";"`
	AtomicEnd   bool        `| @"atomic_end" ";"`
	Label       *string     `| @Ident ":"`
	Assign      *AssignStmt `| @@`
}

type GotoStmt struct {
	Labels []string `"goto" @Ident { "," @Ident }`
	Guard  *Expr    `[ "if" @@ ] ";"`
}

type IfGotoStmt struct {
	Guard *Expr  `"if" @@`
	Label string `"goto" @Ident ";"`
}

type CallStmt struct {
	Lhs      *LValue `"call" [ @@ "=" ]`
	Indirect bool    `[ @"*" ]`
	Callee   string  `@Ident`
	Args     []*Expr `"(" [ @@ { "," @@ } ] ")" ";"`
}

type ReturnStmt struct {
	Value *Expr `"return" [ @@ ] ";"`
}

type AssignStmt struct {
	Lhs   *LValue `@@ "="`
	Value *Expr   `@@ ";"`
}

type LValue struct {
	Deref bool   `[ @"*" ]`
	Name  string `@Ident`
}

// Expr is a flat sequence of binary operations; precedence is applied when lowering.
type Expr struct {
	Left *UnaryExpr `@@`
	Ops  []*BinOp   `{ @@ }`
}

type BinOp struct {
	Operator string     `@("||" | "&&" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "+" | "-" | "*" | "/" | "%")`
	Right    *UnaryExpr `@@`
}

type UnaryExpr struct {
	Operator string       `  ( @("!" | "-" | "*")`
	Operand  *UnaryExpr   `    @@ )`
	Primary  *PrimaryExpr `| @@`
}

type PrimaryExpr struct {
	Nondet bool    `  @"nondet"`
	Number *string `| @Integer`
	Ident  *string `| @Ident`
	Parens *Expr   `| "(" @@ ")"`
}
