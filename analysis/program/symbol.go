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

// SymbolKind distinguishes the storage of symbols
type SymbolKind int

const (
	// GlobalSymbol is a symbol shared by all functions and all threads
	GlobalSymbol SymbolKind = iota
	// LocalSymbol is a local variable of a function
	LocalSymbol
	// ParamSymbol is a parameter of a function
	ParamSymbol
	// ReturnValueSymbol is the variable receiving the value of a return statement
	ReturnValueSymbol
)

// Symbol is a variable of the program. Local symbols are owned by a function, globals have an empty owner.
type Symbol struct {
	Name  string
	Owner string
	Kind  SymbolKind
}

// NewGlobal returns a global symbol
func NewGlobal(name string) *Symbol {
	return &Symbol{Name: name, Kind: GlobalSymbol}
}

// NewLocal returns a local symbol of function owner
func NewLocal(owner, name string) *Symbol {
	return &Symbol{Name: name, Owner: owner, Kind: LocalSymbol}
}

// NewParam returns a parameter symbol of function owner
func NewParam(owner, name string) *Symbol {
	return &Symbol{Name: name, Owner: owner, Kind: ParamSymbol}
}

// ReturnValue returns the symbol holding the return value of function fn
func ReturnValue(fn string) *Symbol {
	return &Symbol{Name: "return_value", Owner: fn, Kind: ReturnValueSymbol}
}

// ID is the unique identifier of the symbol in the program: the name of globals, "f::x" for the local x of f, and
// "f#return_value" for the return value of f.
func (s *Symbol) ID() string {
	switch s.Kind {
	case GlobalSymbol:
		return s.Name
	case ReturnValueSymbol:
		return s.Owner + "#" + s.Name
	default:
		return s.Owner + "::" + s.Name
	}
}

// IsGlobal returns true if the symbol is visible from every function and thread
func (s *Symbol) IsGlobal() bool {
	return s.Kind == GlobalSymbol
}

func (s *Symbol) String() string {
	if s.Kind == ReturnValueSymbol {
		return s.ID()
	}
	return s.Name
}
