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
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
)

// LocationOutput is the JSON representation of the state before one location
type LocationOutput struct {
	LocationNumber int    `json:"locationNumber"`
	SourceLocation string `json:"sourceLocation"`
	AbstractState  any    `json:"abstractState"`
	Instruction    string `json:"instruction"`
}

// Output writes the states of the whole program to w in the format, which is one of config.OutputText,
// config.OutputJSON or config.OutputXML.
func (e *Engine[D]) Output(w io.Writer, format string) error {
	switch format {
	case config.OutputText, "":
		return e.WriteText(w)
	case config.OutputJSON:
		return e.WriteJSON(w)
	case config.OutputXML:
		return e.WriteXML(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteText writes the states before every location of the functions with a body
func (e *Engine[D]) WriteText(w io.Writer) error {
	for _, f := range e.program.OrderedFunctions() {
		if !f.BodyAvailable() {
			continue
		}
		if _, err := fmt.Fprintf(w, "////\n//// Function: %s\n////\n\n", f.Name); err != nil {
			return err
		}
		if err := e.WriteFunctionText(w, f); err != nil {
			return err
		}
	}
	return nil
}

// WriteFunctionText writes the states before every location of f
func (e *Engine[D]) WriteFunctionText(w io.Writer, f *program.Function) error {
	for _, l := range f.Body {
		instr := e.program.Instr(l)
		if _, err := fmt.Fprintf(w, "**** %d %s\n", l, instr.Source); err != nil {
			return err
		}
		if err := writeStateText(w, e.StateBefore(l)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", instr); err != nil {
			return err
		}
	}
	return nil
}

func writeStateText(w io.Writer, s any) error {
	if t, ok := s.(TextOutputter); ok {
		return t.OutputText(w)
	}
	_, err := fmt.Fprintf(w, "%v\n", s)
	return err
}

func stateText(s any) string {
	var b strings.Builder
	_ = writeStateText(&b, s)
	return strings.TrimRight(b.String(), "\n")
}

// JSON returns the JSON representation of the states: a map from function names to the list of locations of their
// body. Functions without a body have an empty list.
func (e *Engine[D]) JSON() map[string][]LocationOutput {
	res := map[string][]LocationOutput{}
	for _, f := range e.program.OrderedFunctions() {
		locations := []LocationOutput{}
		for _, l := range f.Body {
			locations = append(locations, e.locationJSON(l))
		}
		res[f.Name] = locations
	}
	return res
}

func (e *Engine[D]) locationJSON(l program.Location) LocationOutput {
	instr := e.program.Instr(l)
	s := e.StateBefore(l)
	var state any
	if j, ok := any(s).(JSONOutputter); ok {
		state = j.OutputJSON()
	} else {
		state = stateText(s)
	}
	return LocationOutput{
		LocationNumber: int(l),
		SourceLocation: instr.Source.String(),
		AbstractState:  state,
		Instruction:    instr.String(),
	}
}

// WriteJSON writes the indented JSON representation of the states
func (e *Engine[D]) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e.JSON())
}

// XML returns the XML representation of the states
func (e *Engine[D]) XML() XMLNode {
	root := XMLNode{XMLName: xml.Name{Local: "program"}}
	for _, f := range e.program.OrderedFunctions() {
		fn := XMLNode{
			XMLName: xml.Name{Local: "function"},
			Attrs: []xml.Attr{
				{Name: xml.Name{Local: "name"}, Value: f.Name},
				{Name: xml.Name{Local: "body_available"}, Value: strconv.FormatBool(f.BodyAvailable())},
			},
		}
		for _, l := range f.Body {
			fn.Children = append(fn.Children, e.locationXML(l))
		}
		root.Children = append(root.Children, fn)
	}
	return root
}

func (e *Engine[D]) locationXML(l program.Location) XMLNode {
	instr := e.program.Instr(l)
	s := e.StateBefore(l)
	var state XMLNode
	if x, ok := any(s).(XMLOutputter); ok {
		state = x.OutputXML()
	} else {
		state = XMLNode{XMLName: xml.Name{Local: "state"}, Text: stateText(s)}
	}
	return XMLNode{
		XMLName: xml.Name{Local: "location"},
		Attrs: []xml.Attr{
			{Name: xml.Name{Local: "location_number"}, Value: strconv.Itoa(int(l))},
			{Name: xml.Name{Local: "source_location"}, Value: instr.Source.String()},
			{Name: xml.Name{Local: "instruction"}, Value: instr.String()},
		},
		Children: []XMLNode{state},
	}
}

// WriteXML writes the indented XML representation of the states
func (e *Engine[D]) WriteXML(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(e.XML()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
