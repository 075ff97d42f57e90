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
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteText(t *testing.T) {
	e := runConstants(t, parseTestdata(t, "calls.ir"))
	var b bytes.Buffer
	require.NoError(t, e.Output(&b, config.OutputText))
	out := b.String()

	assert.Contains(t, out, "////\n//// Function: main\n////\n")
	assert.Contains(t, out, "//// Function: inc\n")
	assert.NotContains(t, out, "//// Function: abort", "functions without a body are not printed")
	assert.Contains(t, out, "**** 8 ")
	assert.Contains(t, out, "g = 1\nr = 2\n\ncall fail()\n")
	assert.Contains(t, out, "BOTTOM\n\ng = 2\n")
	assert.Less(t, strings.Index(out, "Function: inc"), strings.Index(out, "Function: main"))
}

func TestWriteJSON(t *testing.T) {
	e := runConstants(t, parseTestdata(t, "calls.ir"))
	var b bytes.Buffer
	require.NoError(t, e.Output(&b, config.OutputJSON))

	var decoded map[string][]struct {
		LocationNumber int    `json:"locationNumber"`
		AbstractState  any    `json:"abstractState"`
		Instruction    string `json:"instruction"`
	}
	require.NoError(t, json.Unmarshal(b.Bytes(), &decoded))
	require.Contains(t, decoded, "abort")
	assert.Empty(t, decoded["abort"])

	fail := decoded["fail"]
	require.Len(t, fail, 3)
	assert.Equal(t, 5, fail[2].LocationNumber)
	assert.Equal(t, "BOTTOM", fail[2].AbstractState)
	assert.Equal(t, "TOP", fail[1].AbstractState, "the extern call havocs the globals")

	main := decoded["main"]
	require.Len(t, main, 5)
	assert.Equal(t, "call fail()", main[2].Instruction)
	assert.Equal(t, map[string]any{"g": float64(1), "r": float64(2)}, main[2].AbstractState)
}

func TestWriteXML(t *testing.T) {
	e := runConstants(t, parseTestdata(t, "calls.ir"))
	var b bytes.Buffer
	require.NoError(t, e.Output(&b, config.OutputXML))

	var decoded struct {
		XMLName   xml.Name `xml:"program"`
		Functions []struct {
			Name          string `xml:"name,attr"`
			BodyAvailable bool   `xml:"body_available,attr"`
			Locations     []struct {
				Number int `xml:"location_number,attr"`
				State  struct {
					Bottom bool `xml:"bottom,attr"`
					Values []struct {
						Symbol string `xml:"symbol,attr"`
						Value  int64  `xml:",chardata"`
					} `xml:"value"`
				} `xml:"state"`
			} `xml:"location"`
		} `xml:"function"`
	}
	require.NoError(t, xml.Unmarshal(b.Bytes(), &decoded))

	bodies := map[string]bool{}
	for _, f := range decoded.Functions {
		bodies[f.Name] = f.BodyAvailable
		if f.Name != "main" {
			continue
		}
		require.Len(t, f.Locations, 5)
		afterInc := f.Locations[2]
		assert.Equal(t, 8, afterInc.Number)
		assert.False(t, afterInc.State.Bottom)
		require.Len(t, afterInc.State.Values, 2)
		assert.Equal(t, "r", afterInc.State.Values[1].Symbol)
		assert.Equal(t, int64(2), afterInc.State.Values[1].Value)
		assert.True(t, f.Locations[3].State.Bottom)
	}
	assert.Equal(t, map[string]bool{"abort": false, "inc": true, "fail": true, "main": true}, bodies)
}

func TestUnknownOutputFormat(t *testing.T) {
	e := runConstants(t, parseTestdata(t, "calls.ir"))
	assert.Error(t, e.Output(&bytes.Buffer{}, "html"))
}
