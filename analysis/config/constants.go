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

package config

const (
	// DefaultProgressIntervalMs is the default minimum number of milliseconds between two progress reports
	DefaultProgressIntervalMs = 1000
	// OutputText selects the textual listing of the abstract states
	OutputText = "text"
	// OutputJSON selects the JSON rendering of the abstract states
	OutputJSON = "json"
	// OutputXML selects the XML rendering of the abstract states
	OutputXML = "xml"
)
