// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestSymbolsFromCSV(t *testing.T) {
	csv := `symbol,name
aapl,Apple
MSFT,Microsoft
 aapl ,duplicate
,blank
BRK.A,Berkshire
`
	symbols, err := SymbolsFromCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("SymbolsFromCSV: %v", err)
	}

	want := []string{"AAPL", "MSFT", "BRK.A"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("symbols = %v, want %v", symbols, want)
	}
}

func TestSymbolsFromCSVBadInput(t *testing.T) {
	if _, err := SymbolsFromCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}
