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
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

type symbolRow struct {
	Symbol string `csv:"symbol"`
}

// SymbolsFromCSV reads a watch-list CSV with a `symbol` column and returns
// the upper-cased, de-duplicated symbols in file order.
func SymbolsFromCSV(r io.Reader) ([]string, error) {
	var rows []*symbolRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	symbols := make([]string, 0, len(rows))

	for _, row := range rows {
		symbol := strings.ToUpper(strings.TrimSpace(row.Symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}
