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
package data

import (
	"math"
	"strconv"
)

// SafeInt coerces a possibly-missing numeric value to a nullable integer.
// NaN, infinities, and absent values map to nil rather than a sentinel.
func SafeInt(v *float64) *int64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}

	n := int64(*v)
	return &n
}

// SafeFloat coerces a possibly-missing numeric value to a nullable float.
// NaN and infinities map to nil.
func SafeFloat(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}

	f := *v
	return &f
}

// ParseInt parses a decimal string to a nullable integer; any parse
// failure yields nil.
func ParseInt(s string) *int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return SafeInt(&f)
	}

	return &n
}
