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
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestSafeInt(t *testing.T) {
	if got := SafeInt(nil); got != nil {
		t.Errorf("SafeInt(nil) = %v, want nil", *got)
	}
	if got := SafeInt(floatPtr(math.NaN())); got != nil {
		t.Errorf("SafeInt(NaN) = %v, want nil", *got)
	}
	if got := SafeInt(floatPtr(math.Inf(1))); got != nil {
		t.Errorf("SafeInt(+Inf) = %v, want nil", *got)
	}
	if got := SafeInt(floatPtr(math.Inf(-1))); got != nil {
		t.Errorf("SafeInt(-Inf) = %v, want nil", *got)
	}

	if got := SafeInt(floatPtr(74000321.0)); got == nil || *got != 74000321 {
		t.Errorf("SafeInt(74000321) = %v, want 74000321", got)
	}
	if got := SafeInt(floatPtr(0)); got == nil || *got != 0 {
		t.Errorf("SafeInt(0) = %v, want 0", got)
	}
	// fractional volumes truncate rather than round
	if got := SafeInt(floatPtr(99.9)); got == nil || *got != 99 {
		t.Errorf("SafeInt(99.9) = %v, want 99", got)
	}
}

func TestSafeFloat(t *testing.T) {
	if got := SafeFloat(nil); got != nil {
		t.Errorf("SafeFloat(nil) = %v, want nil", *got)
	}
	if got := SafeFloat(floatPtr(math.NaN())); got != nil {
		t.Errorf("SafeFloat(NaN) = %v, want nil", *got)
	}

	if got := SafeFloat(floatPtr(150.25)); got == nil || *got != 150.25 {
		t.Errorf("SafeFloat(150.25) = %v, want 150.25", got)
	}
}

func TestParseInt(t *testing.T) {
	if got := ParseInt("164000"); got == nil || *got != 164000 {
		t.Errorf("ParseInt(164000) = %v, want 164000", got)
	}
	if got := ParseInt("-12"); got == nil || *got != -12 {
		t.Errorf("ParseInt(-12) = %v, want -12", got)
	}
	// float fallback for exponent-formatted counts
	if got := ParseInt("1.5e3"); got == nil || *got != 1500 {
		t.Errorf("ParseInt(1.5e3) = %v, want 1500", got)
	}
	if got := ParseInt("n/a"); got != nil {
		t.Errorf("ParseInt(n/a) = %v, want nil", *got)
	}
	if got := ParseInt(""); got != nil {
		t.Errorf("ParseInt(empty) = %v, want nil", *got)
	}
}
