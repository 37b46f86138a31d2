// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCount groups thousands with commas: 1234567 -> "1,234,567".
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatRate rounds to exactly two decimals and groups thousands:
// 1234.5 -> "1,234.50". Rounding is done on the exact binary value, so
// 0.125 -> "0.12" and 0.015 -> "0.01".
func FormatRate(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		// NaN and infinities
		return s
	}
	return sign + humanize.BigComma(n) + "." + frac
}
