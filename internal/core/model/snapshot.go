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

// Package model defines the data structures shared by the proxy and the
// dashboard. The statistics snapshot is transient: it is decoded once per
// refresh cycle, rendered, and dropped. Nothing in this package is persisted.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ErrMalformedSnapshot is returned when a statistics payload is missing one of
// the six required fields or carries a value outside its domain.
var ErrMalformedSnapshot = errors.New("malformed statistics snapshot")

var snapshotJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot is one fetched set of global summary statistics. It is valid only
// for the refresh cycle that fetched it.
type Snapshot struct {
	Cases               int64     `json:"cases"`
	Deaths              int64     `json:"deaths"`
	Recovered           int64     `json:"recovered"`
	CasesPerMillion     float64   `json:"casesPerOneMillion"`
	DeathsPerMillion    float64   `json:"deathsPerOneMillion"`
	RecoveredPerMillion float64   `json:"recoveredPerOneMillion"`
	FetchedAt           time.Time `json:"-"`
}

// snapshotPayload mirrors the upstream wire shape. Raw fields let the decoder
// tell a missing field apart from a zero value, and a number from a string.
type snapshotPayload struct {
	Cases               jsoniter.RawMessage `json:"cases"`
	Deaths              jsoniter.RawMessage `json:"deaths"`
	Recovered           jsoniter.RawMessage `json:"recovered"`
	CasesPerMillion     jsoniter.RawMessage `json:"casesPerOneMillion"`
	DeathsPerMillion    jsoniter.RawMessage `json:"deathsPerOneMillion"`
	RecoveredPerMillion jsoniter.RawMessage `json:"recoveredPerOneMillion"`
}

// DecodeSnapshot parses a statistics payload and stamps it with fetchedAt.
// Every one of the six fields must be present as a JSON number and be
// non-negative, and the three totals must be integral. Other upstream fields
// are ignored.
func DecodeSnapshot(body []byte, fetchedAt time.Time) (*Snapshot, error) {
	var p snapshotPayload
	if err := snapshotJSON.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	out := &Snapshot{FetchedAt: fetchedAt}
	var err error
	if out.Cases, err = totalField("cases", p.Cases); err != nil {
		return nil, err
	}
	if out.Deaths, err = totalField("deaths", p.Deaths); err != nil {
		return nil, err
	}
	if out.Recovered, err = totalField("recovered", p.Recovered); err != nil {
		return nil, err
	}
	if out.CasesPerMillion, err = rateField("casesPerOneMillion", p.CasesPerMillion); err != nil {
		return nil, err
	}
	if out.DeathsPerMillion, err = rateField("deathsPerOneMillion", p.DeathsPerMillion); err != nil {
		return nil, err
	}
	if out.RecoveredPerMillion, err = rateField("recoveredPerOneMillion", p.RecoveredPerMillion); err != nil {
		return nil, err
	}
	return out, nil
}

// numberField returns raw as a json.Number. Missing and null fields, strings,
// booleans, objects and arrays are all rejected.
func numberField(name string, raw jsoniter.RawMessage) (json.Number, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedSnapshot, name)
	}
	// The document already parsed, so a leading '-' or digit means a number token.
	if c := trimmed[0]; c != '-' && (c < '0' || c > '9') {
		return "", fmt.Errorf("%w: field %q is not a number: %s", ErrMalformedSnapshot, name, trimmed)
	}
	return json.Number(trimmed), nil
}

func totalField(name string, raw jsoniter.RawMessage) (int64, error) {
	n, err := numberField(name, raw)
	if err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		// Some encoders emit integral counts as 1.2e+06.
		f, ferr := n.Float64()
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: field %q is not an integer: %s", ErrMalformedSnapshot, name, n.String())
		}
		// float64(math.MaxInt64) is 2^63, which does not fit.
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("%w: field %q is out of range: %s", ErrMalformedSnapshot, name, n.String())
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: field %q is negative: %d", ErrMalformedSnapshot, name, v)
	}
	return v, nil
}

func rateField(name string, raw jsoniter.RawMessage) (float64, error) {
	n, err := numberField(name, raw)
	if err != nil {
		return 0, err
	}
	v, err := n.Float64()
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: field %q is not a number: %s", ErrMalformedSnapshot, name, n.String())
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: field %q is negative: %g", ErrMalformedSnapshot, name, v)
	}
	return v, nil
}

// Totals returns the three raw counts in display order: cases, deaths, recovered.
func (s *Snapshot) Totals() []float64 {
	return []float64{float64(s.Cases), float64(s.Deaths), float64(s.Recovered)}
}

// PerMillion returns the three per-million rates in display order.
func (s *Snapshot) PerMillion() []float64 {
	return []float64{s.CasesPerMillion, s.DeathsPerMillion, s.RecoveredPerMillion}
}

// Series picks the value series a chart is bound to.
func (s *Snapshot) Series(m Metric) []float64 {
	if m == MetricPerMillion {
		return s.PerMillion()
	}
	return s.Totals()
}

// MetricNames are the row and category labels, in display order.
var MetricNames = []string{"Cases", "Deaths", "Recovered"}
