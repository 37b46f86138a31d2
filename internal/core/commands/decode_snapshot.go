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

package commands

import (
	"fmt"

	"github.com/jaycherian/covid-dashboard/internal/core/cor"
	"github.com/jaycherian/covid-dashboard/internal/core/model"
)

// DecodeSnapshot turns the fetched payload into a model.Snapshot.
type DecodeSnapshot struct {
	cor.BaseCommand
}

func NewDecodeSnapshot(name string) *DecodeSnapshot {
	return &DecodeSnapshot{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *DecodeSnapshot) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(*FetchedPayload)
	if !ok {
		c.Fail(context, fmt.Errorf("%w: expected *FetchedPayload, got %T", model.ErrMalformedSnapshot, context.Get(c.GetInputParam())))
		return
	}
	snapshot, err := model.DecodeSnapshot(in.Body, in.FetchedAt)
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, snapshot)
}
