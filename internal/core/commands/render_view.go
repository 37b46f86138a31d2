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
	"github.com/jaycherian/covid-dashboard/internal/core/view"
)

// RenderView renders the decoded snapshot with the cycle's selection.
type RenderView struct {
	cor.BaseCommand
}

func NewRenderView(name string) *RenderView {
	return &RenderView{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *RenderView) Execute(context cor.Context) {
	snapshot, ok := context.Get(c.GetInputParam()).(*model.Snapshot)
	if !ok {
		c.Fail(context, fmt.Errorf("render: expected *model.Snapshot, got %T", context.Get(c.GetInputParam())))
		return
	}
	out := view.Render(snapshot, selectionFrom(context.Get))
	context.Add(ViewParam, out)
	c.Succeed(context, out)
}
