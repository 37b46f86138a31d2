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

package cor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/covid-dashboard/internal/core/cor"
)

type funcCommand struct {
	cor.BaseCommand
	run func(c *funcCommand, context cor.Context)
}

func newFuncCommand(name string, run func(c *funcCommand, context cor.Context)) *funcCommand {
	return &funcCommand{BaseCommand: *cor.NewBaseCommand(name), run: run}
}

func (f *funcCommand) Execute(context cor.Context) {
	f.run(f, context)
}

func upper(name string) *funcCommand {
	return newFuncCommand(name, func(c *funcCommand, context cor.Context) {
		c.Succeed(context, strings.ToUpper(context.Get(c.GetInputParam()).(string)))
	})
}

func suffix(name, s string) *funcCommand {
	return newFuncCommand(name, func(c *funcCommand, context cor.Context) {
		c.Succeed(context, context.Get(c.GetInputParam()).(string)+s)
	})
}

func newContext(in interface{}) cor.Context {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	if in != nil {
		chCtx.Add(cor.CtxIn, in)
	}
	return chCtx
}

func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("pipe").
		AddCommand(upper("upper")).
		AddCommand(suffix("suffix", "!"))

	chCtx := newContext("covid")
	chain.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	assert.Equal(t, "COVID!", chCtx.Get(cor.CtxIn))
	assert.Nil(t, chCtx.Get(cor.CtxOut))
}

func TestChainStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	chain := cor.NewBaseChain("stop").
		AddCommand(newFuncCommand("fail", func(c *funcCommand, context cor.Context) {
			c.Fail(context, boom)
		})).
		AddCommand(newFuncCommand("after", func(c *funcCommand, context cor.Context) {
			ran = true
		}))

	chCtx := newContext("x")
	chain.Execute(chCtx)

	assert.False(t, ran)
	assert.ErrorIs(t, chCtx.Err(), boom)
	assert.Contains(t, chCtx.Err().Error(), "fail: boom")
}

func TestChainContinueOnFailure(t *testing.T) {
	ran := false
	var seen interface{}
	chain := cor.NewBaseChain("continue").
		AddCommand(newFuncCommand("fail", func(c *funcCommand, context cor.Context) {
			c.Fail(context, errors.New("boom"))
		})).
		AddCommand(newFuncCommand("after", func(c *funcCommand, context cor.Context) {
			ran = true
			seen = context.Get(c.GetInputParam())
		})).
		ContinueOnFailure(true)

	chCtx := newContext("x")
	chain.Execute(chCtx)
	assert.True(t, ran)
	assert.Equal(t, "x", seen)
	assert.Error(t, chCtx.GetErrors()["fail"])
}

func TestChainKeepsInputWhenCommandHasNoOutput(t *testing.T) {
	chain := cor.NewBaseChain("passthrough").
		AddCommand(newFuncCommand("noop", func(c *funcCommand, context cor.Context) {})).
		AddCommand(suffix("suffix", "!"))

	chCtx := newContext("covid")
	chain.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	assert.Equal(t, "covid!", chCtx.Get(cor.CtxIn))
}

func TestChainRecoversPanic(t *testing.T) {
	chain := cor.NewBaseChain("panic").
		AddCommand(newFuncCommand("explode", func(c *funcCommand, context cor.Context) {
			panic("nil map")
		}))

	chCtx := newContext("x")
	assert.NotPanics(t, func() { chain.Execute(chCtx) })
	assert.ErrorIs(t, chCtx.Err(), cor.ErrCommandPanic)
}

func TestChainRecordsNotExecutable(t *testing.T) {
	chain := cor.NewBaseChain("missing-input").AddCommand(upper("upper"))

	chCtx := newContext(nil)
	chain.Execute(chCtx)
	assert.ErrorIs(t, chCtx.GetErrors()["upper"], cor.ErrNotExecutable)
}

func TestContextErrorsAreCopied(t *testing.T) {
	chCtx := newContext(nil)
	chCtx.AddError("a", errors.New("first"))

	errs := chCtx.GetErrors()
	delete(errs, "a")
	assert.True(t, chCtx.HasErrors())
	assert.Len(t, chCtx.GetErrors(), 1)
}
