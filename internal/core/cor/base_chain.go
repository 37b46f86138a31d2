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

package cor

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

// ErrCommandPanic is recorded when a command panics. The chain recovers so a
// single faulty step never takes the process down.
var ErrCommandPanic = errors.New("command panicked")

// ErrNotExecutable is recorded when a command's precondition is not met.
var ErrNotExecutable = errors.New("command not executable")

// BaseChain runs its commands in order. After each command the value in
// CtxOut becomes the value in CtxIn for the next one; a command that leaves
// CtxOut empty does not disturb CtxIn.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain is the constructor for BaseChain.
//
// Inputs:
//   - name: The chain name, used for its span and counters.
//
// Outputs:
//   - *BaseChain: An empty chain that stops at the first failure.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

// ContinueOnFailure sets whether later commands still run after one fails.
//
// Inputs:
//   - continueOnFailure: When true every command runs; when false the chain
//     stops at the first command that records an error.
//
// Outputs:
//   - Chain: The same chain, for fluent building.
func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

// AddCommand appends command to the execution sequence.
//
// Inputs:
//   - command: The next step. It reads CtxIn unless it names another input key.
//
// Outputs:
//   - Chain: The same chain, for fluent building.
func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable only needs a Go context; the first command checks its own input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute runs every command inside its own child span of the chain span.
// A panicking command is recorded as ErrCommandPanic and a command whose
// precondition fails as ErrNotExecutable.
//
// Inputs:
//   - chCtx: The shared context. It must carry a Go context and the first
//     command's input; errors and the final output are left in it.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()

	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()

	for _, command := range c.commands {
		if chCtx.HasErrors() && !c.continueOnFailure {
			break
		}

		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())

		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandContext)
			runCommand(command, chCtx)
			// Keep sibling spans flat instead of nesting each under the previous one.
			chCtx.SetContext(outerCtx)
		} else {
			chCtx.AddError(command.GetName(), ErrNotExecutable)
		}

		if err, failed := chCtx.GetErrors()[command.GetName()]; failed {
			commandSpan.RecordError(err)
			commandSpan.SetStatus(codes.Error, err.Error())
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed successfully")
		}
		commandSpan.End()

		// A command that produced nothing leaves the previous input in place.
		if outputValue := chCtx.Get(CtxOut); outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)
	}

	if !chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	} else {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	}
}

func runCommand(command Command, chCtx Context) {
	defer func() {
		if r := recover(); r != nil {
			chCtx.AddError(command.GetName(), fmt.Errorf("%w: %v", ErrCommandPanic, r))
		}
	}()
	command.Execute(chCtx)
}
