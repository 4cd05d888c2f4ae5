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

// Package cor (Chain of Responsibility) provides the building blocks for
// scoring workflows. This file defines `BaseChain`, the default `Chain`.
//
// A chain is itself a `Command`, which lets workflows nest: the trigger
// workflow runs the scoring workflow as one of its steps. The chain owns the
// tracing layout of a request:
//   - One span named "<chain>_execute" wraps the whole run.
//   - Each command gets a child span named after the command, ended even when
//     the command is skipped.
//   - Failed commands record their error on their own span; later commands
//     are marked as skipped because of an earlier error.
package cor

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain executes its commands in order inside one span per chain and
// one child span per command. After each command the CtxOut value is piped
// into CtxIn for the next one.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates an empty chain that stops at the first failure.
//
// Inputs:
//   - name: The chain name, used for its span and its counters.
//
// Returns:
//   - A chain ready for AddCommand calls.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// Commands returns the configured steps in execution order.
func (c *BaseChain) Commands() []Command {
	return c.commands
}

// IsExecutable only needs a Go context; the steps check their own inputs.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute runs every command in order against chCtx.
//
// For each command it:
//  1. Stops when an earlier command failed, unless ContinueOnFailure is set.
//  2. Runs the command only when IsExecutable accepts the context, with the
//     command's span installed as the Go context.
//  3. Moves the value under CtxOut to CtxIn so the next command can pick it
//     up, clearing both keys when nothing was produced.
//
// The caller's Go context is restored on return.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()
	// Hand the caller its own context back once the chain is done.
	defer chCtx.SetContext(parentCtx)

	for _, command := range c.commands {
		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())

		if chCtx.HasErrors() && !c.continueOnFailure {
			commandSpan.SetStatus(codes.Error, "previous error on chain; skipping execution")
			commandSpan.End()
			break
		}

		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandContext)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)
		} else {
			slog.DebugContext(commandContext, "skipping command", "chain", c.GetName(), "command", command.GetName())
			commandSpan.SetStatus(codes.Unset, fmt.Sprintf("command not executable: %s", command.GetName()))
		}

		if err, failed := chCtx.GetErrors()[command.GetName()]; failed {
			commandSpan.RecordError(err)
			commandSpan.SetStatus(codes.Error, "command failed")
		} else if chCtx.HasErrors() {
			commandSpan.SetStatus(codes.Error, "error on chain")
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed successfully")
		}
		commandSpan.End()

		outputValue := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)
	}

	if chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	} else {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	}
}
