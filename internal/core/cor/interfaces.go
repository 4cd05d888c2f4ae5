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

// Package cor (Chain of Responsibility) holds the primitives every scoring
// workflow is assembled from. A workflow is a Chain of Commands that share a
// single request-scoped Context. Commands read their inputs from the Context,
// write their outputs back to it and report failures with AddError.
//
// A Context lives exactly as long as one orchestration call. It owns the
// temporary artifacts created during that call and releases them in Close.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the piping keys used by BaseChain. After every command
// the value found under CtxOut is moved to CtxIn for the next command.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the request-scoped property bag passed through a chain.
type Context interface {
	// SetContext replaces the Go context (deadline, cancellation, span).
	SetContext(context context.Context)
	GetContext() context.Context

	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records a failure, keyed by the command that produced it.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool

	// AddTempFile registers a file or directory that Close must remove.
	AddTempFile(file string)
	GetTempFiles() []string

	// Close removes every registered temporary artifact. Callers defer it
	// right after creating the Context.
	Close()
}

// Executable is anything with a unit of work driven by a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a single instrumented step of a workflow.
type Command interface {
	Executable

	GetName() string

	// GetInputParam is the Context key holding the primary input.
	GetInputParam() string

	// GetOutputParam is the Context key receiving the primary output.
	GetOutputParam() string

	// IsExecutable reports whether the Context holds what Execute needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain runs a sequence of commands. A Chain is a Command, so chains nest.
type Chain interface {
	Command

	// ContinueOnFailure keeps the chain running after a command records an
	// error. The default is to stop at the first failure.
	ContinueOnFailure(bool) Chain

	AddCommand(command Command) Chain
}

// Value fetches a typed value from the Context. The boolean is false when
// the key is missing or holds a value of another type.
func Value[T any](context Context, key string) (T, bool) {
	v, ok := context.Get(key).(T)
	return v, ok
}
