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
// scoring workflows. This file defines `BaseContext`, the default
// implementation of the `Context` interface.
//
// The Context is the property bag handed from command to command during one
// scoring request. This implementation holds:
//   - A map of arbitrary values keyed by parameter name (`data`).
//   - A map of errors keyed by the command that produced them (`errors`).
//   - The temporary artifacts created during the request, such as a staged
//     video, so they are removed when the request ends (`tempFiles`).
//   - The Go `context.Context` carrying the deadline and the current span.
package cor

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// BaseContext is the default Context. It is not safe for concurrent
// mutation; commands that fan out collect their results locally and write
// them back from the calling goroutine.
type BaseContext struct {
	data      map[string]interface{}
	errors    map[string]error
	tempFiles []string
	context   context.Context
}

// NewBaseContext creates the Context for one request.
//
// Returns:
//   - An empty Context whose Go context is context.Background. Callers
//     normally replace it with SetContext and defer Close immediately.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
		context:   context.Background(),
	}
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes every tracked temporary artifact, newest first, so files
// created inside a tracked directory go before the directory itself.
// Artifacts that are already gone are ignored.
func (c *BaseContext) Close() {
	for i := len(c.tempFiles) - 1; i >= 0; i-- {
		file := c.tempFiles[i]
		if err := os.RemoveAll(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove temporary artifact", "path", file, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
