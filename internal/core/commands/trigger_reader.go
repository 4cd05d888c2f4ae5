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
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// TriggerReader parses a Pub/Sub scoring request.
type TriggerReader struct {
	cor.BaseCommand
}

func NewTriggerReader(name string) *TriggerReader {
	return &TriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *TriggerReader) Execute(context cor.Context) {
	in, ok := cor.Value[string](context, c.GetInputParam())
	if !ok {
		c.Fail(context, fmt.Errorf("expected a message string under %s", c.GetInputParam()))
		return
	}

	var out model.ScoringTrigger
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal scoring trigger: %w", err))
		return
	}
	out.EnsureRequestID()

	c.Succeed(context)
	context.Add(ParamTrigger, &out)
	context.Add(c.GetOutputParam(), &out)
}
