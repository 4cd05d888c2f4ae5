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
	goctx "context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// MediaSource fetches the bytes behind a media uri.
type MediaSource interface {
	Read(ctx goctx.Context, uri string) ([]byte, error)
}

// MediaReader resolves a trigger into a Submission, downloading its media
// when the trigger references any.
type MediaReader struct {
	cor.BaseCommand
	source MediaSource
}

func NewMediaReader(name string, source MediaSource) *MediaReader {
	out := &MediaReader{BaseCommand: *cor.NewBaseCommand(name), source: source}
	out.InputParamName = ParamTrigger
	out.OutputParamName = ParamSubmission
	return out
}

func (c *MediaReader) Execute(context cor.Context) {
	trigger, _ := cor.Value[*model.ScoringTrigger](context, c.GetInputParam())

	var data []byte
	if trigger.MediaURI != "" {
		if c.source == nil {
			c.Fail(context, fmt.Errorf("no media source configured for %s", trigger.MediaURI))
			return
		}
		var err error
		data, err = c.source.Read(context.GetContext(), trigger.MediaURI)
		if err != nil {
			c.Fail(context, fmt.Errorf("failed to read media for request %s: %w", trigger.RequestID, err))
			return
		}
		slog.InfoContext(context.GetContext(), "read trigger media", "request_id", trigger.RequestID, "uri", trigger.MediaURI, "bytes", len(data))
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), trigger.Submission(data))
}
