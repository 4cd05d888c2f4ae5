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
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// ClassifyMedia turns the submission into the immutable ScoringRequest
// handed to every provider.
type ClassifyMedia struct {
	cor.BaseCommand
	includeConfidence bool
}

func NewClassifyMedia(name string, includeConfidence bool) *ClassifyMedia {
	out := &ClassifyMedia{BaseCommand: *cor.NewBaseCommand(name), includeConfidence: includeConfidence}
	out.InputParamName = ParamSubmission
	return out
}

func (c *ClassifyMedia) Execute(context cor.Context) {
	submission, ok := cor.Value[*model.Submission](context, c.GetInputParam())
	if !ok {
		c.Fail(context, errors.New("no submission in context"))
		return
	}

	kind := media.Classify(submission.Filename, submission.Media)
	req := model.NewScoringRequest(submission, kind, c.includeConfidence)

	trace.SpanFromContext(context.GetContext()).SetAttributes(
		attribute.String("media_kind", string(kind)),
		attribute.Int("media_bytes", len(submission.Media)),
	)
	slog.DebugContext(context.GetContext(), "classified submission", "filename", submission.Filename, "media_kind", kind)

	c.Succeed(context)
	context.Add(ParamRequest, req)
	context.Add(c.GetOutputParam(), req)
}
