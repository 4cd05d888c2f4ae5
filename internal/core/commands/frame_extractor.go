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
	"log/slog"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// ExtractFrame pulls the representative frame out of the staged video. It
// runs before the provider fan-out. A failed extraction is not a chain
// failure: it is attached to the request and each adapter decides what it
// means for its own result.
type ExtractFrame struct {
	cor.BaseCommand
	extractor media.FrameExtractor
}

func NewExtractFrame(name string, extractor media.FrameExtractor) *ExtractFrame {
	out := &ExtractFrame{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor}
	out.InputParamName = ParamRequest
	return out
}

func (c *ExtractFrame) IsExecutable(context cor.Context) bool {
	req, ok := cor.Value[*model.ScoringRequest](context, c.GetInputParam())
	return ok && context.GetContext() != nil && req.MediaKind == model.MediaKindVideo && req.VideoPath != ""
}

func (c *ExtractFrame) Execute(context cor.Context) {
	req, _ := cor.Value[*model.ScoringRequest](context, c.GetInputParam())

	var frame []byte
	var frameErr error
	if c.extractor == nil {
		frameErr = media.ErrMediaUnreadable
	} else if img, err := c.extractor.ExtractFrame(context.GetContext(), req.VideoPath); err != nil {
		frameErr = err
	} else {
		frame = img.Data
	}

	if frameErr != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "frame extraction failed", "path", req.VideoPath, "error", frameErr)
	} else {
		c.Succeed(context)
	}

	staged := req.WithStagedVideo(req.VideoPath, frame, frameErr)
	context.Add(ParamRequest, staged)
	context.Add(c.GetOutputParam(), staged)
}
