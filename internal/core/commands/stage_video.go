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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// StageVideo writes an uploaded video to a temporary file so ffmpeg and the
// upload job can read it by path. The file is registered with the context
// and removed when the context is closed.
type StageVideo struct {
	cor.BaseCommand
	tempDir        string
	tempFilePrefix string
}

// NewStageVideo stages into tempDir, or the OS default when it is empty.
func NewStageVideo(name string, tempDir string, tempFilePrefix string) *StageVideo {
	out := &StageVideo{
		BaseCommand:    *cor.NewBaseCommand(name),
		tempDir:        tempDir,
		tempFilePrefix: tempFilePrefix,
	}
	out.InputParamName = ParamRequest
	return out
}

func (c *StageVideo) IsExecutable(context cor.Context) bool {
	req, ok := cor.Value[*model.ScoringRequest](context, c.GetInputParam())
	return ok && context.GetContext() != nil && req.MediaKind == model.MediaKindVideo
}

func (c *StageVideo) Execute(context cor.Context) {
	req, _ := cor.Value[*model.ScoringRequest](context, c.GetInputParam())

	tempFile, err := os.CreateTemp(c.tempDir, c.tempFilePrefix+"*"+strings.ToLower(filepath.Ext(req.Filename)))
	if err != nil {
		c.Fail(context, fmt.Errorf("could not create temp file: %w", err))
		return
	}
	context.AddTempFile(tempFile.Name())

	written, err := tempFile.Write(req.Media)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to stage video, %d bytes written: %w", written, err))
		return
	}

	slog.DebugContext(context.GetContext(), "staged video", "path", tempFile.Name(), "bytes", written)
	c.Succeed(context)
	staged := req.WithStagedVideo(tempFile.Name(), nil, nil)
	context.Add(ParamRequest, staged)
	context.Add(c.GetOutputParam(), staged)
}
