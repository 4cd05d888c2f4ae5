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

package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const (
	DefaultFrameMaxWidth  = 800
	DefaultFrameMaxHeight = 800
	frameTempPattern      = "frame-*.png"
)

// FrameExtractor pulls one representative still out of a video file.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string) (*Image, error)
}

// FFmpegFrameExtractor grabs the first decodable frame with ffmpeg and
// scales it to fit MaxWidth x MaxHeight as a JPEG.
type FFmpegFrameExtractor struct {
	CommandPath string
	MaxWidth    int
	MaxHeight   int
}

// NewFFmpegFrameExtractor resolves commandPath (a bare name is looked up on
// PATH) and fails when ffmpeg cannot be found.
func NewFFmpegFrameExtractor(commandPath string, maxWidth, maxHeight int) (*FFmpegFrameExtractor, error) {
	if commandPath == "" {
		commandPath = "ffmpeg"
	}
	resolved, err := exec.LookPath(commandPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	if maxWidth <= 0 {
		maxWidth = DefaultFrameMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultFrameMaxHeight
	}
	return &FFmpegFrameExtractor{CommandPath: resolved, MaxWidth: maxWidth, MaxHeight: maxHeight}, nil
}

func (f *FFmpegFrameExtractor) ExtractFrame(ctx context.Context, videoPath string) (*Image, error) {
	tempFile, err := os.CreateTemp("", frameTempPattern)
	if err != nil {
		return nil, fmt.Errorf("could not create frame file: %w", err)
	}
	framePath := tempFile.Name()
	_ = tempFile.Close()
	defer func() {
		if err := os.Remove(framePath); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to remove frame file", "path", framePath, "error", err)
		}
	}()

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2",
		framePath,
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.CommandPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrMediaUnreadable, err, strings.TrimSpace(stderr.String()))
	}

	raw, err := os.ReadFile(framePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUnreadable, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no decodable frame in %s", ErrMediaUnreadable, videoPath)
	}
	return FitWithin(raw, f.MaxWidth, f.MaxHeight)
}
