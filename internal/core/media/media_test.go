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

package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, G: 40, B: 90, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClassify(t *testing.T) {
	data := []byte{1, 2, 3}
	cases := []struct {
		filename string
		data     []byte
		want     model.MediaKind
	}{
		{"clip.MP4", data, model.MediaKindVideo},
		{"clip.webm", data, model.MediaKindVideo},
		{"movie.mkv", data, model.MediaKindVideo},
		{"photo.JPeG", data, model.MediaKindImage},
		{"scan.bmp", data, model.MediaKindImage},
		{"anim.gif", data, model.MediaKindImage},
		{"notes.txt", data, model.MediaKindUnknown},
		{"noext", data, model.MediaKindUnknown},
		{"", data, model.MediaKindNone},
		{"photo.png", nil, model.MediaKindNone},
		{"   ", data, model.MediaKindNone},
	}
	for _, c := range cases {
		t.Run(c.filename, func(t *testing.T) {
			assert.Equal(t, c.want, media.Classify(c.filename, c.data))
		})
	}
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/png", media.DetectMIME("mislabelled.jpg", pngBytes(t, 4, 4)))
	assert.Equal(t, "video/mp4", media.DetectMIME("clip.mp4", []byte("not really a video")))
	assert.Equal(t, "application/octet-stream", media.DetectMIME("blob", []byte{0, 1}))
	assert.Equal(t, "image/jpeg", media.ImageMIME("blob", []byte{0, 1}))
}

func TestFitWithinDownscalesLargeImage(t *testing.T) {
	out, err := media.FitWithin(pngBytes(t, 2000, 1000), 1024, 1024, "png")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)
	assert.Equal(t, 1024, out.Width)
	assert.Equal(t, 512, out.Height)

	w, h, format, err := media.Inspect(out.Data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h)
}

func TestFitWithinKeepsSmallImage(t *testing.T) {
	data := pngBytes(t, 500, 500)
	out, err := media.FitWithin(data, 1024, 1024, "png", "jpeg")
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
	assert.Equal(t, "image/png", out.MIMEType)
	assert.Equal(t, 500, out.Width)
}

func TestFitWithinReencodesUnkeptFormat(t *testing.T) {
	out, err := media.FitWithin(pngBytes(t, 300, 200), 1024, 1024, "jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)
	assert.Equal(t, 300, out.Width)
	assert.Equal(t, 200, out.Height)
}

func TestFitWithinRejectsGarbage(t *testing.T) {
	_, err := media.FitWithin([]byte("definitely not an image"), 10, 10)
	assert.True(t, errors.Is(err, media.ErrMediaUnreadable))
}

func skipIfNoFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	return path
}

func TestExtractFrameFromVideo(t *testing.T) {
	ffmpeg := skipIfNoFFmpeg(t)
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	gen := exec.Command(ffmpeg, "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=1280x720:rate=10", "-t", "1",
		"-pix_fmt", "yuv420p", video)
	require.NoError(t, gen.Run())

	extractor, err := media.NewFFmpegFrameExtractor(ffmpeg, 0, 0)
	require.NoError(t, err)
	frame, err := extractor.ExtractFrame(context.Background(), video)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", frame.MIMEType)
	assert.Equal(t, 800, frame.Width)
	assert.Equal(t, 450, frame.Height)
}

func TestExtractFrameFromCorruptVideo(t *testing.T) {
	ffmpeg := skipIfNoFFmpeg(t)
	video := filepath.Join(t.TempDir(), "broken.mp4")
	require.NoError(t, os.WriteFile(video, []byte("not a video at all"), 0o600))

	extractor, err := media.NewFFmpegFrameExtractor(ffmpeg, 0, 0)
	require.NoError(t, err)
	_, err = extractor.ExtractFrame(context.Background(), video)
	assert.True(t, errors.Is(err, media.ErrMediaUnreadable))
}

func TestNewFFmpegFrameExtractorMissingBinary(t *testing.T) {
	_, err := media.NewFFmpegFrameExtractor("/nonexistent/ffmpeg-binary", 0, 0)
	assert.Error(t, err)
}
