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

// Package media inspects uploaded assets: it classifies them, sniffs their
// MIME type, resizes stills and pulls a representative frame out of videos.
package media

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".webm": {}, ".mkv": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
}

// Classify decides the media kind from the declared filename only. The
// content is never sniffed; data is consulted just to tell whether an asset
// was uploaded at all.
func Classify(filename string, data []byte) model.MediaKind {
	if strings.TrimSpace(filename) == "" || len(data) == 0 {
		return model.MediaKindNone
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := videoExtensions[ext]; ok {
		return model.MediaKindVideo
	}
	if _, ok := imageExtensions[ext]; ok {
		return model.MediaKindImage
	}
	return model.MediaKindUnknown
}

// DetectMIME returns the MIME type used when attaching the asset to a
// provider request. Magic bytes win over the extension.
func DetectMIME(filename string, data []byte) string {
	if len(data) > 0 {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			return kind.MIME.Value
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if base, _, err := mime.ParseMediaType(byExt); err == nil {
			return base
		}
		return byExt
	}
	return "application/octet-stream"
}

// ImageMIME is DetectMIME narrowed to images. Anything that does not look
// like an image is reported as JPEG, which every provider accepts.
func ImageMIME(filename string, data []byte) string {
	m := DetectMIME(filename, data)
	if strings.HasPrefix(m, "image/") {
		return m
	}
	return "image/jpeg"
}
