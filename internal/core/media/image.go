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
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrMediaUnreadable marks an asset that could not be decoded.
var ErrMediaUnreadable = errors.New("media unreadable")

// JPEGQuality is used whenever an image has to be re-encoded.
const JPEGQuality = 90

// Image is an encoded still ready to be attached to a request.
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Inspect decodes only the image header.
func Inspect(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", ErrMediaUnreadable, err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// FitWithin makes sure an image is no larger than maxWidth x maxHeight.
// When the image already fits and its decoded format is one of
// keepFormats, the original bytes are returned untouched. Otherwise the
// image is scaled down (never up, aspect ratio preserved) and re-encoded as
// JPEG. Passing no keepFormats forces the re-encode.
func FitWithin(data []byte, maxWidth, maxHeight int, keepFormats ...string) (*Image, error) {
	width, height, format, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	fits := width <= maxWidth && height <= maxHeight
	if fits && contains(keepFormats, format) {
		return &Image{Data: data, MIMEType: "image/" + format, Width: width, Height: height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUnreadable, err)
	}
	if !fits {
		img = resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	bounds := img.Bounds()
	return &Image{Data: buf.Bytes(), MIMEType: "image/jpeg", Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
