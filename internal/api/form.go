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

package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

var errEmptySubmission = errors.New("text or media is required")

// errTooLarge is returned when an uploaded file exceeds the upload cap.
type errTooLarge struct {
	field string
	limit int64
}

func (e *errTooLarge) Error() string {
	return fmt.Sprintf("%s exceeds the %d byte upload limit", e.field, e.limit)
}

// targeting reads the context fields shared by every variant.
func targeting(c *gin.Context) model.TargetingContext {
	return model.TargetingContext{
		Location: strings.TrimSpace(c.PostForm("location")),
		AgeRange: strings.TrimSpace(c.PostForm("age_range")),
		Gender:   strings.TrimSpace(c.PostForm("gender")),
		Interest: strings.TrimSpace(c.PostForm("interest")),
		Language: strings.TrimSpace(c.PostForm("language")),
		Device:   strings.TrimSpace(c.PostForm("device")),
	}
}

// submission builds a Submission from the form. textField names the caption
// field and fileFields the accepted file fields, first match wins.
func submission(c *gin.Context, form *multipart.Form, maxBytes int64, textField string, fileFields ...string) (*model.Submission, error) {
	out := &model.Submission{
		Caption:   strings.TrimSpace(c.PostForm(textField)),
		Audience:  strings.TrimSpace(c.PostForm("target_audience")),
		Category:  strings.TrimSpace(c.PostForm("business_category")),
		Targeting: targeting(c),
	}
	for _, field := range fileFields {
		headers := form.File[field]
		if len(headers) == 0 || headers[0].Filename == "" {
			continue
		}
		data, err := readFile(headers[0], field, maxBytes)
		if err != nil {
			return nil, err
		}
		out.Filename = headers[0].Filename
		out.Media = data
		break
	}
	if out.Caption == "" && len(out.Media) == 0 {
		return nil, fmt.Errorf("%s: %w", textField, errEmptySubmission)
	}
	return out, nil
}

func readFile(header *multipart.FileHeader, field string, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, &errTooLarge{field: field, limit: maxBytes}
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer file.Close()
	return io.ReadAll(file)
}
