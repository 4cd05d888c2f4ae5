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

package model

import (
	"fmt"
	"strings"
)

// UnsetTargetingValue is the sentinel a client sends for "no preference".
const UnsetTargetingValue = "any"

// TargetingContext holds the audience segmentation parameters that are
// echoed into every prompt. Empty strings and "any" both mean unset.
type TargetingContext struct {
	Location string `json:"location,omitempty"`
	AgeRange string `json:"age_range,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Interest string `json:"interest,omitempty"`
	Language string `json:"language,omitempty"`
	Device   string `json:"device,omitempty"`
}

// IsUnset reports whether a targeting value carries no preference.
func IsUnset(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, UnsetTargetingValue)
}

// Values returns the targeting fields keyed by their wire names. Unset
// fields are reported as "any" so the echo is always complete.
func (t TargetingContext) Values() map[string]string {
	out := make(map[string]string, 6)
	for _, f := range t.fields() {
		if IsUnset(f[1]) {
			out[f[0]] = UnsetTargetingValue
		} else {
			out[f[0]] = strings.TrimSpace(f[1])
		}
	}
	return out
}

// Describe renders the set fields as a single prompt fragment such as
// "location: Seattle; age range: 25-34". It returns "" when nothing is set.
func (t TargetingContext) Describe() string {
	parts := make([]string, 0, 6)
	for _, f := range t.fields() {
		if IsUnset(f[1]) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(f[0], "_", " "), strings.TrimSpace(f[1])))
	}
	return strings.Join(parts, "; ")
}

func (t TargetingContext) fields() [][2]string {
	return [][2]string{
		{"location", t.Location},
		{"age_range", t.AgeRange},
		{"gender", t.Gender},
		{"interest", t.Interest},
		{"language", t.Language},
		{"device", t.Device},
	}
}

// Submission is the inbound payload as it arrives from the HTTP form, the
// CLI or a Pub/Sub trigger.
type Submission struct {
	VariantID string           `json:"variant_id,omitempty"`
	Caption   string           `json:"caption"`
	Filename  string           `json:"filename,omitempty"`
	Media     []byte           `json:"-"`
	Audience  string           `json:"audience,omitempty"`
	Category  string           `json:"category,omitempty"`
	Targeting TargetingContext `json:"targeting"`
}

// ContextString is the free-form targeting context handed to providers. It
// joins the audience description with the rendered targeting fields.
func (s *Submission) ContextString() string {
	audience := strings.TrimSpace(s.Audience)
	targeting := s.Targeting.Describe()
	switch {
	case audience == "" && targeting == "":
		return "a general social media audience"
	case audience == "":
		return targeting
	case targeting == "":
		return audience
	default:
		return audience + " (" + targeting + ")"
	}
}

// ScoringRequest is the immutable value every provider adapter receives.
// Use the With* methods to derive a new request; never modify one in place.
type ScoringRequest struct {
	Caption           string
	Filename          string
	Media             []byte
	MediaKind         MediaKind
	Context           string
	Audience          string
	Category          string
	IncludeConfidence bool

	// Populated by WithStagedVideo when MediaKind is video.
	VideoPath string
	Frame     []byte
	FrameErr  error
}

// NewScoringRequest builds the request for one submission.
func NewScoringRequest(s *Submission, kind MediaKind, includeConfidence bool) *ScoringRequest {
	return &ScoringRequest{
		Caption:           s.Caption,
		Filename:          s.Filename,
		Media:             s.Media,
		MediaKind:         kind,
		Context:           s.ContextString(),
		Audience:          s.Audience,
		Category:          s.Category,
		IncludeConfidence: includeConfidence,
	}
}

// WithStagedVideo returns a copy carrying the local video path and the
// representative frame (or the reason no frame could be extracted).
func (r *ScoringRequest) WithStagedVideo(path string, frame []byte, frameErr error) *ScoringRequest {
	out := *r
	out.VideoPath = path
	out.Frame = frame
	out.FrameErr = frameErr
	return &out
}

// HasFrame reports whether a usable still frame is attached.
func (r *ScoringRequest) HasFrame() bool {
	return len(r.Frame) > 0 && r.FrameErr == nil
}
