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
	"strings"

	"github.com/google/uuid"
)

// ScoringTrigger is a scoring request as published to Pub/Sub. The media,
// when present, is referenced by a gs:// URI and read before scoring.
type ScoringTrigger struct {
	RequestID string           `json:"request_id"`
	Caption   string           `json:"caption"`
	MediaURI  string           `json:"media_uri,omitempty"`
	Filename  string           `json:"filename,omitempty"`
	Audience  string           `json:"audience,omitempty"`
	Category  string           `json:"category,omitempty"`
	Targeting TargetingContext `json:"targeting"`
}

// EnsureRequestID assigns a name-based id when the publisher sent none, so
// redelivered messages keep the same id.
func (t *ScoringTrigger) EnsureRequestID() string {
	if strings.TrimSpace(t.RequestID) == "" {
		t.RequestID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(t.MediaURI+"\n"+t.Caption)).String()
	}
	return t.RequestID
}

// Submission converts the trigger once its media has been read.
func (t *ScoringTrigger) Submission(media []byte) *Submission {
	filename := t.Filename
	if filename == "" && t.MediaURI != "" {
		filename = t.MediaURI[strings.LastIndex(t.MediaURI, "/")+1:]
	}
	return &Submission{
		VariantID: t.RequestID,
		Caption:   t.Caption,
		Filename:  filename,
		Media:     media,
		Audience:  t.Audience,
		Category:  t.Category,
		Targeting: t.Targeting,
	}
}

// ScoringOutcome is published once a triggered request has been scored.
type ScoringOutcome struct {
	RequestID string          `json:"request_id"`
	MediaKind MediaKind       `json:"media_kind"`
	Ensemble  *EnsembleResult `json:"ensemble"`
	Results   []*ScoreResult  `json:"results"`
}
