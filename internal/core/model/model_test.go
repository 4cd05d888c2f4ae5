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

package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

func TestTargetingUnsetSentinel(t *testing.T) {
	assert.True(t, model.IsUnset(""))
	assert.True(t, model.IsUnset(" ANY "))
	assert.False(t, model.IsUnset("Seattle"))

	targeting := model.TargetingContext{Location: "Seattle", Gender: "any", Device: "mobile"}
	assert.Equal(t, "location: Seattle; device: mobile", targeting.Describe())
	assert.Equal(t, map[string]string{
		"location":  "Seattle",
		"age_range": "any",
		"gender":    "any",
		"interest":  "any",
		"language":  "any",
		"device":    "mobile",
	}, targeting.Values())
}

func TestSubmissionContextString(t *testing.T) {
	s := &model.Submission{}
	assert.Equal(t, "a general social media audience", s.ContextString())

	s.Audience = "runners"
	assert.Equal(t, "runners", s.ContextString())

	s.Targeting.AgeRange = "18-24"
	assert.Equal(t, "runners (age range: 18-24)", s.ContextString())

	s.Audience = ""
	assert.Equal(t, "age range: 18-24", s.ContextString())
}

func TestScoringRequestIsCopiedWhenStaged(t *testing.T) {
	req := model.NewScoringRequest(&model.Submission{Caption: "hi", Filename: "a.mp4", Media: []byte{1}}, model.MediaKindVideo, true)
	staged := req.WithStagedVideo("/tmp/a.mp4", []byte{9}, nil)

	assert.Empty(t, req.VideoPath)
	assert.False(t, req.HasFrame())
	assert.Equal(t, "/tmp/a.mp4", staged.VideoPath)
	assert.True(t, staged.HasFrame())
	assert.True(t, staged.IncludeConfidence)
}

func TestScoringTriggerRequestID(t *testing.T) {
	trigger := &model.ScoringTrigger{Caption: "hello", MediaURI: "gs://bucket/posts/clip.mp4"}
	id := trigger.EnsureRequestID()

	expected := uuid.NewSHA1(uuid.NameSpaceURL, []byte("gs://bucket/posts/clip.mp4\nhello"))
	assert.Equal(t, expected.String(), id)

	trigger.RequestID = "req-7"
	assert.Equal(t, "req-7", trigger.EnsureRequestID())
}

func TestScoringTriggerSubmission(t *testing.T) {
	trigger := &model.ScoringTrigger{RequestID: "req-1", Caption: "hello", MediaURI: "gs://bucket/posts/clip.mp4", Category: "fitness"}
	s := trigger.Submission([]byte("bytes"))

	assert.Equal(t, "clip.mp4", s.Filename)
	assert.Equal(t, "req-1", s.VariantID)
	assert.Equal(t, "fitness", s.Category)
	assert.Equal(t, []byte("bytes"), s.Media)

	trigger.Filename = "named.mov"
	assert.Equal(t, "named.mov", trigger.Submission(nil).Filename)
}

func TestExampleScoreConfidenceIsOptional(t *testing.T) {
	assert.Nil(t, model.GetExampleScore(false).Confidence)
	assert.NotNil(t, model.GetExampleScore(true).Confidence)
	assert.NotEmpty(t, model.GetExampleRecommendations().Suggestions)
}
