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

package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

const defaultCategory = "social media"

// PromptBook holds the parsed prompt templates. It is built once and shared
// by every adapter; templates are safe for concurrent execution.
type PromptBook struct {
	score     *template.Template
	video     *template.Template
	recommend *template.Template
}

func NewPromptBook(templates cloud.PromptTemplates) (*PromptBook, error) {
	score, err := template.New("score-template").Parse(templates.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to parse score template: %w", err)
	}
	video, err := template.New("video-template").Parse(templates.Video)
	if err != nil {
		return nil, fmt.Errorf("failed to parse video template: %w", err)
	}
	recommend, err := template.New("recommend-template").Parse(templates.Recommend)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recommend template: %w", err)
	}
	return &PromptBook{score: score, video: video, recommend: recommend}, nil
}

// ScorePrompt renders the prompt for text, image and frame scoring.
// attached is the kind of asset sent along with the prompt.
func (b *PromptBook) ScorePrompt(req *model.ScoringRequest, attached model.MediaKind) (string, error) {
	vocabulary, err := scoreVocabulary(req, attached)
	if err != nil {
		return "", err
	}
	return render(b.score, vocabulary)
}

// VideoPrompt renders the prompt sent with a whole uploaded video.
func (b *PromptBook) VideoPrompt(req *model.ScoringRequest) (string, error) {
	vocabulary, err := scoreVocabulary(req, model.MediaKindVideo)
	if err != nil {
		return "", err
	}
	return render(b.video, vocabulary)
}

// RecommendPrompt renders the recommendation prompt.
func (b *PromptBook) RecommendPrompt(context, caption string, kind model.MediaKind, baseline float64, focus string) (string, error) {
	example, err := json.MarshalIndent(model.GetExampleRecommendations(), "", "  ")
	if err != nil {
		return "", err
	}
	vocabulary := map[string]any{
		"CONTEXT":      context,
		"CAPTION":      caption,
		"MEDIA_KIND":   string(kind),
		"BASELINE":     baseline,
		"FOCUS":        focus,
		"EXAMPLE_JSON": string(example),
	}
	return render(b.recommend, vocabulary)
}

func scoreVocabulary(req *model.ScoringRequest, attached model.MediaKind) (map[string]any, error) {
	example, err := json.MarshalIndent(model.GetExampleScore(req.IncludeConfidence), "", "  ")
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}
	return map[string]any{
		"CAPTION":            req.Caption,
		"CONTEXT":            req.Context,
		"CATEGORY":           category,
		"AUDIENCE":           req.Audience,
		"MEDIA_KIND":         string(attached),
		"INCLUDE_CONFIDENCE": req.IncludeConfidence,
		"EXAMPLE_JSON":       string(example),
	}, nil
}

func render(t *template.Template, vocabulary map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, vocabulary); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
