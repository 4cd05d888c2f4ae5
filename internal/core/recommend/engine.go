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

// Package recommend asks one provider for concrete edits that would raise a
// post's score and normalizes whatever shape the reply comes back in.
package recommend

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/extract"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
)

// SystemInstructions frames the recommendation call.
const SystemInstructions = "You are an expert social media strategist. Reply with JSON only."

var errNoCompleter = errors.New("no provider can complete free text")

// Input describes the content to improve.
type Input struct {
	Context   string
	Caption   string
	MediaKind model.MediaKind
	Baseline  float64
}

// Engine produces at most Limit recommendations per call.
type Engine struct {
	completer providers.Completer
	book      *providers.PromptBook
	Limit     int
}

// NewEngine returns an engine backed by completer. A nil completer is
// allowed; Recommend then always returns an empty list.
func NewEngine(completer providers.Completer, book *providers.PromptBook, limit int) *Engine {
	if limit <= 0 {
		limit = model.DefaultRecommendationsLimit
	}
	return &Engine{completer: completer, book: book, Limit: limit}
}

// Focus names what the edits should target for a media kind.
func Focus(kind model.MediaKind) string {
	switch kind {
	case model.MediaKindImage:
		return "filters, overlays and composition"
	case model.MediaKindVideo:
		return "pacing, music and the opening hook"
	default:
		return "wording, hashtags and the call to action"
	}
}

// Recommend never fails: problems are logged and yield an empty list.
func (e *Engine) Recommend(ctx context.Context, in Input) []*model.Recommendation {
	out, err := e.recommend(ctx, in)
	if err != nil {
		slog.WarnContext(ctx, "recommendations unavailable", "media_kind", in.MediaKind, "error", err)
		return []*model.Recommendation{}
	}
	return out
}

func (e *Engine) recommend(ctx context.Context, in Input) ([]*model.Recommendation, error) {
	if e.completer == nil {
		return nil, errNoCompleter
	}
	prompt, err := e.book.RecommendPrompt(in.Context, in.Caption, in.MediaKind, in.Baseline, Focus(in.MediaKind))
	if err != nil {
		return nil, err
	}
	reply, err := e.completer.Complete(ctx, SystemInstructions, prompt)
	if err != nil {
		return nil, err
	}
	return Parse(reply, e.Limit)
}

// Parse extracts recommendations from a reply. It accepts a bare list, an
// object holding the list under "suggestions" or "recommendations", and a
// single recommendation object. The result is ordered by estimated impact,
// highest first, and truncated to limit.
func Parse(reply string, limit int) ([]*model.Recommendation, error) {
	doc, err := extract.Extract(reply)
	if err != nil {
		return nil, err
	}

	items := normalize(doc.Result())
	out := make([]*model.Recommendation, 0, len(items))
	for _, item := range items {
		suggestion := strings.TrimSpace(item.Get("suggestion").String())
		if suggestion == "" {
			continue
		}
		out = append(out, &model.Recommendation{
			Suggestion:      suggestion,
			EstimatedImpact: item.Get("estimated_impact").Float(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EstimatedImpact > out[j].EstimatedImpact
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func normalize(root gjson.Result) []gjson.Result {
	if root.IsArray() {
		return root.Array()
	}
	for _, key := range []string{"suggestions", "recommendations"} {
		if list := root.Get(key); list.IsArray() {
			return list.Array()
		}
	}
	if root.IsObject() {
		return []gjson.Result{root}
	}
	return nil
}
