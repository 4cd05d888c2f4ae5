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

// Package providers adapts each inference provider to a common Scorer.
//
// An adapter shapes the request for its provider (inline image, extracted
// frame or uploaded video), makes exactly one call, and turns the reply into
// a ScoreResult. It never returns an error: transport failures and
// unreadable media become error results with confidence 20, replies that do
// not parse become error results with confidence 30.
package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/extract"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

var tracer = otel.Tracer("github.com/jaycherian/gcp-go-virality-scoring/providers")

// Scorer is one provider's view of a ScoringRequest.
type Scorer interface {
	ID() string
	Score(ctx context.Context, req *model.ScoringRequest) *model.ScoreResult
}

// Completer is a free-form text call, used for recommendations.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// failure builds the error result for err and logs it.
func failure(ctx context.Context, id, modelName string, mode model.AnalysisMode, err error) *model.ScoreResult {
	confidence := model.TransportErrorConfidence
	if errors.Is(err, extract.ErrNoStructureFound) || errors.Is(err, extract.ErrMalformedStructure) {
		confidence = model.ParseErrorConfidence
	}
	slog.WarnContext(ctx, "provider scoring failed", "provider", id, "mode", mode, "confidence", confidence, "error", err)
	out := model.NewErrorScoreResult(id, confidence, err)
	out.Model = modelName
	out.AnalysisMode = mode
	return out
}

// Build creates a scorer for every enabled provider that has a client, in
// the configured order. Providers without a client were skipped when the
// clients were created and are skipped here too.
func Build(config *cloud.Config, clients *cloud.ServiceClients, book *PromptBook) ([]Scorer, error) {
	out := make([]Scorer, 0, len(config.Scoring.EnabledProviders))
	for _, id := range config.Scoring.EnabledProviders {
		provider, ok := config.Providers[id]
		if !ok {
			continue
		}
		switch provider.Kind {
		case cloud.ProviderKindOpenAI:
			if client, ok := clients.ChatClients[id]; ok {
				out = append(out, NewGPTAdapter(id, client, provider, book))
			}
		case cloud.ProviderKindAnthropic:
			if client, ok := clients.ChatClients[id]; ok {
				out = append(out, NewClaudeAdapter(id, client, provider, book))
			}
		case cloud.ProviderKindGemini:
			if m, ok := clients.AgentModels[id]; ok {
				out = append(out, NewGeminiAdapter(id, m, clients.VideoFiles, book,
					videojob.WithBudget(config.VideoAnalysis.Budget()),
					videojob.WithInterval(config.VideoAnalysis.Interval())))
			}
		default:
			return nil, fmt.Errorf("provider %s has unknown kind %q", id, provider.Kind)
		}
	}
	return out, nil
}

// FindCompleter returns the scorer named id if it can complete free text,
// otherwise the first scorer that can.
func FindCompleter(scorers []Scorer, id string) Completer {
	var first Completer
	for _, s := range scorers {
		c, ok := s.(Completer)
		if !ok {
			continue
		}
		if s.ID() == id {
			return c
		}
		if first == nil {
			first = c
		}
	}
	return first
}
