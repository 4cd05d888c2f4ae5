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

package commands

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
)

// ScoreProviders fans the request out to every scorer concurrently. Results
// keep the scorer order; a provider failure is an error result, never a
// chain failure.
type ScoreProviders struct {
	cor.BaseCommand
	scorers         []providers.Scorer
	numberOfWorkers int
}

func NewScoreProviders(name string, scorers []providers.Scorer, numberOfWorkers int) *ScoreProviders {
	out := &ScoreProviders{
		BaseCommand:     *cor.NewBaseCommand(name),
		scorers:         scorers,
		numberOfWorkers: numberOfWorkers,
	}
	out.InputParamName = ParamRequest
	out.OutputParamName = ParamResults
	return out
}

func (s *ScoreProviders) Execute(context cor.Context) {
	req, ok := cor.Value[*model.ScoringRequest](context, s.GetInputParam())
	if !ok {
		s.Fail(context, errors.New("no scoring request in context"))
		return
	}
	ctx := context.GetContext()

	results := make([]*model.ScoreResult, len(s.scorers))
	var group errgroup.Group
	if s.numberOfWorkers > 0 {
		group.SetLimit(s.numberOfWorkers)
	}
	for i, scorer := range s.scorers {
		group.Go(func() error {
			results[i] = scorer.Score(ctx, req)
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, r := range results {
		if r.IsError {
			failed++
		}
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("providers", len(results)),
		attribute.Int("providers_failed", failed),
	)
	slog.InfoContext(ctx, "providers scored", "media_kind", req.MediaKind, "providers", len(results), "failed", failed)

	s.Succeed(context)
	context.Add(s.GetOutputParam(), results)
}
