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

// Package services exposes the scoring workflows as a typed API used by the
// HTTP server, the CLI and the tests.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/commands"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/recommend"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/scoring"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/workflow"
)

// ErrAllProvidersFailed is returned when no provider produced a usable
// score for a piece of content.
var ErrAllProvidersFailed = errors.New("all providers failed")

// ScoringService runs the single, A/B and analyze paths.
type ScoringService struct {
	scorers    []providers.Scorer
	extractor  media.FrameExtractor
	comparator *scoring.Comparator
	single     *workflow.ScoringWorkflow
	variant    *workflow.ScoringWorkflow
	analyze    *workflow.ScoringWorkflow
}

// NewScoringService wires the workflows. extractor and engine may be nil:
// videos are then scored without a frame and analysis carries no
// recommendations.
func NewScoringService(
	config *cloud.Config,
	scorers []providers.Scorer,
	extractor media.FrameExtractor,
	engine *recommend.Engine,
	opts ...workflow.Option) *ScoringService {

	analyzeOpts := append([]workflow.Option{}, opts...)
	if engine != nil {
		analyzeOpts = append(analyzeOpts, workflow.WithRecommendations(engine))
	}
	return &ScoringService{
		scorers:   scorers,
		extractor: extractor,
		comparator: &scoring.Comparator{
			Floor: config.Scoring.ConfidenceFloor,
			Slope: config.Scoring.ConfidenceSlope,
			Cap:   config.Scoring.ConfidenceCap,
		},
		single:  workflow.NewScoringWorkflow("score-single", config, scorers, extractor, append([]workflow.Option{workflow.WithConfidence()}, opts...)...),
		variant: workflow.NewScoringWorkflow("score-variant", config, scorers, extractor, opts...),
		analyze: workflow.NewScoringWorkflow("analyze", config, scorers, extractor, analyzeOpts...),
	}
}

// NewDefaultScoringService builds every collaborator from the configuration
// and the initialized clients.
func NewDefaultScoringService(config *cloud.Config, clients *cloud.ServiceClients) (*ScoringService, error) {
	book, err := providers.NewPromptBook(config.PromptTemplates)
	if err != nil {
		return nil, err
	}
	scorers, err := providers.Build(config, clients, book)
	if err != nil {
		return nil, err
	}
	if len(scorers) == 0 {
		slog.Warn("no providers are configured; every request will fail")
	}

	var extractor media.FrameExtractor
	ffmpeg, err := media.NewFFmpegFrameExtractor(config.Application.FFmpegPath, media.DefaultFrameMaxWidth, media.DefaultFrameMaxHeight)
	if err != nil {
		slog.Warn("frame extraction disabled", "error", err)
	} else {
		extractor = ffmpeg
	}

	completer := providers.FindCompleter(scorers, config.Scoring.RecommendationProvider)
	engine := recommend.NewEngine(completer, book, config.Scoring.RecommendationLimit)
	return NewScoringService(config, scorers, extractor, engine), nil
}

// Providers lists the ids of the configured scorers in query order.
func (s *ScoringService) Providers() []string {
	out := make([]string, 0, len(s.scorers))
	for _, scorer := range s.scorers {
		out = append(out, scorer.ID())
	}
	return out
}

// TriggerWorkflow returns a workflow that scores Pub/Sub requests with the
// service's providers. publisher may be nil.
func (s *ScoringService) TriggerWorkflow(config *cloud.Config, source commands.MediaSource, publisher commands.Publisher) *workflow.TriggerWorkflow {
	return workflow.NewTriggerWorkflow(config, s.scorers, s.extractor, source, publisher)
}

type outcome struct {
	request         *model.ScoringRequest
	results         []*model.ScoreResult
	ensemble        *model.EnsembleResult
	recommendations []*model.Recommendation
}

// run executes flow for one submission and releases its temporary files
// before returning.
func (s *ScoringService) run(ctx context.Context, flow cor.Command, submission *model.Submission) (*outcome, error) {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.ParamSubmission, submission)

	flow.Execute(chCtx)

	if chCtx.HasErrors() {
		errs := make([]error, 0, len(chCtx.GetErrors()))
		for name, err := range chCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return nil, errors.Join(errs...)
	}

	out := &outcome{}
	out.request, _ = cor.Value[*model.ScoringRequest](chCtx, commands.ParamRequest)
	out.results, _ = cor.Value[[]*model.ScoreResult](chCtx, commands.ParamResults)
	out.ensemble, _ = cor.Value[*model.EnsembleResult](chCtx, commands.ParamEnsemble)
	out.recommendations, _ = cor.Value[[]*model.Recommendation](chCtx, commands.ParamRecommendations)
	if out.ensemble == nil {
		return nil, errors.New("scoring produced no ensemble")
	}
	return out, nil
}

func allFailed(results []*model.ScoreResult) error {
	reasons := make([]string, 0, len(results))
	for _, r := range results {
		reasons = append(reasons, r.ProviderID+": "+r.Reasoning)
	}
	if len(reasons) == 0 {
		return fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}
	return fmt.Errorf("%w (%s)", ErrAllProvidersFailed, strings.Join(reasons, "; "))
}

// ScoreSingle scores one piece of content, asking providers for their
// confidence. When every provider fails the error ensemble is returned
// together with an error wrapping ErrAllProvidersFailed.
func (s *ScoringService) ScoreSingle(ctx context.Context, submission *model.Submission) (*model.EnsembleResult, error) {
	out, err := s.run(ctx, s.single, submission)
	if err != nil {
		return nil, err
	}
	if out.ensemble.IsError {
		return out.ensemble, allFailed(out.results)
	}
	return out.ensemble, nil
}

// CompareAB scores both variants concurrently and declares a winner.
func (s *ScoringService) CompareAB(ctx context.Context, a, b *model.Submission) (*model.ABVerdict, error) {
	var outA, outB *outcome
	var group errgroup.Group
	group.Go(func() (err error) {
		outA, err = s.run(ctx, s.variant, a)
		return err
	})
	group.Go(func() (err error) {
		outB, err = s.run(ctx, s.variant, b)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if outA.ensemble.IsError {
		return nil, fmt.Errorf("variant %s: %w", model.VariantA, allFailed(outA.results))
	}
	if outB.ensemble.IsError {
		return nil, fmt.Errorf("variant %s: %w", model.VariantB, allFailed(outB.results))
	}

	verdict := s.comparator.Compare(outA.ensemble, outB.ensemble)
	verdict.VariantAID = a.VariantID
	verdict.VariantBID = b.VariantID
	slog.InfoContext(ctx, "a/b comparison complete", "winner", verdict.Winner, "confidence", verdict.Confidence,
		"score_a", verdict.ScoreA, "score_b", verdict.ScoreB)
	return verdict, nil
}

// Analyze scores the content, reports every provider's result and asks for
// recommendations. Provider failures never fail the analysis.
func (s *ScoringService) Analyze(ctx context.Context, submission *model.Submission) (*model.AnalysisReport, error) {
	out, err := s.run(ctx, s.analyze, submission)
	if err != nil {
		return nil, err
	}

	report := &model.AnalysisReport{
		RequestID:       submission.VariantID,
		MediaKind:       out.request.MediaKind,
		Targeting:       submission.Targeting.Values(),
		Results:         make(map[string]*model.ScoreResult, len(out.results)),
		Ensemble:        out.ensemble,
		Baseline:        commands.Baseline(out.ensemble),
		Recommendations: out.recommendations,
	}
	if report.RequestID == "" {
		report.RequestID = uuid.NewString()
	}
	for _, r := range out.results {
		report.Results[r.ProviderID] = r
	}
	if report.Recommendations == nil {
		report.Recommendations = []*model.Recommendation{}
	}
	return report, nil
}
