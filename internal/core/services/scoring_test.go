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

package services_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/recommend"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/services"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-virality-scoring/internal/testutil"
)

func newService(t *testing.T, scorers []providers.Scorer, opts ...workflow.Option) *services.ScoringService {
	t.Helper()
	config := test.GetConfig()
	book, err := providers.NewPromptBook(config.PromptTemplates)
	assert.NoError(t, err)
	engine := recommend.NewEngine(providers.FindCompleter(scorers, config.Scoring.RecommendationProvider), book, config.Scoring.RecommendationLimit)
	extractor := &test.FakeFrameExtractor{Frame: test.PNG(8, 8)}
	return services.NewScoringService(config, scorers, extractor, engine, opts...)
}

func healthy() []providers.Scorer {
	return []providers.Scorer{
		&test.StubScorer{Name: "gpt", Result: test.Score(80, "Punchy opener.")},
		&test.StubScorer{Name: "claude", Result: test.Score(60, "Generic visuals.")},
		&test.StubScorer{Name: "gemini"},
	}
}

func failing() []providers.Scorer {
	return []providers.Scorer{&test.StubScorer{Name: "gpt"}, &test.StubScorer{Name: "claude"}}
}

func video() *model.Submission {
	return &model.Submission{Caption: "Watch till the end", Filename: "reel.mp4", Media: []byte("ftypisom")}
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, len(entries), 0)
}

func TestProviders(t *testing.T) {
	svc := newService(t, healthy())
	assert.DeepEqual(t, svc.Providers(), []string{"gpt", "claude", "gemini"})
}

func TestScoreSingle(t *testing.T) {
	scorers := healthy()
	svc := newService(t, scorers)

	ensemble, err := svc.ScoreSingle(context.Background(), &model.Submission{Caption: "Lunch in 9 minutes."})
	assert.NoError(t, err)
	assert.Equal(t, ensemble.OverallScore, 70.0)
	assert.Equal(t, ensemble.ProviderID, model.EnsembleProviderID)
	assert.Equal(t, ensemble.Reasoning, "Ensemble of 2 models. Punchy opener.")
	assert.DeepEqual(t, ensemble.Contributors, []string{"gpt", "claude"})

	gpt := scorers[0].(*test.StubScorer)
	assert.True(t, gpt.Requests[0].IncludeConfidence)
}

func TestScoreSingleAllProvidersFailed(t *testing.T) {
	svc := newService(t, failing())

	ensemble, err := svc.ScoreSingle(context.Background(), &model.Submission{Caption: "x"})
	assert.Error(t, err)
	assert.That(t, errors.Is(err, services.ErrAllProvidersFailed))
	assert.That(t, strings.Contains(err.Error(), "gpt unavailable"))
	assert.NotNil(t, ensemble)
	assert.True(t, ensemble.IsError)
}

func TestScoreSingleReleasesStagedVideo(t *testing.T) {
	for name, scorers := range map[string][]providers.Scorer{"success": healthy(), "all failed": failing()} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			svc := newService(t, scorers, workflow.WithTempDir(dir))

			_, _ = svc.ScoreSingle(context.Background(), video())

			gpt := scorers[0].(*test.StubScorer)
			assert.Equal(t, len(gpt.Requests), 1)
			assert.That(t, strings.HasPrefix(gpt.Requests[0].VideoPath, dir))
			assert.True(t, gpt.Requests[0].HasFrame())
			assertDirEmpty(t, dir)
		})
	}
}

func TestCompareAB(t *testing.T) {
	gpt := &test.StubScorer{Name: "gpt", ByCaption: map[string]*model.ScoreResult{
		"a": test.Score(90, "Variant A lands the hook."),
		"b": test.Score(50, "Variant B buries the offer."),
	}}
	svc := newService(t, []providers.Scorer{gpt})

	verdict, err := svc.CompareAB(context.Background(),
		&model.Submission{VariantID: "spring", Caption: "a"},
		&model.Submission{VariantID: "summer", Caption: "b"})
	assert.NoError(t, err)
	assert.Equal(t, verdict.Winner, model.VariantA)
	assert.Equal(t, verdict.Confidence, 82.0)
	assert.Equal(t, verdict.ScoreDifference, 40.0)
	assert.Equal(t, verdict.VariantAID, "spring")
	assert.Equal(t, verdict.Reasoning, "Ensemble of 1 models. Variant A lands the hook.")

	for _, req := range gpt.Requests {
		assert.False(t, req.IncludeConfidence)
	}
}

func TestCompareABTieGoesToB(t *testing.T) {
	svc := newService(t, []providers.Scorer{&test.StubScorer{Name: "gpt", Result: test.Score(64, "same")}})

	verdict, err := svc.CompareAB(context.Background(), &model.Submission{Caption: "a"}, &model.Submission{Caption: "b"})
	assert.NoError(t, err)
	assert.Equal(t, verdict.Winner, model.VariantB)
	assert.Equal(t, verdict.Confidence, 50.0)
}

func TestCompareABOneVariantFailed(t *testing.T) {
	gpt := &test.StubScorer{Name: "gpt", ByCaption: map[string]*model.ScoreResult{
		"a": test.Score(90, "fine"),
		"b": nil,
	}}
	svc := newService(t, []providers.Scorer{gpt})

	verdict, err := svc.CompareAB(context.Background(), &model.Submission{Caption: "a"}, &model.Submission{Caption: "b"})
	assert.Nil(t, verdict)
	assert.That(t, errors.Is(err, services.ErrAllProvidersFailed))
	assert.That(t, strings.HasPrefix(err.Error(), "variant B"))
}

func TestAnalyze(t *testing.T) {
	scorers := healthy()
	scorers[1].(*test.StubScorer).Reply = `{"recommendations": [
	  {"suggestion": "Add captions for sound-off viewers", "estimated_impact": 4},
	  {"suggestion": "Open on the finished dish", "estimated_impact": 7.5}
	]}`
	svc := newService(t, scorers)

	submission := &model.Submission{Caption: "Lunch", Targeting: model.TargetingContext{Location: "Seattle"}}
	report, err := svc.Analyze(context.Background(), submission)
	assert.NoError(t, err)
	assert.NotNil(t, report)
	assert.That(t, report.RequestID != "")
	assert.Equal(t, report.MediaKind, model.MediaKindNone)
	assert.Equal(t, report.Baseline, 70.0)
	assert.Equal(t, report.Targeting["location"], "Seattle")
	assert.Equal(t, report.Targeting["device"], "any")
	assert.Equal(t, len(report.Results), 3)
	assert.True(t, report.Results["gemini"].IsError)
	assert.DeepEqual(t, report.Ensemble.Contributors, []string{"gpt", "claude"})
	assert.Equal(t, report.Ensemble.OverallScore, report.Baseline)
	assert.Equal(t, len(report.Recommendations), 2)
	assert.Equal(t, report.Recommendations[0].Suggestion, "Open on the finished dish")
}

func TestAnalyzeAllProvidersFailed(t *testing.T) {
	svc := newService(t, failing())

	report, err := svc.Analyze(context.Background(), &model.Submission{Caption: "x"})
	assert.NoError(t, err)
	assert.Equal(t, report.Baseline, 50.0)
	assert.True(t, report.Ensemble.IsError)
	assert.Equal(t, len(report.Results), 2)
	assert.NotNil(t, report.Recommendations)
}

func TestAnalyzeUnwritableTempDir(t *testing.T) {
	svc := newService(t, healthy(), workflow.WithTempDir("/nonexistent/virality/staging"))

	report, err := svc.Analyze(context.Background(), video())
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestNewDefaultScoringServiceWithoutClients(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.FFmpegPath = "definitely-not-ffmpeg"
	svc, err := services.NewDefaultScoringService(config, &cloud.ServiceClients{})
	assert.NoError(t, err)
	assert.Equal(t, len(svc.Providers()), 0)

	_, err = svc.ScoreSingle(context.Background(), &model.Submission{Caption: "x"})
	assert.That(t, errors.Is(err, services.ErrAllProvidersFailed))
}
