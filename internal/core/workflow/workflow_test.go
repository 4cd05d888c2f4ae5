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

package workflow_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/commands"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/recommend"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-virality-scoring/internal/testutil"
)

func scorers() (*test.StubScorer, *test.StubScorer, []providers.Scorer) {
	gpt := &test.StubScorer{Name: "gpt", Result: test.Score(80, "Strong hook.")}
	claude := &test.StubScorer{Name: "claude", Result: test.Score(70, "Good copy.")}
	return gpt, claude, []providers.Scorer{gpt, claude}
}

func run(t *testing.T, name string, command cor.Command, key string, value any) cor.Context {
	t.Helper()
	traceCtx, span := tracer.Start(ctx, name)
	t.Cleanup(func() { span.End() })

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(traceCtx)
	chainCtx.Add(key, value)
	command.Execute(chainCtx)

	for k, err := range chainCtx.GetErrors() {
		logger.Error("workflow error", "command", k, "error", err)
	}
	if chainCtx.HasErrors() {
		span.SetStatus(codes.Error, "workflow failed")
	} else {
		span.SetStatus(codes.Ok, "workflow passed")
	}
	return chainCtx
}

func TestScoringWorkflowText(t *testing.T) {
	gpt, _, all := scorers()
	flow := workflow.NewScoringWorkflow("scoring-test", config, all, &test.FakeFrameExtractor{}, workflow.WithConfidence())

	chainCtx := run(t, "scoring-text", flow, commands.ParamSubmission, &model.Submission{Caption: "Lunch in 9 minutes."})
	defer chainCtx.Close()
	require.False(t, chainCtx.HasErrors())

	ensemble, ok := cor.Value[*model.EnsembleResult](chainCtx, commands.ParamEnsemble)
	require.True(t, ok)
	assert.Equal(t, 75.0, ensemble.OverallScore)
	assert.Equal(t, []string{"gpt", "claude"}, ensemble.Contributors)
	assert.Nil(t, chainCtx.Get(commands.ParamRecommendations))

	require.Len(t, gpt.Requests, 1)
	assert.True(t, gpt.Requests[0].IncludeConfidence)
	assert.Equal(t, model.MediaKindNone, gpt.Requests[0].MediaKind)
}

func TestScoringWorkflowVideoStagesAndExtractsFrame(t *testing.T) {
	gpt, _, all := scorers()
	extractor := &test.FakeFrameExtractor{Frame: test.PNG(8, 8)}
	flow := workflow.NewScoringWorkflow("scoring-test", config, all, extractor, workflow.WithTempDir(t.TempDir()))

	submission := &model.Submission{Caption: "Watch this", Filename: "clip.mov", Media: []byte("moov")}
	chainCtx := run(t, "scoring-video", flow, commands.ParamSubmission, submission)
	require.False(t, chainCtx.HasErrors())

	require.Len(t, gpt.Requests, 1)
	req := gpt.Requests[0]
	assert.Equal(t, model.MediaKindVideo, req.MediaKind)
	assert.True(t, req.HasFrame())
	assert.Equal(t, []string{req.VideoPath}, extractor.Paths)
	assert.False(t, req.IncludeConfidence)

	_, err := os.Stat(req.VideoPath)
	require.NoError(t, err)
	chainCtx.Close()
	_, err = os.Stat(req.VideoPath)
	assert.True(t, os.IsNotExist(err))
}

func TestScoringWorkflowWithRecommendations(t *testing.T) {
	_, claude, all := scorers()
	claude.Reply = `[{"suggestion": "Lead with the price", "estimated_impact": 6}, {"suggestion": "Add a local tag", "estimated_impact": 9}]`
	book, err := providers.NewPromptBook(config.PromptTemplates)
	require.NoError(t, err)
	engine := recommend.NewEngine(providers.FindCompleter(all, config.Scoring.RecommendationProvider), book, config.Scoring.RecommendationLimit)

	flow := workflow.NewScoringWorkflow("analyze-test", config, all, nil, workflow.WithRecommendations(engine))
	chainCtx := run(t, "scoring-recommend", flow, commands.ParamSubmission, &model.Submission{Caption: "Lunch", Filename: "a.png", Media: test.PNG(4, 4)})
	defer chainCtx.Close()

	recs, ok := cor.Value[[]*model.Recommendation](chainCtx, commands.ParamRecommendations)
	require.True(t, ok)
	require.Len(t, recs, 2)
	assert.Equal(t, "Add a local tag", recs[0].Suggestion)
	require.Len(t, claude.Prompts, 1)
	assert.Contains(t, claude.Prompts[0], "currently scores 75.0/100")
}

func TestScoringWorkflowAllProvidersFailed(t *testing.T) {
	all := []providers.Scorer{&test.StubScorer{Name: "gpt"}, &test.StubScorer{Name: "claude"}}
	flow := workflow.NewScoringWorkflow("scoring-test", config, all, nil)

	chainCtx := run(t, "scoring-all-failed", flow, commands.ParamSubmission, &model.Submission{Caption: "x"})
	defer chainCtx.Close()

	ensemble, ok := cor.Value[*model.EnsembleResult](chainCtx, commands.ParamEnsemble)
	require.True(t, ok)
	assert.True(t, ensemble.IsError)
	assert.False(t, chainCtx.HasErrors())
}

func TestTriggerWorkflow(t *testing.T) {
	_, _, all := scorers()
	source := &test.FakeMediaSource{Objects: map[string][]byte{"gs://virality-test-media/posts/lunch.png": test.PNG(16, 16)}}
	publisher := &test.FakePublisher{}
	flow := workflow.NewTriggerWorkflow(config, all, nil, source, publisher)

	chainCtx := run(t, "trigger", flow, cor.CtxIn, test.GetTestTriggerMessageText())
	defer chainCtx.Close()
	require.False(t, chainCtx.HasErrors())
	require.Len(t, publisher.Messages, 1)

	var outcome model.ScoringOutcome
	require.NoError(t, json.Unmarshal(publisher.Messages[0], &outcome))
	assert.Equal(t, "req-001", outcome.RequestID)
	assert.Equal(t, model.MediaKindImage, outcome.MediaKind)
	assert.Equal(t, 75.0, outcome.Ensemble.OverallScore)
	assert.Len(t, outcome.Results, 2)
}

func TestTriggerWorkflowStopsOnMissingMedia(t *testing.T) {
	gpt, _, all := scorers()
	publisher := &test.FakePublisher{}
	flow := workflow.NewTriggerWorkflow(config, all, nil, &test.FakeMediaSource{}, publisher)

	chainCtx := run(t, "trigger-missing-media", flow, cor.CtxIn, test.GetTestTriggerMessageText())
	defer chainCtx.Close()

	assert.Contains(t, chainCtx.GetErrors(), "trigger-media-reader")
	assert.Empty(t, gpt.Requests)
	assert.Empty(t, publisher.Messages)
}
