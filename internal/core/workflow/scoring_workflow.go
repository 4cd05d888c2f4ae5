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

// Package workflow assembles the scoring commands into chains. A workflow
// is itself a cor.Command, so the trigger workflow nests the scoring one.
package workflow

import (
	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/commands"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/recommend"
)

const stagedVideoPrefix = "virality-video-"

// ScoringWorkflow scores one Submission found under commands.ParamSubmission.
// It leaves the request, the per-provider results, the ensemble and, when
// enabled, the recommendations in the context.
type ScoringWorkflow struct {
	cor.BaseCommand
	scorers            []providers.Scorer
	extractor          media.FrameExtractor
	engine             *recommend.Engine
	includeConfidence  bool
	numberOfWorkers    int
	reasoningMaxLength int
	tempDir            string
	chain              cor.Chain
}

type Option func(*ScoringWorkflow)

// WithConfidence asks providers for a confidence figure.
func WithConfidence() Option {
	return func(w *ScoringWorkflow) { w.includeConfidence = true }
}

// WithRecommendations appends the recommendation step.
func WithRecommendations(engine *recommend.Engine) Option {
	return func(w *ScoringWorkflow) { w.engine = engine }
}

// WithTempDir stages videos under dir instead of the OS default.
func WithTempDir(dir string) Option {
	return func(w *ScoringWorkflow) { w.tempDir = dir }
}

func (w *ScoringWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *ScoringWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	out.AddCommand(commands.NewClassifyMedia("classify-media", w.includeConfidence))
	// Videos only: both steps skip themselves for other media kinds.
	out.AddCommand(commands.NewStageVideo("stage-video", w.tempDir, stagedVideoPrefix))
	out.AddCommand(commands.NewExtractFrame("extract-frame", w.extractor))
	out.AddCommand(commands.NewScoreProviders("score-providers", w.scorers, w.numberOfWorkers))
	out.AddCommand(commands.NewEnsembleScores("ensemble-scores", w.reasoningMaxLength))
	if w.engine != nil {
		out.AddCommand(commands.NewGenerateRecommendations("generate-recommendations", w.engine))
	}

	w.chain = out
}

func NewScoringWorkflow(
	name string,
	config *cloud.Config,
	scorers []providers.Scorer,
	extractor media.FrameExtractor,
	opts ...Option) *ScoringWorkflow {

	out := &ScoringWorkflow{
		BaseCommand:        *cor.NewBaseCommand(name),
		scorers:            scorers,
		extractor:          extractor,
		numberOfWorkers:    config.Application.ThreadPoolSize,
		reasoningMaxLength: config.Scoring.ReasoningMaxLength,
	}
	out.InputParamName = commands.ParamSubmission
	for _, opt := range opts {
		opt(out)
	}
	out.initializeChain()
	return out
}
