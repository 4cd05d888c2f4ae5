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
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/recommend"
)

// GenerateRecommendations asks the recommendation engine for edits, using
// the ensemble's overall score as the baseline (50 when every provider
// failed). It always produces a list, possibly empty.
type GenerateRecommendations struct {
	cor.BaseCommand
	engine *recommend.Engine
}

func NewGenerateRecommendations(name string, engine *recommend.Engine) *GenerateRecommendations {
	out := &GenerateRecommendations{BaseCommand: *cor.NewBaseCommand(name), engine: engine}
	out.InputParamName = ParamEnsemble
	out.OutputParamName = ParamRecommendations
	return out
}

// Baseline is the score recommendations are measured against.
func Baseline(ensemble *model.EnsembleResult) float64 {
	if ensemble == nil || ensemble.IsError {
		return model.DefaultScore
	}
	return ensemble.OverallScore
}

func (c *GenerateRecommendations) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(ParamRequest) != nil
}

func (c *GenerateRecommendations) Execute(context cor.Context) {
	ensemble, _ := cor.Value[*model.EnsembleResult](context, c.GetInputParam())
	req, _ := cor.Value[*model.ScoringRequest](context, ParamRequest)

	recs := c.engine.Recommend(context.GetContext(), recommend.Input{
		Context:   req.Context,
		Caption:   req.Caption,
		MediaKind: req.MediaKind,
		Baseline:  Baseline(ensemble),
	})
	if len(recs) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
	} else {
		c.Succeed(context)
	}
	context.Add(c.GetOutputParam(), recs)
}
