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

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/scoring"
)

// EnsembleScores reduces the provider results to one EnsembleResult. An
// all-error ensemble is still an output; callers decide whether it is a
// failure.
type EnsembleScores struct {
	cor.BaseCommand
	reasoningMaxLength int
}

func NewEnsembleScores(name string, reasoningMaxLength int) *EnsembleScores {
	out := &EnsembleScores{BaseCommand: *cor.NewBaseCommand(name), reasoningMaxLength: reasoningMaxLength}
	out.InputParamName = ParamResults
	out.OutputParamName = ParamEnsemble
	return out
}

func (c *EnsembleScores) Execute(context cor.Context) {
	results, ok := cor.Value[[]*model.ScoreResult](context, c.GetInputParam())
	if !ok {
		c.Fail(context, errors.New("no provider results in context"))
		return
	}
	ensemble := scoring.Aggregate(results, c.reasoningMaxLength)
	if ensemble.IsError {
		c.GetErrorCounter().Add(context.GetContext(), 1)
	} else {
		c.Succeed(context)
	}
	context.Add(c.GetOutputParam(), ensemble)
}
