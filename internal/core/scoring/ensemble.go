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

// Package scoring reduces per-provider results into an ensemble and turns
// two ensembles into an A/B verdict.
package scoring

import (
	"fmt"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// Aggregate averages every numeric field over the results that did not
// error. Errored results are excluded, not counted as zero. When nothing
// succeeded the ensemble is flagged as an error and carries the numbers of
// the first result. reasoningMaxLength bounds the quoted reasoning; values
// <= 0 use the default of 150 characters.
func Aggregate(results []*model.ScoreResult, reasoningMaxLength int) *model.EnsembleResult {
	if reasoningMaxLength <= 0 {
		reasoningMaxLength = model.DefaultReasoningMaxLength
	}

	ok := make([]*model.ScoreResult, 0, len(results))
	for _, r := range results {
		if r != nil && !r.IsError {
			ok = append(ok, r)
		}
	}

	if len(ok) == 0 {
		out := &model.EnsembleResult{Contributors: []string{}}
		if len(results) > 0 && results[0] != nil {
			out.ScoreResult = *results[0]
		} else {
			out.ScoreResult = *model.NewErrorScoreResult(model.EnsembleProviderID, model.TransportErrorConfidence, fmt.Errorf("no provider results"))
		}
		out.ProviderID = model.EnsembleProviderID
		out.IsError = true
		out.AnalysisMode = ""
		out.Model = ""
		return out
	}

	sums := make([]float64, 7)
	var confidence float64
	contributors := make([]string, 0, len(ok))
	for _, r := range ok {
		for i, v := range r.Dimensions() {
			sums[i] += v
		}
		confidence += r.Confidence
		contributors = append(contributors, r.ProviderID)
	}
	n := float64(len(ok))
	for i := range sums {
		sums[i] /= n
	}

	out := &model.EnsembleResult{Contributors: contributors}
	out.SetDimensions(sums)
	out.Confidence = confidence / n
	out.ProviderID = model.EnsembleProviderID
	out.Reasoning = fmt.Sprintf("Ensemble of %d models. ", len(ok)) + truncate(ok[0].Reasoning, reasoningMaxLength)
	return out
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
