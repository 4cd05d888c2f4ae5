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

package scoring_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/scoring"
)

func ok(id string, overall float64, reasoning string) *model.ScoreResult {
	r := model.NewDefaultScoreResult(id)
	r.OverallScore = overall
	r.TextQuality = overall - 10
	r.Confidence = 60
	r.Reasoning = reasoning
	return r
}

func failed(id string, confidence float64) *model.ScoreResult {
	r := model.NewErrorScoreResult(id, confidence, errors.New("boom"))
	r.OverallScore = 11
	return r
}

func ensemble(overall float64, reasoning string) *model.EnsembleResult {
	return &model.EnsembleResult{ScoreResult: model.ScoreResult{OverallScore: overall, Reasoning: reasoning}}
}

func TestAggregateMean(t *testing.T) {
	got := scoring.Aggregate([]*model.ScoreResult{ok("gpt", 60, "first"), ok("claude", 80, "second"), ok("gemini", 100, "third")}, 0)
	assert.False(t, got.IsError)
	assert.Equal(t, 80.0, got.OverallScore)
	assert.Equal(t, 70.0, got.TextQuality)
	assert.Equal(t, model.DefaultScore, got.Clarity)
	assert.Equal(t, 60.0, got.Confidence)
	assert.Equal(t, "Ensemble of 3 models. first", got.Reasoning)
	assert.Equal(t, model.EnsembleProviderID, got.ProviderID)
	assert.Equal(t, []string{"gpt", "claude", "gemini"}, got.Contributors)
}

func TestAggregateExcludesErrors(t *testing.T) {
	got := scoring.Aggregate([]*model.ScoreResult{ok("gpt", 60, "a"), failed("claude", 20), ok("gemini", 100, "c")}, 0)
	assert.False(t, got.IsError)
	assert.Equal(t, 80.0, got.OverallScore)
	assert.Equal(t, "Ensemble of 2 models. a", got.Reasoning)
	assert.Equal(t, []string{"gpt", "gemini"}, got.Contributors)
}

func TestAggregateReasoningFollowsInputOrder(t *testing.T) {
	got := scoring.Aggregate([]*model.ScoreResult{failed("gpt", 20), ok("claude", 90, "claude says"), ok("gemini", 70, "gemini says")}, 0)
	assert.Equal(t, 80.0, got.OverallScore)
	assert.Equal(t, "Ensemble of 2 models. claude says", got.Reasoning)

	swapped := scoring.Aggregate([]*model.ScoreResult{ok("gemini", 70, "gemini says"), ok("claude", 90, "claude says")}, 0)
	assert.Equal(t, got.OverallScore, swapped.OverallScore)
	assert.Equal(t, "Ensemble of 2 models. gemini says", swapped.Reasoning)
}

func TestAggregateAllErrors(t *testing.T) {
	first := failed("gpt", 20)
	got := scoring.Aggregate([]*model.ScoreResult{first, failed("claude", 30)}, 0)
	assert.True(t, got.IsError)
	assert.Equal(t, first.Dimensions(), got.Dimensions())
	assert.Equal(t, 20.0, got.Confidence)
	assert.Equal(t, "boom", got.Reasoning)
	assert.Empty(t, got.Contributors)
}

func TestAggregateEmptyInput(t *testing.T) {
	got := scoring.Aggregate(nil, 0)
	assert.True(t, got.IsError)
	assert.Equal(t, model.DefaultScore, got.OverallScore)
}

func TestAggregateTruncatesReasoning(t *testing.T) {
	long := strings.Repeat("é", 400)
	got := scoring.Aggregate([]*model.ScoreResult{ok("gpt", 50, long)}, 0)
	require.True(t, strings.HasPrefix(got.Reasoning, "Ensemble of 1 models. "))
	assert.Equal(t, 150, len([]rune(strings.TrimPrefix(got.Reasoning, "Ensemble of 1 models. "))))

	short := scoring.Aggregate([]*model.ScoreResult{ok("gpt", 50, long)}, 10)
	assert.Equal(t, "Ensemble of 1 models. "+strings.Repeat("é", 10), short.Reasoning)
}

func TestCompareTieGoesToB(t *testing.T) {
	v := scoring.DefaultComparator().Compare(ensemble(70, "a"), ensemble(70, "b"))
	assert.Equal(t, model.VariantB, v.Winner)
	assert.Equal(t, 50.0, v.Confidence)
	assert.Equal(t, "b", v.Reasoning)
	assert.Zero(t, v.ScoreDifference)
}

func TestCompareLinearConfidence(t *testing.T) {
	a, b := ensemble(90, "a wins"), ensemble(50, "b")
	v := scoring.DefaultComparator().Compare(a, b)
	assert.Equal(t, model.VariantA, v.Winner)
	assert.InDelta(t, 82.0, v.Confidence, 1e-9)
	assert.Equal(t, 90.0, v.ScoreA)
	assert.Equal(t, 50.0, v.ScoreB)
	assert.Equal(t, 40.0, v.ScoreDifference)
	assert.Equal(t, "a wins", v.Reasoning)
	assert.Same(t, a, v.EnsembleA)
	assert.Same(t, b, v.EnsembleB)
}

func TestCompareCapsConfidence(t *testing.T) {
	v := scoring.DefaultComparator().Compare(ensemble(20, "a"), ensemble(95, "b"))
	assert.Equal(t, model.VariantB, v.Winner)
	assert.Equal(t, 95.0, v.Confidence)
}

func TestCompareCustomConstants(t *testing.T) {
	c := &scoring.Comparator{Floor: 40, Slope: 1, Cap: 90}
	v := c.Compare(ensemble(60, "a"), ensemble(50, "b"))
	assert.Equal(t, 50.0, v.Confidence)
}

func TestVerdictSummary(t *testing.T) {
	v := scoring.DefaultComparator().Compare(ensemble(90, "punchy"), ensemble(50, "flat"))
	v.VariantAID = "food_quality_focus"
	s := v.Summary()
	assert.Contains(t, s, "WINNER: Variant A (Confidence: 82.0%)")
	assert.Contains(t, s, "Variant A: food_quality_focus")
	assert.Contains(t, s, "Score Difference: 40.0 points")
	assert.Contains(t, s, "Reasoning: punchy")
}
