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

package model

import (
	"fmt"
	"strings"
)

// ABVerdict is the outcome of comparing two ensembles.
type ABVerdict struct {
	Winner          Variant         `json:"winner"`
	Confidence      float64         `json:"confidence"`
	ScoreA          float64         `json:"score_a"`
	ScoreB          float64         `json:"score_b"`
	ScoreDifference float64         `json:"score_difference"`
	VariantAID      string          `json:"variant_a_id,omitempty"`
	VariantBID      string          `json:"variant_b_id,omitempty"`
	EnsembleA       *EnsembleResult `json:"ensemble_a"`
	EnsembleB       *EnsembleResult `json:"ensemble_b"`
	Reasoning       string          `json:"reasoning"`
}

// Summary renders the verdict as a plain-text report.
func (v *ABVerdict) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "WINNER: Variant %s (Confidence: %.1f%%)\n", v.Winner, v.Confidence)
	writeVariant(&b, VariantA, v.VariantAID, v.EnsembleA)
	writeVariant(&b, VariantB, v.VariantBID, v.EnsembleB)
	fmt.Fprintf(&b, "\nScore Difference: %.1f points\n", v.ScoreDifference)
	fmt.Fprintf(&b, "\nReasoning: %s", v.Reasoning)
	return b.String()
}

func writeVariant(b *strings.Builder, label Variant, id string, e *EnsembleResult) {
	if e == nil {
		return
	}
	name := string(label)
	if id != "" {
		name += ": " + id
	}
	fmt.Fprintf(b, "\nVariant %s\n", name)
	fmt.Fprintf(b, "   Overall Score: %.1f/100\n", e.OverallScore)
	fmt.Fprintf(b, "   Text Quality: %.1f\n", e.TextQuality)
	fmt.Fprintf(b, "   Visual Appeal: %.1f\n", e.VisualAppeal)
	fmt.Fprintf(b, "   Emotional Resonance: %.1f\n", e.EmotionalResonance)
	fmt.Fprintf(b, "   Clarity: %.1f\n", e.Clarity)
}

// Recommendation is one concrete edit with its expected effect on the
// overall score. EstimatedImpact is signed and unclamped.
type Recommendation struct {
	Suggestion      string  `json:"suggestion"`
	EstimatedImpact float64 `json:"estimated_impact"`
}

// AnalysisReport is the output of the analyze-with-targeting path.
// Results echoes every provider; failed ones carry IsError and are left
// out of Ensemble and Baseline.
type AnalysisReport struct {
	RequestID       string                  `json:"request_id"`
	MediaKind       MediaKind               `json:"media_kind"`
	Targeting       map[string]string       `json:"targeting"`
	Results         map[string]*ScoreResult `json:"results"`
	Ensemble        *EnsembleResult         `json:"ensemble"`
	Baseline        float64                 `json:"baseline"`
	Recommendations []*Recommendation       `json:"recommendations"`
}
