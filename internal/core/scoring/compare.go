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

package scoring

import (
	"math"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

const (
	DefaultConfidenceFloor = 50.0
	DefaultConfidenceSlope = 0.8
	DefaultConfidenceCap   = 95.0
)

// Comparator maps the gap between two overall scores to a winner and a
// confidence: min(Floor + gap*Slope, Cap).
type Comparator struct {
	Floor float64
	Slope float64
	Cap   float64
}

func DefaultComparator() *Comparator {
	return &Comparator{Floor: DefaultConfidenceFloor, Slope: DefaultConfidenceSlope, Cap: DefaultConfidenceCap}
}

// Compare picks A only when its overall score is strictly higher; exact
// ties go to B. The verdict quotes the winner's reasoning verbatim.
func (c *Comparator) Compare(a, b *model.EnsembleResult) *model.ABVerdict {
	winner, reasoning := model.VariantB, b.Reasoning
	if a.OverallScore > b.OverallScore {
		winner, reasoning = model.VariantA, a.Reasoning
	}
	diff := math.Abs(a.OverallScore - b.OverallScore)

	return &model.ABVerdict{
		Winner:          winner,
		Confidence:      math.Min(c.Floor+diff*c.Slope, c.Cap),
		ScoreA:          a.OverallScore,
		ScoreB:          b.OverallScore,
		ScoreDifference: diff,
		EnsembleA:       a,
		EnsembleB:       b,
		Reasoning:       reasoning,
	}
}
