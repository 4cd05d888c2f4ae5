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

// Package commands holds the chain-of-responsibility steps that make up the
// scoring workflows. Each command reads its inputs from the cor.Context by
// well-known keys and writes its outputs back the same way.
package commands

// Context keys shared by the scoring workflows.
const (
	ParamSubmission      = "__submission__"      // *model.Submission
	ParamTrigger         = "__trigger__"         // *model.ScoringTrigger
	ParamRequest         = "__request__"         // *model.ScoringRequest
	ParamResults         = "__results__"         // []*model.ScoreResult
	ParamEnsemble        = "__ensemble__"        // *model.EnsembleResult
	ParamRecommendations = "__recommendations__" // []*model.Recommendation
)
