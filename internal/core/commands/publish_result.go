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
	goctx "context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
)

// Publisher sends an encoded message to the result topic.
type Publisher interface {
	Publish(ctx goctx.Context, data []byte, attributes map[string]string) error
}

// PublishResult publishes the outcome of a triggered request.
type PublishResult struct {
	cor.BaseCommand
	publisher Publisher
}

func NewPublishResult(name string, publisher Publisher) *PublishResult {
	out := &PublishResult{BaseCommand: *cor.NewBaseCommand(name), publisher: publisher}
	out.InputParamName = ParamEnsemble
	return out
}

func (c *PublishResult) Execute(context cor.Context) {
	ensemble, _ := cor.Value[*model.EnsembleResult](context, c.GetInputParam())
	results, _ := cor.Value[[]*model.ScoreResult](context, ParamResults)
	outcome := &model.ScoringOutcome{Ensemble: ensemble, Results: results}
	if trigger, ok := cor.Value[*model.ScoringTrigger](context, ParamTrigger); ok {
		outcome.RequestID = trigger.RequestID
	}
	if req, ok := cor.Value[*model.ScoringRequest](context, ParamRequest); ok {
		outcome.MediaKind = req.MediaKind
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to encode scoring outcome: %w", err))
		return
	}
	attributes := map[string]string{
		"request_id": outcome.RequestID,
		"is_error":   strconv.FormatBool(ensemble.IsError),
	}
	if err := c.publisher.Publish(context.GetContext(), data, attributes); err != nil {
		c.Fail(context, fmt.Errorf("failed to publish scoring outcome: %w", err))
		return
	}
	slog.InfoContext(context.GetContext(), "published scoring outcome", "request_id", outcome.RequestID, "overall_score", ensemble.OverallScore)
	c.Succeed(context)
}
