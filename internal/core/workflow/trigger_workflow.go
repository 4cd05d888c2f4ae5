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

package workflow

import (
	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/commands"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/cor"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/media"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/providers"
)

// TriggerWorkflow handles a scoring request received from Pub/Sub: the
// message is parsed, its media downloaded, the content scored and the
// outcome published.
type TriggerWorkflow struct {
	cor.BaseCommand
	source    commands.MediaSource
	publisher commands.Publisher
	scoring   *ScoringWorkflow
	chain     cor.Chain
}

func (t *TriggerWorkflow) Execute(context cor.Context) {
	t.chain.Execute(context)
}

func (t *TriggerWorkflow) initializeChain() {
	out := cor.NewBaseChain(t.GetName())

	out.AddCommand(commands.NewTriggerReader("scoring-trigger-reader"))
	out.AddCommand(commands.NewMediaReader("trigger-media-reader", t.source))
	out.AddCommand(t.scoring)
	if t.publisher != nil {
		out.AddCommand(commands.NewPublishResult("publish-result", t.publisher))
	}

	t.chain = out
}

// NewTriggerWorkflow builds the workflow. publisher may be nil, in which case
// outcomes are only logged.
func NewTriggerWorkflow(
	config *cloud.Config,
	scorers []providers.Scorer,
	extractor media.FrameExtractor,
	source commands.MediaSource,
	publisher commands.Publisher) *TriggerWorkflow {

	out := &TriggerWorkflow{
		BaseCommand: *cor.NewBaseCommand("scoring-trigger-workflow"),
		source:      source,
		publisher:   publisher,
		scoring:     NewScoringWorkflow("triggered-scoring", config, scorers, extractor, WithConfidence()),
	}
	out.initializeChain()
	return out
}
