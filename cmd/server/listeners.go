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

package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/commands"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/services"
)

// ScoringRequestsListener is the subscription key for triggered scoring.
const ScoringRequestsListener = "ScoringRequests"

func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients, scoring *services.ScoringService) {
	listener, ok := cloudClients.PubSubListeners[ScoringRequestsListener]
	if !ok {
		slog.InfoContext(ctx, "no scoring subscription configured, triggers disabled")
		return
	}

	var publisher commands.Publisher
	if cloudClients.ResultTopic != nil {
		publisher = cloud.NewTopicPublisher(cloudClients.ResultTopic)
	}
	source := cloud.NewGCSMediaReader(cloudClients.StorageClient, config.Application.MaxUploadBytes)

	listener.SetCommand(scoring.TriggerWorkflow(config, source, publisher))
	listener.Listen(ctx)

	for name := range cloudClients.PubSubListeners {
		if name != ScoringRequestsListener {
			slog.WarnContext(ctx, "subscription has no workflow, ignoring", "listener", name)
		}
	}
}
