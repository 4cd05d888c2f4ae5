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

// Package cloud provides components for interacting with Google Cloud services.
// This file defines ServiceClients, the container for every long-lived client
// the application uses. Clients are created once at startup from the
// configuration and shared read-only by all requests.
package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/videojob"
)

// ChatClient is implemented by the REST chat transports.
type ChatClient interface {
	Complete(ctx context.Context, in *ChatRequest) (string, error)
	Model() string
}

// ServiceClients holds the initialized clients.
type ServiceClients struct {
	StorageClient   *storage.Client                         // Nil unless GCS staging or triggers are configured.
	PubsubClient    *pubsub.Client                          // Nil unless subscriptions or a result topic are configured.
	GenAIClient     *genai.Client                           // Nil unless a Gemini provider is enabled.
	PubSubListeners map[string]*PubSubListener              // Active listeners keyed by logical name.
	ResultTopic     *pubsub.Topic                           // Receives results of triggered requests.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel // Gemini models keyed by provider id.
	ChatClients     map[string]ChatClient                   // REST chat clients keyed by provider id.
	VideoFiles      videojob.FileService                    // Backend for full-video analysis jobs.
}

// Close releases every client that was created.
func (c *ServiceClients) Close() {
	if c.ResultTopic != nil {
		c.ResultTopic.Stop()
	}
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
}

// NewCloudServiceClients creates the clients required by config. A provider
// without credentials is skipped with a warning rather than failing startup.
//
// Inputs:
//   - ctx: Used while the Google Cloud clients connect.
//   - config: Decides which clients are needed:
//     storage for the gcs video backend or trigger media, Pub/Sub for
//     subscriptions or a result topic, and one client per enabled provider.
//
// Returns:
//   - cloud: The populated container. Call Close on shutdown.
//   - err: Set when a Google Cloud client cannot be created or a provider
//     has an unknown kind. Clients created so far are closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{
		PubSubListeners: make(map[string]*PubSubListener),
		AgentModels:     make(map[string]*QuotaAwareGenerativeAIModel),
		ChatClients:     make(map[string]ChatClient),
	}

	var storageOpts []option.ClientOption
	if config.Storage.Endpoint != "" {
		storageOpts = append(storageOpts, option.WithEndpoint(config.Storage.Endpoint))
	}
	needsStorage := config.VideoAnalysis.Backend == VideoBackendGCS || len(config.TopicSubscriptions) > 0
	if needsStorage {
		if cloud.StorageClient, err = storage.NewClient(ctx, storageOpts...); err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	if len(config.TopicSubscriptions) > 0 || config.PubSub.ResultTopic != "" {
		if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			cloud.Close()
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		for key, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				cloud.Close()
				return nil, err
			}
			if values.TimeoutInSeconds > 0 {
				listener.SetTimeout(secondsToDuration(values.TimeoutInSeconds))
			}
			cloud.PubSubListeners[key] = listener
		}
		if config.PubSub.ResultTopic != "" {
			cloud.ResultTopic = cloud.PubsubClient.Topic(config.PubSub.ResultTopic)
		}
	}

	for _, id := range config.Scoring.EnabledProviders {
		provider, ok := config.Providers[id]
		if !ok {
			slog.WarnContext(ctx, "enabled provider has no configuration", "provider", id)
			continue
		}
		switch provider.Kind {
		case ProviderKindOpenAI, ProviderKindAnthropic:
			if provider.APIKey() == "" {
				slog.WarnContext(ctx, "provider has no api key, skipping", "provider", id, "env", provider.APIKeyEnv)
				continue
			}
			if provider.Kind == ProviderKindOpenAI {
				cloud.ChatClients[id] = NewOpenAIChatClient(provider, nil)
			} else {
				cloud.ChatClients[id] = NewAnthropicMessagesClient(provider, nil)
			}
		case ProviderKindGemini:
			if cloud.GenAIClient == nil {
				gc, err := newGenAIClient(ctx, config, provider)
				if err != nil {
					slog.WarnContext(ctx, "gemini client unavailable, skipping", "provider", id, "error", err)
					continue
				}
				cloud.GenAIClient = gc
			}
			cloud.AgentModels[id] = NewQuotaAwareModel(GenerateConfig(provider), provider.Model, cloud.GenAIClient.Models, provider.RateLimit)
		default:
			cloud.Close()
			return nil, fmt.Errorf("provider %s has unknown kind %q", id, provider.Kind)
		}
	}

	switch config.VideoAnalysis.Backend {
	case VideoBackendGCS:
		cloud.VideoFiles = NewGCSFileService(cloud.StorageClient, config.Storage.VideoStagingBucket)
	default:
		if cloud.GenAIClient != nil {
			cloud.VideoFiles = NewGenAIFileService(cloud.GenAIClient.Files)
		}
	}

	return cloud, nil
}

// GenerateConfig maps provider settings onto a genai generation config.
func GenerateConfig(provider Provider) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](provider.Temperature),
		MaxOutputTokens: provider.MaxTokens,
		SafetySettings:  DefaultSafetySettings,
	}
	if provider.SystemInstructions != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: provider.SystemInstructions}}}
	}
	return cfg
}

// newGenAIClient prefers the Gemini API when a key is present and falls
// back to Vertex AI with the project and location.
func newGenAIClient(ctx context.Context, config *Config, provider Provider) (*genai.Client, error) {
	if key := provider.APIKey(); key != "" {
		return genai.NewClient(ctx, &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI})
	}
	if config.Application.GoogleProjectId == "" {
		return nil, fmt.Errorf("no %s and no google_project_id", provider.APIKeyEnv)
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
}
