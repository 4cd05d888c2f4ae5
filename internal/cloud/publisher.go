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
// This file implements the outbound side of Pub/Sub: the scoring outcome of
// a triggered request is published to the configured result topic.
package cloud

import (
	"context"
	"errors"

	"cloud.google.com/go/pubsub"
)

// TopicPublisher sends messages to a Pub/Sub topic and waits for the
// server acknowledgement.
type TopicPublisher struct {
	Topic *pubsub.Topic
}

// NewTopicPublisher publishes to topic. The topic's own batching settings apply.
func NewTopicPublisher(topic *pubsub.Topic) *TopicPublisher {
	return &TopicPublisher{Topic: topic}
}

// Publish sends one message and blocks until the server acknowledges it.
//
// Inputs:
//   - ctx: Bounds the wait for the acknowledgement.
//   - data: The message payload, usually a JSON encoded ScoringOutcome.
//   - attributes: Message attributes used by subscribers for filtering.
//
// Returns:
//   - A *TransportError tagged "pubsub" when the publish is rejected.
func (p *TopicPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	if p.Topic == nil {
		return errors.New("no result topic configured")
	}
	_, err := p.Topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes}).Get(ctx)
	if err != nil {
		return NewTransportError("pubsub", err)
	}
	return nil
}
