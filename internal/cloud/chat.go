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
// This file holds the REST transports for the providers that are reached
// without an SDK.
//
// Structs:
//   - ChatRequest: The provider-neutral request (system text, prompt, at most
//     one inline image, sampling settings).
//   - OpenAIChatClient: POST {api_url}/chat/completions with a Bearer key.
//   - AnthropicMessagesClient: POST {api_url}/messages with x-api-key.
//
// Both transports share one rate-limited http.Client wrapper and report every
// failure as a *TransportError. They never retry.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// InlineImage is an image attached to a chat request.
type InlineImage struct {
	Data     []byte
	MIMEType string
}

// ChatRequest is the provider-neutral shape of a single chat turn.
type ChatRequest struct {
	System      string
	Prompt      string
	Image       *InlineImage
	Temperature float32
	MaxTokens   int32
}

// httpTransport holds what the REST clients share: endpoint, credentials,
// limiter and the HTTP client.
type httpTransport struct {
	provider string
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
	limiter  *rate.Limiter
}

func newHTTPTransport(provider string, cfg Provider, defaultURL string, client *http.Client) httpTransport {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	base := strings.TrimRight(cfg.APIURL, "/")
	if base == "" {
		base = defaultURL
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}
	return httpTransport{
		provider: provider,
		baseURL:  base,
		apiKey:   cfg.APIKey(),
		model:    cfg.Model,
		client:   client,
		limiter:  limiter,
	}
}

// post sends body as JSON and returns the parsed reply. Every failure is a
// *TransportError.
func (t *httpTransport) post(ctx context.Context, path string, body any, headers map[string]string) (gjson.Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, NewTransportError(t.provider, err)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, NewTransportError(t.provider, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, NewTransportError(t.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	slog.DebugContext(ctx, "provider request", "provider", t.provider, "url", req.URL.String(), "bytes", len(payload))
	resp, err := t.client.Do(req)
	if err != nil {
		return gjson.Result{}, NewTransportError(t.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(gjson.GetBytes(raw, "error.message").String())
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = resp.Status
		}
		return gjson.Result{}, &TransportError{Provider: t.provider, StatusCode: resp.StatusCode, Message: msg}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, NewTransportError(t.provider, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &TransportError{Provider: t.provider, StatusCode: resp.StatusCode, Message: "response body is not JSON"}
	}
	return gjson.ParseBytes(raw), nil
}

// OpenAIChatClient talks to an OpenAI compatible /chat/completions endpoint.
type OpenAIChatClient struct {
	httpTransport
}

// NewOpenAIChatClient builds a client from provider configuration. A nil
// httpClient gets one with the configured timeout.
func NewOpenAIChatClient(cfg Provider, httpClient *http.Client) *OpenAIChatClient {
	return &OpenAIChatClient{httpTransport: newHTTPTransport(ProviderKindOpenAI, cfg, "https://api.openai.com/v1", httpClient)}
}

func (c *OpenAIChatClient) Model() string { return c.model }

// Complete sends one system + user turn. An attached image travels as a
// data URI image_url part.
func (c *OpenAIChatClient) Complete(ctx context.Context, in *ChatRequest) (string, error) {
	content := []map[string]any{{"type": "text", "text": in.Prompt}}
	if in.Image != nil && len(in.Image.Data) > 0 {
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": DataURI(in.Image.MIMEType, in.Image.Data)},
		})
	}
	messages := make([]map[string]any, 0, 2)
	if in.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": in.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": content})

	body := map[string]any{
		"model":                 c.model,
		"messages":              messages,
		"temperature":           in.Temperature,
		"max_completion_tokens": in.MaxTokens,
	}
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	reply, err := c.post(ctx, "/chat/completions", body, headers)
	if err != nil {
		return "", err
	}
	text := reply.Get("choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", &TransportError{Provider: c.provider, StatusCode: http.StatusOK, Message: "empty choices"}
	}
	return text, nil
}

// AnthropicVersion is sent as the anthropic-version header.
const AnthropicVersion = "2023-06-01"

// AnthropicMessagesClient talks to the Anthropic /messages endpoint.
type AnthropicMessagesClient struct {
	httpTransport
}

func NewAnthropicMessagesClient(cfg Provider, httpClient *http.Client) *AnthropicMessagesClient {
	return &AnthropicMessagesClient{httpTransport: newHTTPTransport(ProviderKindAnthropic, cfg, "https://api.anthropic.com/v1", httpClient)}
}

func (c *AnthropicMessagesClient) Model() string { return c.model }

// Complete sends one user turn. The image, if any, is sent as a base64
// source block ahead of the text.
func (c *AnthropicMessagesClient) Complete(ctx context.Context, in *ChatRequest) (string, error) {
	blocks := make([]map[string]any, 0, 2)
	if in.Image != nil && len(in.Image.Data) > 0 {
		blocks = append(blocks, map[string]any{
			"type": "image",
			"source": map[string]any{
				"type":       "base64",
				"media_type": in.Image.MIMEType,
				"data":       encodeBase64(in.Image.Data),
			},
		})
	}
	blocks = append(blocks, map[string]any{"type": "text", "text": in.Prompt})

	body := map[string]any{
		"model":       c.model,
		"max_tokens":  in.MaxTokens,
		"temperature": in.Temperature,
		"messages":    []map[string]any{{"role": "user", "content": blocks}},
	}
	if in.System != "" {
		body["system"] = in.System
	}
	headers := map[string]string{"anthropic-version": AnthropicVersion}
	if c.apiKey != "" {
		headers["x-api-key"] = c.apiKey
	}

	reply, err := c.post(ctx, "/messages", body, headers)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range reply.Get(`content.#(type=="text")#.text`).Array() {
		sb.WriteString(block.String())
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &TransportError{Provider: c.provider, StatusCode: http.StatusOK, Message: "no text content in reply"}
	}
	return sb.String(), nil
}
