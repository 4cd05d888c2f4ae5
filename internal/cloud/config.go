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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, together with the clients used to talk to the
// inference providers and Google Cloud services.
//
// Structs:
//   - Provider: Configuration for one inference provider (model, endpoint, limits).
//   - PromptTemplates: Holds the text templates for the scoring prompts.
//   - Scoring: Tunables for the ensemble, A/B comparison and recommendations.
//   - VideoAnalysis: Wait budget and polling interval for full-video jobs.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Storage: Configuration for Google Cloud Storage buckets.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that returns a Config pre-filled with working defaults.
package cloud

import (
	"os"
	"time"

	"google.golang.org/genai"
)

// DefaultSafetySettings defines the default content safety thresholds for GenAI models.
// Marketing content is scored, not generated, so nothing is blocked.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Provider kinds understood by the adapter factory.
const (
	ProviderKindOpenAI    = "openai"
	ProviderKindAnthropic = "anthropic"
	ProviderKindGemini    = "gemini"
)

// Video analysis backends.
const (
	VideoBackendFiles = "files"
	VideoBackendGCS   = "gcs"
)

const (
	DefaultSystemInstructions = "You are an expert marketing analyst. Provide virality scores as JSON."
	DefaultTemperature        = 0.2
	DefaultMaxTokens          = 1000
	DefaultMaxUploadBytes     = 16 << 20
)

// Provider represents the configuration for one inference provider.
type Provider struct {
	Kind               string  `toml:"kind"`                // One of openai, anthropic, gemini.
	Model              string  `toml:"model"`               // The provider model identifier.
	APIURL             string  `toml:"api_url"`             // Base URL of the REST API (openai, anthropic).
	APIKeyEnv          string  `toml:"api_key_env"`         // Name of the environment variable holding the key.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions sent with each request.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of output tokens.
	RateLimit          int     `toml:"rate_limit"`          // Requests per second (burst).
	TimeoutInSeconds   int     `toml:"timeout_in_seconds"`  // HTTP timeout for the REST transports.
}

// APIKey resolves the provider key from the environment.
func (p Provider) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// Timeout returns the configured transport timeout, 60 seconds when unset.
func (p Provider) Timeout() time.Duration {
	if p.TimeoutInSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.TimeoutInSeconds) * time.Second
}

// PromptTemplates holds the text/template sources for each prompt.
type PromptTemplates struct {
	Score     string `toml:"score"`     // Scores text and still images.
	Video     string `toml:"video"`     // Scores a whole uploaded video.
	Recommend string `toml:"recommend"` // Asks for concrete edits.
}

// Scoring holds the ensemble and comparison constants.
type Scoring struct {
	EnabledProviders       []string `toml:"enabled_providers"`       // Provider ids to query, in order.
	ConfidenceFloor        float64  `toml:"confidence_floor"`        // A/B confidence at a zero score gap.
	ConfidenceSlope        float64  `toml:"confidence_slope"`        // Confidence points per score point of gap.
	ConfidenceCap          float64  `toml:"confidence_cap"`          // Upper bound of the A/B confidence.
	ReasoningMaxLength     int      `toml:"reasoning_max_length"`    // Characters quoted in the ensemble reasoning.
	RecommendationLimit    int      `toml:"recommendation_limit"`    // Maximum number of recommendations returned.
	RecommendationProvider string   `toml:"recommendation_provider"` // Provider id used to generate recommendations.
}

// VideoAnalysis configures the full-video job.
type VideoAnalysis struct {
	Backend               string `toml:"backend"`                  // files (Gemini Files API) or gcs (Vertex staging bucket).
	TimeoutInSeconds      int    `toml:"timeout_in_seconds"`       // Total wait budget while the upload is processing.
	PollIntervalInSeconds int    `toml:"poll_interval_in_seconds"` // Delay between status checks.
}

func (v VideoAnalysis) Budget() time.Duration {
	return secondsToDuration(v.TimeoutInSeconds)
}

func (v VideoAnalysis) Interval() time.Duration {
	return secondsToDuration(v.PollIntervalInSeconds)
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The processing timeout per message in seconds.
}

// PubSub holds outbound topic settings.
type PubSub struct {
	ResultTopic string `toml:"result_topic"` // Topic receiving scoring results for triggered requests.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	VideoStagingBucket string `toml:"video_staging_bucket"` // Bucket used to stage videos for the gcs backend.
	Endpoint           string `toml:"endpoint"`             // Optional endpoint override (emulators).
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name             string `toml:"name"`              // The name of the application.
		GoogleProjectId  string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation   string `toml:"location"`          // The Google Cloud location.
		ThreadPoolSize   int    `toml:"thread_pool_size"`  // Upper bound on concurrent provider calls per request.
		TelemetryEnabled bool   `toml:"telemetry_enabled"` // Export traces and metrics to Google Cloud.
		LogLevel         string `toml:"log_level"`         // debug, info, warn or error.
		LogFile          string `toml:"log_file"`          // Optional file that receives a copy of the logs.
		FFmpegPath       string `toml:"ffmpeg_path"`       // ffmpeg binary used for frame extraction.
		ListenAddress    string `toml:"listen_address"`    // HTTP listen address.
		MaxUploadBytes   int64  `toml:"max_upload_bytes"`  // Multipart upload cap.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`             // Storage configuration.
	VideoAnalysis      VideoAnalysis                `toml:"video_analysis"`      // Full-video job configuration.
	Scoring            Scoring                      `toml:"scoring"`             // Ensemble and comparison constants.
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`    // Prompt templates configuration.
	PubSub             PubSub                       `toml:"pubsub"`              // Outbound Pub/Sub configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Pub/Sub subscriptions keyed by logical name (e.g., "ScoringRequests").
	Providers          map[string]Provider          `toml:"providers"`           // Inference providers keyed by id (e.g., "gpt").
}

// NewConfig creates a Config holding a complete set of defaults. Values read
// from TOML overwrite these field by field, so a missing configuration file
// still yields a usable setup.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		Providers: map[string]Provider{
			"gpt": {
				Kind:               ProviderKindOpenAI,
				Model:              "gpt-4o",
				APIURL:             "https://api.openai.com/v1",
				APIKeyEnv:          "OPENAI_API_KEY",
				SystemInstructions: DefaultSystemInstructions,
				Temperature:        DefaultTemperature,
				MaxTokens:          DefaultMaxTokens,
				RateLimit:          5,
				TimeoutInSeconds:   60,
			},
			"claude": {
				Kind:               ProviderKindAnthropic,
				Model:              "claude-3-5-sonnet-latest",
				APIURL:             "https://api.anthropic.com/v1",
				APIKeyEnv:          "ANTHROPIC_API_KEY",
				SystemInstructions: DefaultSystemInstructions,
				Temperature:        DefaultTemperature,
				MaxTokens:          DefaultMaxTokens,
				RateLimit:          5,
				TimeoutInSeconds:   60,
			},
			"gemini": {
				Kind:               ProviderKindGemini,
				Model:              "gemini-2.0-flash",
				APIKeyEnv:          "GEMINI_API_KEY",
				SystemInstructions: DefaultSystemInstructions,
				Temperature:        DefaultTemperature,
				MaxTokens:          DefaultMaxTokens,
				RateLimit:          5,
			},
		},
		Scoring: Scoring{
			EnabledProviders:       []string{"gpt", "claude", "gemini"},
			ConfidenceFloor:        50,
			ConfidenceSlope:        0.8,
			ConfidenceCap:          95,
			ReasoningMaxLength:     150,
			RecommendationLimit:    5,
			RecommendationProvider: "gpt",
		},
		VideoAnalysis: VideoAnalysis{
			Backend:               VideoBackendFiles,
			TimeoutInSeconds:      30,
			PollIntervalInSeconds: 2,
		},
		PromptTemplates: PromptTemplates{
			Score:     DefaultScorePrompt,
			Video:     DefaultVideoPrompt,
			Recommend: DefaultRecommendPrompt,
		},
	}
	c.Application.Name = "virality-scoring"
	c.Application.ThreadPoolSize = 4
	c.Application.LogLevel = "info"
	c.Application.FFmpegPath = "ffmpeg"
	c.Application.ListenAddress = ":8080"
	c.Application.MaxUploadBytes = DefaultMaxUploadBytes
	return c
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
