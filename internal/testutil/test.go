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

// Package test holds helpers shared by the package tests: configuration
// loading, generated sample media and in-memory fakes for every external
// collaborator.
package test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
)

type StateManager struct {
	mu     sync.Mutex
	config *cloud.Config
}

var state = &StateManager{}

// ConfigDir is the repository's configs directory.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir())
	if err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig loads .env.toml and .env.test.toml once per test binary.
func GetConfig() *cloud.Config {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// PNG renders a w x h image with a diagonal stripe.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w && i < h; i++ {
		img.Set(i, i, color.RGBA{R: 30, G: 160, B: 220, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ScoreJSON is a well-formed provider reply scoring overall.
func ScoreJSON(overall int) string {
	return `Here is my analysis:
` + "```json" + `
{"overall_score": ` + strconv.Itoa(overall) + `, "text_quality": 60, "visual_appeal": 55, "emotional_resonance": 62,
 "clarity": 70, "brand_alignment": 58, "platform_optimization": 64,
 "reasoning": "Clear hook, generic visuals.", "confidence": 72}
` + "```"
}

// GetTestTriggerMessageText is a scoring request as published to Pub/Sub.
func GetTestTriggerMessageText() string {
	return `{
  "request_id": "req-001",
  "caption": "Lunch in 9 minutes, downtown. Tag a coworker who needs this.",
  "media_uri": "gs://virality-test-media/posts/lunch.png",
  "filename": "lunch.png",
  "audience": "office workers",
  "category": "restaurant",
  "targeting": {"location": "Seattle", "age_range": "25-34", "gender": "any"}
}`
}
