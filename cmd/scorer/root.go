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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/api"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/cloud"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/services"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/telemetry"
)

var version = "dev"

// serviceFactory builds the scoring service. The returned func releases it.
type serviceFactory func(ctx context.Context, opts *rootOptions) (api.ScoringAPI, func(), error)

type rootOptions struct {
	configDir string
	runtime   string
	debug     bool
}

// contentFlags are the context fields shared by every subcommand.
type contentFlags struct {
	audience  string
	category  string
	targeting model.TargetingContext
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.audience, "audience", "", "Target audience description")
	cmd.Flags().StringVar(&f.category, "category", "", "Business category")
	cmd.Flags().StringVar(&f.targeting.Location, "location", "", "Targeting: location")
	cmd.Flags().StringVar(&f.targeting.AgeRange, "age-range", "", "Targeting: age range")
	cmd.Flags().StringVar(&f.targeting.Gender, "gender", "", "Targeting: gender")
	cmd.Flags().StringVar(&f.targeting.Interest, "interest", "", "Targeting: interest")
	cmd.Flags().StringVar(&f.targeting.Language, "language", "", "Targeting: language")
	cmd.Flags().StringVar(&f.targeting.Device, "device", "", "Targeting: device")
}

// submission builds a Submission from a caption and an optional media path.
func (f *contentFlags) submission(caption, mediaPath string) (*model.Submission, error) {
	out := &model.Submission{
		Caption:   strings.TrimSpace(caption),
		Audience:  f.audience,
		Category:  f.category,
		Targeting: f.targeting,
	}
	if mediaPath != "" {
		data, err := os.ReadFile(mediaPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read media: %w", err)
		}
		out.Media = data
		out.Filename = filepath.Base(mediaPath)
	}
	if out.Caption == "" && len(out.Media) == 0 {
		return nil, errors.New("text or media is required")
	}
	return out, nil
}

func newRootCommand(factory serviceFactory) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "scorer",
		Short: "Score social media content for virality",
		Long: `Scorer sends a caption and an optional image or video to every configured
model provider and combines their scores into one ensemble result.

Results are printed to stdout as JSON; logs go to stderr.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "Directory holding .env.toml (default: $GCP_CONFIG_PREFIX or ./configs)")
	cmd.PersistentFlags().StringVar(&opts.runtime, "runtime", "", "Configuration overlay to load (default: $GCP_RUNTIME or local)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newScoreCommand(factory, opts))
	cmd.AddCommand(newABCommand(factory, opts))
	cmd.AddCommand(newAnalyzeCommand(factory, opts))
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	if errors.Is(err, services.ErrAllProvidersFailed) {
		return ExitFailed
	}
	return ExitError
}

// defaultServiceFactory loads the configuration and builds the real clients.
func defaultServiceFactory(ctx context.Context, opts *rootOptions) (api.ScoringAPI, func(), error) {
	if err := setupEnv(opts); err != nil {
		return nil, nil, err
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, nil, err
	}
	level := telemetry.ParseLevel(config.Application.LogLevel)
	if opts.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(telemetry.NewLogger(os.Stderr, level))

	// Triggers belong to the server.
	config.TopicSubscriptions = map[string]cloud.TopicSubscription{}
	config.PubSub.ResultTopic = ""

	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, nil, err
	}
	svc, err := services.NewDefaultScoringService(config, clients)
	if err != nil {
		clients.Close()
		return nil, nil, err
	}
	return svc, clients.Close, nil
}

func setupEnv(opts *rootOptions) error {
	prefix := opts.configDir
	if prefix == "" {
		prefix = os.Getenv(cloud.EnvConfigFilePrefix)
	}
	if prefix == "" {
		prefix = "configs"
	}
	runtime := opts.runtime
	if runtime == "" {
		runtime = os.Getenv(cloud.EnvConfigRuntime)
	}
	if runtime == "" {
		runtime = "local"
	}
	if err := os.Setenv(cloud.EnvConfigFilePrefix, prefix); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, runtime)
}
