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
	"fmt"

	"github.com/spf13/cobra"
)

func newScoreCommand(factory serviceFactory, root *rootOptions) *cobra.Command {
	var (
		content   contentFlags
		text      string
		mediaPath string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one piece of content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			submission, err := content.submission(text, mediaPath)
			if err != nil {
				return err
			}
			svc, release, err := factory(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer release()

			out, err := svc.ScoreSingle(cmd.Context(), submission)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Caption or post text")
	cmd.Flags().StringVarP(&mediaPath, "media", "m", "", "Path to an image or video")
	content.register(cmd)
	return cmd
}

func newABCommand(factory serviceFactory, root *rootOptions) *cobra.Command {
	var (
		content      contentFlags
		textA, textB string
		mediaA       string
		mediaB       string
		idA, idB     string
		summary      bool
	)
	cmd := &cobra.Command{
		Use:   "ab",
		Short: "Compare two variants of the same post",
		Long: `Score variant A and variant B with the same targeting and report the winner.

Exact ties go to variant B.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := content.submission(textA, mediaA)
			if err != nil {
				return fmt.Errorf("variant A: %w", err)
			}
			b, err := content.submission(textB, mediaB)
			if err != nil {
				return fmt.Errorf("variant B: %w", err)
			}
			a.VariantID, b.VariantID = idA, idB

			svc, release, err := factory(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer release()

			verdict, err := svc.CompareAB(cmd.Context(), a, b)
			if err != nil {
				return err
			}
			if summary {
				_, err = fmt.Fprint(cmd.OutOrStdout(), verdict.Summary())
				return err
			}
			return writeJSON(cmd.OutOrStdout(), verdict)
		},
	}
	cmd.Flags().StringVar(&textA, "text-a", "", "Caption of variant A")
	cmd.Flags().StringVar(&mediaA, "media-a", "", "Media of variant A")
	cmd.Flags().StringVar(&textB, "text-b", "", "Caption of variant B")
	cmd.Flags().StringVar(&mediaB, "media-b", "", "Media of variant B")
	cmd.Flags().StringVar(&idA, "id-a", "", "Optional identifier of variant A")
	cmd.Flags().StringVar(&idB, "id-b", "", "Optional identifier of variant B")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a plain text summary instead of JSON")
	content.register(cmd)
	return cmd
}

func newAnalyzeCommand(factory serviceFactory, root *rootOptions) *cobra.Command {
	var (
		content   contentFlags
		text      string
		mediaPath string
		requestID string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score content and suggest improvements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			submission, err := content.submission(text, mediaPath)
			if err != nil {
				return err
			}
			submission.VariantID = requestID

			svc, release, err := factory(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer release()

			report, err := svc.Analyze(cmd.Context(), submission)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Caption or post text")
	cmd.Flags().StringVarP(&mediaPath, "media", "m", "", "Path to an image or video")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Identifier echoed in the report")
	content.register(cmd)
	return cmd
}
