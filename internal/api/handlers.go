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

// Package api exposes the scoring service over HTTP with gin.
package api

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/model"
	"github.com/jaycherian/gcp-go-virality-scoring/internal/core/services"
)

// ScoringAPI is the part of services.ScoringService the handlers use.
type ScoringAPI interface {
	ScoreSingle(ctx context.Context, submission *model.Submission) (*model.EnsembleResult, error)
	CompareAB(ctx context.Context, a, b *model.Submission) (*model.ABVerdict, error)
	Analyze(ctx context.Context, submission *model.Submission) (*model.AnalysisReport, error)
	Providers() []string
}

// Register mounts /healthz and the /api/v1 scoring routes on r.
func Register(r gin.IRouter, svc ScoringAPI, maxUploadBytes int64) {
	h := &handlers{svc: svc, maxUploadBytes: maxUploadBytes}

	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/score", h.score)
		v1.POST("/ab", h.compare)
		v1.POST("/analyze", h.analyze)
	}
}

type handlers struct {
	svc            ScoringAPI
	maxUploadBytes int64
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "providers": h.svc.Providers()})
}

// form parses the multipart body under the upload cap. It writes the error
// response itself and returns nil when parsing failed.
func (h *handlers) form(c *gin.Context) *multipart.Form {
	if h.maxUploadBytes > 0 {
		// Room for the non-file fields on top of the file itself.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a multipart form: " + err.Error()})
		return nil
	}
	return form
}

func (h *handlers) badSubmission(c *gin.Context, err error) {
	var tooLarge *errTooLarge
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *handlers) failed(c *gin.Context, route string, err error) {
	if errors.Is(err, services.ErrAllProvidersFailed) {
		slog.WarnContext(c.Request.Context(), "no provider could score the content", "route", route, "error", err)
	} else {
		slog.ErrorContext(c.Request.Context(), "scoring request failed", "route", route, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *handlers) score(c *gin.Context) {
	form := h.form(c)
	if form == nil {
		return
	}
	s, err := submission(c, form, h.maxUploadBytes, "text", "media", "image")
	if err != nil {
		h.badSubmission(c, err)
		return
	}
	out, err := h.svc.ScoreSingle(c.Request.Context(), s)
	if err != nil {
		h.failed(c, "score", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) compare(c *gin.Context) {
	form := h.form(c)
	if form == nil {
		return
	}
	a, err := submission(c, form, h.maxUploadBytes, "text_a", "media_a", "image_a")
	if err != nil {
		h.badSubmission(c, err)
		return
	}
	b, err := submission(c, form, h.maxUploadBytes, "text_b", "media_b", "image_b")
	if err != nil {
		h.badSubmission(c, err)
		return
	}
	a.VariantID = c.PostForm("id_a")
	b.VariantID = c.PostForm("id_b")

	verdict, err := h.svc.CompareAB(c.Request.Context(), a, b)
	if err != nil {
		h.failed(c, "ab", err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, verdict.Summary())
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (h *handlers) analyze(c *gin.Context) {
	form := h.form(c)
	if form == nil {
		return
	}
	s, err := submission(c, form, h.maxUploadBytes, "text", "media", "image")
	if err != nil {
		h.badSubmission(c, err)
		return
	}
	s.VariantID = c.PostForm("request_id")
	report, err := h.svc.Analyze(c.Request.Context(), s)
	if err != nil {
		h.failed(c, "analyze", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
