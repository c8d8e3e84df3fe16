package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alttext/internal/pipeline"
)

type imagePayload struct {
	ID       string `json:"id"`
	Data     string `json:"data" binding:"required"`
	MIMEType string `json:"mime_type"`
	Context  string `json:"context"`
	TypeHint string `json:"type_hint"`
}

type generateRequest struct {
	Images    []imagePayload `json:"images" binding:"required,min=1"`
	Languages []string       `json:"languages" binding:"required,min=1"`
}

type generateResponse struct {
	Results []pipeline.GenerationResult `json:"results"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tasks := make([]pipeline.ImageTask, 0, len(req.Images))
	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image " + img.ID + ": data is not valid base64"})
			return
		}
		tasks = append(tasks, pipeline.ImageTask{
			ID:        img.ID,
			Image:     data,
			MIMEType:  img.MIMEType,
			Context:   img.Context,
			TypeHint:  img.TypeHint,
			Languages: req.Languages,
		})
	}

	results, err := s.runner.Run(c.Request.Context(), tasks)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) {
			// Client went away mid-batch.
			status = 499
		}
		c.JSON(status, gin.H{"error": err.Error(), "results": results})
		return
	}

	c.JSON(http.StatusOK, generateResponse{Results: results})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}
