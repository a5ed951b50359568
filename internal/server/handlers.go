package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/dj-transition/internal/domain"
	"github.com/jaki95/dj-transition/internal/planner"
	"github.com/jaki95/dj-transition/internal/progress"
)

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// planTransition godoc
// @Summary Plan a transition between two analysed tracks
// @Description Missing or malformed analysis fields fall back to defaults; the endpoint never rejects a body.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param request body domain.PlanRequest true "Source and target analyses"
// @Success 200 {object} domain.TransitionPlan
// @Router /plan-transition [post]
func (s *Server) planTransition(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("failed to read body: %v", err)})
		return
	}

	req := domain.DecodePlanRequest(body)
	plan := planner.Plan(req.From, req.To)

	slog.Debug("Planned transition",
		"requestId", c.GetString("requestID"),
		"tempoRatio", plan.TempoRatio,
		"crossfade", plan.From.Duration,
	)
	c.JSON(http.StatusOK, plan)
}

// offlineMix godoc
// @Summary Render a crossfade between two remote sources
// @Tags Transitions
// @Accept json
// @Produce audio/wav
// @Param request body domain.MixRequest true "Sources and crossfade"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /offline-mix [post]
func (s *Server) offlineMix(c *gin.Context) {
	var req domain.MixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	requestID := c.GetString("requestID")
	tracker := progress.NewTracker()
	tracker.AddListener(func(e progress.Event) {
		slog.Debug("Mix progress",
			"requestId", requestID,
			"stage", e.Stage,
			"progress", e.Progress,
			"message", e.Message,
		)
	})

	data, err := s.renderer.Render(c.Request.Context(), req, tracker)
	if err != nil {
		status := statusFor(err)
		slog.Error("Mix failed",
			"requestId", requestID,
			"status", status,
			"error", err,
			"state", tracker.Current(),
		)
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.Data(http.StatusOK, "audio/wav", data)
}
