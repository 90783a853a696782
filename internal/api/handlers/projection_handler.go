package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flowplan/backend-go/internal/projection"
	"github.com/flowplan/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const asOfLayout = "2006-01-02"

type ProjectionHandler struct {
	service *service.ProjectionService
}

func NewProjectionHandler(service *service.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{service: service}
}

// parseHorizon reads horizon_days, defaulting to the standard 90-day
// horizon. Negative values are the caller's error, rejected before the
// engine runs.
func parseHorizon(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.DefaultQuery("horizon_days", strconv.Itoa(projection.DefaultHorizonDays)))

	horizon, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon_days must be an integer"})
		return 0, false
	}
	if horizon < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon_days must be >= 0"})
		return 0, false
	}

	return horizon, true
}

// parseAsOf reads the optional as_of date (YYYY-MM-DD). The reference date
// is resolved here so the engine never reads the clock.
func parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("as_of"))
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}

	asOf, err := time.Parse(asOfLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be a YYYY-MM-DD date"})
		return time.Time{}, false
	}

	return asOf, true
}

func (h *ProjectionHandler) GetSeries(c *gin.Context) {
	series, err := h.service.GetSeries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list series"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (h *ProjectionHandler) GetProjection(c *gin.Context) {
	horizon, ok := parseHorizon(c)
	if !ok {
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	proj, err := h.service.ProjectSeries(c.Request.Context(), c.Param("id"), horizon, asOf)
	if err != nil {
		if errors.Is(err, service.ErrInvalidHorizon) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project series"})
		return
	}

	c.JSON(http.StatusOK, proj)
}

func (h *ProjectionHandler) GetSummary(c *gin.Context) {
	horizon, ok := parseHorizon(c)
	if !ok {
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), c.Param("id"), horizon, asOf)
	if err != nil {
		if errors.Is(err, service.ErrInvalidHorizon) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize series"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ProjectionHandler) GetProjections(c *gin.Context) {
	horizon, ok := parseHorizon(c)
	if !ok {
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	var seriesIDs []string
	for _, part := range strings.Split(c.Query("series_ids"), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			seriesIDs = append(seriesIDs, trimmed)
		}
	}
	if len(seriesIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "series_ids is required"})
		return
	}

	results, err := h.service.ProjectMany(c.Request.Context(), seriesIDs, horizon, asOf)
	if err != nil {
		if errors.Is(err, service.ErrInvalidHorizon) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project series"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projections": results})
}

func (h *ProjectionHandler) GetNetwork(c *gin.Context) {
	network, err := h.service.GetNetwork(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load network"})
		return
	}

	c.JSON(http.StatusOK, network)
}
