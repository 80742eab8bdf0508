package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics", middleware.RequirePermission("statistics.read"), h.GetStatistics)
}

// GetStatistics returns workflow throughput metrics
// @Summary      Workflow statistics
// @Description  Aggregates submissions, completions, rejections, average completion time and per-step load over a date range
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        start  query     string  false  "Range start (RFC 3339 or YYYY-MM-DD); defaults to one month ago"
// @Param        end    query     string  false  "Range end; defaults to now"
// @Success      200    {object}  response.Response{data=model.StatisticsResponse}
// @Failure      400    {object}  response.Response
// @Router       /statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	start, ok := parseTimeParam(c.Query("start"))
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start date"))
		return
	}
	end, ok := parseTimeParam(c.Query("end"))
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end date"))
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), start, end)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

func parseTimeParam(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
