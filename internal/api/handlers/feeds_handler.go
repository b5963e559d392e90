package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/feeds"
)

// FeedsHandler serves the static dashboard feeds: captured inputs, batch
// analysis results and chart assets
type FeedsHandler struct {
	feeds *feeds.Service
}

// NewFeedsHandler creates a new feeds handler
func NewFeedsHandler(feedsService *feeds.Service) *FeedsHandler {
	return &FeedsHandler{feeds: feedsService}
}

// HandleGateway lists the dashboard sections
func (h *FeedsHandler) HandleGateway(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sections": []gin.H{
			{"name": "physical", "predictor": "/physical/predictor", "input_feed": "/physical/input_feed", "analysis": "/physical/analysis", "graphs": "/physical/graphs", "graph_data": "/physical/graph_data"},
			{"name": "cyber", "predictor": "/cyber/predictor", "input_feed": "/cyber/input_feed", "analysis": "/cyber/analysis", "graphs": "/cyber/graphs", "graph_data": "/cyber/graph_data"},
		},
	})
}

// HandlePhysicalInputFeed returns the captured sensor feed
func (h *FeedsHandler) HandlePhysicalInputFeed(c *gin.Context) {
	data, err := h.feeds.PhysicalInput()
	if err != nil {
		h.feedError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// HandlePhysicalAnalysis returns the batch anomaly results for the physical
// feed
func (h *FeedsHandler) HandlePhysicalAnalysis(c *gin.Context) {
	data, err := h.feeds.PhysicalAnalysis()
	if err != nil {
		h.feedError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// HandlePhysicalGraphs lists the static physical chart images
func (h *FeedsHandler) HandlePhysicalGraphs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"images": h.feeds.PhysicalGraphs()})
}

// HandlePhysicalGraphData returns the physical chart payload
func (h *FeedsHandler) HandlePhysicalGraphData(c *gin.Context) {
	data, err := h.feeds.PhysicalGraphData()
	if err != nil {
		h.feedError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// HandleCyberInputFeed returns the head of the captured packet feed
func (h *FeedsHandler) HandleCyberInputFeed(c *gin.Context) {
	data, err := h.feeds.CyberInput()
	if err != nil {
		h.feedError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// HandleCyberAnalysis returns the batch anomaly results for the cyber feed
func (h *FeedsHandler) HandleCyberAnalysis(c *gin.Context) {
	data, err := h.feeds.CyberAnalysis()
	if err != nil {
		h.feedError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// HandleCyberGraphs lists the static cyber chart images
func (h *FeedsHandler) HandleCyberGraphs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"images": h.feeds.CyberGraphs()})
}

// HandleCyberGraphData returns the cyber chart payload
func (h *FeedsHandler) HandleCyberGraphData(c *gin.Context) {
	data, err := h.feeds.CyberGraphData()
	if err != nil {
		h.feedError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *FeedsHandler) feedError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to load feed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// RegisterRoutes registers the handler's routes
func (h *FeedsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.HandleGateway)
	router.GET("/physical/input_feed", h.HandlePhysicalInputFeed)
	router.GET("/physical/analysis", h.HandlePhysicalAnalysis)
	router.GET("/physical/graphs", h.HandlePhysicalGraphs)
	router.GET("/physical/graph_data", h.HandlePhysicalGraphData)
	router.GET("/cyber/input_feed", h.HandleCyberInputFeed)
	router.GET("/cyber/analysis", h.HandleCyberAnalysis)
	router.GET("/cyber/graphs", h.HandleCyberGraphs)
	router.GET("/cyber/graph_data", h.HandleCyberGraphData)
}
