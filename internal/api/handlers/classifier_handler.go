package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/services"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/tracing"
)

// ClassifierHandler handles classification HTTP requests for both domains
type ClassifierHandler struct {
	service *services.ClassificationService
	tracer  tracing.Tracer
}

// NewClassifierHandler creates a new classifier handler
func NewClassifierHandler(service *services.ClassificationService, tracer tracing.Tracer) *ClassifierHandler {
	return &ClassifierHandler{
		service: service,
		tracer:  tracer,
	}
}

// PhysicalPredictionRequest represents an incoming sensor reading. Pointer
// fields keep zero a valid measurement while still rejecting absent ones.
type PhysicalPredictionRequest struct {
	SensorID    *int     `form:"sensor_id" json:"sensor_id" binding:"required"`
	ZoneID      *int     `form:"location" json:"location" binding:"required"`
	Voltage     *float64 `form:"voltage" json:"voltage" binding:"required"`
	Current     *float64 `form:"current" json:"current" binding:"required"`
	Power       *float64 `form:"power" json:"power" binding:"required"`
	Frequency   *float64 `form:"frequency" json:"frequency" binding:"required"`
	PowerFactor *float64 `form:"power_factor" json:"power_factor" binding:"required"`
}

// PhysicalPredictionResponse carries the verdict, the echoed reading and the
// latest history for the dashboard panel
type PhysicalPredictionResponse struct {
	Verdict string              `json:"verdict"`
	Voltage float64             `json:"voltage"`
	Current float64             `json:"current"`
	Power   float64             `json:"power"`
	Recent  []models.Prediction `json:"recent_events"`
}

// CyberPredictionRequest represents an incoming packet observation
type CyberPredictionRequest struct {
	SourceIP     string   `form:"source_ip" json:"source_ip" binding:"required"`
	DestIP       string   `form:"dest_ip" json:"dest_ip" binding:"required"`
	Protocol     string   `form:"protocol" json:"protocol" binding:"required"`
	PacketLength *float64 `form:"packet_length" json:"packet_length" binding:"required"`
}

// CyberPredictionResponse carries the verdict, the echoed packet fields and
// the latest history
type CyberPredictionResponse struct {
	Verdict      string            `json:"verdict"`
	SourceIP     string            `json:"source_ip"`
	Protocol     string            `json:"protocol"`
	PacketLength float64           `json:"packet_length"`
	Recent       []models.CyberLog `json:"recent_events"`
}

// HandlePhysicalPredict classifies one sensor reading
func (h *ClassifierHandler) HandlePhysicalPredict(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-physical-predict")
	defer h.tracer.EndTransaction(txn)

	// Malformed input never reaches the classifier, so nothing is logged to
	// the event stream for it
	var req PhysicalPredictionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"verdict": fmt.Sprintf("Error: %s", err.Error())})
		return
	}

	h.tracer.AddAttribute(txn, "sensor_id", *req.SensorID)
	h.tracer.AddAttribute(txn, "zone_id", *req.ZoneID)

	reading := models.SensorReading{
		SensorID:    *req.SensorID,
		ZoneID:      *req.ZoneID,
		Voltage:     *req.Voltage,
		Current:     *req.Current,
		Power:       *req.Power,
		Frequency:   *req.Frequency,
		PowerFactor: *req.PowerFactor,
	}

	result, err := h.service.ClassifyPhysical(c.Request.Context(), reading)
	if err != nil {
		log.Error().Err(err).Msg("Physical classification failed")
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PhysicalPredictionResponse{
		Verdict: result.Verdict,
		Voltage: reading.Voltage,
		Current: reading.Current,
		Power:   reading.Power,
		Recent:  result.Recent,
	})
}

// HandlePhysicalHistory returns the latest physical events without running a
// classification
func (h *ClassifierHandler) HandlePhysicalHistory(c *gin.Context) {
	recent, err := h.service.RecentPhysical(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load physical history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recent_events": recent})
}

// HandleCyberPredict classifies one packet observation
func (h *ClassifierHandler) HandleCyberPredict(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-cyber-predict")
	defer h.tracer.EndTransaction(txn)

	var req CyberPredictionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"verdict": fmt.Sprintf("Error: %s", err.Error())})
		return
	}

	h.tracer.AddAttribute(txn, "source_ip", req.SourceIP)
	h.tracer.AddAttribute(txn, "protocol", req.Protocol)

	packet := models.PacketObservation{
		SourceIP:     req.SourceIP,
		DestIP:       req.DestIP,
		Protocol:     req.Protocol,
		PacketLength: *req.PacketLength,
	}

	result, err := h.service.ClassifyCyber(c.Request.Context(), packet)
	if err != nil {
		log.Error().Err(err).Msg("Cyber classification failed")
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CyberPredictionResponse{
		Verdict:      result.Verdict,
		SourceIP:     packet.SourceIP,
		Protocol:     packet.Protocol,
		PacketLength: packet.PacketLength,
		Recent:       result.Recent,
	})
}

// HandleCyberHistory returns the latest cyber events without running a
// classification
func (h *ClassifierHandler) HandleCyberHistory(c *gin.Context) {
	recent, err := h.service.RecentCyber(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load cyber history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recent_events": recent})
}

// RegisterRoutes registers the handler's routes
func (h *ClassifierHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/physical/predictor", h.HandlePhysicalPredict)
	router.GET("/physical/predictor", h.HandlePhysicalHistory)
	router.POST("/cyber/predictor", h.HandleCyberPredict)
	router.GET("/cyber/predictor", h.HandleCyberHistory)
}
