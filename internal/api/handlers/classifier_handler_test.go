package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/cache"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/classifier"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/metrics"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/ml"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/repository"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/rules"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/services"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/tracing"
)

// newTestRouter wires the classifier routes over a throwaway sqlite store
// with no model artifacts, so verdicts come from the rule stage.
func newTestRouter(t *testing.T) (*gin.Engine, repository.EventStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "events.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bounds := rules.BoundsTable{Default: rules.ZoneBounds{
		VoltageMin: 200, VoltageMax: 250,
		CurrentMin: 0, CurrentMax: 100,
		PowerMin: 0, PowerMax: 500,
	}}
	registry := ml.LoadRegistry(t.TempDir())
	tracer := &tracing.NewRelicTracer{}

	service := services.NewClassificationService(
		store,
		classifier.NewPhysicalClassifier(registry, bounds),
		classifier.NewCyberClassifier(registry),
		cache.Disabled(),
		nil,
		nil,
		metrics.NewMetrics(),
		tracer,
		time.Minute,
	)

	router := gin.New()
	NewClassifierHandler(service, tracer).RegisterRoutes(router)
	return router, store
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func physicalPayload(voltage float64) map[string]interface{} {
	return map[string]interface{}{
		"sensor_id":    7,
		"location":     3,
		"voltage":      voltage,
		"current":      10.0,
		"power":        100.0,
		"frequency":    50.0,
		"power_factor": 0.95,
	}
}

func TestPhysicalPredictMissingField(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := physicalPayload(230)
	delete(payload, "voltage")
	w := postJSON(router, "/physical/predictor", payload)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp["verdict"], "Error: "))

	// Malformed input leaves no trace in the event stream.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/physical/predictor", nil))
	var history struct {
		Recent []json.RawMessage `json:"recent_events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Empty(t, history.Recent)
}

func TestPhysicalPredictCriticalAlert(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/physical/predictor", physicalPayload(400))

	require.Equal(t, http.StatusOK, w.Code)
	var resp PhysicalPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, string(rules.TierCriticalAlert), resp.Verdict)
	require.Equal(t, 400.0, resp.Voltage)
	require.Len(t, resp.Recent, 1)
	require.Equal(t, string(rules.TierCriticalAlert), resp.Recent[0].PredictionResult)
}

func TestPhysicalPredictUnknownZone(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/physical/predictor", physicalPayload(230))

	require.Equal(t, http.StatusOK, w.Code)
	var resp PhysicalPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, classifier.VerdictUnknownZone, resp.Verdict)
}

func TestPhysicalPredictFormEncoded(t *testing.T) {
	router, _ := newTestRouter(t)

	form := url.Values{}
	form.Set("sensor_id", "7")
	form.Set("location", "3")
	form.Set("voltage", "400")
	form.Set("current", "10")
	form.Set("power", "100")
	form.Set("frequency", "50")
	form.Set("power_factor", "0.95")

	req := httptest.NewRequest(http.MethodPost, "/physical/predictor", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp PhysicalPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, string(rules.TierCriticalAlert), resp.Verdict)
}

func TestPhysicalHistoryCapsAtTen(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 12; i++ {
		payload := physicalPayload(400)
		payload["sensor_id"] = i
		w := postJSON(router, "/physical/predictor", payload)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/physical/predictor", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recent []struct {
			SensorID int `json:"sensor_id"`
		} `json:"recent_events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recent, repository.RecentLimit)
	require.Equal(t, 11, resp.Recent[0].SensorID)
}

func TestPhysicalPredictStoreClosed(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.Close())

	w := postJSON(router, "/physical/predictor", physicalPayload(400))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp["error"], "failed to append prediction event")
}

func cyberPayload(length float64) map[string]interface{} {
	return map[string]interface{}{
		"source_ip":     "192.168.1.10",
		"dest_ip":       "10.0.0.5",
		"protocol":      "TCP",
		"packet_length": length,
	}
}

func TestCyberPredictOversized(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/cyber/predictor", cyberPayload(1501))

	require.Equal(t, http.StatusOK, w.Code)
	var resp CyberPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, rules.VerdictMaliciousOversized, resp.Verdict)
	require.Equal(t, 1501.0, resp.PacketLength)
	require.Len(t, resp.Recent, 1)
}

func TestCyberPredictSafe(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/cyber/predictor", cyberPayload(100))

	require.Equal(t, http.StatusOK, w.Code)
	var resp CyberPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, rules.VerdictSafe, resp.Verdict)
}

func TestCyberPredictBlacklistedSource(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := cyberPayload(100)
	payload["source_ip"] = "10.0.0.666"
	w := postJSON(router, "/cyber/predictor", payload)

	require.Equal(t, http.StatusOK, w.Code)
	var resp CyberPredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, rules.VerdictBlacklistedIP, resp.Verdict)
}

func TestCyberPredictMissingField(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := cyberPayload(100)
	delete(payload, "source_ip")
	w := postJSON(router, "/cyber/predictor", payload)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp["verdict"], "Error: "))
}

func TestCyberHistoryNewestFirst(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 1; i <= 3; i++ {
		payload := cyberPayload(float64(i * 100))
		payload["source_ip"] = fmt.Sprintf("192.168.1.%d", i)
		w := postJSON(router, "/cyber/predictor", payload)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cyber/predictor", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recent []struct {
			SourceIP string `json:"source_ip"`
		} `json:"recent_events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recent, 3)
	require.Equal(t, "192.168.1.3", resp.Recent[0].SourceIP)
}
