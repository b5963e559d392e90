package feeds

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// The cyber capture is large; the input feed serves only the head of it.
const cyberInputLimit = 50

// Static graph renders shipped with the dashboard.
var (
	physicalGraphImages = []string{
		"images/phys_graph1.png", "images/phys_graph2.png",
		"images/phys_graph3.png", "images/phys_graph4.png",
	}
	cyberGraphImages = []string{
		"images/cyber_graph1.png", "images/cyber_graph2.png",
		"images/cyber_graph3.png", "images/cyber_graph4.png",
		"images/cyber_graph5.png",
	}
)

// Service serves the offline analysis fixtures that back the dashboard
// panels: captured input feeds, batch anomaly results and graph data. All of
// it is read-only files under one directory.
type Service struct {
	dir string
}

func NewService(dir string) *Service {
	return &Service{dir: dir}
}

// PhysicalInput returns the captured sensor feed.
func (s *Service) PhysicalInput() ([]map[string]interface{}, error) {
	return s.loadRecords(filepath.Join("physical", "input_data.json"), 0)
}

// PhysicalAnalysis returns the batch anomaly results for the physical feed.
func (s *Service) PhysicalAnalysis() ([]map[string]interface{}, error) {
	return s.loadRecords(filepath.Join("physical", "anomaly_output.json"), 0)
}

// PhysicalGraphData returns the raw chart payload for the physical panel.
func (s *Service) PhysicalGraphData() (json.RawMessage, error) {
	return s.loadRaw(filepath.Join("physical", "physical_graph_data.json"))
}

// PhysicalGraphs lists the static graph images for the physical panel.
func (s *Service) PhysicalGraphs() []string {
	return physicalGraphImages
}

// CyberInput returns the head of the captured packet feed.
func (s *Service) CyberInput() ([]map[string]interface{}, error) {
	return s.loadRecords(filepath.Join("cyber", "input_data.json"), cyberInputLimit)
}

// CyberAnalysis returns the batch anomaly results for the cyber feed.
func (s *Service) CyberAnalysis() ([]map[string]interface{}, error) {
	return s.loadRecords(filepath.Join("cyber", "anomaly_detected.json"), 0)
}

// CyberGraphData returns the raw chart payload for the cyber panel.
func (s *Service) CyberGraphData() (json.RawMessage, error) {
	return s.loadRaw(filepath.Join("cyber", "cyber_graph_data.json"))
}

// CyberGraphs lists the static graph images for the cyber panel.
func (s *Service) CyberGraphs() []string {
	return cyberGraphImages
}

// loadRecords reads a JSON array of objects. A missing file is an empty
// feed, not an error. A limit of 0 means the whole file.
func (s *Service) loadRecords(rel string, limit int) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return []map[string]interface{}{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read feed %s", rel)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "failed to parse feed %s", rel)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// loadRaw reads a JSON document verbatim. A missing file yields an empty
// array so chart consumers always get valid JSON.
func (s *Service) loadRaw(rel string) (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return json.RawMessage("[]"), nil
		}
		return nil, errors.Wrapf(err, "failed to read feed %s", rel)
	}
	if !json.Valid(data) {
		return nil, errors.Errorf("feed %s is not valid JSON", rel)
	}
	return json.RawMessage(data), nil
}
