package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/config"
	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// IndexPrediction indexes a physical classification event in Elasticsearch
func (c *ElasticClient) IndexPrediction(ctx context.Context, p *models.Prediction) error {
	doc := map[string]interface{}{
		"domain":    "physical",
		"event_id":  p.ID,
		"sensor_id": p.SensorID,
		"location":  p.Location,
		"voltage":   p.Voltage,
		"current":   p.Current,
		"power":     p.Power,
		"verdict":   p.PredictionResult,
		"time":      p.Timestamp,
	}

	return c.indexDocument(ctx, fmt.Sprintf("physical-%d", p.ID), doc)
}

// IndexCyberLog indexes a cyber classification event in Elasticsearch
func (c *ElasticClient) IndexCyberLog(ctx context.Context, l *models.CyberLog) error {
	doc := map[string]interface{}{
		"domain":     "cyber",
		"event_id":   l.ID,
		"source_ip":  l.SourceIP,
		"dest_ip":    l.DestIP,
		"protocol":   l.Protocol,
		"packet_len": l.PacketLen,
		"verdict":    l.PredictionResult,
		"time":       l.Timestamp,
	}

	return c.indexDocument(ctx, fmt.Sprintf("cyber-%d", l.ID), doc)
}

func (c *ElasticClient) indexDocument(ctx context.Context, docID string, doc map[string]interface{}) error {
	docJson, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal classification document")
	}

	// Prepare the index request
	indexName := config.FormatIndex(c.config, c.config.Index)
	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: docID,
		Body:       bytes.NewReader(docJson),
		Refresh:    "true",
	}

	// Execute the request
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	// Check for errors in the response
	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	log.Debug().Str("doc_id", docID).Msg("classification indexed")
	return nil
}

// SearchClassifications searches indexed classification events with the
// given criteria
func (c *ElasticClient) SearchClassifications(ctx context.Context, query map[string]interface{}) ([]map[string]interface{}, error) {
	// Convert query to JSON
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	// Prepare the search request
	indexName := config.FormatIndex(c.config, c.config.Index)
	req := esapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(queryJSON),
	}

	// Execute the request
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search request")
	}
	defer res.Body.Close()

	// Check for errors in the response
	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return nil, errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return nil, errors.Errorf("Elasticsearch search error: %v", e)
	}

	// Parse the response
	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to parse Elasticsearch search response")
	}

	// Extract the hits
	hits, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected search result format")
	}

	hitsArray, ok := hits["hits"].([]interface{})
	if !ok {
		return nil, errors.New("unexpected hits format")
	}

	// Extract the documents
	var docs []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}

		docs = append(docs, source)
	}

	return docs, nil
}
