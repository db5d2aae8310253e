package search

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"example.com/outcry/config"
	"example.com/outcry/internal/models"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrDisabled is returned by searches when no Elasticsearch URL is configured
var ErrDisabled = errors.New("search is disabled")

// searchFields are the job document fields matched by free-text queries
var searchFields = []string{
	"reference^3",
	"quote_numbers^3",
	"po^2",
	"client_name^2",
	"project_name",
	"contact_name",
	"staff_name",
	"job_address",
	"suburb",
}

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client. An empty URL yields a
// disabled client whose writes are no-ops and whose searches return ErrDisabled.
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	if cfg.URL == "" {
		return &ElasticClient{config: cfg}, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// Enabled reports whether the client talks to Elasticsearch
func (c *ElasticClient) Enabled() bool {
	return c.client != nil
}

func (c *ElasticClient) index() string {
	return config.FormatIndex(c.config, c.config.Index)
}

// IndexJob writes or replaces the job document
func (c *ElasticClient) IndexJob(ctx context.Context, doc models.JobDocument) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal job document")
	}

	req := esapi.IndexRequest{
		Index:      c.index(),
		DocumentID: strconv.FormatUint(uint64(doc.JobID), 10),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index", res)
	}

	log.Debug().Uint("job_id", doc.JobID).Msg("job indexed")
	return nil
}

// DeleteJob removes the job document. A missing document is not an error.
func (c *ElasticClient) DeleteJob(ctx context.Context, jobID uint) error {
	if !c.Enabled() {
		return nil
	}

	req := esapi.DeleteRequest{
		Index:      c.index(),
		DocumentID: strconv.FormatUint(uint64(jobID), 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch delete request")
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res)
	}
	return nil
}

// SearchJobs runs a free-text query across the indexed job fields
func (c *ElasticClient) SearchJobs(ctx context.Context, text string, limit int) ([]models.JobDocument, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 25
	}

	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    searchFields,
				"fuzziness": "AUTO",
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	req := esapi.SearchRequest{
		Index: []string{c.index()},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("search", res)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source models.JobDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to parse Elasticsearch search response")
	}

	docs := make([]models.JobDocument, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

func responseError(op string, res *esapi.Response) error {
	var e map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
		return errors.Wrapf(err, "failed to parse Elasticsearch %s error response", op)
	}
	return errors.Errorf("Elasticsearch %s error (%d): %v", op, res.StatusCode, e)
}
