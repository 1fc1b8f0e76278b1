// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package collector

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/goccy/go-json"

	"github.com/veilio/veilcount/internal/config"
	"github.com/veilio/veilcount/internal/metrics"
	"github.com/veilio/veilcount/internal/privacy"
)

// Ensure ESCollector implements Collector
var _ Collector = (*ESCollector)(nil)

// ESCollector queries Elasticsearch for per-source attack counts.
// One search per day: a filtered terms aggregation on the source
// address, no document hits returned.
type ESCollector struct {
	es  *elasticsearch.Client
	cfg *config.CollectorConfig
}

// NewESCollector creates an Elasticsearch-backed collector from the
// given configuration.
func NewESCollector(cfg *config.CollectorConfig) (*ESCollector, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		APIKey:    cfg.APIKey,
	}

	if cfg.InsecureSkipVerify {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- opt-in for self-signed lab clusters
		}
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ESCollector{es: es, cfg: cfg}, nil
}

// searchResponse is the subset of the search reply the collector reads.
type searchResponse struct {
	Aggregations struct {
		AttackingIPs struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int64  `json:"doc_count"`
			} `json:"buckets"`
		} `json:"attacking_ips"`
	} `json:"aggregations"`
}

// buildQuery assembles the search body for one UTC day.
func (c *ESCollector) buildQuery(day time.Time) map[string]interface{} {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	const layout = "2006-01-02T15:04:05"

	return map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"dest_port": c.cfg.Port}},
					map[string]interface{}{"range": map[string]interface{}{
						"@timestamp": map[string]interface{}{
							"gte": start.Format(layout),
							"lt":  end.Format(layout),
						},
					}},
				},
				"must_not": []interface{}{
					map[string]interface{}{"regexp": map[string]interface{}{
						"src_ip.keyword": c.cfg.ExcludePattern,
					}},
				},
			},
		},
		"aggs": map[string]interface{}{
			"attacking_ips": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "src_ip.keyword",
					"size":  c.cfg.MaxResults,
					"order": map[string]interface{}{"_count": "desc"},
				},
			},
		},
	}
}

// FetchDay returns one record per attacking source address observed on
// the monitored port during the UTC day containing the given instant.
// A day with no matching documents yields an empty slice, not an error.
func (c *ESCollector) FetchDay(ctx context.Context, day time.Time) ([]privacy.Record, error) {
	start := time.Now()
	records, err := c.fetchDay(ctx, day)
	metrics.RecordCollectorRequest(time.Since(start), len(records), err)
	return records, err
}

func (c *ESCollector) fetchDay(ctx context.Context, day time.Time) ([]privacy.Record, error) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(c.buildQuery(day)); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	timeout := c.cfg.Timeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.cfg.Index),
		c.es.Search.WithBody(&body),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		detail, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			return nil, fmt.Errorf("%w: search returned status %s", ErrBackendUnavailable, res.Status())
		}
		return nil, fmt.Errorf("%w: search returned status %s: %s", ErrBackendUnavailable, res.Status(), detail)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	buckets := parsed.Aggregations.AttackingIPs.Buckets
	records := make([]privacy.Record, 0, len(buckets))
	for _, bucket := range buckets {
		records = append(records, privacy.Record{
			Identifier: bucket.Key,
			Count:      bucket.DocCount,
		})
	}

	return records, nil
}

// Ping checks cluster reachability.
func (c *ESCollector) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("%w: ping returned status %s", ErrBackendUnavailable, res.Status())
	}
	return nil
}
