package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kbgate/internal/action"
	"kbgate/internal/capability"
	"kbgate/internal/gateway"
	"kbgate/internal/platform/config"
	"kbgate/internal/platform/metrics"
	dErrors "kbgate/pkg/domain-errors"
)

// The search, generation, and integration collaborators are external
// services. These clients are thin JSON adapters around them; all policy
// enforcement happens before they are called.

type searchClient struct {
	url     string
	client  *http.Client
	metrics *metrics.Metrics
}

func newSearchClient(cfg config.Config, m *metrics.Metrics) gateway.Searcher {
	return &searchClient{
		url:     cfg.SearchURL,
		client:  &http.Client{},
		metrics: m,
	}
}

func (c *searchClient) Search(ctx context.Context, query string, filter capability.RetrievalFilter) ([]gateway.Fragment, error) {
	if c.url == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "search collaborator is not configured")
	}
	start := time.Now()
	defer func() {
		c.metrics.CollaboratorSeconds.WithLabelValues("search").Observe(time.Since(start).Seconds())
	}()

	var resp struct {
		Fragments []gateway.Fragment `json:"fragments"`
	}
	err := postJSON(ctx, c.client, c.url, map[string]any{
		"query": query,
		"filter": map[string]any{
			"max_sensitivity":    filter.MaxSensitivity,
			"allowed_categories": filter.AllowedCategories,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Fragments, nil
}

type generatorClient struct {
	url     string
	client  *http.Client
	metrics *metrics.Metrics
}

func newGeneratorClient(cfg config.Config, m *metrics.Metrics) gateway.Generator {
	return &generatorClient{
		url:     cfg.GenerateURL,
		client:  &http.Client{},
		metrics: m,
	}
}

func (c *generatorClient) Generate(ctx context.Context, query string, fragments []gateway.Fragment) (string, error) {
	if c.url == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "generation collaborator is not configured")
	}
	start := time.Now()
	defer func() {
		c.metrics.CollaboratorSeconds.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	}()

	var resp struct {
		Text string `json:"text"`
	}
	err := postJSON(ctx, c.client, c.url, map[string]any{
		"query":   query,
		"context": fragments,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type integrationsClient struct {
	url    string
	client *http.Client
}

func newIntegrationsClient(cfg config.Config) gateway.Integrations {
	return &integrationsClient{
		url:    cfg.IntegrationsURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *integrationsClient) Execute(ctx context.Context, kind action.Kind, payload map[string]any) (string, error) {
	if c.url == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "integration collaborator is not configured")
	}
	var resp struct {
		Reference string `json:"reference"`
	}
	err := postJSON(ctx, c.client, c.url, map[string]any{
		"kind":    string(kind),
		"payload": payload,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Reference, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("collaborator returned status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
