// Package eutils queries NCBI E-utilities gene summaries, the slower
// but complete fallback coordinate provider.
package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public NCBI E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Position is one genomic placement from a gene summary.
type Position struct {
	Chrom string `json:"chrloc"`
	Start int64  `json:"chrstart"`
	End   int64  `json:"chrstop"`
}

// Summary is one gene record of an esummary response: the gene's name
// and its precomputed genomic placements.
type Summary struct {
	ID        string
	Name      string
	Positions []Position
}

// Client issues batched esummary requests against the gene database.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an E-utilities client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for query diagnostics.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

type summaryRecord struct {
	Name        string     `json:"name"`
	GenomicInfo []Position `json:"genomicinfo"`
}

// Summaries fetches gene summaries for a batch of NCBI gene ids in one
// request. Records come back in the order ids were given.
func (c *Client) Summaries(ctx context.Context, ids []string) ([]Summary, error) {
	params := url.Values{}
	params.Set("db", "gene")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	reqURL := fmt.Sprintf("%s/esummary.fcgi?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build esummary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("esummary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("esummary error %d: %s", resp.StatusCode, string(body))
	}

	// The result object keys records by uid, alongside a "uids" list.
	var payload struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode esummary response: %w", err)
	}

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		raw, ok := payload.Result[id]
		if !ok {
			continue
		}
		var rec summaryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode esummary record %s: %w", id, err)
		}
		summaries = append(summaries, Summary{
			ID:        id,
			Name:      rec.Name,
			Positions: rec.GenomicInfo,
		})
	}

	c.logger.Debug("esummary batch",
		zap.Int("ids", len(ids)),
		zap.Int("records", len(summaries)))
	return summaries, nil
}
