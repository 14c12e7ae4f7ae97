// Package mygene queries the MyGene.info batch gene annotation service,
// the fast (but not always complete) coordinate provider.
package mygene

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

// DefaultBaseURL is the public MyGene.info service.
const DefaultBaseURL = "https://mygene.info"

// Query scopes.
const (
	ScopeSymbol = "symbol"
	ScopeEntrez = "entrezgene"
)

// Position is one genomic placement of a gene hit. Chrom may name an
// alternative-locus scaffold; filtering those out is the caller's job.
type Position struct {
	Chrom string `json:"chr"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Hit is one record of a batch query response.
type Hit struct {
	Query      string      `json:"query"`
	Symbol     string      `json:"symbol"`
	Name       string      `json:"name"`
	EntrezGene json.Number `json:"entrezgene"`
	NotFound   bool        `json:"notfound"`

	// GenomicPos arrives as an object for single placements and an
	// array when a gene has several, hence the custom decoding.
	GenomicPos positions `json:"genomic_pos"`
}

// Positions returns all genomic placements of the hit.
func (h Hit) Positions() []Position { return h.GenomicPos }

// Identifier returns the hit's best identifier: symbol, then entrez id,
// then the echoed query term.
func (h Hit) Identifier() string {
	if h.Symbol != "" {
		return h.Symbol
	}
	if id := h.EntrezGene.String(); id != "" && id != "0" {
		return id
	}
	return h.Query
}

type positions []Position

func (p *positions) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []Position
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	var single Position
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*p = positions{single}
	return nil
}

// Client issues batch queries against MyGene.info.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a MyGene.info client for the given base URL.
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

// Query resolves a batch of terms (gene symbols or entrez ids, per
// scope) in one request, scoped to a species taxid. The sentinel "all"
// taxid queries across species.
func (c *Client) Query(ctx context.Context, terms []string, scope, taxid string) ([]Hit, error) {
	form := url.Values{}
	form.Set("q", strings.Join(terms, ","))
	form.Set("scopes", scope)
	form.Set("species", taxid)
	form.Set("fields", "symbol,name,entrezgene,genomic_pos")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v3/query", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build mygene request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mygene request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mygene error %d: %s", resp.StatusCode, string(body))
	}

	var hits []Hit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode mygene response: %w", err)
	}

	// "notfound" placeholders are not hits.
	found := hits[:0]
	for _, h := range hits {
		if !h.NotFound {
			found = append(found, h)
		}
	}

	c.logger.Debug("mygene batch query",
		zap.Int("terms", len(terms)),
		zap.String("scope", scope),
		zap.Int("hits", len(found)))
	return found, nil
}
