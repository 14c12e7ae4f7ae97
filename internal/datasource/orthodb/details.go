package orthodb

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
	"golang.org/x/sync/errgroup"

	"github.com/eweitz/homology/internal/throttle"
)

// DefaultDetailBaseURL is the public OrthoDB REST API.
const DefaultDetailBaseURL = "https://data.orthodb.org/current"

// ncbiXrefType identifies NCBI Gene entries in the cross-reference list.
const ncbiXrefType = "NCBIgene"

// DetailClient fetches per-gene protein-level detail records from
// OrthoDB. These lookups are per gene rather than batched, so every
// dispatch goes through the shared limiter to respect upstream quota.
type DetailClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *throttle.Limiter
	logger     *zap.Logger
}

// NewDetailClient creates a detail client. The limiter is owned by the
// caller and may be shared with other per-gene endpoints.
func NewDetailClient(baseURL string, limiter *throttle.Limiter) *DetailClient {
	if baseURL == "" {
		baseURL = DefaultDetailBaseURL
	}
	return &DetailClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for enrichment diagnostics.
func (c *DetailClient) SetLogger(l *zap.Logger) {
	c.logger = l
}

// detailResponse mirrors the OrthoDB ogdetails payload, reduced to the
// fields enrichment consumes.
type detailResponse struct {
	Data struct {
		EntrezGeneID json.Number `json:"entrez_gene_id"`
		Xrefs        []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"xrefs"`
		Ensembl []struct {
			ID string `json:"id"`
		} `json:"ensembl"`
		AACount   *int `json:"aas"`
		ExonCount *int `json:"exons"`
		InterPro  []struct {
			ID string `json:"id"`
		} `json:"interpro_domains"`
	} `json:"data"`
}

// Enrich fills the gene's protein-level fields from its detail record.
// Enrichment is additive: fields already present are kept, absent
// upstream values never clear an existing field, and calling Enrich
// twice is a no-op the second time.
func (c *DetailClient) Enrich(ctx context.Context, g *Gene) error {
	if g.ID == "" {
		return fmt.Errorf("gene %q has no OrthoDB id", g.Name)
	}

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
		defer c.limiter.Release()
	}

	reqURL := fmt.Sprintf("%s/ogdetails?id=%s", c.baseURL, url.QueryEscape(g.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build detail request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("detail request for %q failed: %w", g.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("detail endpoint error %d for %q: %s", resp.StatusCode, g.Name, string(body))
	}

	var dr detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("decode detail response for %q: %w", g.Name, err)
	}

	data := dr.Data
	if g.EnsemblID == "" && len(data.Ensembl) > 0 {
		g.EnsemblID = data.Ensembl[0].ID
	}
	if g.NCBIGeneID == "" {
		g.NCBIGeneID = ncbiGeneID(dr)
	}
	if g.AminoAcidCount == nil && data.AACount != nil {
		g.AminoAcidCount = data.AACount
	}
	if g.ExonCount == nil && data.ExonCount != nil {
		g.ExonCount = data.ExonCount
	}
	if g.Domains == nil && len(data.InterPro) > 0 {
		domains := make([]string, len(data.InterPro))
		for i, d := range data.InterPro {
			domains[i] = d.ID
		}
		g.Domains = domains
	}

	c.logger.Debug("enriched gene",
		zap.String("gene", g.Name),
		zap.String("ncbi_gene_id", g.NCBIGeneID),
		zap.Int("domains", len(g.Domains)))
	return nil
}

// ncbiGeneID extracts the NCBI gene id from the direct field or, absent
// that, from the cross-reference list.
func ncbiGeneID(dr detailResponse) string {
	if id := dr.Data.EntrezGeneID.String(); id != "" && id != "0" {
		return id
	}
	for _, x := range dr.Data.Xrefs {
		if x.Type == ncbiXrefType {
			return x.ID
		}
	}
	return ""
}

// EnrichAll enriches distinct genes concurrently. Aggregation is keyed
// by gene identity (each goroutine writes only its own record), so
// completion order does not matter. The first error cancels the
// remaining fetches.
func (c *DetailClient) EnrichAll(ctx context.Context, genes []*Gene) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, gene := range genes {
		g.Go(func() error {
			return c.Enrich(gctx, gene)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}
	return nil
}
