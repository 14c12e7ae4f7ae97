package orthodb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eweitz/homology/internal/taxon"
)

// DefaultSPARQLBaseURL is the public OrthoDB SPARQL endpoint.
const DefaultSPARQLBaseURL = "https://sparql.orthodb.org"

// Binding is one row of a SPARQL ortholog query: a source gene and one
// gene from the same ortholog group in the target organism. Names may
// contain semicolon-joined aliases, e.g. "ACE2;BMX".
type Binding struct {
	SourceURI  string
	SourceName string
	TargetURI  string
	TargetName string
}

// SourceID returns the OrthoDB gene id encoded in the source gene URI.
func (b Binding) SourceID() string { return geneIDFromURI(b.SourceURI) }

// TargetID returns the OrthoDB gene id encoded in the target gene URI.
func (b Binding) TargetID() string { return geneIDFromURI(b.TargetURI) }

func geneIDFromURI(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// BuildQuery constructs one SPARQL query selecting every (source gene,
// target gene) name pair that shares an ortholog group, scoped to the two
// taxids and filtered to source genes matching the requested symbols.
// All requested genes go into a single query so the whole batch costs one
// round trip.
func BuildQuery(genes []string, sourceTaxid, targetTaxid string) string {
	escaped := make([]string, len(genes))
	for i, g := range genes {
		escaped[i] = regexp.QuoteMeta(g)
	}
	// Matches the bare symbol or the symbol inside a semicolon-joined
	// alias list ("ACE2;BMX"), case-insensitively.
	pattern := fmt.Sprintf("(^;?(%s);?)", strings.Join(escaped, "|"))

	var b strings.Builder
	b.WriteString("prefix : <http://purl.orthodb.org/>\n")
	b.WriteString("prefix up: <http://purl.uniprot.org/core/>\n")
	b.WriteString("prefix taxon: <http://purl.uniprot.org/taxonomy/>\n")
	b.WriteString("select distinct ?gene_s ?gene_s_name ?gene_t ?gene_t_name\n")
	b.WriteString("where {\n")
	b.WriteString("  ?gene_s a :Gene .\n")
	b.WriteString("  ?gene_t a :Gene .\n")
	b.WriteString("  ?gene_s :name ?gene_s_name .\n")
	b.WriteString("  ?gene_t :name ?gene_t_name .\n")
	b.WriteString("  ?gene_s :memberOf ?og .\n")
	b.WriteString("  ?gene_t :memberOf ?og .\n")
	writeTaxonClause(&b, "?gene_s", sourceTaxid)
	writeTaxonClause(&b, "?gene_t", targetTaxid)
	fmt.Fprintf(&b, "  filter regex(?gene_s_name, %q, \"i\")\n", pattern)
	b.WriteString("  filter (?gene_s != ?gene_t)\n")
	b.WriteString("}")
	return b.String()
}

// writeTaxonClause scopes a gene variable to an organism. The sentinel
// "all" taxid emits no clause, leaving the gene unscoped.
func writeTaxonClause(b *strings.Builder, variable, taxid string) {
	if taxid == taxon.All {
		return
	}
	fmt.Fprintf(b, "  %s up:organism/a taxon:%s .\n", variable, taxid)
}

// Client runs ortholog queries against a SPARQL endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a SPARQL client for the given endpoint base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultSPARQLBaseURL
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

// sparqlResponse mirrors the SPARQL JSON results format for the four
// variables our ortholog query selects.
type sparqlResponse struct {
	Results struct {
		Bindings []struct {
			GeneS     sparqlValue `json:"gene_s"`
			GeneSName sparqlValue `json:"gene_s_name"`
			GeneT     sparqlValue `json:"gene_t"`
			GeneTName sparqlValue `json:"gene_t_name"`
		} `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Value string `json:"value"`
}

// Orthologs fetches the raw ortholog rows for a batch of gene symbols.
// An empty row set is not an error at this layer; the caller decides how
// to surface it.
func (c *Client) Orthologs(ctx context.Context, genes []string, sourceTaxid, targetTaxid string) ([]Binding, error) {
	query := BuildQuery(genes, sourceTaxid, targetTaxid)
	c.logger.Debug("orthodb sparql query",
		zap.Strings("genes", genes),
		zap.String("source_taxid", sourceTaxid),
		zap.String("target_taxid", targetTaxid))

	reqURL := fmt.Sprintf("%s/sparql?query=%s&format=json", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sparql request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sparql endpoint error %d: %s", resp.StatusCode, string(body))
	}

	var sr sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode sparql response: %w", err)
	}

	bindings := make([]Binding, 0, len(sr.Results.Bindings))
	for _, row := range sr.Results.Bindings {
		bindings = append(bindings, Binding{
			SourceURI:  row.GeneS.Value,
			SourceName: row.GeneSName.Value,
			TargetURI:  row.GeneT.Value,
			TargetName: row.GeneTName.Value,
		})
	}

	c.logger.Debug("orthodb sparql response", zap.Int("rows", len(bindings)))
	return bindings, nil
}
