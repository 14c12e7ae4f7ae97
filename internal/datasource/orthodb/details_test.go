package orthodb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eweitz/homology/internal/throttle"
)

const detailPayload = `{
	"data": {
		"entrez_gene_id": 2475,
		"ensembl": [{"id": "ENSG00000198793"}],
		"aas": 2549,
		"exons": 58,
		"interpro_domains": [{"id": "IPR003152"}, {"id": "IPR009076"}]
	}
}`

func TestDetailClient_Enrich(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ogdetails", r.URL.Path)
		require.Equal(t, "9606_0:001c8b", r.URL.Query().Get("id"))
		w.Write([]byte(detailPayload))
	}))
	defer srv.Close()

	c := NewDetailClient(srv.URL, nil)
	g := &Gene{Name: "MTOR", ID: "9606_0:001c8b"}
	require.NoError(t, c.Enrich(context.Background(), g))

	assert.Equal(t, "ENSG00000198793", g.EnsemblID)
	assert.Equal(t, "2475", g.NCBIGeneID)
	require.NotNil(t, g.AminoAcidCount)
	assert.Equal(t, 2549, *g.AminoAcidCount)
	require.NotNil(t, g.ExonCount)
	assert.Equal(t, 58, *g.ExonCount)
	assert.Equal(t, []string{"IPR003152", "IPR009076"}, g.Domains)
}

func TestDetailClient_Enrich_NCBIFromXrefs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": {
				"xrefs": [
					{"type": "UniProt", "id": "P42345"},
					{"type": "NCBIgene", "id": "2475"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewDetailClient(srv.URL, nil)
	g := &Gene{Name: "MTOR", ID: "9606_0:001c8b"}
	require.NoError(t, c.Enrich(context.Background(), g))
	assert.Equal(t, "2475", g.NCBIGeneID)
}

func TestDetailClient_Enrich_Additive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Second fetch returns an empty record; it must not clear
		// anything filled by the first.
		w.Write([]byte(`{"data": {}}`))
	}))
	defer srv.Close()

	c := NewDetailClient(srv.URL, nil)
	exons := 58
	g := &Gene{
		Name:       "MTOR",
		ID:         "9606_0:001c8b",
		EnsemblID:  "ENSG00000198793",
		NCBIGeneID: "2475",
		ExonCount:  &exons,
		Domains:    []string{"IPR003152"},
	}
	require.NoError(t, c.Enrich(context.Background(), g))

	assert.Equal(t, "ENSG00000198793", g.EnsemblID)
	assert.Equal(t, "2475", g.NCBIGeneID)
	assert.Equal(t, 58, *g.ExonCount)
	assert.Equal(t, []string{"IPR003152"}, g.Domains)
}

func TestDetailClient_Enrich_NoID(t *testing.T) {
	c := NewDetailClient("http://unused.invalid", nil)
	err := c.Enrich(context.Background(), &Gene{Name: "MTOR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MTOR")
}

func TestDetailClient_EnrichAll_Throttled(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(detailPayload))
	}))
	defer srv.Close()

	limiter := throttle.New(3, 0)
	c := NewDetailClient(srv.URL, limiter)

	genes := make([]*Gene, 8)
	for i := range genes {
		genes[i] = &Gene{Name: "G", ID: "9606_0:001c8b"}
	}
	require.NoError(t, c.EnrichAll(context.Background(), genes))

	assert.LessOrEqual(t, maxInFlight.Load(), int32(3))
	for _, g := range genes {
		assert.Equal(t, "2475", g.NCBIGeneID)
	}
}
