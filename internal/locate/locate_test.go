package locate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eweitz/homology/internal/datasource/eutils"
	"github.com/eweitz/homology/internal/datasource/mygene"
)

type fakePrimary struct {
	hits  []mygene.Hit
	err   error
	calls int
	scope string
	terms []string
}

func (f *fakePrimary) Query(_ context.Context, terms []string, scope, taxid string) ([]mygene.Hit, error) {
	f.calls++
	f.scope = scope
	f.terms = terms
	return f.hits, f.err
}

type fakeFallback struct {
	summaries []eutils.Summary
	err       error
	calls     int
}

func (f *fakeFallback) Summaries(_ context.Context, ids []string) ([]eutils.Summary, error) {
	f.calls++
	return f.summaries, f.err
}

func hit(symbol string, entrez string, positions ...mygene.Position) mygene.Hit {
	return mygene.Hit{
		Query:      symbol,
		Symbol:     symbol,
		EntrezGene: json.Number(entrez),
		GenomicPos: positions,
	}
}

func TestResolve_PrimarySufficient(t *testing.T) {
	primary := &fakePrimary{hits: []mygene.Hit{
		hit("Mtor", "56717", mygene.Position{Chrom: "4", Start: 148448582, End: 148557685}),
	}}
	fallback := &fakeFallback{}

	r := NewResolver(primary, fallback)
	records, err := r.Resolve(context.Background(), []Input{{Name: "Mtor"}}, "10090")
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, Record{Name: "Mtor", Location: "4:148448582-148557685"}, records[0])
	assert.Equal(t, mygene.ScopeSymbol, primary.scope)
	assert.Zero(t, fallback.calls)
}

func TestResolve_PrefersIDsWhenAllPresent(t *testing.T) {
	primary := &fakePrimary{hits: []mygene.Hit{
		hit("MTOR", "2475", mygene.Position{Chrom: "1", Start: 11106531, End: 11262557}),
	}}

	r := NewResolver(primary, &fakeFallback{})
	_, err := r.Resolve(context.Background(), []Input{{Name: "MTOR", NCBIGeneID: "2475"}}, "9606")
	require.NoError(t, err)

	assert.Equal(t, mygene.ScopeEntrez, primary.scope)
	assert.Equal(t, []string{"2475"}, primary.terms)
}

func TestResolve_ScaffoldFiltering(t *testing.T) {
	// PTPRC-style hit: a scaffold placement first, the real chromosome
	// second. The scaffold must be discarded, not just deprioritized.
	primary := &fakePrimary{hits: []mygene.Hit{
		hit("Ptprc", "19264",
			mygene.Position{Chrom: "1_GL456211_random", Start: 1, End: 20000},
			mygene.Position{Chrom: "1", Start: 138063532, End: 138175723},
		),
	}}

	r := NewResolver(primary, &fakeFallback{})
	records, err := r.Resolve(context.Background(), []Input{{Name: "Ptprc"}}, "10090")
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "1:138063532-138175723", records[0].Location)
}

func TestResolve_OnlyScaffoldsIsUnresolved(t *testing.T) {
	primary := &fakePrimary{hits: []mygene.Hit{
		hit("Ptprc", "19264", mygene.Position{Chrom: "1_GL456211_random", Start: 1, End: 20000}),
	}}

	r := NewResolver(primary, &fakeFallback{})
	_, err := r.Resolve(context.Background(), []Input{{Name: "Ptprc"}}, "10090")

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "Ptprc", unresolved.Name)
}

func TestResolve_InsufficientWithoutIDs(t *testing.T) {
	// Fewer hits than inputs and no ids to fall back on.
	primary := &fakePrimary{hits: []mygene.Hit{
		hit("NFYA", "4800", mygene.Position{Chrom: "6", Start: 41072974, End: 41102403}),
	}}
	fallback := &fakeFallback{}

	r := NewResolver(primary, fallback)
	_, err := r.Resolve(context.Background(),
		[]Input{{Name: "NFYA"}, {Name: "nfya-1"}}, "6239")

	assert.ErrorIs(t, err, ErrNeedEnrichment)
	assert.Zero(t, fallback.calls)
}

func TestResolve_InsufficientFallsBackWithIDs(t *testing.T) {
	// Hit present but missing its genomic position: insufficient.
	primary := &fakePrimary{hits: []mygene.Hit{hit("nfya-1", "178536")}}
	fallback := &fakeFallback{summaries: []eutils.Summary{
		{ID: "178536", Name: "nfya-1", Positions: []eutils.Position{
			{Chrom: "I", Start: 8126736, End: 8134489},
		}},
	}}

	r := NewResolver(primary, fallback)
	records, err := r.Resolve(context.Background(),
		[]Input{{Name: "nfya-1", NCBIGeneID: "178536"}}, "6239")
	require.NoError(t, err)

	require.Equal(t, 1, fallback.calls)
	require.Len(t, records, 1)
	assert.Equal(t, Record{Name: "nfya-1", Location: "I:8126736-8134489"}, records[0])
}

func TestResolve_FallbackMissingRecord(t *testing.T) {
	primary := &fakePrimary{hits: nil}
	fallback := &fakeFallback{summaries: nil}

	r := NewResolver(primary, fallback)
	_, err := r.Resolve(context.Background(),
		[]Input{{Name: "GHOST", NCBIGeneID: "1"}}, "9606")

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "GHOST", unresolved.Name)
}

func TestResolve_EmptyBatch(t *testing.T) {
	primary := &fakePrimary{}
	r := NewResolver(primary, &fakeFallback{})
	records, err := r.Resolve(context.Background(), nil, "9606")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, primary.calls)
}
