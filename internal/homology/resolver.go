// Package homology resolves orthologous genes across species: it queries
// the ortholog graph, deduplicates alias-polluted rows, enriches and
// ranks candidate genes, and resolves genomic coordinates for every gene
// involved.
package homology

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eweitz/homology/internal/datasource/eutils"
	"github.com/eweitz/homology/internal/datasource/mygene"
	"github.com/eweitz/homology/internal/datasource/orthodb"
	"github.com/eweitz/homology/internal/locate"
	"github.com/eweitz/homology/internal/rank"
	"github.com/eweitz/homology/internal/taxon"
	"github.com/eweitz/homology/internal/throttle"
)

// Limits on the per-gene detail endpoint, per OrthoDB quota.
const (
	DefaultDetailConcurrency = 3
	DefaultDetailInterval    = 333 * time.Millisecond
)

// Config carries the endpoint and quota settings injected into every
// component at construction. Zero values select the public endpoints
// and default quota.
type Config struct {
	SPARQLBaseURL string
	DetailBaseURL string
	MyGeneBaseURL string
	EUtilsBaseURL string

	DetailConcurrency int
	DetailInterval    time.Duration
}

// GeneLocation pairs a gene symbol with its resolved genomic location.
type GeneLocation struct {
	Gene     string `json:"gene"`
	Location string `json:"location"`
}

// Result is the resolution outcome for one queried gene: the source
// gene's own entry first, followed by its ranked orthologs in the
// target organism.
type Result struct {
	Gene    string         `json:"gene"`
	Entries []GeneLocation `json:"entries"`
}

// Resolver wires the query builder, enrichment service, location
// resolver, and ranking into one pipeline.
type Resolver struct {
	graph   *orthodb.Client
	details *orthodb.DetailClient
	locator *locate.Resolver
	logger  *zap.Logger
}

// New constructs a resolver from configuration. The detail-endpoint
// limiter is created here and handed to the enrichment client; the
// batched SPARQL and location queries are not throttled.
func New(cfg Config) *Resolver {
	concurrency := cfg.DetailConcurrency
	if concurrency <= 0 {
		concurrency = DefaultDetailConcurrency
	}
	interval := cfg.DetailInterval
	if interval <= 0 {
		interval = DefaultDetailInterval
	}
	limiter := throttle.New(concurrency, interval)

	return &Resolver{
		graph:   orthodb.NewClient(cfg.SPARQLBaseURL),
		details: orthodb.NewDetailClient(cfg.DetailBaseURL, limiter),
		locator: locate.NewResolver(
			mygene.NewClient(cfg.MyGeneBaseURL),
			eutils.NewClient(cfg.EUtilsBaseURL),
		),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger on the resolver and every component it owns.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
	r.graph.SetLogger(l)
	r.details.SetLogger(l)
	r.locator.SetLogger(l)
}

// pending is one queried gene moving through the pipeline.
type pending struct {
	key     string
	anchor  *orthodb.Gene
	targets []*orthodb.Gene
	// trivial means every target already name-matches the source, so
	// enrichment buys nothing and ranking is a no-op.
	trivial bool
}

// Resolve finds orthologs of the queried genes from the source organism
// in the target organism and returns, per gene, its own location
// followed by ranked ortholog locations.
//
// Only the first target organism is resolved; additional targets are a
// known limitation and are skipped with a warning. A gene that fails in
// the map or enrichment stages does not abort the other genes; a
// location-batch failure fails the whole request, since locations are
// resolved in shared batched calls.
func (r *Resolver) Resolve(ctx context.Context, genes []string, sourceOrganism string, targetOrganisms []string) ([]Result, error) {
	if len(genes) == 0 {
		return nil, errors.New("no genes given")
	}
	if len(targetOrganisms) == 0 {
		return nil, errors.New("no target organism given")
	}

	source := taxon.Normalize(sourceOrganism)
	target := taxon.Normalize(targetOrganisms[0])
	if len(targetOrganisms) > 1 {
		r.logger.Warn("multiple target organisms are not supported; resolving the first only",
			zap.String("target", target),
			zap.Int("skipped", len(targetOrganisms)-1))
	}
	sourceTaxid := taxon.TaxID(source)
	targetTaxid := taxon.TaxID(target)

	rows, err := r.graph.Orthologs(ctx, genes, sourceTaxid, targetTaxid)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &Error{
			Kind:   KindOrthologsNotFound,
			Gene:   strings.Join(genes, ", "),
			Source: source,
			Target: target,
		}
	}

	orthoMap, registry := orthodb.BuildMap(rows, genes)

	pendings, failures := r.collect(genes, orthoMap, registry, source, target)

	pendings, enrichFailures := r.enrich(ctx, pendings)
	failures = append(failures, enrichFailures...)

	sourceRecords, targetRecords, err := r.locateAll(ctx, pendings, sourceTaxid, targetTaxid, source, target)
	if err != nil {
		return nil, err
	}

	results := r.assemble(pendings, sourceRecords, targetRecords)

	for _, f := range failures {
		r.logger.Warn("gene resolution failed", zap.Error(f))
	}
	if len(results) == 0 && len(failures) > 0 {
		return nil, failures[0]
	}
	return results, nil
}

// collect builds the per-gene pipeline state, separating genes that
// fail in the map stage so the rest can proceed.
func (r *Resolver) collect(genes []string, orthoMap orthodb.Map, registry orthodb.Registry, source, target string) ([]*pending, []error) {
	var pendings []*pending
	var failures []error

	for _, g := range genes {
		anchor, inSource := registry[g]
		if !inSource {
			failures = append(failures, &Error{
				Kind: KindGeneNotFoundInSource, Gene: g, Source: source, Target: target,
			})
			continue
		}
		candidates := orthoMap[g]
		if len(candidates) == 0 {
			failures = append(failures, &Error{
				Kind: KindOrthologsNotFoundInTarget, Gene: g, Source: source, Target: target,
			})
			continue
		}

		p := &pending{key: g, anchor: anchor, trivial: true}
		for _, c := range candidates {
			p.targets = append(p.targets, &orthodb.Gene{Name: c.Name, ID: c.ID})
			if !strings.EqualFold(c.Name, g) {
				p.trivial = false
			}
		}
		pendings = append(pendings, p)
	}

	return pendings, failures
}

// enrich fetches protein-level metadata for every gene that needs it.
// Genes whose targets all name-match their source are skipped entirely:
// their ranking is already trivially decided. Queried genes are
// independent at this stage, so an enrichment failure drops only its
// own gene; the survivors and the per-gene failures are both returned.
func (r *Resolver) enrich(ctx context.Context, pendings []*pending) ([]*pending, []error) {
	errs := make([]error, len(pendings))

	var wg sync.WaitGroup
	for i, p := range pendings {
		if p.trivial {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			genes := append([]*orthodb.Gene{p.anchor}, p.targets...)
			if err := r.details.EnrichAll(ctx, genes); err != nil {
				errs[i] = fmt.Errorf("enriching %q: %w", p.key, err)
			}
		}()
	}
	wg.Wait()

	kept := pendings[:0]
	var failures []error
	for i, p := range pendings {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			continue
		}
		kept = append(kept, p)
	}
	return kept, failures
}

// locateAll resolves the source-gene batch and target-gene batch
// concurrently; neither depends on the other.
func (r *Resolver) locateAll(ctx context.Context, pendings []*pending, sourceTaxid, targetTaxid, source, target string) ([]locate.Record, []locate.Record, error) {
	sourceGenes := make([]*orthodb.Gene, len(pendings))
	for i, p := range pendings {
		sourceGenes[i] = p.anchor
	}
	var targetGenes []*orthodb.Gene
	for _, p := range pendings {
		targetGenes = append(targetGenes, p.targets...)
	}

	var sourceRecords, targetRecords []locate.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sourceRecords, err = r.locateBatch(gctx, sourceGenes, sourceTaxid, source, source, target)
		return err
	})
	g.Go(func() error {
		var err error
		targetRecords, err = r.locateBatch(gctx, targetGenes, targetTaxid, target, source, target)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sourceRecords, targetRecords, nil
}

// locateBatch resolves one batch of genes, escalating once to forced
// enrichment plus the fallback provider when the primary provider
// cannot work from symbols alone. organism names the batch being
// resolved, which is the source organism for the anchor batch.
func (r *Resolver) locateBatch(ctx context.Context, genes []*orthodb.Gene, taxid, organism, source, target string) ([]locate.Record, error) {
	records, err := r.locator.Resolve(ctx, inputsFor(genes), taxid)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, locate.ErrNeedEnrichment) {
		return nil, r.taxonomyError(err, organism, source, target)
	}

	// One-shot escalation: force enrichment to obtain cross-reference
	// ids, then retry. A second insufficiency is terminal.
	r.logger.Info("forcing enrichment for coordinate resolution",
		zap.Int("genes", len(genes)), zap.String("taxid", taxid))

	var missing []*orthodb.Gene
	for _, gene := range genes {
		if gene.NCBIGeneID == "" {
			missing = append(missing, gene)
		}
	}
	if err := r.details.EnrichAll(ctx, missing); err != nil {
		return nil, err
	}
	for _, gene := range genes {
		if gene.NCBIGeneID == "" {
			return nil, &Error{Kind: KindLocationUnresolved, Gene: gene.Name, Source: source, Target: target, Organism: organism}
		}
	}

	records, err = r.locator.Resolve(ctx, inputsFor(genes), taxid)
	if err != nil {
		return nil, r.taxonomyError(err, organism, source, target)
	}
	return records, nil
}

// taxonomyError maps locate-layer failures onto the error taxonomy,
// leaving transport failures wrapped as-is.
func (r *Resolver) taxonomyError(err error, organism, source, target string) error {
	var unresolved *locate.UnresolvedError
	if errors.As(err, &unresolved) {
		return &Error{Kind: KindLocationUnresolved, Gene: unresolved.Name, Source: source, Target: target, Organism: organism}
	}
	if errors.Is(err, locate.ErrNeedEnrichment) {
		return fmt.Errorf("coordinate resolution: %w", err)
	}
	return err
}

func inputsFor(genes []*orthodb.Gene) []locate.Input {
	inputs := make([]locate.Input, len(genes))
	for i, g := range genes {
		inputs[i] = locate.Input{Name: g.Name, NCBIGeneID: g.NCBIGeneID}
	}
	return inputs
}

// assemble ranks each gene's candidates and matches resolved locations
// back to gene names. Location entries are matched fuzzily (punctuation
// differs between databases); a name nothing matches falls back to the
// positional entry at the source gene's ordinal in the batch, a
// documented last resort.
func (r *Resolver) assemble(pendings []*pending, sourceRecords, targetRecords []locate.Record) []Result {
	results := make([]Result, 0, len(pendings))

	for i, p := range pendings {
		if !p.trivial {
			rank.Candidates(p.anchor, p.targets)
		}

		entries := []GeneLocation{{
			Gene:     p.key,
			Location: matchLocation(sourceRecords, p.key, i),
		}}
		for _, t := range p.targets {
			entries = append(entries, GeneLocation{
				Gene:     t.Name,
				Location: matchLocation(targetRecords, t.Name, i),
			})
		}

		results = append(results, Result{Gene: p.key, Entries: entries})
	}

	return results
}

func matchLocation(records []locate.Record, name string, sourceOrdinal int) string {
	for _, rec := range records {
		if FuzzyMatch(rec.Name, name) {
			return rec.Location
		}
	}
	if sourceOrdinal < len(records) {
		return records[sourceOrdinal].Location
	}
	return ""
}
