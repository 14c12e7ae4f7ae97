// Package locate resolves genomic coordinates for batches of genes,
// chaining a fast primary provider and a complete fallback provider.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eweitz/homology/internal/datasource/eutils"
	"github.com/eweitz/homology/internal/datasource/mygene"
)

// ErrNeedEnrichment signals that the primary provider could not resolve
// the batch by symbol and the inputs carry no cross-reference ids, so
// the caller must enrich the genes before retrying with the fallback
// provider.
var ErrNeedEnrichment = errors.New("coordinate resolution requires cross-reference ids")

// UnresolvedError reports a gene for which no provider, fallback
// included, returned a usable position.
type UnresolvedError struct {
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("no usable genomic position for %q", e.Name)
}

// Input is one gene to place: a symbol, optionally with the NCBI gene
// id obtained through enrichment. Ids are preferred for querying
// because symbols are ambiguous across databases.
type Input struct {
	Name       string
	NCBIGeneID string
}

// Record is a resolved gene location. Location is
// "<chromosome>:<start>-<end>", 1-based inclusive, in the coordinates
// native to whichever provider answered.
type Record struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Primary is the fast coordinate provider (MyGene.info shaped).
type Primary interface {
	Query(ctx context.Context, terms []string, scope, taxid string) ([]mygene.Hit, error)
}

// Fallback is the complete coordinate provider that accepts
// cross-reference ids directly (NCBI esummary shaped).
type Fallback interface {
	Summaries(ctx context.Context, ids []string) ([]eutils.Summary, error)
}

// Resolver chains the primary and fallback providers.
type Resolver struct {
	primary  Primary
	fallback Fallback
	logger   *zap.Logger
}

// NewResolver creates a resolver over the two providers.
func NewResolver(primary Primary, fallback Fallback) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for resolution diagnostics.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve places a batch of genes in one organism. The whole batch goes
// to the primary provider in a single request, by id when every input
// carries one, else by symbol. An insufficient primary response
// escalates to the fallback provider when ids are available and to
// ErrNeedEnrichment when they are not.
func (r *Resolver) Resolve(ctx context.Context, inputs []Input, taxid string) ([]Record, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	byID := allHaveIDs(inputs)
	terms := make([]string, len(inputs))
	scope := mygene.ScopeSymbol
	for i, in := range inputs {
		terms[i] = in.Name
	}
	if byID {
		scope = mygene.ScopeEntrez
		for i, in := range inputs {
			terms[i] = in.NCBIGeneID
		}
	}

	hits, err := r.primary.Query(ctx, terms, scope, taxid)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	if sufficient(hits, len(inputs)) {
		return recordsFromHits(hits)
	}

	r.logger.Debug("primary coordinate response insufficient",
		zap.Int("inputs", len(inputs)),
		zap.Int("hits", len(hits)),
		zap.Bool("have_ids", byID))

	if !byID {
		return nil, ErrNeedEnrichment
	}
	return r.resolveFallback(ctx, inputs)
}

func (r *Resolver) resolveFallback(ctx context.Context, inputs []Input) ([]Record, error) {
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.NCBIGeneID
	}

	summaries, err := r.fallback.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}

	byID := make(map[string]eutils.Summary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	records := make([]Record, 0, len(inputs))
	for _, in := range inputs {
		s, ok := byID[in.NCBIGeneID]
		if !ok {
			return nil, &UnresolvedError{Name: in.Name}
		}
		pos, ok := usablePosition(fromEutils(s.Positions))
		if !ok {
			return nil, &UnresolvedError{Name: in.Name}
		}
		name := s.Name
		if name == "" {
			name = in.Name
		}
		records = append(records, Record{Name: name, Location: formatLocation(pos)})
	}
	return records, nil
}

// sufficient reports whether a primary response covers the batch: at
// least one hit per input, every hit placed, every hit identifiable.
func sufficient(hits []mygene.Hit, inputs int) bool {
	if len(hits) < inputs {
		return false
	}
	for _, h := range hits {
		if len(h.Positions()) == 0 {
			return false
		}
		if h.Symbol == "" && h.EntrezGene.String() == "" && h.Query == "" {
			return false
		}
	}
	return true
}

func recordsFromHits(hits []mygene.Hit) ([]Record, error) {
	records := make([]Record, 0, len(hits))
	for _, h := range hits {
		pos, ok := usablePosition(fromMyGene(h.Positions()))
		if !ok {
			return nil, &UnresolvedError{Name: h.Identifier()}
		}
		records = append(records, Record{Name: h.Identifier(), Location: formatLocation(pos)})
	}
	return records, nil
}

type position struct {
	chrom string
	start int64
	end   int64
}

// usablePosition discards placements on alternative-locus scaffolds
// (chromosome names containing "_", genome assembly artifacts) and
// keeps the first remaining placement. Scaffolds are never valid
// answers, so a gene placed only on scaffolds stays unresolved.
func usablePosition(positions []position) (position, bool) {
	for _, p := range positions {
		if strings.Contains(p.chrom, "_") {
			continue
		}
		return p, true
	}
	return position{}, false
}

func formatLocation(p position) string {
	return fmt.Sprintf("%s:%d-%d", p.chrom, p.start, p.end)
}

func fromMyGene(in []mygene.Position) []position {
	out := make([]position, len(in))
	for i, p := range in {
		out[i] = position{chrom: p.Chrom, start: p.Start, end: p.End}
	}
	return out
}

func fromEutils(in []eutils.Position) []position {
	out := make([]position, len(in))
	for i, p := range in {
		out[i] = position{chrom: p.Chrom, start: p.Start, end: p.End}
	}
	return out
}

func allHaveIDs(inputs []Input) bool {
	for _, in := range inputs {
		if in.NCBIGeneID == "" {
			return false
		}
	}
	return true
}
