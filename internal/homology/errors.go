package homology

import (
	"fmt"

	"github.com/eweitz/homology/internal/taxon"
)

// Kind classifies expected domain failures. Transport and parsing
// failures are not kinds; they propagate as ordinary wrapped errors.
type Kind int

const (
	// KindGeneNotFoundInSource: the queried gene had no matching row in
	// the source organism after alias resolution.
	KindGeneNotFoundInSource Kind = iota + 1
	// KindOrthologsNotFound: the graph query returned zero rows for the
	// entire gene batch.
	KindOrthologsNotFound
	// KindOrthologsNotFoundInTarget: rows exist for the source gene but
	// none fall in the requested target organism.
	KindOrthologsNotFoundInTarget
	// KindLocationUnresolved: no coordinate provider, fallback included,
	// returned a usable position for the gene.
	KindLocationUnresolved
)

// Error is a typed resolution failure naming the offending gene and its
// organism context. Organism is set only for location failures: those
// happen per batch, and the failing batch may be the source one, so
// neither Source nor Target alone names the right organism.
type Error struct {
	Kind     Kind
	Gene     string
	Source   string
	Target   string
	Organism string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindGeneNotFoundInSource:
		return fmt.Sprintf("gene %q was not found in %s", e.Gene, taxon.Canonical(e.Source))
	case KindOrthologsNotFound:
		return fmt.Sprintf("no orthologs found for %q between %s and %s",
			e.Gene, taxon.Canonical(e.Source), taxon.Canonical(e.Target))
	case KindOrthologsNotFoundInTarget:
		return fmt.Sprintf("no orthologs of %q from %s were found in %s",
			e.Gene, taxon.Canonical(e.Source), taxon.Canonical(e.Target))
	case KindLocationUnresolved:
		return fmt.Sprintf("no genomic location could be resolved for %q in %s",
			e.Gene, taxon.Canonical(e.Organism))
	}
	return fmt.Sprintf("ortholog resolution failed for %q", e.Gene)
}

// Is lets errors.Is compare by kind against a sentinel &Error{Kind: k}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Gene == "" || t.Gene == e.Gene)
}
