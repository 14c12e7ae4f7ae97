// Package rank orders ortholog candidates by similarity to their source
// gene, using name equality, exon count, and protein-domain count as
// successive tie-breakers.
package rank

import (
	"sort"

	"github.com/eweitz/homology/internal/datasource/orthodb"
)

// Candidates stably sorts candidates by similarity to the source gene.
// Rules, applied in order until one differentiates a pair:
//
//  1. A candidate whose name equals the source's (ignoring case) sorts
//     first.
//  2. A candidate whose exon count equals the source's sorts before one
//     whose count differs.
//  3. When both candidates carry more than one recorded domain and
//     neither name-matches, the candidate whose domain count is closer
//     to the source's sorts earlier (an exact count match earliest).
//
// Pairs no rule differentiates keep their input order, so ranking is
// deterministic for identical input.
func Candidates(source *orthodb.Gene, candidates []*orthodb.Gene) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(source, candidates[i], candidates[j])
	})
}

func less(source, a, b *orthodb.Gene) bool {
	aNamed := a.NameEquals(source.Name)
	bNamed := b.NameEquals(source.Name)
	if aNamed != bNamed {
		return aNamed
	}

	if source.ExonCount != nil && a.ExonCount != nil && b.ExonCount != nil {
		aExon := *a.ExonCount == *source.ExonCount
		bExon := *b.ExonCount == *source.ExonCount
		if aExon != bExon {
			return aExon
		}
	}

	if !aNamed && !bNamed && len(a.Domains) > 1 && len(b.Domains) > 1 {
		want := len(source.Domains)
		aDist := abs(len(a.Domains) - want)
		bDist := abs(len(b.Domains) - want)
		if aDist != bDist {
			return aDist < bDist
		}
	}

	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
