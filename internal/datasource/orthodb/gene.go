// Package orthodb queries the OrthoDB ortholog graph database and shapes
// its noisy, alias-laden results into deduplicated candidate maps.
package orthodb

import "strings"

// Gene is a gene record accumulated across pipeline stages. Only Name and
// ID are set when the record comes out of the ortholog map; the remaining
// fields are filled by enrichment. Absent fields stay at their zero value
// (nil for the counts) so enrichment can tell "unknown" from "zero".
type Gene struct {
	// Name is the gene symbol, e.g. "MTOR".
	Name string
	// ID is the OrthoDB internal gene id, e.g. "9606_0:001c8b".
	ID string

	EnsemblID      string
	NCBIGeneID     string
	AminoAcidCount *int
	ExonCount      *int
	// Domains holds InterPro protein-domain identifiers. Used only as a
	// count during ranking.
	Domains []string
}

// NameEquals reports whether the gene's symbol equals name, ignoring case.
func (g *Gene) NameEquals(name string) bool {
	return strings.EqualFold(g.Name, name)
}

// Candidate is a deduplicated ortholog target stub, before enrichment.
type Candidate struct {
	Name string
	ID   string
}

// Map associates each queried source gene symbol with its distinct
// candidate target genes. Keys use the casing supplied in the original
// query; candidate lists contain no case-insensitive duplicates.
type Map map[string][]Candidate

// Registry records the anchor source-gene record for each map key, in
// the order rows were first seen. Its enrichment is the baseline that
// candidate ranking compares against.
type Registry map[string]*Gene
