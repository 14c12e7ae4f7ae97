// Package taxon maps organism scientific names to NCBI taxonomy identifiers.
package taxon

import "strings"

// All is the sentinel taxid for organisms not in the registry.
// Queries scoped to All match genes from any organism.
const All = "all"

// taxidsByName covers the organisms available in OrthoDB.
// Keys are lowercase, space-delimited scientific names.
var taxidsByName = map[string]string{
	"anopheles gambiae":         "7165",
	"apis mellifera":            "7460",
	"arabidopsis thaliana":      "3702",
	"bos taurus":                "9913",
	"caenorhabditis elegans":    "6239",
	"canis lupus familiaris":    "9615",
	"danio rerio":               "7955",
	"drosophila melanogaster":   "7227",
	"felis catus":               "9685",
	"gallus gallus":             "9031",
	"homo sapiens":              "9606",
	"macaca mulatta":            "9544",
	"mus musculus":              "10090",
	"oryza sativa":              "4530",
	"pan troglodytes":           "9598",
	"rattus norvegicus":         "10116",
	"saccharomyces cerevisiae":  "4932",
	"schizosaccharomyces pombe": "4896",
	"sus scrofa":                "9823",
	"xenopus tropicalis":        "8364",
	"zea mays":                  "4577",
}

var namesByTaxid = make(map[string]string, len(taxidsByName))

func init() {
	for name, taxid := range taxidsByName {
		namesByTaxid[taxid] = name
	}
}

// TaxID returns the taxonomy id for an organism scientific name.
// Name matching is case-insensitive. Unsupported organisms map to All.
func TaxID(name string) string {
	if taxid, ok := taxidsByName[Normalize(name)]; ok {
		return taxid
	}
	return All
}

// Name returns the lowercase scientific name for a taxonomy id.
func Name(taxid string) (string, bool) {
	name, ok := namesByTaxid[taxid]
	return name, ok
}

// Supported reports whether the organism is in the registry.
func Supported(name string) bool {
	_, ok := taxidsByName[Normalize(name)]
	return ok
}

// Normalize lowercases and trims an organism name to registry key form.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Canonical renders an organism name in "Genus species" capitalization,
// the form used in user-facing messages.
func Canonical(name string) string {
	n := Normalize(name)
	if n == "" {
		return n
	}
	return strings.ToUpper(n[:1]) + n[1:]
}
