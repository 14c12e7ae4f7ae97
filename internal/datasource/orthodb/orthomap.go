package orthodb

import "strings"

// BuildMap turns raw SPARQL rows into a deduplicated ortholog map plus
// the anchor registry of source-gene records. Map keys use the casing of
// the original query, so querying "mtor" against human rows named "MTOR"
// yields one merged key, never two case-variant keys.
//
// Rows whose source name is an alias list containing none of the queried
// symbols are discarded: some organisms' records do not carry the queried
// gene's canonical symbol, and such rows cannot be attributed to a query.
func BuildMap(bindings []Binding, queried []string) (Map, Registry) {
	m := make(Map)
	reg := make(Registry)

	for _, row := range bindings {
		key, ok := sourceKey(row.SourceName, queried)
		if !ok {
			continue
		}

		if _, seen := reg[key]; !seen {
			reg[key] = &Gene{Name: key, ID: row.SourceID()}
		}

		name := resolveTargetName(row.TargetName)
		if name == "" {
			continue
		}
		if hasCandidate(m[key], name) {
			continue
		}
		m[key] = append(m[key], Candidate{Name: name, ID: row.TargetID()})
	}

	return m, reg
}

// sourceKey resolves a row's raw source name to the queried symbol it
// belongs to, in the query's casing. Alias lists are searched for a
// queried member; a lone name just needs a case-insensitive match.
func sourceKey(raw string, queried []string) (string, bool) {
	for _, alias := range strings.Split(raw, ";") {
		for _, q := range queried {
			if strings.EqualFold(alias, q) {
				return q, true
			}
		}
	}
	return "", false
}

// resolveTargetName picks the best symbol out of a possibly
// semicolon-joined alias list. Purely numeric aliases are internal
// identifiers, not gene symbols, so any non-numeric alias wins over
// them; among non-numeric aliases the shortest is heuristically the
// canonical symbol. Ties keep first position.
func resolveTargetName(raw string) string {
	aliases := strings.Split(raw, ";")
	best := ""
	bestNumeric := true
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		numeric := isNumeric(alias)
		switch {
		case best == "":
			best, bestNumeric = alias, numeric
		case bestNumeric && !numeric:
			best, bestNumeric = alias, numeric
		case !numeric && !bestNumeric && len(alias) < len(best):
			best = alias
		}
	}
	return best
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func hasCandidate(list []Candidate, name string) bool {
	for _, c := range list {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
