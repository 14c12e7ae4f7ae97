package homology

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"gene not found in source",
			&Error{Kind: KindGeneNotFoundInSource, Gene: "asdf", Source: "homo sapiens", Target: "mus musculus"},
			`gene "asdf" was not found in Homo sapiens`,
		},
		{
			"orthologs not found",
			&Error{Kind: KindOrthologsNotFound, Gene: "asdf", Source: "homo sapiens", Target: "mus musculus"},
			`no orthologs found for "asdf" between Homo sapiens and Mus musculus`,
		},
		{
			"orthologs not found in target",
			&Error{Kind: KindOrthologsNotFoundInTarget, Gene: "MTOR", Source: "homo sapiens", Target: "danio rerio"},
			`no orthologs of "MTOR" from Homo sapiens were found in Danio rerio`,
		},
		{
			"location unresolved in target batch",
			&Error{Kind: KindLocationUnresolved, Gene: "Mtor", Source: "homo sapiens", Target: "mus musculus", Organism: "mus musculus"},
			`no genomic location could be resolved for "Mtor" in Mus musculus`,
		},
		{
			"location unresolved in source batch",
			&Error{Kind: KindLocationUnresolved, Gene: "MTOR", Source: "homo sapiens", Target: "mus musculus", Organism: "homo sapiens"},
			`no genomic location could be resolved for "MTOR" in Homo sapiens`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("resolving: %w",
		&Error{Kind: KindOrthologsNotFound, Gene: "asdf", Source: "homo sapiens", Target: "mus musculus"})

	assert.True(t, errors.Is(err, &Error{Kind: KindOrthologsNotFound}))
	assert.True(t, errors.Is(err, &Error{Kind: KindOrthologsNotFound, Gene: "asdf"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindOrthologsNotFound, Gene: "MTOR"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindLocationUnresolved}))
}
