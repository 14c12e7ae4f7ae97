// Package output provides ortholog result formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/eweitz/homology/internal/homology"
)

// TabWriter writes ortholog results in tab-delimited format, one line
// per entry: the queried gene and its location first, then each ranked
// ortholog in order.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Query",
			"Gene",
			"Location",
			"Rank",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one result: the source entry labeled "source" followed
// by target entries labeled with their rank.
func (tw *TabWriter) Write(res homology.Result) error {
	for i, entry := range res.Entries {
		location := entry.Location
		if location == "" {
			location = "-"
		}
		rank := "source"
		if i > 0 {
			rank = strconv.Itoa(i)
		}
		line := []string{res.Gene, entry.Gene, location, rank}
		if _, err := tw.w.WriteString(strings.Join(line, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
