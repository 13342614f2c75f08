// Package genesets provides gene-list utilities for the scoring
// operations: intersection of gene lists with a gene universe, loaders for
// the common on-disk gene-set formats, and the embedded cell-cycle gene
// lists used for phase assignment.
package genesets

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	scerrors "github.com/scgolabs/singlecell/pkg/errors"
)

// Filter returns the genes present in universe, preserving the order of
// genes and dropping duplicates. Unknown names are silently dropped; that
// is a policy of the scoring operations, not an error.
func Filter(genes, universe []string) []string {
	known := make(map[string]struct{}, len(universe))
	for _, g := range universe {
		known[g] = struct{}{}
	}
	seen := make(map[string]struct{}, len(genes))
	out := make([]string, 0, len(genes))
	for _, g := range genes {
		if _, ok := known[g]; !ok {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// FromList reads a plain-text gene list: one gene per line, blank lines
// and lines starting with '#' skipped, surrounding whitespace trimmed.
func FromList(r io.Reader) ([]string, error) {
	var genes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		genes = append(genes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, scerrors.Wrapf(err, "genesets.FromList: read failed")
	}
	return genes, nil
}

// FromCSV reads gene sets from CSV rows of the form "set,gene" and returns
// a mapping from set name to its genes, in file order.
func FromCSV(r io.Reader) (map[string][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	sets := make(map[string][]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, scerrors.Wrapf(err, "genesets.FromCSV: read failed")
		}
		set := strings.TrimSpace(record[0])
		gene := strings.TrimSpace(record[1])
		if set == "" || gene == "" {
			return nil, scerrors.NewValueError("genesets.FromCSV", "empty set or gene name")
		}
		sets[set] = append(sets[set], gene)
	}
	return sets, nil
}

// FromYAML reads gene sets from a YAML mapping of set name to gene list:
//
//	s_phase:
//	  - MCM5
//	  - PCNA
//	g2m_phase:
//	  - HMGB2
func FromYAML(r io.Reader) (map[string][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, scerrors.Wrapf(err, "genesets.FromYAML: read failed")
	}
	var sets map[string][]string
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, scerrors.Wrapf(err, "genesets.FromYAML: parse failed")
	}
	return sets, nil
}
