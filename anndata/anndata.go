// Package anndata provides the annotated data container used by the
// scoring operations: an expression matrix of shape (n_obs x n_vars)
// together with an observation annotation table and a variable annotation
// table.
//
// The container mirrors the conventions of annotated single-cell data
// matrices: rows are observations (cells), columns are named variables
// (genes), gene names are unique and serve as the join key between gene
// lists and matrix columns. The matrix may be backed by dense or sparse
// storage (see Matrix); only named column subsets are ever densified.
//
// Scoring operations mutate the container exclusively by adding or
// overwriting observation columns. Copy produces a fully independent clone
// for callers that need the original preserved.
package anndata

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	scerrors "github.com/scgolabs/singlecell/pkg/errors"
)

// AnnData owns an expression matrix plus per-observation and per-variable
// annotation tables.
type AnnData struct {
	// X is the expression matrix, shape (n_obs x n_vars).
	X Matrix

	// Obs annotates observations, one row per cell.
	Obs *Frame

	// Var annotates variables, one row per gene.
	Var *Frame

	varNames []string
	varIdx   map[string]int
}

// New creates a container around x. varNames provides one unique name per
// matrix column.
func New(x Matrix, varNames []string) (*AnnData, error) {
	nObs, nVars := x.Dims()
	if len(varNames) != nVars {
		return nil, scerrors.NewDimensionError("anndata.New", nVars, len(varNames), 1)
	}
	idx := make(map[string]int, nVars)
	for i, name := range varNames {
		if _, dup := idx[name]; dup {
			return nil, scerrors.NewValueError("anndata.New",
				fmt.Sprintf("duplicate gene name %q", name))
		}
		idx[name] = i
	}
	return &AnnData{
		X:        x,
		Obs:      NewFrame(nObs),
		Var:      NewFrame(nVars),
		varNames: append([]string(nil), varNames...),
		varIdx:   idx,
	}, nil
}

// NObs returns the number of observations (cells).
func (a *AnnData) NObs() int {
	n, _ := a.X.Dims()
	return n
}

// NVars returns the number of variables (genes).
func (a *AnnData) NVars() int {
	_, m := a.X.Dims()
	return m
}

// VarNames returns a copy of the gene names in column order.
func (a *AnnData) VarNames() []string {
	return append([]string(nil), a.varNames...)
}

// VarIndex returns the column index of the named gene.
func (a *AnnData) VarIndex(name string) (int, bool) {
	i, ok := a.varIdx[name]
	return i, ok
}

// HasVar reports whether the named gene exists in the matrix.
func (a *AnnData) HasVar(name string) bool {
	_, ok := a.varIdx[name]
	return ok
}

// DenseByNames materializes the named columns as a dense
// n_obs x len(names) matrix, in the given order. Unknown names are an
// error; use genesets.Filter first when silent dropping is wanted.
func (a *AnnData) DenseByNames(names []string) (*mat.Dense, error) {
	cols := make([]int, len(names))
	for k, name := range names {
		i, ok := a.varIdx[name]
		if !ok {
			return nil, scerrors.NewValueError("AnnData.DenseByNames",
				fmt.Sprintf("unknown gene name %q", name))
		}
		cols[k] = i
	}
	return a.X.DenseColumns(cols), nil
}

// Copy returns a fully independent deep clone: matrix, annotation tables
// and name index share no state with the original.
func (a *AnnData) Copy() *AnnData {
	idx := make(map[string]int, len(a.varIdx))
	for name, i := range a.varIdx {
		idx[name] = i
	}
	return &AnnData{
		X:        a.X.Clone(),
		Obs:      a.Obs.Copy(),
		Var:      a.Var.Copy(),
		varNames: append([]string(nil), a.varNames...),
		varIdx:   idx,
	}
}
