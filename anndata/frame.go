package anndata

import (
	scerrors "github.com/scgolabs/singlecell/pkg/errors"
)

// Frame is an annotation table: a fixed number of rows with named columns
// of float64 or string values. Column order is preserved across copies.
type Frame struct {
	nrows int
	names []string
	cols  map[string]column
}

type column interface {
	len() int
	clone() column
}

type floatCol []float64

func (c floatCol) len() int { return len(c) }
func (c floatCol) clone() column {
	return floatCol(append([]float64(nil), c...))
}

type stringCol []string

func (c stringCol) len() int { return len(c) }
func (c stringCol) clone() column {
	return stringCol(append([]string(nil), c...))
}

// NewFrame creates an empty frame with a fixed row count.
func NewFrame(nRows int) *Frame {
	return &Frame{nrows: nRows, cols: make(map[string]column)}
}

// NRows returns the number of rows.
func (f *Frame) NRows() int { return f.nrows }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether a column with the given name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// SetFloat writes a float column, overwriting an existing column of the
// same name in place. The values are copied.
func (f *Frame) SetFloat(name string, values []float64) error {
	if len(values) != f.nrows {
		return scerrors.NewDimensionError("Frame.SetFloat", f.nrows, len(values), 0)
	}
	f.set(name, floatCol(append([]float64(nil), values...)))
	return nil
}

// SetString writes a string column, overwriting an existing column of the
// same name in place. The values are copied.
func (f *Frame) SetString(name string, values []string) error {
	if len(values) != f.nrows {
		return scerrors.NewDimensionError("Frame.SetString", f.nrows, len(values), 0)
	}
	f.set(name, stringCol(append([]string(nil), values...)))
	return nil
}

func (f *Frame) set(name string, col column) {
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = col
}

// Float returns a copy of the named float column. The second return value
// is false if the column is absent or not a float column.
func (f *Frame) Float(name string) ([]float64, bool) {
	col, ok := f.cols[name].(floatCol)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), col...), true
}

// Strings returns a copy of the named string column. The second return
// value is false if the column is absent or not a string column.
func (f *Frame) Strings(name string) ([]string, bool) {
	col, ok := f.cols[name].(stringCol)
	if !ok {
		return nil, false
	}
	return append([]string(nil), col...), true
}

// Copy returns a fully independent deep copy of the frame.
func (f *Frame) Copy() *Frame {
	out := &Frame{
		nrows: f.nrows,
		names: append([]string(nil), f.names...),
		cols:  make(map[string]column, len(f.cols)),
	}
	for name, col := range f.cols {
		out.cols[name] = col.clone()
	}
	return out
}
