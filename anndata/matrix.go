package anndata

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Matrix is the expression matrix abstraction: rows are observations
// (cells), columns are variables (genes). Backing storage may be dense or
// sparse; callers never branch on the representation. The single
// densification path is DenseColumns, which materializes only the requested
// column subset.
type Matrix interface {
	// Dims returns the number of observations and variables.
	Dims() (n, m int)

	// At returns the value at row i, column j.
	At(i, j int) float64

	// DenseColumns materializes the given column subset as a dense
	// n_obs x len(cols) matrix. Column order follows cols.
	DenseColumns(cols []int) *mat.Dense

	// Clone returns a deep copy with the same backing representation.
	Clone() Matrix
}

// Dense is a dense expression matrix wrapping gonum's mat.Dense.
type Dense struct {
	data *mat.Dense
}

// NewDense creates a dense matrix from row-major data of shape r x c.
// data may be nil for an all-zero matrix.
func NewDense(r, c int, data []float64) *Dense {
	return &Dense{data: mat.NewDense(r, c, data)}
}

// NewDenseFrom wraps an existing mat.Dense without copying.
func NewDenseFrom(data *mat.Dense) *Dense {
	return &Dense{data: data}
}

// Dims returns the matrix dimensions.
func (d *Dense) Dims() (int, int) { return d.data.Dims() }

// At returns the value at row i, column j.
func (d *Dense) At(i, j int) float64 { return d.data.At(i, j) }

// DenseColumns copies the requested columns into a new dense matrix.
func (d *Dense) DenseColumns(cols []int) *mat.Dense {
	r, _ := d.data.Dims()
	out := mat.NewDense(r, len(cols), nil)
	for k, j := range cols {
		for i := 0; i < r; i++ {
			out.Set(i, k, d.data.At(i, j))
		}
	}
	return out
}

// Clone returns a deep copy.
func (d *Dense) Clone() Matrix {
	var c mat.Dense
	c.CloneFrom(d.data)
	return &Dense{data: &c}
}

// CSR is a compressed sparse row expression matrix. Entries absent from the
// structure are zero. Within each row, Indices must be strictly increasing.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	values     []float64
}

// NewCSR creates a CSR matrix from its raw components. indptr has length
// rows+1; indices and values have length indptr[rows].
func NewCSR(rows, cols int, indptr, indices []int, values []float64) *CSR {
	return &CSR{rows: rows, cols: cols, indptr: indptr, indices: indices, values: values}
}

// NewCSRFromDense builds a CSR matrix holding the nonzero (and NaN) entries
// of m. NaN is kept explicit so missing values survive the conversion.
func NewCSRFromDense(m *mat.Dense) *CSR {
	r, c := m.Dims()
	csr := &CSR{rows: r, cols: c, indptr: make([]int, r+1)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v != 0 {
				csr.indices = append(csr.indices, j)
				csr.values = append(csr.values, v)
			}
		}
		csr.indptr[i+1] = len(csr.indices)
	}
	return csr
}

// Dims returns the matrix dimensions.
func (s *CSR) Dims() (int, int) { return s.rows, s.cols }

// NNZ returns the number of explicitly stored entries.
func (s *CSR) NNZ() int { return len(s.values) }

// At returns the value at row i, column j; zero for absent entries.
func (s *CSR) At(i, j int) float64 {
	lo, hi := s.indptr[i], s.indptr[i+1]
	row := s.indices[lo:hi]
	k := sort.SearchInts(row, j)
	if k < len(row) && row[k] == j {
		return s.values[lo+k]
	}
	return 0
}

// DenseColumns materializes the requested columns as a dense matrix.
// Only the subset is densified; the remaining columns stay sparse.
func (s *CSR) DenseColumns(cols []int) *mat.Dense {
	out := mat.NewDense(s.rows, len(cols), nil)
	pos := make(map[int]int, len(cols))
	for k, j := range cols {
		pos[j] = k
	}
	for i := 0; i < s.rows; i++ {
		for p := s.indptr[i]; p < s.indptr[i+1]; p++ {
			if k, ok := pos[s.indices[p]]; ok {
				out.Set(i, k, s.values[p])
			}
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *CSR) Clone() Matrix {
	return &CSR{
		rows:    s.rows,
		cols:    s.cols,
		indptr:  append([]int(nil), s.indptr...),
		indices: append([]int(nil), s.indices...),
		values:  append([]float64(nil), s.values...),
	}
}
