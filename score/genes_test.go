package score_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"github.com/scgolabs/singlecell/anndata"
	scerrors "github.com/scgolabs/singlecell/pkg/errors"
	"github.com/scgolabs/singlecell/score"
)

// reverseShuffle reverses the sequence. Deterministic and order-sensitive,
// so golden control selections can be computed by hand while still
// exercising the swap path.
type reverseShuffle struct{}

func (reverseShuffle) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

// countingShuffle records whether sampling ever consumed randomness.
type countingShuffle struct {
	calls int
}

func (c *countingShuffle) Shuffle(n int, swap func(i, j int)) {
	c.calls++
}

// ScoreSuite exercises gene-set scoring end to end on a 4 cells x 6 genes
// matrix whose per-gene average expression is exactly 1..6 for A..F.
type ScoreSuite struct {
	suite.Suite
}

func (s *ScoreSuite) fixtureData() []float64 {
	return []float64{
		1, 2, 3, 4, 5, 6,
		2, 4, 6, 8, 10, 12,
		0, 0, 0, 0, 0, 0,
		1, 2, 3, 4, 5, 6,
	}
}

func (s *ScoreSuite) newAnnData() *anndata.AnnData {
	adata, err := anndata.New(anndata.NewDense(4, 6, s.fixtureData()),
		[]string{"A", "B", "C", "D", "E", "F"})
	require.NoError(s.T(), err)
	return adata
}

func (s *ScoreSuite) newSparseAnnData() *anndata.AnnData {
	csr := anndata.NewCSRFromDense(mat.NewDense(4, 6, s.fixtureData()))
	adata, err := anndata.New(csr, []string{"A", "B", "C", "D", "E", "F"})
	require.NoError(s.T(), err)
	return adata
}

// TestGoldenScores pins the full scoring pipeline against a hand-computed
// reference: n_bins=2 bins genes A..E together and F alone, the reversed
// bin yields controls {E,D}, and the score is mean(A,B) - mean(D,E).
func (s *ScoreSuite) TestGoldenScores() {
	adata := s.newAnnData()

	err := score.Genes(adata, []string{"A", "B"},
		score.WithCtrlSize(2),
		score.WithNBins(2),
		score.WithShuffler(reverseShuffle{}),
	)
	require.NoError(s.T(), err)

	scores, ok := adata.Obs.Float("score")
	require.True(s.T(), ok, "score column missing")

	want := []float64{-3, -6, 0, -3}
	for i := range want {
		require.InDelta(s.T(), want[i], scores[i], 1e-12, "cell %d", i)
	}
}

// TestSparseDenseParity verifies the same scores come out of a CSR-backed
// matrix holding the same values.
func (s *ScoreSuite) TestSparseDenseParity() {
	dense := s.newAnnData()
	sparse := s.newSparseAnnData()

	opts := []score.Option{
		score.WithCtrlSize(4),
		score.WithNBins(2),
		score.WithRandomState(3),
	}
	require.NoError(s.T(), score.Genes(dense, []string{"A", "B"}, opts...))
	require.NoError(s.T(), score.Genes(sparse, []string{"A", "B"}, opts...))

	denseScores, _ := dense.Obs.Float("score")
	sparseScores, _ := sparse.Obs.Float("score")
	for i := range denseScores {
		require.InDelta(s.T(), denseScores[i], sparseScores[i], 1e-12, "cell %d", i)
	}
}

// TestDeterminismUnderFixedSeed runs the scorer twice with identical
// inputs and seed and requires identical scores.
func (s *ScoreSuite) TestDeterminismUnderFixedSeed() {
	first := s.newAnnData()
	second := s.newAnnData()

	opts := []score.Option{
		score.WithCtrlSize(2),
		score.WithNBins(3),
		score.WithRandomState(0),
	}
	require.NoError(s.T(), score.Genes(first, []string{"A", "F"}, opts...))
	require.NoError(s.T(), score.Genes(second, []string{"A", "F"}, opts...))

	firstScores, _ := first.Obs.Float("score")
	secondScores, _ := second.Obs.Float("score")
	require.Equal(s.T(), firstScores, secondScores)
}

// TestUnknownGeneTolerance requires unknown names to be dropped silently
// with no effect on the result.
func (s *ScoreSuite) TestUnknownGeneTolerance() {
	withUnknown := s.newAnnData()
	without := s.newAnnData()

	opts := []score.Option{
		score.WithCtrlSize(4),
		score.WithNBins(2),
		score.WithRandomState(1),
	}
	require.NoError(s.T(), score.Genes(withUnknown, []string{"A", "NOT_A_GENE", "B"}, opts...))
	require.NoError(s.T(), score.Genes(without, []string{"A", "B"}, opts...))

	a, _ := withUnknown.Obs.Float("score")
	b, _ := without.Obs.Float("score")
	require.Equal(s.T(), b, a)
}

// TestCopySemantics checks both operation forms: the copy form leaves the
// original untouched, the in-place form mutates it.
func (s *ScoreSuite) TestCopySemantics() {
	adata := s.newAnnData()

	scored, err := score.GenesCopy(adata, []string{"A", "B"},
		score.WithCtrlSize(2), score.WithNBins(2))
	require.NoError(s.T(), err)
	require.NotSame(s.T(), adata, scored)
	require.False(s.T(), adata.Obs.Has("score"), "original container gained a column")
	require.True(s.T(), scored.Obs.Has("score"), "clone is missing the score column")

	require.NoError(s.T(), score.Genes(adata, []string{"A", "B"},
		score.WithCtrlSize(2), score.WithNBins(2)))
	require.True(s.T(), adata.Obs.Has("score"))
}

// TestNBinsValidation requires n_bins=1 to fail fast before any sampling
// or mutation.
func (s *ScoreSuite) TestNBinsValidation() {
	adata := s.newAnnData()
	shuffler := &countingShuffle{}

	err := score.Genes(adata, []string{"A"},
		score.WithNBins(1), score.WithShuffler(shuffler))
	require.Error(s.T(), err)

	var valueErr *scerrors.ValueError
	require.True(s.T(), errors.As(err, &valueErr), "expected ValueError, got %v", err)
	require.Equal(s.T(), 0, shuffler.calls, "sampling ran despite invalid n_bins")
	require.False(s.T(), adata.Obs.Has("score"), "container mutated despite invalid n_bins")
}

// TestPoolTooSmall requires a zero bin width to be rejected, not divided by.
func (s *ScoreSuite) TestPoolTooSmall() {
	adata := s.newAnnData()

	// pool of 2 genes with the default 25 bins rounds the bin width to 0
	err := score.Genes(adata, []string{"A"},
		score.WithGenePool([]string{"C", "D"}))
	require.Error(s.T(), err)

	var valueErr *scerrors.ValueError
	require.True(s.T(), errors.As(err, &valueErr), "expected ValueError, got %v", err)
}

// TestEmptyGeneList documents the degenerate case: scoring an empty list
// is not an error and produces NaN scores.
func (s *ScoreSuite) TestEmptyGeneList() {
	adata := s.newAnnData()

	require.NoError(s.T(), score.Genes(adata, []string{"NOT_A_GENE"},
		score.WithCtrlSize(2), score.WithNBins(2)))

	scores, ok := adata.Obs.Float("score")
	require.True(s.T(), ok)
	for i, v := range scores {
		require.True(s.T(), math.IsNaN(v), "cell %d: expected NaN, got %v", i, v)
	}
}

// TestScoreNameOverwrite requires an existing column of the same name to
// be overwritten rather than rejected.
func (s *ScoreSuite) TestScoreNameOverwrite() {
	adata := s.newAnnData()
	require.NoError(s.T(), adata.Obs.SetFloat("score", []float64{9, 9, 9, 9}))

	require.NoError(s.T(), score.Genes(adata, []string{"A", "B"},
		score.WithCtrlSize(2), score.WithNBins(2),
		score.WithShuffler(reverseShuffle{})))

	scores, _ := adata.Obs.Float("score")
	require.InDelta(s.T(), -3.0, scores[0], 1e-12)
}

func TestScoreSuite(t *testing.T) {
	suite.Run(t, new(ScoreSuite))
}
