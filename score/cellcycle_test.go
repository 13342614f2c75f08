package score_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scgolabs/singlecell/anndata"
	"github.com/scgolabs/singlecell/score"
)

// requireSameScores compares score vectors treating NaN as equal to NaN,
// which reflect-based equality does not.
func requireSameScores(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			require.True(t, math.IsNaN(got[i]), "cell %d: expected NaN, got %v", i, got[i])
			continue
		}
		require.Equal(t, want[i], got[i], "cell %d", i)
	}
}

func cellCycleFixture(t *testing.T) (*anndata.AnnData, []string, []string) {
	t.Helper()
	// 4 cells x 8 genes: two S markers, two G2M markers, four fillers
	// that give the sampler a pool of expression-matched controls
	x := anndata.NewDense(4, 8, []float64{
		5, 4, 0, 0, 2, 1, 3, 2,
		0, 1, 6, 5, 2, 1, 3, 2,
		0, 0, 0, 0, 2, 1, 3, 2,
		3, 3, 3, 3, 2, 1, 3, 2,
	})
	adata, err := anndata.New(x, []string{"S1", "S2", "M1", "M2", "F1", "F2", "F3", "F4"})
	require.NoError(t, err)
	return adata, []string{"S1", "S2"}, []string{"M1", "M2"}
}

func TestCellCycle_AddsColumns(t *testing.T) {
	adata, sGenes, g2mGenes := cellCycleFixture(t)

	err := score.CellCycle(adata, sGenes, g2mGenes,
		score.WithNBins(3), score.WithRandomState(0))
	require.NoError(t, err)

	require.True(t, adata.Obs.Has(score.SScoreCol))
	require.True(t, adata.Obs.Has(score.G2MScoreCol))
	require.True(t, adata.Obs.Has(score.PhaseCol))

	phases, ok := adata.Obs.Strings(score.PhaseCol)
	require.True(t, ok)
	require.Len(t, phases, 4)
	for i, p := range phases {
		require.Contains(t, []string{score.PhaseG1, score.PhaseS, score.PhaseG2M}, p,
			"cell %d", i)
	}
}

// TestCellCycle_PhaseConsistency checks the written phase labels against
// the documented rules applied to the written score columns.
func TestCellCycle_PhaseConsistency(t *testing.T) {
	adata, sGenes, g2mGenes := cellCycleFixture(t)

	require.NoError(t, score.CellCycle(adata, sGenes, g2mGenes,
		score.WithNBins(3), score.WithRandomState(42)))

	sScores, _ := adata.Obs.Float(score.SScoreCol)
	g2mScores, _ := adata.Obs.Float(score.G2MScoreCol)
	phases, _ := adata.Obs.Strings(score.PhaseCol)

	for i := range phases {
		want := score.PhaseS
		if g2mScores[i] > sScores[i] {
			want = score.PhaseG2M
		}
		if sScores[i] < 0 && g2mScores[i] < 0 {
			want = score.PhaseG1
		}
		require.Equal(t, want, phases[i],
			"cell %d: S=%v G2M=%v", i, sScores[i], g2mScores[i])
	}
}

// TestCellCycle_CtrlSizeForced verifies a caller-supplied ctrl_size is
// overridden by min(len(sGenes), len(g2mGenes)).
func TestCellCycle_CtrlSizeForced(t *testing.T) {
	plain, sGenes, g2mGenes := cellCycleFixture(t)
	forced, _, _ := cellCycleFixture(t)

	require.NoError(t, score.CellCycle(plain, sGenes, g2mGenes,
		score.WithNBins(3), score.WithRandomState(5)))
	require.NoError(t, score.CellCycle(forced, sGenes, g2mGenes,
		score.WithNBins(3), score.WithRandomState(5), score.WithCtrlSize(999)))

	plainS, _ := plain.Obs.Float(score.SScoreCol)
	forcedS, _ := forced.Obs.Float(score.SScoreCol)
	requireSameScores(t, plainS, forcedS)

	plainPhases, _ := plain.Obs.Strings(score.PhaseCol)
	forcedPhases, _ := forced.Obs.Strings(score.PhaseCol)
	require.Equal(t, plainPhases, forcedPhases)
}

func TestCellCycleCopy_LeavesOriginalUntouched(t *testing.T) {
	adata, sGenes, g2mGenes := cellCycleFixture(t)

	scored, err := score.CellCycleCopy(adata, sGenes, g2mGenes,
		score.WithNBins(3), score.WithRandomState(0))
	require.NoError(t, err)

	require.False(t, adata.Obs.Has(score.PhaseCol), "original container gained a column")
	require.True(t, scored.Obs.Has(score.PhaseCol))
	require.True(t, scored.Obs.Has(score.SScoreCol))
}

// TestCellCycle_EmptyList rejects an empty marker list: it would force
// ctrl_size to zero.
func TestCellCycle_EmptyList(t *testing.T) {
	adata, sGenes, _ := cellCycleFixture(t)

	err := score.CellCycle(adata, sGenes, nil, score.WithNBins(3))
	require.Error(t, err)
	require.False(t, adata.Obs.Has(score.SScoreCol), "container mutated despite invalid input")
}
