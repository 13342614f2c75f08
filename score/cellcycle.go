package score

import (
	"github.com/scgolabs/singlecell/anndata"
	scerrors "github.com/scgolabs/singlecell/pkg/errors"
	"github.com/scgolabs/singlecell/pkg/log"
)

// Observation columns written by CellCycle.
const (
	SScoreCol   = "S_score"
	G2MScoreCol = "G2M_score"
	PhaseCol    = "phase"
)

// Phase labels assigned by CellCycle.
const (
	PhaseG1  = "G1"
	PhaseS   = "S"
	PhaseG2M = "G2M"
)

// CellCycle scores the S-phase and G2M-phase gene lists and assigns a
// cell-cycle phase per cell, in place. It writes three observation
// columns: "S_score", "G2M_score" and "phase" (one of "G1", "S", "G2M").
//
// The control-set size is forced to min(len(sGenes), len(g2mGenes)), the
// raw input lengths; a caller-supplied WithCtrlSize is overridden. All
// other options are forwarded to both scoring passes.
//
// Phase assignment applies three rules as sequential overwrites: every
// cell defaults to "S"; cells with G2M_score > S_score become "G2M"; cells
// with both scores negative become "G1". The last rule runs after the
// second and wins, so a cell with two negative scores is "G1" regardless
// of which score is larger.
func CellCycle(adata *anndata.AnnData, sGenes, g2mGenes []string, opts ...Option) (err error) {
	defer scerrors.Recover(&err, "score.CellCycle")
	return scoreCellCycle(adata, sGenes, g2mGenes, opts)
}

// CellCycleCopy is CellCycle against an independent clone of the
// container: the original is left untouched and the scored clone is
// returned.
func CellCycleCopy(adata *anndata.AnnData, sGenes, g2mGenes []string, opts ...Option) (_ *anndata.AnnData, err error) {
	defer scerrors.Recover(&err, "score.CellCycleCopy")
	out := adata.Copy()
	if err := scoreCellCycle(out, sGenes, g2mGenes, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func scoreCellCycle(adata *anndata.AnnData, sGenes, g2mGenes []string, opts []Option) error {
	cfg := newConfig(opts...)
	logger := scoreLogger(cfg)

	logger.Info("calculating cell cycle phase",
		log.ComponentKey, "score",
		log.OperationKey, log.OperationClassify,
		log.CellsKey, adata.NObs(),
	)

	// ctrl_size is not independently settable here; it is pinned to the
	// smaller of the two raw list lengths so both passes sample the same
	// number of controls per bin.
	ctrlSize := len(sGenes)
	if len(g2mGenes) < ctrlSize {
		ctrlSize = len(g2mGenes)
	}
	cfg.ctrlSize = ctrlSize

	// both passes run in place against the already-resolved container
	cfg.scoreName = SScoreCol
	if err := scoreGenes(adata, sGenes, cfg); err != nil {
		return scerrors.NewScoringError("CellCycle", "S phase scoring failed", err)
	}
	cfg.scoreName = G2MScoreCol
	if err := scoreGenes(adata, g2mGenes, cfg); err != nil {
		return scerrors.NewScoringError("CellCycle", "G2M phase scoring failed", err)
	}

	sScores, _ := adata.Obs.Float(SScoreCol)
	g2mScores, _ := adata.Obs.Float(G2MScoreCol)

	if err := adata.Obs.SetString(PhaseCol, assignPhases(sScores, g2mScores)); err != nil {
		return err
	}

	logger.Debug("added phase column (adata.obs)", log.ScoreNameKey, PhaseCol)
	return nil
}

// assignPhases derives the phase label per cell from the two score
// vectors. The three rules are sequential overwrites over a default, not
// independent predicates: the all-negative rule runs last and overrides
// the relative-magnitude rule.
func assignPhases(sScores, g2mScores []float64) []string {
	phases := make([]string, len(sScores))
	for i := range phases {
		phases[i] = PhaseS
	}
	for i := range phases {
		if g2mScores[i] > sScores[i] {
			phases[i] = PhaseG2M
		}
	}
	for i := range phases {
		if sScores[i] < 0 && g2mScores[i] < 0 {
			phases[i] = PhaseG1
		}
	}
	return phases
}
