package score

import (
	"math/rand/v2"
	"time"

	"github.com/scgolabs/singlecell/pkg/log"
)

// Shuffler is the randomness source for control-gene sampling. It is
// satisfied by *rand.Rand from math/rand/v2.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// sharedRNG backs scoring calls that request nondeterministic sampling
// (negative random state). It is process-wide shared mutable state:
// concurrent callers that need reproducibility must inject their own
// generator via WithShuffler instead.
var sharedRNG = rand.New(rand.NewPCG(
	uint64(time.Now().UnixNano()),
	uint64(time.Now().UnixNano())^0xdeadbeef,
))

type config struct {
	ctrlSize    int
	genePool    []string
	nBins       int
	scoreName   string
	randomState int64
	shuffler    Shuffler
	logger      log.Logger
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		ctrlSize:    50,
		nBins:       25,
		scoreName:   "score",
		randomState: 0,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// rng resolves the sampling source for one scoring call. An injected
// Shuffler wins; otherwise a non-negative random state yields a fresh
// deterministic generator (re-seeded on every call, matching the reference
// behavior of seeding before each scoring pass), and a negative one falls
// back to the shared process-wide generator.
func (c *config) rng() Shuffler {
	if c.shuffler != nil {
		return c.shuffler
	}
	if c.randomState >= 0 {
		return rand.New(rand.NewPCG(uint64(c.randomState), uint64(c.randomState)))
	}
	return sharedRNG
}

// Option configures a scoring call.
type Option func(*config)

// WithCtrlSize sets the number of control genes sampled per expression bin
// (default 50). If a bin holds fewer genes, the whole bin is used.
func WithCtrlSize(n int) Option {
	return func(c *config) { c.ctrlSize = n }
}

// WithGenePool restricts the universe of candidate control genes. The pool
// is intersected with the matrix gene names; an empty or nil pool means
// all genes (the default).
func WithGenePool(pool []string) Option {
	return func(c *config) { c.genePool = pool }
}

// WithNBins sets the number of expression-level bins used to match control
// genes to target genes (default 25). Values below 2 are rejected.
func WithNBins(n int) Option {
	return func(c *config) { c.nBins = n }
}

// WithScoreName sets the observation column the score is written to
// (default "score"). An existing column of that name is overwritten.
func WithScoreName(name string) Option {
	return func(c *config) { c.scoreName = name }
}

// WithRandomState sets the sampling seed (default 0). Non-negative seeds
// produce a fresh deterministic generator per call; a negative seed uses
// the shared process-wide generator.
func WithRandomState(seed int64) Option {
	return func(c *config) { c.randomState = seed }
}

// WithShuffler injects an explicit randomness source, overriding
// WithRandomState. Callers running scoring calls in parallel should inject
// one generator per goroutine.
func WithShuffler(s Shuffler) Option {
	return func(c *config) { c.shuffler = s }
}

// WithLogger overrides the logger used for progress messages.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}
