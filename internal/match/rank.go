package match

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seekmatch/jobmatcher/internal/logger"
	"github.com/seekmatch/jobmatcher/internal/model"
)

const defaultConcurrency = 4

// PairScorer scores a single (seeker, posting) pair.
type PairScorer interface {
	ScorePair(ctx context.Context, seeker *model.JobSeeker, posting *model.JobPosting) (*model.MatchResult, error)
}

// Ranker scores a seeker against a batch of postings and orders the results
// by desirability. Pairs are independent and scored concurrently.
type Ranker struct {
	scorer      PairScorer
	logger      *zap.Logger
	concurrency int
}

func NewRanker(scorer PairScorer, log *zap.Logger, concurrency int) *Ranker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Ranker{
		scorer:      scorer,
		logger:      logger.WithFields(log),
		concurrency: concurrency,
	}
}

// Rank scores every pair and returns the successful results sorted by
// compatibility score descending, ties broken by skill match percentage
// descending, then by input order. Pairs failing with ParseError or
// IncompleteResponseError are excluded; their count is the second return
// value. Any other failure aborts the batch.
func (r *Ranker) Rank(ctx context.Context, seeker *model.JobSeeker, postings []*model.JobPosting) ([]*model.MatchResult, int, error) {
	if len(postings) == 0 {
		return []*model.MatchResult{}, 0, nil
	}

	// One slot per input position: concurrency never perturbs input order.
	slots := make([]*model.MatchResult, len(postings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, posting := range postings {
		g.Go(func() error {
			result, err := r.scorer.ScorePair(gctx, seeker, posting)
			if err != nil {
				if recoverable(err) {
					r.logger.Warn("pair excluded from ranking",
						zap.String("posting_id", posting.ID),
						zap.Error(err),
					)
					return nil
				}
				return err
			}

			slots[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	results := make([]*model.MatchResult, 0, len(postings))
	for _, result := range slots {
		if result != nil {
			results = append(results, result)
		}
	}
	failed := len(postings) - len(results)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CompatibilityScore != results[j].CompatibilityScore {
			return results[i].CompatibilityScore > results[j].CompatibilityScore
		}
		return results[i].SkillMatchPercentage > results[j].SkillMatchPercentage
	})

	r.logger.Info("ranking completed",
		zap.Int("scored", len(results)),
		zap.Int("failed", failed),
	)

	return results, failed, nil
}

// DumpResults writes the ranked results as indented JSON to a temporary
// file and returns its path.
func DumpResults(results []*model.MatchResult) (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return file.Name(), nil
}
