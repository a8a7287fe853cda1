package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/seekmatch/jobmatcher/internal/model"
)

// scriptedScorer returns a canned result or error per posting ID.
type scriptedScorer struct {
	mu      sync.Mutex
	results map[string]*model.MatchResult
	errs    map[string]error
	calls   int
}

func (s *scriptedScorer) ScorePair(_ context.Context, _ *model.JobSeeker, posting *model.JobPosting) (*model.MatchResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err, ok := s.errs[posting.ID]; ok {
		return nil, err
	}
	if result, ok := s.results[posting.ID]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("no script for posting %s", posting.ID)
}

func rankSeeker(t *testing.T) *model.JobSeeker {
	t.Helper()

	seeker, err := model.NewJobSeeker(model.JobSeeker{
		ID:              "seeker_123",
		Skills:          []string{"Go"},
		ExperienceYears: 5,
		EducationLevel:  "Bachelor's",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return seeker
}

func rankPosting(t *testing.T, id string) *model.JobPosting {
	t.Helper()

	posting, err := model.NewJobPosting(model.JobPosting{
		ID:                 id,
		Title:              "Backend Engineer",
		Company:            "Acme",
		Location:           "Remote",
		JobType:            "Full-time",
		RequiredSkills:     []string{"Go"},
		ExperienceRequired: "3+ years",
		EducationRequired:  "Bachelor's",
		Description:        "Build services",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return posting
}

func scoredResult(t *testing.T, postingID string, score, skillMatch float64) *model.MatchResult {
	t.Helper()

	result, err := model.NewMatchResult(model.MatchResult{
		JobSeekerID:          "seeker_123",
		JobPostingID:         postingID,
		CompatibilityScore:   score,
		SkillMatchPercentage: skillMatch,
		ExperienceFit:        "Good fit",
		SalaryAlignment:      "Within range",
		Explanation:          "Scripted",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	scorer := &scriptedScorer{results: map[string]*model.MatchResult{
		"p1": scoredResult(t, "p1", 0.2, 40),
		"p2": scoredResult(t, "p2", 0.9, 90),
		"p3": scoredResult(t, "p3", 0.5, 70),
	}}

	ranker := NewRanker(scorer, zap.NewNop(), 4)
	postings := []*model.JobPosting{rankPosting(t, "p1"), rankPosting(t, "p2"), rankPosting(t, "p3")}

	results, failed, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 0 {
		t.Fatalf("expected no failures, got %d", failed)
	}

	ids := []string{results[0].JobPostingID, results[1].JobPostingID, results[2].JobPostingID}
	if ids[0] != "p2" || ids[1] != "p3" || ids[2] != "p1" {
		t.Fatalf("unexpected order: %v", ids)
	}
}

func TestRankTieBreaks(t *testing.T) {
	// Equal compatibility: skill match decides. Fully equal: input order.
	scorer := &scriptedScorer{results: map[string]*model.MatchResult{
		"p1": scoredResult(t, "p1", 0.8, 50),
		"p2": scoredResult(t, "p2", 0.8, 70),
		"p3": scoredResult(t, "p3", 0.8, 70),
	}}

	ranker := NewRanker(scorer, zap.NewNop(), 1)
	postings := []*model.JobPosting{rankPosting(t, "p1"), rankPosting(t, "p2"), rankPosting(t, "p3")}

	results, _, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := []string{results[0].JobPostingID, results[1].JobPostingID, results[2].JobPostingID}
	if ids[0] != "p2" || ids[1] != "p3" || ids[2] != "p1" {
		t.Fatalf("unexpected tie-break order: %v", ids)
	}
}

func TestRankExcludesFailedPairs(t *testing.T) {
	scorer := &scriptedScorer{
		results: map[string]*model.MatchResult{
			"good": scoredResult(t, "good", 0.7, 60),
		},
		errs: map[string]error{
			"bad": &ParseError{Err: errors.New("invalid character 'I'")},
		},
	}

	ranker := NewRanker(scorer, zap.NewNop(), 2)
	postings := []*model.JobPosting{rankPosting(t, "good"), rankPosting(t, "bad")}

	results, failed, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].JobPostingID != "good" {
		t.Fatalf("unexpected surviving pair: %s", results[0].JobPostingID)
	}
	if failed != 1 {
		t.Fatalf("expected 1 reported failure, got %d", failed)
	}
}

func TestRankExcludesIncompletePairs(t *testing.T) {
	scorer := &scriptedScorer{
		results: map[string]*model.MatchResult{
			"good": scoredResult(t, "good", 0.7, 60),
		},
		errs: map[string]error{
			"partial": &IncompleteResponseError{Key: "explanation"},
		},
	}

	ranker := NewRanker(scorer, zap.NewNop(), 2)
	postings := []*model.JobPosting{rankPosting(t, "partial"), rankPosting(t, "good")}

	results, failed, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || failed != 1 {
		t.Fatalf("expected 1 result and 1 failure, got %d and %d", len(results), failed)
	}
}

func TestRankAbortsOnFatalError(t *testing.T) {
	fatal := errors.New("quota exceeded")
	scorer := &scriptedScorer{
		results: map[string]*model.MatchResult{
			"good": scoredResult(t, "good", 0.7, 60),
		},
		errs: map[string]error{
			"broken": fatal,
		},
	}

	ranker := NewRanker(scorer, zap.NewNop(), 1)
	postings := []*model.JobPosting{rankPosting(t, "good"), rankPosting(t, "broken")}

	_, _, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error to abort the batch, got %v", err)
	}
}

func TestRankEmptyPostings(t *testing.T) {
	ranker := NewRanker(&scriptedScorer{}, zap.NewNop(), 4)

	results, failed, err := ranker.Rank(context.Background(), rankSeeker(t), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 || failed != 0 {
		t.Fatalf("expected empty result set, got %d results and %d failures", len(results), failed)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	scorer := &scriptedScorer{results: map[string]*model.MatchResult{}}
	postings := make([]*model.JobPosting, 0, 8)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		postings = append(postings, rankPosting(t, id))
		// Half the postings share a score so the input-order tie-break matters.
		scorer.results[id] = scoredResult(t, id, 0.5+float64(i%2)/10, 50)
	}

	ranker := NewRanker(scorer, zap.NewNop(), 4)

	first, _, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := ranker.Rank(context.Background(), rankSeeker(t), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].JobPostingID != second[i].JobPostingID {
			t.Fatalf("order differs at %d: %s vs %s", i, first[i].JobPostingID, second[i].JobPostingID)
		}
	}
}
