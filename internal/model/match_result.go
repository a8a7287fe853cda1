package model

// MatchResult is the scored outcome of one (seeker, posting) pair. The
// identifiers reference the inputs by value; the result owns neither.
type MatchResult struct {
	JobSeekerID          string   `json:"job_seeker_id" validate:"required"`
	JobPostingID         string   `json:"job_posting_id" validate:"required"`
	CompatibilityScore   float64  `json:"compatibility_score" validate:"gte=0,lte=1"`
	SkillMatchPercentage float64  `json:"skill_match_percentage" validate:"gte=0,lte=100"`
	ExperienceFit        string   `json:"experience_fit" validate:"required"`
	SalaryAlignment      string   `json:"salary_alignment" validate:"required"`
	Explanation          string   `json:"explanation" validate:"required"`
	Recommendations      []string `json:"recommendations"`
}

// NewMatchResult validates the result and returns an immutable copy. Scores
// outside their closed intervals are rejected with a ValidationError, never
// clamped here: clamping untrusted model output is the matching engine's
// job and happens strictly before construction.
func NewMatchResult(r MatchResult) (*MatchResult, error) {
	if err := checkStruct("match result", r); err != nil {
		return nil, err
	}

	if r.Recommendations == nil {
		r.Recommendations = []string{}
	} else {
		r.Recommendations = append([]string(nil), r.Recommendations...)
	}

	return &r, nil
}
